package testing

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func PrepareEchoContext(request *http.Request, response http.ResponseWriter) echo.Context {
	e := echo.New()
	return e.NewContext(request, response)
}
