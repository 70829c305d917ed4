package syncgateway

import (
	"net/http"

	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/request"
	"github.com/hymnbook/hymnbook-be/src/server/internal/sync/usecase"
	"github.com/labstack/echo/v4"
)

type Gateway struct {
	usecase syncusecase.Usecase
}

func NewGateway(usecase syncusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

func (g Gateway) Sync(c echo.Context) error {
	ctx := request.Context(c)

	delta, apiErr := g.usecase.Sync(ctx, c.QueryParam("since"))
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, delta)
}

func (g Gateway) Recent(c echo.Context) error {
	ctx := request.Context(c)

	songs, apiErr := g.usecase.Recent(ctx, c.QueryParam("since"))
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, songs)
}
