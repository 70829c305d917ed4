package songgateway

import (
	"net/http"

	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/request"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/usecase"
	"github.com/labstack/echo/v4"
)

type Gateway struct {
	usecase songusecase.Usecase
}

func NewGateway(usecase songusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

func (g Gateway) GetSong(c echo.Context, songID string) error {
	ctx := request.Context(c)

	song, apiErr := g.usecase.GetSong(ctx, songID)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, song)
}

func (g Gateway) ListSongs(c echo.Context) error {
	ctx := request.Context(c)

	songs, apiErr := g.usecase.ListSongs(ctx)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, songs)
}

func (g Gateway) DeleteSong(c echo.Context, songID string) error {
	ctx := request.Context(c)

	authHeader, apiErr := request.AuthHeader(c)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	apiErr = g.usecase.DeleteSong(ctx, authHeader, songID)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.NoContent(http.StatusNoContent)
}
