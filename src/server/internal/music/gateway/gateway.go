package musicgateway

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/request"
	"github.com/hymnbook/hymnbook-be/src/server/internal/music/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/music/usecase"
	"github.com/labstack/echo/v4"
)

const MusicFormField = "music"

type Gateway struct {
	usecase musicusecase.Usecase
}

func NewGateway(usecase musicusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

type removeRequest struct {
	FileName string `json:"fileName"`
}

func (g Gateway) Upload(c echo.Context, songID string) error {
	ctx := request.Context(c)

	authHeader, apiErr := request.AuthHeader(c)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	file, err := c.FormFile(MusicFormField)
	if err != nil {
		// no file is for the usecase to reject, after it checks the caller
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			err = errors.Wrap(err, "Failed to read multipart music upload")
			apiErr := api.CommitError(err,
				musicerrors.BadMusicDataCode,
				"Invalid music upload request.")
			return gateway.ErrorResponse(c, apiErr)
		}
	}

	result, apiErr := g.usecase.Upload(ctx, authHeader, songID, file)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, result)
}

func (g Gateway) Remove(c echo.Context, songID string) error {
	ctx := request.Context(c)

	authHeader, apiErr := request.AuthHeader(c)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	body := removeRequest{}
	if err := c.Bind(&body); err != nil {
		err = errors.Wrap(err, "Failed to bind request body to a music removal")
		apiErr := api.CommitError(err,
			musicerrors.BadMusicDataCode,
			"File name is required to remove music.")
		return gateway.ErrorResponse(c, apiErr)
	}

	result, apiErr := g.usecase.Remove(ctx, authHeader, songID, body.FileName)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, result)
}

func (g Gateway) Download(c echo.Context, songID string) error {
	ctx := request.Context(c)

	track, apiErr := g.usecase.Download(ctx, songID, c.QueryParam("fileName"))
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}
	defer track.Content.Close()

	contentType := track.MimeType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	return c.Stream(http.StatusOK, contentType, track.Content)
}
