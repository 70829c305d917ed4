package gateway

import (
	"fmt"
	"net/http"

	"github.com/hymnbook/hymnbook-be/src/server/api_error"
	"github.com/hymnbook/hymnbook-be/src/server/internal/change/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/auth"
	"github.com/hymnbook/hymnbook-be/src/server/internal/music/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/sync/errors"
	"github.com/labstack/echo/v4"
)

var httpStatusCodeMap = map[api.ErrorCode]int{
	api.DefaultErrorCode:                   http.StatusInternalServerError,
	auth.NotGoogleAuthorizedCode:           http.StatusUnauthorized,
	auth.UnvalidatedAccountCode:            http.StatusUnauthorized,
	auth.NoAccountCode:                     http.StatusUnauthorized,
	auth.BadAuthorizationHeaderCode:        http.StatusBadRequest,
	auth.InsufficientRoleCode:              http.StatusForbidden,
	songerrors.SongNotFoundCode:            http.StatusNotFound,
	songerrors.BadSongDataCode:             http.StatusBadRequest,
	songerrors.ConcurrentUpdateCode:        http.StatusConflict,
	changeerrors.ChangeNotFoundCode:        http.StatusNotFound,
	changeerrors.InvalidReviewActionCode:   http.StatusBadRequest,
	changeerrors.ChangeAlreadyReviewedCode: http.StatusBadRequest,
	changeerrors.ChangeSongMissingCode:     http.StatusNotFound,
	syncerrors.InvalidSinceCode:            http.StatusBadRequest,
	musicerrors.MusicFileRequiredCode:      http.StatusBadRequest,
	musicerrors.MusicFileTooLargeCode:      http.StatusBadRequest,
	musicerrors.MusicFileNotAudioCode:      http.StatusBadRequest,
	musicerrors.BadMusicDataCode:           http.StatusBadRequest,
	musicerrors.MusicFileNotFoundCode:      http.StatusNotFound,
	musicerrors.MusicNotFoundCode:          http.StatusNotFound,
}

func StatusCode(code api.ErrorCode) (int, bool) {
	statusCode, ok := httpStatusCodeMap[code]
	return statusCode, ok
}

func ErrorResponse(c echo.Context, err *api.Error) error {
	statusCode, ok := StatusCode(err.ErrorCode)
	if !ok {
		msg := fmt.Sprintf("Error code %s has no HTTP status code mapping", err.ErrorCode)
		panic(msg)
	}

	return c.JSON(statusCode, api_error.JSONAPIError{
		Code:         string(err.ErrorCode),
		Msg:          err.UserMessage,
		ErrorDetails: err.Error(),
	})
}
