package changegateway

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/change/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/change/usecase"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/request"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/errors"
	"github.com/labstack/echo/v4"
)

type Gateway struct {
	usecase changeusecase.Usecase
}

func NewGateway(usecase changeusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

func (g Gateway) SubmitChange(c echo.Context, songID string) error {
	ctx := request.Context(c)

	authHeader, apiErr := request.AuthHeader(c)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	proposal := changeusecase.Proposal{}
	if err := c.Bind(&proposal); err != nil {
		err = errors.Wrap(err, "Failed to bind request body to a proposal")
		apiErr := api.CommitError(err,
			songerrors.BadSongDataCode,
			"The song data received was malformed. Please contact the developer")
		return gateway.ErrorResponse(c, apiErr)
	}

	submission, apiErr := g.usecase.SubmitChange(ctx, authHeader, songID, proposal)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusCreated, submission)
}

func (g Gateway) ListChanges(c echo.Context) error {
	ctx := request.Context(c)

	authHeader, apiErr := request.AuthHeader(c)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	listings, apiErr := g.usecase.ListChanges(ctx, authHeader, c.QueryParam("status"))
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, listings)
}

func (g Gateway) ReviewChange(c echo.Context, changeID string) error {
	ctx := request.Context(c)

	authHeader, apiErr := request.AuthHeader(c)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	review := changeusecase.Review{}
	if err := c.Bind(&review); err != nil {
		err = errors.Wrap(err, "Failed to bind request body to a review")
		apiErr := api.CommitError(err,
			changeerrors.InvalidReviewActionCode,
			"action must be either 'approve' or 'reject'.")
		return gateway.ErrorResponse(c, apiErr)
	}

	decision, apiErr := g.usecase.ReviewChange(ctx, authHeader, changeID, review)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, decision)
}
