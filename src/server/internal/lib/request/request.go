package request

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/auth"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/env"
	"github.com/labstack/echo/v4"
)

func Context(c echo.Context) context.Context {
	switch env.Get() {
	case env.Production:
		return c.Request().Context()

	case env.Development, env.Test:
		// skip the request context outside production
		// so timeouts don't get in the way of debugging
		return context.Background()

	default:
		panic("Unrecognized environment")
	}
}

func AuthHeader(c echo.Context) (string, *api.Error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", api.CommitError(
			errors.New("No authorization header on request"),
			auth.BadAuthorizationHeaderCode,
			"Authorization header is missing")
	}

	return header, nil
}
