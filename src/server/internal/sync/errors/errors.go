package syncerrors

import (
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
)

const (
	InvalidSinceCode = api.ErrorCode("invalid_since")
)
