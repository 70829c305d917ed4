package auth

import (
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
)

const (
	NotGoogleAuthorizedCode    = api.ErrorCode("failed_google_verification")
	NoAccountCode              = api.ErrorCode("no_account")
	UnvalidatedAccountCode     = api.ErrorCode("unvalidated_account")
	BadAuthorizationHeaderCode = api.ErrorCode("bad_header")
	InsufficientRoleCode       = api.ErrorCode("insufficient_role")
)
