package google_id

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/domains"
	"github.com/cockroachdb/errors/markers"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
	"google.golang.org/api/idtoken"
)

var (
	NotValidatedMark    = domains.New("google_token_not_validated")
	MalformedClaimsMark = domains.New("google_claims_malformed")
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . Validator
type Validator interface {
	ValidateToken(ctx context.Context, requestToken string) (User, error)
}

type User struct {
	GoogleID string
	Name     string
	Email    string
}

var _ Validator = GoogleValidator{}

type GoogleValidator struct {
	ClientID string
}

func (g GoogleValidator) ValidateToken(ctx context.Context, requestToken string) (User, error) {
	payload, err := idtoken.Validate(ctx, requestToken, g.ClientID)
	if err != nil {
		return User{}, mark.Wrap(err, NotValidatedMark, "Token could not be validated")
	}

	if payload.Subject == "" {
		return User{}, mark.Message(MalformedClaimsMark, "Token has no subject")
	}

	name, err := optionalClaim[string](payload.Claims, "name")
	if err != nil {
		return User{}, mark.Wrap(err, MalformedClaimsMark, "name field on claims is malformed")
	}

	email, err := optionalClaim[string](payload.Claims, "email")
	if err != nil {
		return User{}, mark.Wrap(err, MalformedClaimsMark, "email field on claims is malformed")
	}

	return User{
		GoogleID: payload.Subject,
		Name:     name,
		Email:    email,
	}, nil
}

var (
	keyNotFound    = domains.New("The specified key couldn't be found in the claims")
	unexpectedType = domains.New("The retrieved value has an unexpected type")
)

func claim[T any](claims map[string]any, key string) (T, error) {
	var zero T

	value, ok := claims[key]
	if !ok {
		return zero, errors.Wrap(keyNotFound, "The key "+key+" couldn't be found")
	}

	typed, ok := value.(T)
	if !ok {
		return zero, errors.Wrapf(unexpectedType, "The key %s has a value of type %T", key, value)
	}

	return typed, nil
}

func optionalClaim[T any](claims map[string]any, key string) (T, error) {
	value, err := claim[T](claims, key)
	if markers.Is(err, keyNotFound) {
		var zero T
		return zero, nil
	}

	return value, err
}
