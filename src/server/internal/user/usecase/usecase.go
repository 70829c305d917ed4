package userusecase

import (
	"context"
	"strings"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/hymnbook/hymnbook-be/src/server/google_id"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/auth"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/entity"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/storage"
	"github.com/sourcegraph/conc/pool"
)

const (
	bearerPrefix = "Bearer "

	maxIdentityLookups = 8
)

type Usecase struct {
	db              userentity.Store
	googleValidator google_id.Validator
}

func NewUsecase(db userentity.Store, googleValidator google_id.Validator) Usecase {
	return Usecase{
		db:              db,
		googleValidator: googleValidator,
	}
}

// Authorize resolves the caller from the auth header and checks that their
// role reaches the required rung of the ladder
func (u Usecase) Authorize(ctx context.Context, authHeader string, required userentity.Role) (userentity.User, *api.Error) {
	user, _, apiErr := u.verifiedUser(ctx, authHeader)
	if apiErr != nil {
		return userentity.User{}, api.WrapError(apiErr, "Failed to resolve the requesting user")
	}

	if !user.Role.Satisfies(required) {
		err := errors.Newf("User %s has role %s, %s is required", user.ID, user.Role, required)
		return userentity.User{}, api.CommitError(err,
			auth.InsufficientRoleCode,
			"You don't have permission to do this")
	}

	return user, nil
}

func (u Usecase) Login(ctx context.Context, authHeader string) (userentity.User, *api.Error) {
	user, userFromGoogle, apiErr := u.verifiedUser(ctx, authHeader)
	if apiErr != nil {
		if apiErr.ErrorCode == auth.NoAccountCode {
			u.addUnverifiedUser(ctx, userFromGoogle)
		}

		return userentity.User{}, api.WrapError(apiErr, "Failed to log in")
	}

	return user, nil
}

func (u Usecase) verifiedUser(ctx context.Context, authHeader string) (userentity.User, google_id.User, *api.Error) {
	userFromGoogle, apiErr := u.validateHeader(ctx, authHeader)
	if apiErr != nil {
		return userentity.User{}, google_id.User{}, api.WrapError(apiErr, "Failed to validate auth header")
	}

	userFromDB, apiErr := u.getUser(ctx, userFromGoogle.GoogleID)
	if apiErr != nil {
		return userentity.User{}, userFromGoogle, api.WrapError(apiErr, "Failed to fetch user")
	}

	if !userFromDB.Verified {
		err := errors.New("User not verified")
		return userentity.User{}, userFromGoogle, api.CommitError(err,
			auth.UnvalidatedAccountCode,
			"Your account hasn't been approved yet")
	}

	return userFromDB, userFromGoogle, nil
}

// the account is recorded so an admin can verify it, but the caller
// still gets turned away this time
func (u Usecase) addUnverifiedUser(ctx context.Context, googleUser google_id.User) {
	newUser := userentity.User{
		ID:       googleUser.GoogleID,
		Name:     googleUser.Name,
		Email:    googleUser.Email,
		Verified: false,
		Role:     userentity.UserRole,
	}

	if err := u.db.SetUser(ctx, newUser); err != nil {
		log.WithError(err).
			WithFields(log.Fields{
				"user_id": googleUser.GoogleID,
				"email":   googleUser.Email,
			}).
			Error("Failed to add unverified user")
	}
}

func (u Usecase) getUser(ctx context.Context, userID string) (userentity.User, *api.Error) {
	userFromDB, err := u.db.GetUser(ctx, userID)
	if err != nil {
		switch {
		case markers.Is(err, userstorage.UserNotFoundMark):
			return userentity.User{}, api.CommitError(err,
				auth.NoAccountCode,
				"An account could not be found for this user")

		case markers.Is(err, userstorage.DefaultErrorMark):
			fallthrough
		default:
			return userentity.User{}, api.CommitError(err,
				api.DefaultErrorCode,
				"User information could not be retrieved")
		}
	}

	return userFromDB, nil
}

func (u Usecase) validateHeader(ctx context.Context, header string) (google_id.User, *api.Error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return google_id.User{}, api.CommitError(
			errors.New("Auth header doesn't have the bearer prefix"),
			auth.BadAuthorizationHeaderCode,
			"Authorization header has unexpected shape")
	}

	token := strings.TrimPrefix(header, bearerPrefix)
	userFromGoogle, err := u.googleValidator.ValidateToken(ctx, token)
	if err != nil {
		err = errors.Wrap(err, "Failed to validate Google ID token")
		switch {
		case markers.Is(err, google_id.NotValidatedMark):
			return google_id.User{}, api.CommitError(err,
				auth.NotGoogleAuthorizedCode,
				"Your Google login doesn't seem to be valid. Please try again")

		case markers.Is(err, google_id.MalformedClaimsMark):
			fallthrough
		default:
			return google_id.User{}, api.CommitError(err,
				api.DefaultErrorCode,
				"Unknown error: Couldn't verify your Google login status")
		}
	}

	return userFromGoogle, nil
}

// Identities looks up users in parallel. Users that no longer exist are
// left out of the result rather than failing the lookup.
func (u Usecase) Identities(ctx context.Context, userIDs []string) (map[string]userentity.Identity, *api.Error) {
	unique := map[string]bool{}
	lookups := pool.NewWithResults[*userentity.Identity]().
		WithMaxGoroutines(maxIdentityLookups).
		WithContext(ctx)

	for _, userID := range userIDs {
		if userID == "" || unique[userID] {
			continue
		}
		unique[userID] = true

		userID := userID
		lookups.Go(func(ctx context.Context) (*userentity.Identity, error) {
			user, err := u.db.GetUser(ctx, userID)
			if err != nil {
				if markers.Is(err, userstorage.UserNotFoundMark) {
					return nil, nil
				}

				return nil, errors.Wrapf(err, "Failed to look up user %s", userID)
			}

			identity := user.Identity()
			return &identity, nil
		})
	}

	results, err := lookups.Wait()
	if err != nil {
		return nil, api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to look up the users involved")
	}

	identities := map[string]userentity.Identity{}
	for _, identity := range results {
		if identity != nil {
			identities[identity.ID] = *identity
		}
	}

	return identities, nil
}
