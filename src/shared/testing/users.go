package testing

import (
	"context"
	"fmt"

	"github.com/hymnbook/hymnbook-be/src/server/google_id"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/dynamo"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
	. "github.com/onsi/gomega"
)

type User struct {
	ID       string
	Name     string
	Email    string
	Verified bool
	Role     string
}

var (
	// in the system, Google validated, can do everything
	AdminUser = User{
		ID:       "admin-user-id",
		Name:     "Admin User Name",
		Email:    "admin@hymnbook.app",
		Verified: true,
		Role:     "admin",
	}

	// in the system, Google validated, can propose changes and manage music
	EditorUser = User{
		ID:       "editor-user-id",
		Name:     "Editor User Name",
		Email:    "editor@hymnbook.app",
		Verified: true,
		Role:     "editor",
	}

	// in the system, Google validated, but only a plain reader
	ReaderUser = User{
		ID:       "reader-user-id",
		Name:     "Reader User Name",
		Email:    "reader@hymnbook.app",
		Verified: true,
		Role:     "user",
	}

	// is Google validated, but not verified and should not have access
	// also not saved to the DB
	UnverifiedUserNotInDB = User{
		ID:       "unverified-user-id",
		Name:     "Unverified User Name",
		Email:    "unverified@hymnbook.app",
		Verified: false,
		Role:     "user",
	}

	// is Google validated, but not verified and should not have access
	// but saved to the DB
	UnverifiedUserInDB = User{
		ID:       "unverified-user-id-in-db",
		Name:     "Unverified User Name in DB",
		Email:    "unverified-in-db@hymnbook.app",
		Verified: false,
		Role:     "editor",
	}

	// is Google validated but not in the system
	NoAccountUser = User{
		ID:       "not-in-db-id",
		Name:     "Not In DB User",
		Email:    "adude@someoneelse.com",
		Verified: false,
	}

	// not Google validated, also not in the system
	GoogleUnauthorizedUser = User{
		ID:       "google-unauthorized-user-id",
		Name:     "Google Unauthorized User",
		Email:    "rando@nothymns.com",
		Verified: false,
	}
)

// UsersInDB are the users every suite starts with
func UsersInDB() []User {
	return []User{AdminUser, EditorUser, ReaderUser, UnverifiedUserInDB}
}

func TokenForUserID(userID string) string {
	return fmt.Sprintf("%s-token", userID)
}

var _ google_id.Validator = Validator{}

type Validator struct{}

func (t Validator) ValidateToken(ctx context.Context, requestToken string) (google_id.User, error) {
	validatedUsers := append(UsersInDB(), UnverifiedUserNotInDB, NoAccountUser)

	for _, validatedUser := range validatedUsers {
		if requestToken == TokenForUserID(validatedUser.ID) {
			return google_id.User{
				GoogleID: validatedUser.ID,
				Name:     validatedUser.Name,
				Email:    validatedUser.Email,
			}, nil
		}
	}

	return google_id.User{}, mark.Message(google_id.NotValidatedMark, "User is not validated")
}

func EnsureUsers(db dynamolib.DynamoDBWrapper) {
	for _, u := range UsersInDB() {
		EnsureUser(db, u)
	}
}

func EnsureUser(db dynamolib.DynamoDBWrapper, u User) {
	err := db.Table(UsersTable).Put(user{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Verified: u.Verified,
		Role:     u.Role,
	}).Run()
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
}
