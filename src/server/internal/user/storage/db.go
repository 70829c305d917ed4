package userstorage

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/domains"
	"github.com/guregu/dynamo"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/entity"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/dynamo"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
)

const (
	UsersTable = "Users"
	idKey      = "id"
)

var (
	UserNotFoundMark = domains.New("user_not_found")
	DefaultErrorMark = domains.New("user_default_error")
)

type dbUser struct {
	ID       string          `dynamo:"id,hash"`
	Name     string          `dynamo:"username"`
	Email    string          `dynamo:"email"`
	Verified bool            `dynamo:"verified"`
	Role     userentity.Role `dynamo:"role"`
}

var _ userentity.Store = DB{}

type DB struct {
	dynamoDB dynamolib.DynamoDBWrapper
}

func NewDB(dynamoDB dynamolib.DynamoDBWrapper) DB {
	return DB{
		dynamoDB: dynamoDB,
	}
}

func CreateTable(ctx context.Context, dynamoDB dynamolib.DynamoDBWrapper) error {
	err := dynamoDB.CreateTable(UsersTable, dbUser{}).
		OnDemand(true).
		RunWithContext(ctx)
	if err != nil {
		return errors.Wrapf(err, "Failed to create table %s", UsersTable)
	}

	return nil
}

func (d DB) GetUser(ctx context.Context, userID string) (userentity.User, error) {
	if userID == "" {
		return userentity.User{}, mark.Message(UserNotFoundMark, "No ID provided to fetch user")
	}

	value := dbUser{}
	err := d.dynamoDB.Table(UsersTable).
		Get(idKey, userID).
		Consistent(true).
		OneWithContext(ctx, &value)

	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return userentity.User{}, mark.Wrap(err, UserNotFoundMark, "User is not found")
		}

		return userentity.User{}, mark.Wrap(err, DefaultErrorMark, "Failed to fetch user")
	}

	role := value.Role
	if role == "" {
		role = userentity.UserRole
	}

	return userentity.User{
		ID:       value.ID,
		Name:     value.Name,
		Email:    value.Email,
		Verified: value.Verified,
		Role:     role,
	}, nil
}

func (d DB) SetUser(ctx context.Context, user userentity.User) error {
	err := d.dynamoDB.Table(UsersTable).
		Put(dbUser{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Verified: user.Verified,
			Role:     user.Role,
		}).
		RunWithContext(ctx)

	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to put user")
	}

	return nil
}
