package dummy

import (
	"context"
	"sync"

	"github.com/hymnbook/hymnbook-be/src/server/internal/user/entity"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/storage"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
)

var _ userentity.Store = &UserStore{}

func NewDummyUserStore(users ...userentity.User) *UserStore {
	store := &UserStore{
		Unavailable: false,
		Users:       make(map[string]userentity.User),
	}

	for _, user := range users {
		store.Users[user.ID] = user
	}

	return store
}

type UserStore struct {
	Unavailable bool
	Users       map[string]userentity.User
	mutex       sync.RWMutex
}

func (u *UserStore) GetUser(ctx context.Context, userID string) (userentity.User, error) {
	if u.Unavailable {
		return userentity.User{}, mark.Message(userstorage.DefaultErrorMark, "Dummy user store is unavailable")
	}

	u.mutex.RLock()
	defer u.mutex.RUnlock()

	user, ok := u.Users[userID]
	if !ok {
		return userentity.User{}, mark.Message(userstorage.UserNotFoundMark, "User is not found")
	}

	return user, nil
}

func (u *UserStore) SetUser(ctx context.Context, user userentity.User) error {
	if u.Unavailable {
		return mark.Message(userstorage.DefaultErrorMark, "Dummy user store is unavailable")
	}

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.Users[user.ID] = user
	return nil
}
