package userentity

import "context"

type Role string

const (
	UserRole   Role = "user"
	EditorRole Role = "editor"
	AdminRole  Role = "admin"
)

var roleRanks = map[Role]int{
	UserRole:   0,
	EditorRole: 1,
	AdminRole:  2,
}

// Satisfies walks the ladder user < editor < admin.
// Unknown roles satisfy nothing.
func (r Role) Satisfies(required Role) bool {
	rank, ok := roleRanks[r]
	if !ok {
		return false
	}

	return rank >= roleRanks[required]
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	Role     Role   `json:"role"`
}

// Identity is how a user shows up next to the changes they touched
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

type Store interface {
	GetUser(ctx context.Context, userID string) (User, error)
	SetUser(ctx context.Context, user User) error
}
