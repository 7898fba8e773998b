package user

import "context"

// UserRepository reads the user directory. Users are written by the auth
// collaborator; the attendance core never mutates them.
type UserRepository interface {
	// GetByID retrieves a single user
	GetByID(ctx context.Context, id string) (User, error)

	// ListEmployees retrieves every user with the employee role
	ListEmployees(ctx context.Context) ([]User, error)

	// CountEmployees counts users with the employee role
	CountEmployees(ctx context.Context) (int64, error)
}
