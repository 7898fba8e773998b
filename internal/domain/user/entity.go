package user

import "time"

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// User is the identity owned by the auth collaborator. The attendance core
// only consumes ID, Role and Department; the rest is display data carried
// into reports and exports.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	EmployeeID   string
	Department   string
	ProfileImage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DepartmentOrDefault buckets users without a department into "General".
func (u User) DepartmentOrDefault() string {
	if u.Department == "" {
		return "General"
	}
	return u.Department
}
