package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrManagerAccessRequired  = errors.New("manager role required for this operation")
	ErrEmployeeAccessRequired = errors.New("employee role required for this operation")
)
