package users

import "time"

// User is a staff account. The password hash never leaves the package
// boundary in responses.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	LastLogin    *time.Time `json:"last_login"`
}

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UserForm carries fields for creating a user.
type UserForm struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin cashier"`
}

// UpdateUserRequest carries optional fields for partial updates. A non-nil
// Password is re-hashed.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
}

// LoginRequest is the /auth/login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
