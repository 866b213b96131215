package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Pre-defined user errors.
var (
	ErrUserNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "User not found",
	}

	ErrSessionExpired = &Error{
		Code:    EUNAUTHORIZED,
		Message: "Session has expired",
	}
)

// Role is the explicit authorization enum. Status updates on orders are a
// manager capability; the rest of the dashboard requires staff or manager.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleManager  Role = "manager"
)

// IsValid reports whether the value is a defined role.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleManager:
		return true
	}
	return false
}

// IsStaff reports whether the role grants dashboard access.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleManager
}

// CanUpdateOrderStatus reports whether the role may overwrite an order's
// fulfillment status.
func (r Role) CanUpdateOrderStatus() bool {
	return r == RoleManager
}

// User is an account known to the store. Authentication itself lives
// outside this service; sessions map bearer tokens to users.
type User struct {
	ID        pgtype.UUID
	Email     string
	Name      string
	Role      Role
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// UserService resolves session tokens to users.
type UserService interface {
	GetUserBySessionToken(ctx context.Context, token string) (*User, error)
}
