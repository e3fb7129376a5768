package domain

import "time"

// Role is the coarse permission class carried by every account and token.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
	RoleUser   Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleUser:
		return true
	}
	return false
}

// User is the stored account record.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
