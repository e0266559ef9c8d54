package domain

import "time"

// Role enumerates the three access levels of the platform. The wire values
// match the profile strings stored in the users table and carried in tokens.
type Role string

const (
	RoleGeneralAdministrator Role = "general_administrator"
	RoleAdministrator        Role = "administrator"
	RoleProfessional         Role = "professional"
)

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleGeneralAdministrator, RoleAdministrator, RoleProfessional:
		return true
	}
	return false
}

// IsAdministrative reports whether the role is administrator or general
// administrator.
func (r Role) IsAdministrative() bool {
	return r == RoleAdministrator || r == RoleGeneralAdministrator
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// Valid reports whether the status is a known value.
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

// User is the domain model for platform accounts. AdminID links a
// professional to the administrator they are attached to; it is empty for
// administrators and general administrators.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Profile      Role
	AdminID      string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
