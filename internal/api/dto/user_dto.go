package dto

import (
	"time"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest payload for new accounts.
type CreateUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Profile  string `json:"profile"`
	AdminID  string `json:"admin_id,omitempty"`
}

// UpdateUserRequest payload for account changes. Empty fields are untouched.
type UpdateUserRequest struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Status   string `json:"status,omitempty"`
}

// UserResponse is the wire shape of an account. The password hash never
// leaves the service.
type UserResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Profile   string    `json:"profile"`
	AdminID   string    `json:"admin_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromUser maps a domain user to its response shape.
func FromUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Profile:   string(user.Profile),
		AdminID:   user.AdminID,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// FromUsers maps a slice of domain users.
func FromUsers(users []domain.User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i := range users {
		result[i] = FromUser(&users[i])
	}
	return result
}
