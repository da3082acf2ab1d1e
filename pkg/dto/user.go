package dto

import (
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role,omitempty"`
	TeamID   *uuid.UUID  `json:"teamId,omitempty"`
}

// UpdateUserRequest has patch semantics: nil fields are left unchanged.
type UpdateUserRequest struct {
	Email    *string      `json:"email,omitempty"`
	Password *string      `json:"password,omitempty"`
	Name     *string      `json:"name,omitempty"`
	Role     *models.Role `json:"role,omitempty"`
	TeamID   *uuid.UUID   `json:"teamId,omitempty"`
}

// DropBlankPassword clears an empty password so the current one is kept.
func (r *UpdateUserRequest) DropBlankPassword() {
	if r.Password != nil && *r.Password == "" {
		r.Password = nil
	}
}
