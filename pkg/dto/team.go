package dto

import "github.com/google/uuid"

type CreateTeamRequest struct {
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"ownerId"`
	ProjectID uuid.UUID `json:"projectId"`
}

type UpdateTeamRequest struct {
	Name      *string    `json:"name,omitempty"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
}
