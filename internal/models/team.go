package models

import (
	"time"

	"github.com/google/uuid"
)

// Team belongs to exactly one Project. OwnerID is validated by the API at
// creation time only.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"ownerId"`
	ProjectID uuid.UUID `json:"projectId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
