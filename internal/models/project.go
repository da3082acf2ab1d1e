package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const EmptyPlaceholder = "-"

type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Project) DescriptionOrPlaceholder() string {
	if p.Description == nil || strings.TrimSpace(*p.Description) == "" {
		return EmptyPlaceholder
	}
	return *p.Description
}
