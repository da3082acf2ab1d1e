package dto

import (
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/google/uuid"
)

type CountsResponse struct {
	Counts models.CountSnapshot `json:"counts"`
	Loaded bool                 `json:"loaded"`
}

type ExpandResponse struct {
	Expanded bool `json:"expanded"`
	Row      any  `json:"row,omitempty"`
}

// AssignRequest opens the user picker. Exactly one of TaskID and TeamID is set.
type AssignRequest struct {
	TaskID        *uuid.UUID `json:"taskId,omitempty"`
	CurrentUserID *uuid.UUID `json:"currentUserId,omitempty"`
	TeamID        *uuid.UUID `json:"teamId,omitempty"`
}

type ChatQueryRequest struct {
	Query string `json:"query"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
