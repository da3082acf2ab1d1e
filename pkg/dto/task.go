package dto

import (
	"time"

	"github.com/dimitrije/taskboard/internal/models"
	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string            `json:"title"`
	Description *string           `json:"description,omitempty"`
	Status      models.TaskStatus `json:"status,omitempty"`
	AssignedTo  uuid.UUID         `json:"assignedTo"`
	Deadline    *time.Time        `json:"deadline,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Status      *models.TaskStatus `json:"status,omitempty"`
	AssignedTo  *uuid.UUID         `json:"assignedTo,omitempty"`
	Deadline    *time.Time         `json:"deadline,omitempty"`
}
