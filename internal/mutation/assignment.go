package mutation

import "github.com/google/uuid"

// Assignment is what a user picker selection is applied to. It is either a
// TaskAssignment or a TeamAssignment.
type Assignment interface {
	assignment()
}

// TaskAssignment points a task at the selected user. CurrentUserID is the
// task's assignee when the picker opened, highlighted in the picker.
type TaskAssignment struct {
	TaskID        uuid.UUID `json:"taskId"`
	CurrentUserID uuid.UUID `json:"currentUserId"`
}

// TeamAssignment moves the selected user into a team.
type TeamAssignment struct {
	TeamID uuid.UUID `json:"teamId"`
}

func (TaskAssignment) assignment() {}
func (TeamAssignment) assignment() {}
