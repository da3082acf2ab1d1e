package dashboard

import (
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/session"
	"github.com/dimitrije/taskboard/internal/view"
)

// State is everything an operator screen needs to render.
type State struct {
	Operator      session.Operator              `json:"operator"`
	Drawer        models.Kind                   `json:"drawer,omitempty"`
	Counts        models.CountSnapshot          `json:"counts"`
	CountsLoaded  bool                          `json:"countsLoaded"`
	Teams         view.Snapshot[models.Team]    `json:"teams"`
	Projects      view.Snapshot[models.Project] `json:"projects"`
	Tasks         view.Snapshot[models.Task]    `json:"tasks"`
	Users         view.Snapshot[models.User]    `json:"users"`
	Form          *FormState                    `json:"form,omitempty"`
	Expanded      []ExpandedRow                 `json:"expanded"`
	PendingDelete *PendingDelete                `json:"pendingDelete,omitempty"`
	Notice        string                        `json:"notice,omitempty"`
	Picker        *PickerState                  `json:"picker,omitempty"`
	ChatSessionID string                        `json:"chatSessionId,omitempty"`
	Chat          []ChatMessage                 `json:"chat,omitempty"`
}

func (d *Dashboard) State() State {
	st := State{
		Teams:    d.teams.Snapshot(),
		Projects: d.projects.Snapshot(),
		Tasks:    d.tasks.Snapshot(),
		Users:    d.users.Snapshot(),
		Expanded: d.Expanded(),
		Picker:   d.Picker(),
		Form:     d.Form(),
		Chat:     d.ChatLog(),
	}
	st.Counts, st.CountsLoaded = d.Counts()
	if d.session != nil {
		st.Operator = d.session.Operator()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	st.Drawer = d.drawer
	st.Notice = d.notice
	st.ChatSessionID = d.chatSession
	if d.pendingDelete != nil {
		pd := d.pendingDelete.PendingDelete
		st.PendingDelete = &pd
	}
	return st
}
