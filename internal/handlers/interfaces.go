package handlers

import (
	"context"
	"encoding/json"

	"github.com/dimitrije/taskboard/internal/dashboard"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/mutation"
	"github.com/dimitrije/taskboard/internal/sse"
	"github.com/google/uuid"
)

// DashboardService defines the operator intents the handlers route to
type DashboardService interface {
	State() dashboard.State
	Counts() (models.CountSnapshot, bool)
	RefreshCounts(ctx context.Context) (models.CountSnapshot, error)

	OpenView(ctx context.Context, kind models.Kind) (any, error)
	CloseView()
	Search(ctx context.Context, kind models.Kind, term string) (any, error)
	Paginate(ctx context.Context, kind models.Kind, page int) (any, error)
	ViewSnapshot(kind models.Kind) (any, error)

	OpenCreateForm(kind models.Kind) (*dashboard.FormState, error)
	OpenEditForm(ctx context.Context, kind models.Kind, id uuid.UUID) (*dashboard.FormState, error)
	CloseForm()
	SubmitForm(ctx context.Context, raw json.RawMessage) (*mutation.Result, error)

	RequestDelete(kind models.Kind, id uuid.UUID) (*dashboard.PendingDelete, error)
	ConfirmDelete(ctx context.Context, token uuid.UUID) error
	CancelDelete()
	DismissNotice()

	ToggleExpand(ctx context.Context, kind models.Kind, id uuid.UUID) (*dashboard.ExpandedRow, bool, error)

	OpenPicker(ctx context.Context, a mutation.Assignment) (*dashboard.PickerState, error)
	PickerSearch(ctx context.Context, term string) (*dashboard.PickerState, error)
	PickerPaginate(ctx context.Context, page int) (*dashboard.PickerState, error)
	PickerSelect(ctx context.Context, userID uuid.UUID) (*mutation.Result, error)
	ClosePicker()
	Picker() *dashboard.PickerState

	SendChat(ctx context.Context, query string) (*dashboard.ChatMessage, error)
	ChatLog() []dashboard.ChatMessage

	Logout()
}

// EventHub defines the methods used by the events handler from sse.Hub
type EventHub interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	Subscribe(clientID string, kind models.Kind)
	Unsubscribe(clientID string, kind models.Kind)
}
