package dashboard

import (
	"context"
	"errors"

	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/mutation"
	"github.com/dimitrije/taskboard/internal/sse"
	"github.com/dimitrije/taskboard/internal/view"
	"github.com/google/uuid"
)

const (
	PickerTargetTask = "task"
	PickerTargetTeam = "team"
)

// PickerState describes the open user picker and the page it shows.
type PickerState struct {
	Target      string                     `json:"target"`
	TaskID      *uuid.UUID                 `json:"taskId,omitempty"`
	TeamID      *uuid.UUID                 `json:"teamId,omitempty"`
	HighlightID *uuid.UUID                 `json:"highlightId,omitempty"`
	View        view.Snapshot[models.User] `json:"view"`
}

type pickerState struct {
	assignment mutation.Assignment
}

// OpenPicker shows the user picker for an assignment, starting from the
// first page with no search term.
func (d *Dashboard) OpenPicker(ctx context.Context, a mutation.Assignment) (*PickerState, error) {
	switch a.(type) {
	case mutation.TaskAssignment, mutation.TeamAssignment:
	default:
		return nil, errors.New("picker needs a task or team assignment")
	}
	if err := d.checkActive(); err != nil {
		return nil, err
	}

	d.picker.Reset()
	d.mu.Lock()
	d.pickerState = &pickerState{assignment: a}
	d.mu.Unlock()

	if err := d.picker.Open(ctx); err != nil && !errors.Is(err, view.ErrStale) {
		d.logger.Warn("picker load failed", "error", err)
	}
	return d.Picker(), nil
}

func (d *Dashboard) PickerSearch(ctx context.Context, term string) (*PickerState, error) {
	if !d.pickerOpen() {
		return nil, ErrPickerClosed
	}
	if err := d.picker.Search(ctx, term); err != nil && !errors.Is(err, view.ErrStale) {
		d.logger.Warn("picker search failed", "search", term, "error", err)
	}
	return d.Picker(), nil
}

func (d *Dashboard) PickerPaginate(ctx context.Context, page int) (*PickerState, error) {
	if !d.pickerOpen() {
		return nil, ErrPickerClosed
	}
	if err := d.picker.Paginate(ctx, page); err != nil && !errors.Is(err, view.ErrStale) {
		d.logger.Warn("picker paginate failed", "page", page, "error", err)
	}
	return d.Picker(), nil
}

// PickerSelect applies the assignment to userID. The picker closes on
// success and stays open on failure.
func (d *Dashboard) PickerSelect(ctx context.Context, userID uuid.UUID) (*mutation.Result, error) {
	d.mu.Lock()
	ps := d.pickerState
	d.mu.Unlock()
	if ps == nil {
		return nil, ErrPickerClosed
	}

	res, err := d.mutations.Assign(ctx, ps.assignment, userID)
	if err != nil {
		return nil, err
	}

	d.ClosePicker()
	d.reresolveExpanded(ctx)
	return res, nil
}

func (d *Dashboard) ClosePicker() {
	d.mu.Lock()
	open := d.pickerState != nil
	d.pickerState = nil
	d.mu.Unlock()

	if open {
		d.publisher.Publish(sse.Event{Type: sse.EventPickerClosed, Kind: models.KindUsers})
	}
}

// Picker returns nil when the picker is closed.
func (d *Dashboard) Picker() *PickerState {
	d.mu.Lock()
	ps := d.pickerState
	d.mu.Unlock()
	if ps == nil {
		return nil
	}

	out := &PickerState{View: d.picker.Snapshot()}
	switch a := ps.assignment.(type) {
	case mutation.TaskAssignment:
		taskID := a.TaskID
		out.Target = PickerTargetTask
		out.TaskID = &taskID
		if a.CurrentUserID != uuid.Nil {
			current := a.CurrentUserID
			out.HighlightID = &current
		}
	case mutation.TeamAssignment:
		teamID := a.TeamID
		out.Target = PickerTargetTeam
		out.TeamID = &teamID
	}
	return out
}

func (d *Dashboard) pickerOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pickerState != nil
}
