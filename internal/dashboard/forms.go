package dashboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/mutation"
	"github.com/dimitrije/taskboard/internal/sse"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/google/uuid"
)

// FormState is the single create or edit form currently open.
type FormState struct {
	Kind      models.Kind    `json:"kind"`
	EditingID *uuid.UUID     `json:"editingId,omitempty"`
	Record    any            `json:"record,omitempty"`
	Defaults  map[string]any `json:"defaults,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// PendingDelete is a delete waiting for the operator to confirm it.
type PendingDelete struct {
	Token uuid.UUID   `json:"token"`
	Kind  models.Kind `json:"kind"`
	ID    uuid.UUID   `json:"id"`
	Label string      `json:"label,omitempty"`
}

type pendingDelete struct {
	PendingDelete
	record any
}

// OpenCreateForm opens an empty form for kind. A new team is owned by the
// operator unless the form says otherwise.
func (d *Dashboard) OpenCreateForm(kind models.Kind) (*FormState, error) {
	if _, err := d.collection(kind); err != nil {
		return nil, err
	}
	if err := d.checkActive(); err != nil {
		return nil, err
	}

	form := &FormState{Kind: kind}
	if kind == models.KindTeams {
		if id := operatorID(d.session); id != uuid.Nil {
			form.Defaults = map[string]any{"ownerId": id}
		}
	}

	d.mu.Lock()
	d.form = form
	d.editing = nil
	out := *form
	d.mu.Unlock()
	return &out, nil
}

// OpenEditForm opens the form prefilled with the record. The displayed row is
// used when present, otherwise the record is fetched.
func (d *Dashboard) OpenEditForm(ctx context.Context, kind models.Kind, id uuid.UUID) (*FormState, error) {
	if _, err := d.collection(kind); err != nil {
		return nil, err
	}
	if err := d.checkActive(); err != nil {
		return nil, err
	}

	rec, ok := d.findDisplayed(kind, id)
	if !ok {
		fetched, err := d.fetchRecord(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		rec = fetched
	}

	form := &FormState{Kind: kind, EditingID: &id, Record: rec}
	d.mu.Lock()
	d.form = form
	d.editing = rec
	out := *form
	d.mu.Unlock()
	return &out, nil
}

func (d *Dashboard) CloseForm() {
	d.mu.Lock()
	form := d.form
	d.form = nil
	d.editing = nil
	d.mu.Unlock()

	if form != nil {
		d.publisher.Publish(sse.Event{Type: sse.EventFormClosed, Kind: form.Kind})
	}
}

func (d *Dashboard) Form() *FormState {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.form == nil {
		return nil
	}
	out := *d.form
	return &out
}

// SubmitForm sends the open form. raw is the create payload of the form's
// kind, or the patch payload when editing. On failure the form stays open
// with the error attached.
func (d *Dashboard) SubmitForm(ctx context.Context, raw json.RawMessage) (*mutation.Result, error) {
	d.mu.Lock()
	if d.ended {
		d.mu.Unlock()
		return nil, ErrLoggedOut
	}
	if d.form == nil {
		d.mu.Unlock()
		return nil, ErrNoActiveForm
	}
	form := *d.form
	prior := d.editing
	d.mu.Unlock()

	var (
		res *mutation.Result
		err error
	)
	if form.EditingID == nil {
		payload, derr := d.decodeCreate(form, raw)
		if derr != nil {
			surface{d: d}.FormError(form.Kind, "Invalid form data")
			return nil, derr
		}
		res, err = d.mutations.Create(ctx, form.Kind, payload)
	} else {
		patch, derr := decodeUpdate(form.Kind, raw)
		if derr != nil {
			surface{d: d}.FormError(form.Kind, "Invalid form data")
			return nil, derr
		}
		res, err = d.mutations.Update(ctx, form.Kind, *form.EditingID, patch, prior)
	}
	if err != nil {
		return nil, err
	}

	d.reresolveExpanded(ctx)
	return res, nil
}

// RequestDelete stages a delete. Nothing is sent until ConfirmDelete is called
// with the returned token.
func (d *Dashboard) RequestDelete(kind models.Kind, id uuid.UUID) (*PendingDelete, error) {
	if _, err := d.collection(kind); err != nil {
		return nil, err
	}
	if err := d.checkActive(); err != nil {
		return nil, err
	}

	rec, _ := d.findDisplayed(kind, id)
	pd := &pendingDelete{
		PendingDelete: PendingDelete{Token: uuid.New(), Kind: kind, ID: id, Label: label(rec)},
		record:        rec,
	}

	d.mu.Lock()
	d.pendingDelete = pd
	d.mu.Unlock()

	out := pd.PendingDelete
	return &out, nil
}

func (d *Dashboard) ConfirmDelete(ctx context.Context, token uuid.UUID) error {
	d.mu.Lock()
	pd := d.pendingDelete
	if pd == nil || pd.Token != token {
		d.mu.Unlock()
		return ErrNoPendingDelete
	}
	d.pendingDelete = nil
	d.mu.Unlock()

	err := d.mutations.Delete(ctx, mutation.DeleteRequest{
		Kind:      pd.Kind,
		ID:        pd.ID,
		Confirmed: true,
		Record:    pd.record,
	})
	if err != nil {
		return err
	}

	d.collapse(rowKey{kind: pd.Kind, id: pd.ID})
	d.reresolveExpanded(ctx)
	return nil
}

func (d *Dashboard) CancelDelete() {
	d.mu.Lock()
	d.pendingDelete = nil
	d.mu.Unlock()
}

func (d *Dashboard) DismissNotice() {
	d.mu.Lock()
	d.notice = ""
	d.mu.Unlock()
}

func (d *Dashboard) decodeCreate(form FormState, raw json.RawMessage) (any, error) {
	switch form.Kind {
	case models.KindTeams:
		req, err := decodeTyped[dto.CreateTeamRequest](raw)
		if err != nil {
			return nil, err
		}
		if req.OwnerID == uuid.Nil {
			req.OwnerID = operatorID(d.session)
		}
		return req, nil
	case models.KindProjects:
		return decodeAs[dto.CreateProjectRequest](raw)
	case models.KindTasks:
		return decodeAs[dto.CreateTaskRequest](raw)
	case models.KindUsers:
		return decodeAs[dto.CreateUserRequest](raw)
	}
	return nil, fmt.Errorf("%w: %q", mutation.ErrUnknownKind, form.Kind)
}

func decodeUpdate(kind models.Kind, raw json.RawMessage) (any, error) {
	switch kind {
	case models.KindTeams:
		return decodeAs[dto.UpdateTeamRequest](raw)
	case models.KindProjects:
		return decodeAs[dto.UpdateProjectRequest](raw)
	case models.KindTasks:
		return decodeAs[dto.UpdateTaskRequest](raw)
	case models.KindUsers:
		return decodeAs[dto.UpdateUserRequest](raw)
	}
	return nil, fmt.Errorf("%w: %q", mutation.ErrUnknownKind, kind)
}

func decodeTyped[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, fmt.Errorf("%w: empty payload", ErrInvalidForm)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	return v, nil
}

func decodeAs[T any](raw json.RawMessage) (any, error) {
	v, err := decodeTyped[T](raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}
