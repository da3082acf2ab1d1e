package dashboard

import (
	"context"
	"fmt"

	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/mutation"
	"github.com/dimitrije/taskboard/internal/relations"
	"github.com/google/uuid"
)

const missingAssignee = "User not found"

type rowKey struct {
	kind models.Kind
	id   uuid.UUID
}

// ExpandedRow is a drilled-down row and what it resolved to.
type ExpandedRow struct {
	Kind       models.Kind         `json:"kind"`
	ID         uuid.UUID           `json:"id"`
	AssigneeID *uuid.UUID          `json:"assigneeId,omitempty"`
	Children   *relations.Children `json:"children,omitempty"`
	Message    string              `json:"message,omitempty"`
	Error      string              `json:"error,omitempty"`

	stale bool
}

// ToggleExpand expands a project (its teams), a team (its users) or a task
// (its assignee), or collapses it when already expanded. It reports whether
// the row is expanded afterwards.
func (d *Dashboard) ToggleExpand(ctx context.Context, kind models.Kind, id uuid.UUID) (*ExpandedRow, bool, error) {
	switch kind {
	case models.KindProjects, models.KindTeams, models.KindTasks:
	case models.KindUsers:
		return nil, false, ErrNotExpandable
	default:
		return nil, false, fmt.Errorf("%w: %q", mutation.ErrUnknownKind, kind)
	}
	if err := d.checkActive(); err != nil {
		return nil, false, err
	}

	key := rowKey{kind: kind, id: id}
	d.mu.Lock()
	if _, ok := d.expanded[key]; ok {
		d.mu.Unlock()
		d.collapse(key)
		return nil, false, nil
	}
	d.mu.Unlock()

	row := &ExpandedRow{Kind: kind, ID: id}
	if err := d.resolveRow(ctx, row); err != nil {
		return nil, false, err
	}

	d.mu.Lock()
	if _, ok := d.expanded[key]; !ok {
		d.expandOrder = append(d.expandOrder, key)
	}
	d.expanded[key] = row
	out := *row
	d.mu.Unlock()
	return &out, true, nil
}

// Expanded returns the expanded rows in the order they were opened.
func (d *Dashboard) Expanded() []ExpandedRow {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]ExpandedRow, 0, len(d.expandOrder))
	for _, key := range d.expandOrder {
		if row, ok := d.expanded[key]; ok {
			out = append(out, *row)
		}
	}
	return out
}

// resolveRow fills in row's children. A resolution failure is recorded on
// the row; only a task that cannot be found at all is returned as an error.
func (d *Dashboard) resolveRow(ctx context.Context, row *ExpandedRow) error {
	ref := relations.ParentRef{Kind: row.Kind, ID: row.ID}
	if row.Kind == models.KindTasks {
		assignee, err := d.taskAssignee(ctx, row.ID)
		if err != nil {
			return err
		}
		ref.AssigneeID = assignee
		row.AssigneeID = &assignee
	}

	children, err := d.relations.ResolveChildren(ctx, ref)
	row.stale = false
	row.Message = ""
	if err != nil {
		row.Children = nil
		row.Error = gateway.Message(err)
		return nil
	}
	row.Error = ""
	row.Children = children
	if row.Kind == models.KindTasks && children.Assignee == nil {
		row.Message = missingAssignee
	}
	return nil
}

// reresolveExpanded re-resolves rows whose relation was evicted.
func (d *Dashboard) reresolveExpanded(ctx context.Context) {
	d.mu.Lock()
	var stale []ExpandedRow
	for _, key := range d.expandOrder {
		if row, ok := d.expanded[key]; ok && row.stale {
			stale = append(stale, *row)
		}
	}
	d.mu.Unlock()

	for i := range stale {
		row := &stale[i]
		if err := d.resolveRow(ctx, row); err != nil {
			d.logger.Warn("dropping expanded row", "kind", row.Kind.String(), "id", row.ID, "error", err)
			d.collapse(rowKey{kind: row.Kind, id: row.ID})
			continue
		}
		d.mu.Lock()
		key := rowKey{kind: row.Kind, id: row.ID}
		if _, ok := d.expanded[key]; ok {
			d.expanded[key] = row
		}
		d.mu.Unlock()
	}
}

func (d *Dashboard) collapse(key rowKey) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.expanded, key)
	for i, k := range d.expandOrder {
		if k == key {
			d.expandOrder = append(d.expandOrder[:i], d.expandOrder[i+1:]...)
			break
		}
	}
}

func (d *Dashboard) markStale(key rowKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if row, ok := d.expanded[key]; ok {
		row.stale = true
	}
}

func (d *Dashboard) markAssigneeStale(userID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, row := range d.expanded {
		if key.kind == models.KindTasks && row.AssigneeID != nil && *row.AssigneeID == userID {
			row.stale = true
		}
	}
}

// taskAssignee returns who task id points at. The displayed task wins; a task
// that is not displayed is fetched only when the resolver no longer holds its
// assignee from an earlier expansion.
func (d *Dashboard) taskAssignee(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if t, ok := d.tasks.Find(func(t models.Task) bool { return t.ID == id }); ok {
		d.rememberAssignee(id, t.AssignedTo)
		return t.AssignedTo, nil
	}

	d.mu.Lock()
	known, ok := d.taskAssignees[id]
	d.mu.Unlock()
	if ok && d.relations.Cached(relations.ParentRef{Kind: models.KindTasks, ID: id, AssigneeID: known}) {
		return known, nil
	}

	t, err := d.stores.Tasks.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	d.rememberAssignee(id, t.AssignedTo)
	return t.AssignedTo, nil
}

func (d *Dashboard) rememberAssignee(taskID, userID uuid.UUID) {
	d.mu.Lock()
	d.taskAssignees[taskID] = userID
	d.mu.Unlock()
}

// findDisplayed looks id up in the rows kind's view currently shows.
func (d *Dashboard) findDisplayed(kind models.Kind, id uuid.UUID) (any, bool) {
	switch kind {
	case models.KindTeams:
		if t, ok := d.teams.Find(func(t models.Team) bool { return t.ID == id }); ok {
			return &t, true
		}
	case models.KindProjects:
		if p, ok := d.projects.Find(func(p models.Project) bool { return p.ID == id }); ok {
			return &p, true
		}
	case models.KindTasks:
		if t, ok := d.tasks.Find(func(t models.Task) bool { return t.ID == id }); ok {
			return &t, true
		}
	case models.KindUsers:
		if u, ok := d.users.Find(func(u models.User) bool { return u.ID == id }); ok {
			return &u, true
		}
	}
	return nil, false
}

func (d *Dashboard) fetchRecord(ctx context.Context, kind models.Kind, id uuid.UUID) (any, error) {
	switch kind {
	case models.KindTeams:
		return d.stores.Teams.GetByID(ctx, id)
	case models.KindProjects:
		return d.stores.Projects.GetByID(ctx, id)
	case models.KindTasks:
		return d.stores.Tasks.GetByID(ctx, id)
	case models.KindUsers:
		return d.stores.Users.GetByID(ctx, id)
	}
	return nil, fmt.Errorf("%w: %q", mutation.ErrUnknownKind, kind)
}

func label(rec any) string {
	switch r := rec.(type) {
	case *models.Team:
		return r.Name
	case *models.Project:
		return r.Name
	case *models.Task:
		return r.Title
	case *models.User:
		return r.Name
	}
	return ""
}
