package dashboard

import (
	"context"
	"errors"

	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/sse"
	"github.com/dimitrije/taskboard/internal/view"
	"github.com/google/uuid"
)

// publishingView refreshes one collection for the mutation coordinator and
// tells connected streams about the new page. A collection that was never
// opened stays unloaded.
type publishingView struct {
	d    *Dashboard
	kind models.Kind
}

func (p publishingView) Refresh(ctx context.Context) error {
	c, err := p.d.collection(p.kind)
	if err != nil {
		return err
	}
	if !p.d.loaded(p.kind) {
		return nil
	}
	err = c.Refresh(ctx)
	if errors.Is(err, view.ErrStale) {
		return nil
	}
	p.d.publishView(p.kind)
	return err
}

type publishingCounts struct {
	d *Dashboard
}

func (p publishingCounts) Refresh(ctx context.Context) error {
	if err := p.d.counts.Refresh(ctx); err != nil {
		return err
	}
	p.d.publisher.Publish(sse.Event{Type: sse.EventCountsUpdated, Data: p.d.counts.Snapshot()})
	return nil
}

type evicted struct {
	ID uuid.UUID `json:"id"`
}

// publishingEvictor forwards evictions to the resolver and marks matching
// expanded rows for re-resolution.
type publishingEvictor struct {
	d *Dashboard
}

func (p publishingEvictor) EvictTeam(teamID uuid.UUID) {
	p.d.relations.EvictTeam(teamID)
	p.d.markStale(rowKey{kind: models.KindTeams, id: teamID})
	p.d.publisher.Publish(sse.Event{Type: sse.EventRelationsEvicted, Kind: models.KindTeams, Data: evicted{ID: teamID}})
}

func (p publishingEvictor) EvictProject(projectID uuid.UUID) {
	p.d.relations.EvictProject(projectID)
	p.d.markStale(rowKey{kind: models.KindProjects, id: projectID})
	p.d.publisher.Publish(sse.Event{Type: sse.EventRelationsEvicted, Kind: models.KindProjects, Data: evicted{ID: projectID}})
}

func (p publishingEvictor) EvictTask(taskID uuid.UUID) {
	p.d.relations.EvictTask(taskID)
	p.d.markStale(rowKey{kind: models.KindTasks, id: taskID})
	p.d.publisher.Publish(sse.Event{Type: sse.EventRelationsEvicted, Kind: models.KindTasks, Data: evicted{ID: taskID}})
}

func (p publishingEvictor) EvictAssignee(userID uuid.UUID) {
	p.d.relations.EvictAssignee(userID)
	p.d.markAssigneeStale(userID)
	p.d.publisher.Publish(sse.Event{Type: sse.EventRelationsEvicted, Kind: models.KindUsers, Data: evicted{ID: userID}})
}

// surface applies mutation outcomes to the form and notice flags.
type surface struct {
	d *Dashboard
}

func (s surface) CloseForm(kind models.Kind) {
	s.d.mu.Lock()
	closed := s.d.form != nil && s.d.form.Kind == kind
	if closed {
		s.d.form = nil
		s.d.editing = nil
	}
	s.d.mu.Unlock()

	if closed {
		s.d.publisher.Publish(sse.Event{Type: sse.EventFormClosed, Kind: kind})
	}
}

func (s surface) FormError(kind models.Kind, message string) {
	s.d.mu.Lock()
	if s.d.form != nil && s.d.form.Kind == kind {
		s.d.form.Error = message
	}
	s.d.mu.Unlock()

	s.d.publisher.Publish(sse.Event{Type: sse.EventFormError, Kind: kind, Data: message})
}

func (s surface) Notice(message string) {
	s.d.mu.Lock()
	s.d.notice = message
	s.d.mu.Unlock()

	s.d.publisher.Publish(sse.Event{Type: sse.EventNotice, Data: message})
}
