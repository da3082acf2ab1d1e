package dashboard

import (
	"context"
	"errors"

	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/sse"
	"github.com/dimitrije/taskboard/internal/view"
)

// OpenView makes kind the visible drawer. The collection is fetched on the
// first opening only.
func (d *Dashboard) OpenView(ctx context.Context, kind models.Kind) (any, error) {
	c, err := d.collection(kind)
	if err != nil {
		return nil, err
	}
	if err := d.checkActive(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.drawer = kind
	d.mu.Unlock()

	d.settle(kind, c.Open(ctx))
	return d.ViewSnapshot(kind)
}

// CloseView hides the drawer. Loaded data is kept for the next opening.
func (d *Dashboard) CloseView() {
	d.mu.Lock()
	d.drawer = ""
	d.mu.Unlock()
}

func (d *Dashboard) Search(ctx context.Context, kind models.Kind, term string) (any, error) {
	c, err := d.collection(kind)
	if err != nil {
		return nil, err
	}
	if err := d.checkActive(); err != nil {
		return nil, err
	}

	d.settle(kind, c.Search(ctx, term))
	return d.ViewSnapshot(kind)
}

func (d *Dashboard) Paginate(ctx context.Context, kind models.Kind, page int) (any, error) {
	c, err := d.collection(kind)
	if err != nil {
		return nil, err
	}
	if err := d.checkActive(); err != nil {
		return nil, err
	}

	d.settle(kind, c.Paginate(ctx, page))
	return d.ViewSnapshot(kind)
}

// ViewSnapshot returns the typed snapshot of kind's controller.
func (d *Dashboard) ViewSnapshot(kind models.Kind) (any, error) {
	switch kind {
	case models.KindTeams:
		return d.teams.Snapshot(), nil
	case models.KindProjects:
		return d.projects.Snapshot(), nil
	case models.KindTasks:
		return d.tasks.Snapshot(), nil
	case models.KindUsers:
		return d.users.Snapshot(), nil
	}
	_, err := d.collection(kind)
	return nil, err
}

// settle publishes the outcome of a load. Failures stay in the controller's
// snapshot; a superseded response needs no event since the newer one will
// publish.
func (d *Dashboard) settle(kind models.Kind, err error) {
	if errors.Is(err, view.ErrStale) {
		return
	}
	if err != nil {
		d.logger.Warn("collection load failed", "kind", kind.String(), "error", err)
	}
	d.publishView(kind)
}

func (d *Dashboard) publishView(kind models.Kind) {
	snap, err := d.ViewSnapshot(kind)
	if err != nil {
		return
	}
	d.publisher.Publish(sse.Event{Type: sse.EventViewUpdated, Kind: kind, Data: snap})
}

func (d *Dashboard) loaded(kind models.Kind) bool {
	c, err := d.collection(kind)
	if err != nil {
		return false
	}
	return c.Loaded()
}
