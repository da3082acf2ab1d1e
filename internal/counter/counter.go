package counter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/models"
	"golang.org/x/sync/errgroup"
)

// Sources names the count endpoint of every kind.
type Sources struct {
	Teams    gateway.Counter
	Projects gateway.Counter
	Tasks    gateway.Counter
	Users    gateway.Counter
}

// FromStores picks the counters out of a full store set.
func FromStores(s gateway.Stores) Sources {
	return Sources{
		Teams:    s.Teams,
		Projects: s.Projects,
		Tasks:    s.Tasks,
		Users:    s.Users,
	}
}

// Counter keeps the dashboard totals. A refresh either replaces all four
// numbers or none of them.
type Counter struct {
	src    Sources
	logger *slog.Logger

	mu     sync.RWMutex
	snap   models.CountSnapshot
	loaded bool
}

func New(src Sources, logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{src: src, logger: logger.With("component", "counter")}
}

func (c *Counter) Refresh(ctx context.Context) error {
	var next models.CountSnapshot

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(kind models.Kind, src gateway.Counter, dst *int) {
		g.Go(func() error {
			n, err := src.Count(gctx)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", kind, err)
			}
			*dst = n
			return nil
		})
	}
	fetch(models.KindTeams, c.src.Teams, &next.Teams)
	fetch(models.KindProjects, c.src.Projects, &next.Projects)
	fetch(models.KindTasks, c.src.Tasks, &next.Tasks)
	fetch(models.KindUsers, c.src.Users, &next.Users)

	if err := g.Wait(); err != nil {
		c.logger.Error("failed to refresh counts", "error", err)
		return err
	}

	c.mu.Lock()
	c.snap = next
	c.loaded = true
	c.mu.Unlock()

	c.logger.Debug("counts refreshed",
		"teams", next.Teams, "projects", next.Projects, "tasks", next.Tasks, "users", next.Users)
	return nil
}

func (c *Counter) Snapshot() models.CountSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Counter) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
