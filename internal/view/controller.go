package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/pkg/dto"
)

// ErrStale is returned to a Load caller whose response was superseded by a
// later request; the response was not applied.
var ErrStale = errors.New("response superseded by a newer request")

// Snapshot is a point-in-time copy of a controller's state.
type Snapshot[T any] struct {
	Kind      models.Kind       `json:"kind"`
	State     State             `json:"state"`
	Window    models.PageWindow `json:"window"`
	Items     []T               `json:"items"`
	Loaded    bool              `json:"loaded"`
	LastError string            `json:"lastError,omitempty"`
}

// Controller owns the paginated, searchable fetch state of one entity kind.
// Every Load takes a sequence number and only the latest issued one may write
// the window, so overlapping requests resolve to the most recent intent.
type Controller[T any] struct {
	kind     models.Kind
	lister   gateway.Lister[T]
	pageSize int
	logger   *slog.Logger

	mu      sync.Mutex
	seq     uint64
	page    int
	search  string
	state   State
	window  models.PageWindow
	items   []T
	loaded  bool
	lastErr error
}

func New[T any](kind models.Kind, lister gateway.Lister[T], pageSize int, logger *slog.Logger) *Controller[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T]{
		kind:     kind,
		lister:   lister,
		pageSize: pageSize,
		logger:   logger.With("component", "view", "kind", kind.String()),
		page:     1,
		window:   models.NewPageWindow(pageSize),
		items:    []T{},
	}
}

func (c *Controller[T]) Kind() models.Kind {
	return c.kind
}

// Open performs the lazy first load. Reopening a loaded view is a no-op until
// Invalidate is called.
func (c *Controller[T]) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return nil
	}
	page, search := c.page, c.search
	c.mu.Unlock()

	return c.Load(ctx, page, search)
}

// Load fetches page under search and, if still the latest request, replaces
// the window and items with the server's answer. Page is sent as given; only
// a non-positive page falls back to 1. Range clamping is left to the server.
func (c *Controller[T]) Load(ctx context.Context, page int, search string) error {
	c.mu.Lock()
	if page < 1 {
		page = 1
	}
	c.seq++
	seq := c.seq
	c.page = page
	c.search = search
	c.state = StateLoading
	c.mu.Unlock()

	resp, err := c.lister.List(ctx, gateway.ListParams{Page: page, Limit: c.pageSize, Search: search})

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.logger.Debug("discarding superseded response", "seq", seq, "latest", c.seq, "page", page, "search", search)
		return ErrStale
	}

	if err != nil {
		c.state = StateError
		c.lastErr = err
		c.logger.Error("failed to load collection", "page", page, "search", search, "seq", seq, "error", err)
		return fmt.Errorf("failed to load %s: %w", c.kind, err)
	}

	c.apply(resp, page, search)
	return nil
}

func (c *Controller[T]) apply(resp *dto.ListResponse[T], page int, search string) {
	w := models.PageWindow{
		CurrentPage:  resp.Page,
		TotalPages:   resp.TotalPages,
		TotalItems:   resp.Total,
		ItemsPerPage: resp.Limit,
		Search:       search,
	}
	if w.CurrentPage < 1 {
		w.CurrentPage = page
	}
	if w.ItemsPerPage < 1 {
		w.ItemsPerPage = c.pageSize
	}

	items := make([]T, len(resp.Data))
	copy(items, resp.Data)

	c.window = w
	c.items = items
	c.page = w.CurrentPage
	c.state = StateReady
	c.loaded = true
	c.lastErr = nil
}

// Search restarts the view at page 1 with term.
func (c *Controller[T]) Search(ctx context.Context, term string) error {
	return c.Load(ctx, 1, term)
}

// Paginate moves to page under the most recently requested search term.
func (c *Controller[T]) Paginate(ctx context.Context, page int) error {
	c.mu.Lock()
	search := c.search
	c.mu.Unlock()
	return c.Load(ctx, page, search)
}

// Refresh reloads the most recently requested page and term.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	page, search := c.page, c.search
	c.mu.Unlock()
	return c.Load(ctx, page, search)
}

// Invalidate forces the next Open to refetch.
func (c *Controller[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

// Reset discards all state, including any in-flight request's right to apply.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.page = 1
	c.search = ""
	c.state = StateUnloaded
	c.window = models.NewPageWindow(c.pageSize)
	c.items = []T{}
	c.loaded = false
	c.lastErr = nil
}

func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller[T]) Window() models.PageWindow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window
}

func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the first displayed item matching match.
func (c *Controller[T]) Find(match func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]T, len(c.items))
	copy(items, c.items)
	snap := Snapshot[T]{
		Kind:   c.kind,
		State:  c.state,
		Window: c.window,
		Items:  items,
		Loaded: c.loaded,
	}
	if c.lastErr != nil {
		snap.LastError = gateway.Message(c.lastErr)
	}
	return snap
}
