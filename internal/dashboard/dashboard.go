package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dimitrije/taskboard/internal/counter"
	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/mutation"
	"github.com/dimitrije/taskboard/internal/relations"
	"github.com/dimitrije/taskboard/internal/session"
	"github.com/dimitrije/taskboard/internal/sse"
	"github.com/dimitrije/taskboard/internal/view"
	"github.com/google/uuid"
)

var (
	ErrNoActiveForm    = errors.New("no form is open")
	ErrInvalidForm     = errors.New("invalid form data")
	ErrNoPendingDelete = errors.New("no delete is awaiting confirmation")
	ErrPickerClosed    = errors.New("user picker is not open")
	ErrNotExpandable   = errors.New("rows of this kind cannot be expanded")
	ErrEmptyQuery      = errors.New("chat query is empty")
	ErrLoggedOut       = errors.New("dashboard session has ended")
)

// Publisher receives dashboard change notifications.
type Publisher interface {
	Publish(ev sse.Event)
}

// Session is the credential holder the dashboard was started with.
type Session interface {
	Operator() session.Operator
	Logout()
}

type Config struct {
	Stores             gateway.Stores
	Chat               gateway.Chatter
	Session            Session
	Publisher          Publisher
	Logger             *slog.Logger
	APIURL             string
	PageSize           int
	PickerPageSize     int
	RelationFetchLimit int

	// Lookup overrides how relationship children are found.
	Lookup relations.ChildLookup
}

// Dashboard is the orchestration root for one operator session. It owns the
// UI flags and routes intents to the controllers, counter, resolver and
// mutation coordinator.
type Dashboard struct {
	stores    gateway.Stores
	chat      gateway.Chatter
	session   Session
	publisher Publisher
	logger    *slog.Logger
	apiURL    string

	teams    *view.Controller[models.Team]
	projects *view.Controller[models.Project]
	tasks    *view.Controller[models.Task]
	users    *view.Controller[models.User]
	picker   *view.Controller[models.User]

	counts    *counter.Counter
	relations *relations.Resolver
	mutations *mutation.Coordinator

	mu            sync.Mutex
	ended         bool
	drawer        models.Kind
	form          *FormState
	editing       any
	expanded      map[rowKey]*ExpandedRow
	expandOrder   []rowKey
	taskAssignees map[uuid.UUID]uuid.UUID
	pendingDelete *pendingDelete
	notice        string
	pickerState   *pickerState
	chatSession   string
	chatLog       []ChatMessage
}

func New(cfg Config) *Dashboard {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = discard{}
	}
	pickerSize := cfg.PickerPageSize
	if pickerSize <= 0 {
		pickerSize = 5
	}

	d := &Dashboard{
		stores:    cfg.Stores,
		chat:      cfg.Chat,
		session:   cfg.Session,
		publisher: publisher,
		logger:    logger.With("component", "dashboard"),
		apiURL:    cfg.APIURL,
		expanded:  make(map[rowKey]*ExpandedRow),

		taskAssignees: make(map[uuid.UUID]uuid.UUID),
	}

	d.teams = view.New[models.Team](models.KindTeams, cfg.Stores.Teams, cfg.PageSize, logger)
	d.projects = view.New[models.Project](models.KindProjects, cfg.Stores.Projects, cfg.PageSize, logger)
	d.tasks = view.New[models.Task](models.KindTasks, cfg.Stores.Tasks, cfg.PageSize, logger)
	d.users = view.New[models.User](models.KindUsers, cfg.Stores.Users, cfg.PageSize, logger)
	d.picker = view.New[models.User](models.KindUsers, cfg.Stores.Users, pickerSize, logger.With("view", "picker"))

	d.counts = counter.New(counter.FromStores(cfg.Stores), logger)

	lookup := cfg.Lookup
	if lookup == nil {
		lookup = &relations.ScanLookup{
			Users:  cfg.Stores.Users,
			Teams:  cfg.Stores.Teams,
			Limit:  cfg.RelationFetchLimit,
			Logger: logger,
		}
	}
	d.relations = relations.NewResolver(lookup, cfg.Stores.Users, logger)

	views := make(map[models.Kind]mutation.Refresher, len(models.Kinds))
	for _, k := range models.Kinds {
		views[k] = publishingView{d: d, kind: k}
	}
	d.mutations = mutation.New(mutation.Config{
		Stores:    cfg.Stores,
		Views:     views,
		Counts:    publishingCounts{d: d},
		Relations: publishingEvictor{d: d},
		Surface:   surface{d: d},
		Logger:    logger,
	})

	return d
}

// Start loads the dashboard totals. A failure is logged and leaves the
// counts unloaded; it does not prevent the session from being used.
func (d *Dashboard) Start(ctx context.Context) error {
	if err := d.checkActive(); err != nil {
		return err
	}
	if err := (publishingCounts{d: d}).Refresh(ctx); err != nil {
		d.logger.Warn("initial count refresh failed", "error", err)
	}
	return nil
}

func (d *Dashboard) Counts() (models.CountSnapshot, bool) {
	return d.counts.Snapshot(), d.counts.Loaded()
}

// RefreshCounts reloads the totals on demand.
func (d *Dashboard) RefreshCounts(ctx context.Context) (models.CountSnapshot, error) {
	if err := d.checkActive(); err != nil {
		return models.CountSnapshot{}, err
	}
	err := (publishingCounts{d: d}).Refresh(ctx)
	return d.counts.Snapshot(), err
}

// Logout ends the session and drops every piece of cached state.
func (d *Dashboard) Logout() {
	d.mu.Lock()
	if d.ended {
		d.mu.Unlock()
		return
	}
	d.ended = true
	d.drawer = ""
	d.form = nil
	d.editing = nil
	clear(d.expanded)
	d.expandOrder = nil
	clear(d.taskAssignees)
	d.pendingDelete = nil
	d.notice = ""
	d.pickerState = nil
	d.chatSession = ""
	d.chatLog = nil
	d.mu.Unlock()

	if d.session != nil {
		d.session.Logout()
	}
	d.teams.Reset()
	d.projects.Reset()
	d.tasks.Reset()
	d.users.Reset()
	d.picker.Reset()
	d.relations.Reset()

	d.logger.Info("operator logged out")
	d.publisher.Publish(sse.Event{Type: sse.EventLoggedOut})
}

func (d *Dashboard) checkActive() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ended {
		return ErrLoggedOut
	}
	return nil
}

func (d *Dashboard) collection(kind models.Kind) (collection, error) {
	switch kind {
	case models.KindTeams:
		return d.teams, nil
	case models.KindProjects:
		return d.projects, nil
	case models.KindTasks:
		return d.tasks, nil
	case models.KindUsers:
		return d.users, nil
	}
	return nil, fmt.Errorf("%w: %q", mutation.ErrUnknownKind, kind)
}

// collection is the kind-independent part of a view controller.
type collection interface {
	Kind() models.Kind
	Open(ctx context.Context) error
	Search(ctx context.Context, term string) error
	Paginate(ctx context.Context, page int) error
	Refresh(ctx context.Context) error
	Invalidate()
	Reset()
	Loaded() bool
}

func operatorID(s Session) uuid.UUID {
	if s == nil {
		return uuid.Nil
	}
	return s.Operator().ID
}

type discard struct{}

func (discard) Publish(sse.Event) {}
