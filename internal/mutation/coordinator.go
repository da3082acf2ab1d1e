package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/google/uuid"
)

var (
	ErrConfirmationRequired = errors.New("delete requires confirmation")
	ErrUnknownKind          = errors.New("unknown entity kind")
	ErrPayloadType          = errors.New("payload does not match entity kind")
)

// Surface receives the UI side effects of a mutation.
type Surface interface {
	CloseForm(kind models.Kind)
	FormError(kind models.Kind, message string)
	Notice(message string)
}

// Refresher reloads a piece of derived state from the API.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Evictor drops memoized relationships.
type Evictor interface {
	EvictTeam(teamID uuid.UUID)
	EvictProject(projectID uuid.UUID)
	EvictTask(taskID uuid.UUID)
	EvictAssignee(userID uuid.UUID)
}

// DeleteRequest names the record to delete. Record is the row as displayed
// and may be nil, in which case it is fetched to learn what to evict.
type DeleteRequest struct {
	Kind      models.Kind
	ID        uuid.UUID
	Confirmed bool
	Record    any
}

// Result is the record returned by the API for a successful write.
type Result struct {
	Kind   models.Kind `json:"kind"`
	ID     uuid.UUID   `json:"id"`
	Record any         `json:"record,omitempty"`
}

type Config struct {
	Stores    gateway.Stores
	Views     map[models.Kind]Refresher
	Counts    Refresher
	Relations Evictor
	Surface   Surface
	Logger    *slog.Logger
}

// Coordinator is the only writer. After every write it decides which
// collection, totals and relationships have gone stale.
type Coordinator struct {
	stores    gateway.Stores
	views     map[models.Kind]Refresher
	counts    Refresher
	relations Evictor
	surface   Surface
	logger    *slog.Logger
}

func New(cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		stores:    cfg.Stores,
		views:     cfg.Views,
		counts:    cfg.Counts,
		relations: cfg.Relations,
		surface:   cfg.Surface,
		logger:    logger.With("component", "mutation"),
	}
}

// Create sends payload, which must be the create request type of kind.
func (c *Coordinator) Create(ctx context.Context, kind models.Kind, payload any) (*Result, error) {
	res, err := c.create(ctx, kind, payload)
	if err != nil {
		if !errors.Is(err, ErrUnknownKind) && !errors.Is(err, ErrPayloadType) {
			c.surface.FormError(kind, formMessage(kind, err))
		}
		c.logger.Warn("create failed", "kind", kind.String(), "error", err)
		return nil, err
	}

	c.surface.CloseForm(kind)
	c.refreshView(ctx, kind)
	c.refreshCounts(ctx)
	c.logger.Info("record created", "kind", kind.String(), "id", res.ID)
	return res, nil
}

func (c *Coordinator) create(ctx context.Context, kind models.Kind, payload any) (*Result, error) {
	switch kind {
	case models.KindTeams:
		req, ok := payload.(dto.CreateTeamRequest)
		if !ok {
			return nil, payloadError(kind, payload)
		}
		team, err := c.stores.Teams.Create(ctx, req)
		if err != nil {
			return nil, err
		}
		c.relations.EvictProject(team.ProjectID)
		return &Result{Kind: kind, ID: team.ID, Record: team}, nil

	case models.KindProjects:
		req, ok := payload.(dto.CreateProjectRequest)
		if !ok {
			return nil, payloadError(kind, payload)
		}
		project, err := c.stores.Projects.Create(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: kind, ID: project.ID, Record: project}, nil

	case models.KindTasks:
		req, ok := payload.(dto.CreateTaskRequest)
		if !ok {
			return nil, payloadError(kind, payload)
		}
		task, err := c.stores.Tasks.Create(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: kind, ID: task.ID, Record: task}, nil

	case models.KindUsers:
		req, ok := payload.(dto.CreateUserRequest)
		if !ok {
			return nil, payloadError(kind, payload)
		}
		user, err := c.stores.Users.Create(ctx, req)
		if err != nil {
			return nil, err
		}
		if user.TeamID != nil {
			c.relations.EvictTeam(*user.TeamID)
		}
		return &Result{Kind: kind, ID: user.ID, Record: user}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Update sends patch, which must be the update request type of kind. prior is
// the record as displayed; when nil and the patch moves the record to another
// parent, the record is fetched first so the old parent can be evicted.
func (c *Coordinator) Update(ctx context.Context, kind models.Kind, id uuid.UUID, patch any, prior any) (*Result, error) {
	res, err := c.update(ctx, kind, id, patch, prior)
	if err != nil {
		if !errors.Is(err, ErrUnknownKind) && !errors.Is(err, ErrPayloadType) {
			c.surface.FormError(kind, formMessage(kind, err))
		}
		c.logger.Warn("update failed", "kind", kind.String(), "id", id, "error", err)
		return nil, err
	}

	c.surface.CloseForm(kind)
	c.refreshView(ctx, kind)
	c.logger.Info("record updated", "kind", kind.String(), "id", id)
	return res, nil
}

func (c *Coordinator) update(ctx context.Context, kind models.Kind, id uuid.UUID, patch any, prior any) (*Result, error) {
	switch kind {
	case models.KindTeams:
		req, ok := patch.(dto.UpdateTeamRequest)
		if !ok {
			return nil, payloadError(kind, patch)
		}
		var old *models.Team
		if req.ProjectID != nil {
			old = priorRecord(ctx, c, prior, id, c.stores.Teams)
		}
		team, err := c.stores.Teams.Update(ctx, id, req)
		if err != nil {
			return nil, err
		}
		if old != nil {
			c.relations.EvictProject(old.ProjectID)
		}
		c.relations.EvictProject(team.ProjectID)
		return &Result{Kind: kind, ID: team.ID, Record: team}, nil

	case models.KindProjects:
		req, ok := patch.(dto.UpdateProjectRequest)
		if !ok {
			return nil, payloadError(kind, patch)
		}
		project, err := c.stores.Projects.Update(ctx, id, req)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: kind, ID: project.ID, Record: project}, nil

	case models.KindTasks:
		req, ok := patch.(dto.UpdateTaskRequest)
		if !ok {
			return nil, payloadError(kind, patch)
		}
		task, err := c.stores.Tasks.Update(ctx, id, req)
		if err != nil {
			return nil, err
		}
		c.relations.EvictTask(task.ID)
		return &Result{Kind: kind, ID: task.ID, Record: task}, nil

	case models.KindUsers:
		req, ok := patch.(dto.UpdateUserRequest)
		if !ok {
			return nil, payloadError(kind, patch)
		}
		req.DropBlankPassword()
		var old *models.User
		if req.TeamID != nil {
			old = priorRecord(ctx, c, prior, id, c.stores.Users)
		}
		user, err := c.stores.Users.Update(ctx, id, req)
		if err != nil {
			return nil, err
		}
		if old != nil && old.TeamID != nil {
			c.relations.EvictTeam(*old.TeamID)
		}
		if user.TeamID != nil {
			c.relations.EvictTeam(*user.TeamID)
		}
		c.relations.EvictAssignee(user.ID)
		return &Result{Kind: kind, ID: user.ID, Record: user}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Delete removes a record once the request is confirmed. A failure is shown
// as a blocking notice and the list is left as it was.
func (c *Coordinator) Delete(ctx context.Context, req DeleteRequest) error {
	if !req.Confirmed {
		return ErrConfirmationRequired
	}

	if err := c.delete(ctx, req); err != nil {
		if !errors.Is(err, ErrUnknownKind) {
			c.surface.Notice(fmt.Sprintf("Failed to delete %s: %s", req.Kind.Singular(), gateway.Message(err)))
		}
		c.logger.Warn("delete failed", "kind", req.Kind.String(), "id", req.ID, "error", err)
		return err
	}

	c.refreshView(ctx, req.Kind)
	c.refreshCounts(ctx)
	c.logger.Info("record deleted", "kind", req.Kind.String(), "id", req.ID)
	return nil
}

func (c *Coordinator) delete(ctx context.Context, req DeleteRequest) error {
	switch req.Kind {
	case models.KindTeams:
		old := priorRecord(ctx, c, req.Record, req.ID, c.stores.Teams)
		if err := c.stores.Teams.Delete(ctx, req.ID); err != nil {
			return err
		}
		c.relations.EvictTeam(req.ID)
		if old != nil {
			c.relations.EvictProject(old.ProjectID)
		}
		return nil

	case models.KindProjects:
		if err := c.stores.Projects.Delete(ctx, req.ID); err != nil {
			return err
		}
		c.relations.EvictProject(req.ID)
		return nil

	case models.KindTasks:
		if err := c.stores.Tasks.Delete(ctx, req.ID); err != nil {
			return err
		}
		c.relations.EvictTask(req.ID)
		return nil

	case models.KindUsers:
		old := priorRecord(ctx, c, req.Record, req.ID, c.stores.Users)
		if err := c.stores.Users.Delete(ctx, req.ID); err != nil {
			return err
		}
		c.relations.EvictAssignee(req.ID)
		if old != nil && old.TeamID != nil {
			c.relations.EvictTeam(*old.TeamID)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
}

// Assign applies a picker selection.
func (c *Coordinator) Assign(ctx context.Context, a Assignment, userID uuid.UUID) (*Result, error) {
	var (
		kind models.Kind
		res  *Result
		err  error
	)
	switch a := a.(type) {
	case TaskAssignment:
		kind = models.KindTasks
		res, err = c.update(ctx, kind, a.TaskID, dto.UpdateTaskRequest{AssignedTo: &userID}, nil)
	case TeamAssignment:
		kind = models.KindUsers
		res, err = c.update(ctx, kind, userID, dto.UpdateUserRequest{TeamID: &a.TeamID}, nil)
	default:
		return nil, fmt.Errorf("unsupported assignment %T", a)
	}
	if err != nil {
		c.surface.Notice("Failed to assign user: " + gateway.Message(err))
		c.logger.Warn("assignment failed", "kind", kind.String(), "user_id", userID, "error", err)
		return nil, err
	}

	c.refreshView(ctx, kind)
	c.logger.Info("user assigned", "kind", kind.String(), "id", res.ID, "user_id", userID)
	return res, nil
}

func (c *Coordinator) refreshView(ctx context.Context, kind models.Kind) {
	v, ok := c.views[kind]
	if !ok {
		return
	}
	if err := v.Refresh(ctx); err != nil {
		c.logger.Warn("failed to refresh view after mutation", "kind", kind.String(), "error", err)
	}
}

func (c *Coordinator) refreshCounts(ctx context.Context) {
	if c.counts == nil {
		return
	}
	if err := c.counts.Refresh(ctx); err != nil {
		c.logger.Warn("failed to refresh counts after mutation", "error", err)
	}
}

// priorRecord returns the displayed record when it has the right type, and
// otherwise fetches it. A failed fetch only costs the old-parent eviction.
func priorRecord[T any](ctx context.Context, c *Coordinator, displayed any, id uuid.UUID, getter gateway.Getter[T]) *T {
	switch rec := displayed.(type) {
	case *T:
		if rec != nil {
			return rec
		}
	case T:
		return &rec
	}
	rec, err := getter.GetByID(ctx, id)
	if err != nil {
		c.logger.Warn("failed to load prior record", "id", id, "error", err)
		return nil
	}
	return rec
}

func payloadError(kind models.Kind, payload any) error {
	return fmt.Errorf("%w: %T for %s", ErrPayloadType, payload, kind)
}

// formMessage is the inline text shown under a form: the server's message
// when it sent one, otherwise a generic line for the kind.
func formMessage(kind models.Kind, err error) string {
	var (
		ve *gateway.ValidationError
		nf *gateway.NotFoundError
	)
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	if errors.As(err, &nf) && nf.Message != "" {
		return nf.Message
	}
	if gateway.IsTransport(err) {
		return gateway.Message(err)
	}
	return "Failed to save " + kind.Singular()
}
