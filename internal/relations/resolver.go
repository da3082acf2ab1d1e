package relations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ParentRef identifies an expandable row. AssigneeID is only read for tasks.
type ParentRef struct {
	Kind       models.Kind
	ID         uuid.UUID
	AssigneeID uuid.UUID
}

// Children is the resolved content of an expanded row. Exactly one of the
// fields is meaningful, depending on the parent's kind. A task whose assignee
// no longer exists resolves with Assignee nil.
type Children struct {
	Users    []models.User `json:"users,omitempty"`
	Teams    []models.Team `json:"teams,omitempty"`
	Assignee *models.User  `json:"assignee,omitempty"`
}

type assignee struct {
	userID uuid.UUID
	user   *models.User
}

// Resolver memoizes parent to children lookups. An entry, once present, is
// served from memory until the Mutation Coordinator evicts it.
type Resolver struct {
	lookup ChildLookup
	users  gateway.Getter[models.User]
	logger *slog.Logger
	group  singleflight.Group

	mu           sync.Mutex
	gen          uint64
	teamUsers    map[uuid.UUID][]models.User
	projectTeams map[uuid.UUID][]models.Team
	assignees    map[uuid.UUID]assignee
}

func NewResolver(lookup ChildLookup, users gateway.Getter[models.User], logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		lookup:       lookup,
		users:        users,
		logger:       logger.With("component", "relations"),
		teamUsers:    make(map[uuid.UUID][]models.User),
		projectTeams: make(map[uuid.UUID][]models.Team),
		assignees:    make(map[uuid.UUID]assignee),
	}
}

func (r *Resolver) TeamUsers(ctx context.Context, teamID uuid.UUID) ([]models.User, error) {
	r.mu.Lock()
	if users, ok := r.teamUsers[teamID]; ok {
		r.mu.Unlock()
		return users, nil
	}
	gen := r.gen
	r.mu.Unlock()

	v, err, _ := r.group.Do(key(models.KindTeams, teamID), func() (any, error) {
		return r.lookup.TeamUsers(ctx, teamID)
	})
	if err != nil {
		r.logger.Warn("failed to resolve team members", "team_id", teamID, "error", err)
		return nil, err
	}
	users := v.([]models.User)

	r.mu.Lock()
	if r.gen == gen {
		r.teamUsers[teamID] = users
	}
	r.mu.Unlock()
	return users, nil
}

func (r *Resolver) ProjectTeams(ctx context.Context, projectID uuid.UUID) ([]models.Team, error) {
	r.mu.Lock()
	if teams, ok := r.projectTeams[projectID]; ok {
		r.mu.Unlock()
		return teams, nil
	}
	gen := r.gen
	r.mu.Unlock()

	v, err, _ := r.group.Do(key(models.KindProjects, projectID), func() (any, error) {
		return r.lookup.ProjectTeams(ctx, projectID)
	})
	if err != nil {
		r.logger.Warn("failed to resolve project teams", "project_id", projectID, "error", err)
		return nil, err
	}
	teams := v.([]models.Team)

	r.mu.Lock()
	if r.gen == gen {
		r.projectTeams[projectID] = teams
	}
	r.mu.Unlock()
	return teams, nil
}

// TaskAssignee resolves the user a task points at. A cached entry is reused
// only while the task still points at the same user.
func (r *Resolver) TaskAssignee(ctx context.Context, taskID, assigneeID uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	if a, ok := r.assignees[taskID]; ok && a.userID == assigneeID {
		r.mu.Unlock()
		return a.user, nil
	}
	gen := r.gen
	r.mu.Unlock()

	v, err, _ := r.group.Do(key(models.KindTasks, taskID)+"/"+assigneeID.String(), func() (any, error) {
		u, err := r.users.GetByID(ctx, assigneeID)
		if gateway.IsNotFound(err) {
			return (*models.User)(nil), nil
		}
		return u, err
	})
	if err != nil {
		r.logger.Warn("failed to resolve task assignee", "task_id", taskID, "user_id", assigneeID, "error", err)
		return nil, err
	}
	user := v.(*models.User)

	r.mu.Lock()
	if r.gen == gen {
		r.assignees[taskID] = assignee{userID: assigneeID, user: user}
	}
	r.mu.Unlock()
	return user, nil
}

func (r *Resolver) ResolveChildren(ctx context.Context, ref ParentRef) (*Children, error) {
	switch ref.Kind {
	case models.KindTeams:
		users, err := r.TeamUsers(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return &Children{Users: users}, nil
	case models.KindProjects:
		teams, err := r.ProjectTeams(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return &Children{Teams: teams}, nil
	case models.KindTasks:
		u, err := r.TaskAssignee(ctx, ref.ID, ref.AssigneeID)
		if err != nil {
			return nil, err
		}
		return &Children{Assignee: u}, nil
	}
	return nil, fmt.Errorf("%s rows have no expandable relation", ref.Kind)
}

// Cached reports whether ref would be served without a fetch.
func (r *Resolver) Cached(ref ParentRef) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ref.Kind {
	case models.KindTeams:
		_, ok := r.teamUsers[ref.ID]
		return ok
	case models.KindProjects:
		_, ok := r.projectTeams[ref.ID]
		return ok
	case models.KindTasks:
		a, ok := r.assignees[ref.ID]
		return ok && a.userID == ref.AssigneeID
	}
	return false
}

func (r *Resolver) EvictTeam(teamID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	delete(r.teamUsers, teamID)
	r.group.Forget(key(models.KindTeams, teamID))
}

func (r *Resolver) EvictProject(projectID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	delete(r.projectTeams, projectID)
	r.group.Forget(key(models.KindProjects, projectID))
}

func (r *Resolver) EvictTask(taskID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	if a, ok := r.assignees[taskID]; ok {
		r.group.Forget(key(models.KindTasks, taskID) + "/" + a.userID.String())
	}
	delete(r.assignees, taskID)
}

// EvictAssignee drops every task entry that resolved to userID.
func (r *Resolver) EvictAssignee(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	for taskID, a := range r.assignees {
		if a.userID == userID {
			delete(r.assignees, taskID)
		}
	}
}

func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	clear(r.teamUsers)
	clear(r.projectTeams)
	clear(r.assignees)
}

func key(kind models.Kind, id uuid.UUID) string {
	return kind.String() + "/" + id.String()
}
