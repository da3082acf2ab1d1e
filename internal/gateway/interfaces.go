package gateway

import (
	"context"

	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/google/uuid"
)

// Lister is the paginated read used by collection views.
type Lister[T any] interface {
	List(ctx context.Context, params ListParams) (*dto.ListResponse[T], error)
}

// Counter reports a collection's total size.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

type Getter[T any] interface {
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
}

// Store is the full per-kind surface of the API.
type Store[T, C, U any] interface {
	Lister[T]
	Counter
	Getter[T]
	Create(ctx context.Context, payload C) (*T, error)
	Update(ctx context.Context, id uuid.UUID, patch U) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type (
	UserStore    = Store[models.User, dto.CreateUserRequest, dto.UpdateUserRequest]
	TeamStore    = Store[models.Team, dto.CreateTeamRequest, dto.UpdateTeamRequest]
	ProjectStore = Store[models.Project, dto.CreateProjectRequest, dto.UpdateProjectRequest]
	TaskStore    = Store[models.Task, dto.CreateTaskRequest, dto.UpdateTaskRequest]
)

// Stores bundles one Store per entity kind.
type Stores struct {
	Users    UserStore
	Teams    TeamStore
	Projects ProjectStore
	Tasks    TaskStore
}

// Chatter is the conversational assistant boundary.
type Chatter interface {
	Chat(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error)
}

func (c *Client) Stores() Stores {
	return Stores{
		Users:    c.users,
		Teams:    c.teams,
		Projects: c.projects,
		Tasks:    c.tasks,
	}
}
