package testutil

import (
	"context"

	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/sse"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore mocks one entity kind of the gateway
type MockStore[T, C, U any] struct {
	mock.Mock
}

func (m *MockStore[T, C, U]) List(ctx context.Context, params gateway.ListParams) (*dto.ListResponse[T], error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListResponse[T]), args.Error(1)
}

func (m *MockStore[T, C, U]) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore[T, C, U]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockStore[T, C, U]) Create(ctx context.Context, payload C) (*T, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockStore[T, C, U]) Update(ctx context.Context, id uuid.UUID, patch U) (*T, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockStore[T, C, U]) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type (
	MockUserStore    = MockStore[models.User, dto.CreateUserRequest, dto.UpdateUserRequest]
	MockTeamStore    = MockStore[models.Team, dto.CreateTeamRequest, dto.UpdateTeamRequest]
	MockProjectStore = MockStore[models.Project, dto.CreateProjectRequest, dto.UpdateProjectRequest]
	MockTaskStore    = MockStore[models.Task, dto.CreateTaskRequest, dto.UpdateTaskRequest]
)

// MockStores holds one mock per kind
type MockStores struct {
	Users    *MockUserStore
	Teams    *MockTeamStore
	Projects *MockProjectStore
	Tasks    *MockTaskStore
}

func NewMockStores() *MockStores {
	return &MockStores{
		Users:    &MockUserStore{},
		Teams:    &MockTeamStore{},
		Projects: &MockProjectStore{},
		Tasks:    &MockTaskStore{},
	}
}

// Stores exposes the mocks as gateway stores
func (m *MockStores) Stores() gateway.Stores {
	return gateway.Stores{
		Users:    m.Users,
		Teams:    m.Teams,
		Projects: m.Projects,
		Tasks:    m.Tasks,
	}
}

// AssertExpectations checks every mock
func (m *MockStores) AssertExpectations(t mock.TestingT) {
	m.Users.AssertExpectations(t)
	m.Teams.AssertExpectations(t)
	m.Projects.AssertExpectations(t)
	m.Tasks.AssertExpectations(t)
}

// MockChatter mocks the chat assistant
type MockChatter struct {
	mock.Mock
}

func (m *MockChatter) Chat(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ChatResponse), args.Error(1)
}

// MockEventHub mocks the SSE hub
type MockEventHub struct {
	mock.Mock
}

func (m *MockEventHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *MockEventHub) Unregister(client *sse.Client) {
	m.Called(client)
}

func (m *MockEventHub) Subscribe(clientID string, kind models.Kind) {
	m.Called(clientID, kind)
}

func (m *MockEventHub) Unsubscribe(clientID string, kind models.Kind) {
	m.Called(clientID, kind)
}

// Page builds a list envelope the way the API paginates
func Page[T any](items []T, page, limit, total int) *dto.ListResponse[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	if items == nil {
		items = []T{}
	}
	return &dto.ListResponse[T]{
		Data:       items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
