package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/session"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess, err := session.New("test-token")
	require.NoError(t, err)

	c, err := New(srv.URL, sess, opts...)
	require.NoError(t, err)
	return c, sess
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RequiresTokenSource(t *testing.T) {
	_, err := New("http://localhost", nil)

	assert.Error(t, err)
}

func TestNew_NormalisesBaseURL(t *testing.T) {
	sess, err := session.New("t")
	require.NoError(t, err)

	c, err := New("api.local:3000/", sess)

	require.NoError(t, err)
	assert.Equal(t, "http://api.local:3000", c.baseURL)
}

func TestResource_List_SendsBearerAndQuery(t *testing.T) {
	userID := uuid.New()
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "mar", r.URL.Query().Get("search"))
		writeJSON(w, http.StatusOK, dto.ListResponse[models.User]{
			Data:       []models.User{{ID: userID, Name: "Mara", Role: models.RoleMember}},
			Page:       2,
			Limit:      5,
			Total:      6,
			TotalPages: 2,
		})
	})

	resp, err := c.Users().List(context.Background(), ListParams{Page: 2, Limit: 5, Search: "mar"})

	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, userID, resp.Data[0].ID)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 6, resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
}

func TestResource_List_OmitsEmptyParams(t *testing.T) {
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, map[string]any{"page": 1, "limit": 10, "total": 0, "totalPages": 0})
	})

	resp, err := c.Teams().List(context.Background(), ListParams{})

	require.NoError(t, err)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestResource_Count(t *testing.T) {
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/count", r.URL.Path)
		_, _ = io.WriteString(w, "42")
	})

	n, err := c.Projects().Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestResource_Count_ObjectBody(t *testing.T) {
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"count": 7})
	})

	n, err := c.Users().Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestResource_Count_Garbage(t *testing.T) {
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `"many"`)
	})

	_, err := c.Tasks().Count(context.Background())

	var ue *UnexpectedError
	assert.ErrorAs(t, err, &ue)
}

func TestResource_Create_ValidationMessageList(t *testing.T) {
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"statusCode": 400,
			"message":    []string{"name should not be empty", "ownerId must be a UUID"},
			"error":      "Bad Request",
		})
	})

	_, err := c.Teams().Create(context.Background(), dto.CreateTeamRequest{})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "name should not be empty; ownerId must be a UUID", Message(err))
}

func TestResource_Update_SendsPatch(t *testing.T) {
	taskID := uuid.New()
	assignee := uuid.New()
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/tasks/"+taskID.String(), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"assignedTo": assignee.String()}, body)

		writeJSON(w, http.StatusOK, models.Task{ID: taskID, AssignedTo: assignee, Status: models.StatusTodo})
	})

	task, err := c.Tasks().Update(context.Background(), taskID, dto.UpdateTaskRequest{AssignedTo: &assignee})

	require.NoError(t, err)
	assert.Equal(t, assignee, task.AssignedTo)
}

func TestResource_GetByID_NotFound(t *testing.T) {
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "User not found"})
	})

	_, err := c.Users().GetByID(context.Background(), uuid.New())

	assert.True(t, IsNotFound(err))
	assert.Equal(t, "User not found", Message(err))
}

func TestResource_Delete(t *testing.T) {
	id := uuid.New()
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/teams/"+id.String(), r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.Teams().Delete(context.Background(), id))
}

func TestClient_ServerError(t *testing.T) {
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Projects().GetByID(context.Background(), uuid.New())

	var ue *UnexpectedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusInternalServerError, ue.Status)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	sess, err := session.New("t")
	require.NoError(t, err)
	c, err := New(srv.URL, sess, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.Users().Count(context.Background())

	assert.True(t, IsTransport(err))
	assert.Contains(t, Message(err), "connection error")
}

func TestClient_LoggedOutSessionStopsRequests(t *testing.T) {
	calls := 0
	c, sess := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, "1")
	})

	sess.Logout()
	_, err := c.Tasks().Count(context.Background())

	assert.ErrorIs(t, err, session.ErrLoggedOut)
	assert.Equal(t, 0, calls)
}

func TestClient_Chat(t *testing.T) {
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/task-manager/chat", r.URL.Path)
		var req dto.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "who owns Atlas?", req.Query)
		assert.Equal(t, "s-1", req.SessionID)
		writeJSON(w, http.StatusOK, dto.ChatResponse{
			Answer:    "Mara",
			SessionID: "s-1",
			Metadata:  dto.ChatMetadata{FromCache: true, StepsExecuted: []string{"classify", "retrieve"}},
		})
	})

	resp, err := c.Chat(context.Background(), dto.ChatRequest{Query: "who owns Atlas?", SessionID: "s-1"})

	require.NoError(t, err)
	assert.Equal(t, "Mara", resp.Answer)
	assert.True(t, resp.Metadata.FromCache)
	assert.Equal(t, []string{"classify", "retrieve"}, resp.Metadata.StepsExecuted)
}

func TestClient_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	c, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/count" {
			_, _ = io.WriteString(w, "3")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}, WithMetrics(metrics))

	_, err := c.Users().Count(context.Background())
	require.NoError(t, err)
	_, err = c.Users().GetByID(context.Background(), uuid.New())
	require.Error(t, err)

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.requestTotal.WithLabelValues("users", "count", "ok")))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.requestTotal.WithLabelValues("users", "get", "not_found")))
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetrics(reg)
	second := NewMetrics(reg)

	assert.Same(t, first.requestTotal, second.requestTotal)
	assert.Same(t, first.requestDuration, second.requestDuration)
}
