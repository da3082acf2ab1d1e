package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/pkg/dto"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "http://127.0.0.1:3000"

// Client is the typed, stateless boundary to the remote task-manager API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *Metrics

	users    *Resource[models.User, dto.CreateUserRequest, dto.UpdateUserRequest]
	teams    *Resource[models.Team, dto.CreateTeamRequest, dto.UpdateTeamRequest]
	projects *Resource[models.Project, dto.CreateProjectRequest, dto.UpdateProjectRequest]
	tasks    *Resource[models.Task, dto.CreateTaskRequest, dto.UpdateTaskRequest]
}

type Option func(*Client)

// WithHTTPClient replaces the base client. Its transport is still wrapped with
// the session's bearer credential.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds a Client whose every request carries the bearer token produced by
// ts. The token source is consulted per request so a logged-out session stops
// authenticating immediately.
func New(base string, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	if ts == nil {
		return nil, errors.New("token source is required")
	}
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := c.httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	wrapped := *c.httpClient
	wrapped.Transport = &oauth2.Transport{Source: ts, Base: transport}
	c.httpClient = &wrapped

	c.users = newResource[models.User, dto.CreateUserRequest, dto.UpdateUserRequest](c, models.KindUsers)
	c.teams = newResource[models.Team, dto.CreateTeamRequest, dto.UpdateTeamRequest](c, models.KindTeams)
	c.projects = newResource[models.Project, dto.CreateProjectRequest, dto.UpdateProjectRequest](c, models.KindProjects)
	c.tasks = newResource[models.Task, dto.CreateTaskRequest, dto.UpdateTaskRequest](c, models.KindTasks)
	return c, nil
}

func (c *Client) Users() *Resource[models.User, dto.CreateUserRequest, dto.UpdateUserRequest] {
	return c.users
}

func (c *Client) Teams() *Resource[models.Team, dto.CreateTeamRequest, dto.UpdateTeamRequest] {
	return c.teams
}

func (c *Client) Projects() *Resource[models.Project, dto.CreateProjectRequest, dto.UpdateProjectRequest] {
	return c.projects
}

func (c *Client) Tasks() *Resource[models.Task, dto.CreateTaskRequest, dto.UpdateTaskRequest] {
	return c.tasks
}

// Chat forwards a single exchange to the conversational assistant.
func (c *Client) Chat(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	var resp dto.ChatResponse
	if err := c.do(ctx, "chat", "send", http.MethodPost, "/task-manager/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, kind, op, method, path string, body, v any) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	label := kind + "." + op
	start := time.Now()
	defer func() { c.metrics.observe(kind, op, err, time.Since(start)) }()

	var reader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			return &UnexpectedError{Op: label, Err: fmt.Errorf("encode request body: %w", mErr)}
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &UnexpectedError{Op: label, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: label, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Op: label, Message: extractMessage(resp.Body)}
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return &ValidationError{Op: label, Status: resp.StatusCode, Message: extractMessage(resp.Body)}
	case resp.StatusCode >= http.StatusInternalServerError:
		return &UnexpectedError{Op: label, Status: resp.StatusCode, Err: errors.New(extractMessage(resp.Body))}
	}

	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &UnexpectedError{Op: label, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// extractMessage reads the API's error body. The server reports message either
// as a string or as a list of validation failures.
func extractMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}

	var single string
	if err := json.Unmarshal(payload.Message, &single); err == nil && single != "" {
		return single
	}
	var many []string
	if err := json.Unmarshal(payload.Message, &many); err == nil && len(many) > 0 {
		return strings.Join(many, "; ")
	}
	return strings.TrimSpace(payload.Error)
}
