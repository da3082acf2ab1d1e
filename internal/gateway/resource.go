package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/google/uuid"
)

type ListParams struct {
	Page   int
	Limit  int
	Search string
}

func (p ListParams) query() string {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Resource is the request/response surface for one entity kind. T is the
// record, C the create payload and U the patch payload.
type Resource[T, C, U any] struct {
	client *Client
	kind   models.Kind
}

func newResource[T, C, U any](c *Client, kind models.Kind) *Resource[T, C, U] {
	return &Resource[T, C, U]{client: c, kind: kind}
}

func (r *Resource[T, C, U]) Kind() models.Kind {
	return r.kind
}

func (r *Resource[T, C, U]) List(ctx context.Context, params ListParams) (*dto.ListResponse[T], error) {
	var resp dto.ListResponse[T]
	path := "/" + r.kind.String() + params.query()
	if err := r.client.do(ctx, r.kind.String(), "list", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []T{}
	}
	return &resp, nil
}

// Count returns the total number of records. The API answers with a bare
// integer; an object with a count field is accepted as well.
func (r *Resource[T, C, U]) Count(ctx context.Context) (int, error) {
	var raw json.RawMessage
	path := "/" + r.kind.String() + "/count"
	if err := r.client.do(ctx, r.kind.String(), "count", http.MethodGet, path, nil, &raw); err != nil {
		return 0, err
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var wrapped struct {
		Count *int `json:"count"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Count != nil {
		return *wrapped.Count, nil
	}
	return 0, &UnexpectedError{Op: r.kind.String() + ".count", Err: fmt.Errorf("decode count from %q", string(raw))}
}

func (r *Resource[T, C, U]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var rec T
	if err := r.client.do(ctx, r.kind.String(), "get", http.MethodGet, r.itemPath(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Resource[T, C, U]) Create(ctx context.Context, payload C) (*T, error) {
	var rec T
	if err := r.client.do(ctx, r.kind.String(), "create", http.MethodPost, "/"+r.kind.String(), payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Resource[T, C, U]) Update(ctx context.Context, id uuid.UUID, patch U) (*T, error) {
	var rec T
	if err := r.client.do(ctx, r.kind.String(), "update", http.MethodPatch, r.itemPath(id), patch, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Resource[T, C, U]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.do(ctx, r.kind.String(), "delete", http.MethodDelete, r.itemPath(id), nil, nil)
}

func (r *Resource[T, C, U]) itemPath(id uuid.UUID) string {
	return "/" + r.kind.String() + "/" + url.PathEscape(id.String())
}
