package relations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/google/uuid"
)

// ChildLookup finds the children of a parent record. The API offers no
// filtered list endpoint, so the default implementation scans.
type ChildLookup interface {
	TeamUsers(ctx context.Context, teamID uuid.UUID) ([]models.User, error)
	ProjectTeams(ctx context.Context, projectID uuid.UUID) ([]models.Team, error)
}

const scanPageSize = 100

// ScanLookup lists the whole child collection and filters it by foreign key.
// At most Limit records are examined per lookup.
type ScanLookup struct {
	Users  gateway.Lister[models.User]
	Teams  gateway.Lister[models.Team]
	Limit  int
	Logger *slog.Logger
}

func (s *ScanLookup) TeamUsers(ctx context.Context, teamID uuid.UUID) ([]models.User, error) {
	return scan(ctx, s, models.KindUsers, s.Users, func(u models.User) bool {
		return u.InTeam(teamID)
	})
}

func (s *ScanLookup) ProjectTeams(ctx context.Context, projectID uuid.UUID) ([]models.Team, error) {
	return scan(ctx, s, models.KindTeams, s.Teams, func(t models.Team) bool {
		return t.ProjectID == projectID
	})
}

func scan[T any](ctx context.Context, s *ScanLookup, kind models.Kind, lister gateway.Lister[T], match func(T) bool) ([]T, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = 1000
	}
	size := min(scanPageSize, limit)

	out := []T{}
	seen := 0
	for page := 1; ; page++ {
		resp, err := lister.List(ctx, gateway.ListParams{Page: page, Limit: size})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		for _, rec := range resp.Data {
			if seen == limit {
				break
			}
			seen++
			if match(rec) {
				out = append(out, rec)
			}
		}
		if seen >= limit {
			if resp.Total > limit {
				s.logger().Warn("relation scan truncated", "kind", kind.String(), "limit", limit, "total", resp.Total)
			}
			return out, nil
		}
		if len(resp.Data) == 0 || page >= resp.TotalPages {
			return out, nil
		}
	}
}

func (s *ScanLookup) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
