package handlers

import (
	"errors"
	"log/slog"

	"github.com/dimitrije/taskboard/internal/dashboard"
	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/middleware"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/mutation"
	"github.com/dimitrije/taskboard/internal/session"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// respondError maps a dashboard or gateway error onto a status code.
func respondError(c *drift.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, dashboard.ErrLoggedOut), errors.Is(err, session.ErrLoggedOut):
		c.Unauthorized("session has been logged out")
	case errors.Is(err, mutation.ErrUnknownKind),
		errors.Is(err, mutation.ErrPayloadType),
		errors.Is(err, mutation.ErrConfirmationRequired),
		errors.Is(err, dashboard.ErrInvalidForm),
		errors.Is(err, dashboard.ErrNotExpandable),
		errors.Is(err, dashboard.ErrEmptyQuery),
		errors.Is(err, dashboard.ErrNoActiveForm),
		errors.Is(err, dashboard.ErrNoPendingDelete),
		errors.Is(err, dashboard.ErrPickerClosed):
		c.BadRequest(err.Error())
	case gateway.IsValidation(err):
		c.BadRequest(gateway.Message(err))
	case gateway.IsNotFound(err):
		c.NotFound(gateway.Message(err))
	case gateway.IsTransport(err):
		c.BadGateway(gateway.Message(err))
	default:
		logger.Error("request failed", "path", c.Request.URL.Path, "operator_id", middleware.GetOperatorID(c), "error", err)
		c.InternalServerError("request failed")
	}
}

func kindParam(c *drift.Context) (models.Kind, bool) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		c.BadRequest("invalid kind")
		return "", false
	}
	return kind, true
}

func idParam(c *drift.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.BadRequest("invalid " + name)
		return uuid.Nil, false
	}
	return id, true
}
