package handlers

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dimitrije/taskboard/internal/middleware"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/internal/sse"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type SSEHandler struct {
	hub    EventHub
	logger *slog.Logger
}

func NewSSEHandler(hub EventHub, logger *slog.Logger) *SSEHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEHandler{hub: hub, logger: logger}
}

// Connect streams dashboard events. ?kinds=teams,tasks limits the stream to
// events about those kinds plus dashboard-wide ones.
func (h *SSEHandler) Connect(c *drift.Context) {
	kinds, err := parseKinds(c.QueryParam("kinds"))
	if err != nil {
		c.BadRequest(err.Error())
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:    clientID,
		Kinds: kinds,
		Send:  make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)
	h.logger.Debug("event stream connected", "client_id", clientID, "operator_id", middleware.GetOperatorID(c))

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := c.Request.Context().Done()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			h.logger.Debug("event stream closed", "client_id", clientID)
			return
		}
	}
}

func (h *SSEHandler) Subscribe(c *drift.Context) {
	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	h.hub.Subscribe(clientID, kind)

	_ = c.JSON(200, dto.MessageResponse{Message: fmt.Sprintf("subscribed to %s", kind)})
}

func (h *SSEHandler) Unsubscribe(c *drift.Context) {
	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	h.hub.Unsubscribe(clientID, kind)

	_ = c.JSON(200, dto.MessageResponse{Message: fmt.Sprintf("unsubscribed from %s", kind)})
}

func parseKinds(raw string) (map[models.Kind]bool, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	kinds := make(map[models.Kind]bool)
	for _, part := range strings.Split(raw, ",") {
		kind, err := models.ParseKind(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		kinds[kind] = true
	}
	return kinds, nil
}
