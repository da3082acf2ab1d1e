package handlers

import (
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

// SendChat forwards a question to the assistant. An unreachable assistant
// still answers 200 with an apology message.
func (h *DashboardHandler) SendChat(c *drift.Context) {
	var req dto.ChatQueryRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	msg, err := h.dash.SendChat(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, msg)
}

func (h *DashboardHandler) ChatLog(c *drift.Context) {
	_ = c.JSON(200, h.dash.ChatLog())
}
