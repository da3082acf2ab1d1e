package handlers

import (
	"strconv"

	"github.com/dimitrije/taskboard/internal/mutation"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// OpenPicker opens the user picker for a task or a team assignment.
func (h *DashboardHandler) OpenPicker(c *drift.Context) {
	var req dto.AssignRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	a, ok := assignmentFrom(req)
	if !ok {
		c.BadRequest("exactly one of taskId and teamId is required")
		return
	}

	ps, err := h.dash.OpenPicker(c.Request.Context(), a)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, ps)
}

func (h *DashboardHandler) Picker(c *drift.Context) {
	query := c.Request.URL.Query()
	switch {
	case query.Has("search"):
		ps, err := h.dash.PickerSearch(c.Request.Context(), query.Get("search"))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		_ = c.JSON(200, ps)
	case query.Get("page") != "":
		page, err := strconv.Atoi(query.Get("page"))
		if err != nil {
			c.BadRequest("invalid page")
			return
		}
		ps, err := h.dash.PickerPaginate(c.Request.Context(), page)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		_ = c.JSON(200, ps)
	default:
		ps := h.dash.Picker()
		if ps == nil {
			c.NotFound("user picker is not open")
			return
		}
		_ = c.JSON(200, ps)
	}
}

func (h *DashboardHandler) PickerSelect(c *drift.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	res, err := h.dash.PickerSelect(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, res)
}

func (h *DashboardHandler) ClosePicker(c *drift.Context) {
	h.dash.ClosePicker()
	_ = c.JSON(200, dto.MessageResponse{Message: "picker closed"})
}

func assignmentFrom(req dto.AssignRequest) (mutation.Assignment, bool) {
	switch {
	case req.TaskID != nil && req.TeamID == nil:
		a := mutation.TaskAssignment{TaskID: *req.TaskID}
		if req.CurrentUserID != nil {
			a.CurrentUserID = *req.CurrentUserID
		}
		return a, a.TaskID != uuid.Nil
	case req.TeamID != nil && req.TaskID == nil:
		return mutation.TeamAssignment{TeamID: *req.TeamID}, *req.TeamID != uuid.Nil
	}
	return nil, false
}
