package handlers

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/dimitrije/taskboard/internal/middleware"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type DashboardHandler struct {
	dash   DashboardService
	logger *slog.Logger
}

func NewDashboardHandler(dash DashboardService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{dash: dash, logger: logger}
}

func (h *DashboardHandler) State(c *drift.Context) {
	_ = c.JSON(200, h.dash.State())
}

// Counts returns the aggregate totals, reloading them first with ?refresh=true.
func (h *DashboardHandler) Counts(c *drift.Context) {
	if c.QueryParam("refresh") == "true" {
		snap, err := h.dash.RefreshCounts(c.Request.Context())
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		_ = c.JSON(200, dto.CountsResponse{Counts: snap, Loaded: true})
		return
	}

	snap, loaded := h.dash.Counts()
	_ = c.JSON(200, dto.CountsResponse{Counts: snap, Loaded: loaded})
}

func (h *DashboardHandler) OpenView(c *drift.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	snap, err := h.dash.OpenView(c.Request.Context(), kind)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, snap)
}

func (h *DashboardHandler) CloseView(c *drift.Context) {
	h.dash.CloseView()
	_ = c.JSON(200, dto.MessageResponse{Message: "view closed"})
}

// View searches with ?search, otherwise moves to ?page, otherwise returns the
// current snapshot.
func (h *DashboardHandler) View(c *drift.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	var (
		snap any
		err  error
	)
	query := c.Request.URL.Query()
	switch {
	case query.Has("search"):
		snap, err = h.dash.Search(c.Request.Context(), kind, query.Get("search"))
	case query.Get("page") != "":
		page, perr := strconv.Atoi(query.Get("page"))
		if perr != nil {
			c.BadRequest("invalid page")
			return
		}
		snap, err = h.dash.Paginate(c.Request.Context(), kind, page)
	default:
		snap, err = h.dash.ViewSnapshot(kind)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, snap)
}

func (h *DashboardHandler) OpenCreateForm(c *drift.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	form, err := h.dash.OpenCreateForm(kind)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, form)
}

func (h *DashboardHandler) OpenEditForm(c *drift.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	form, err := h.dash.OpenEditForm(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, form)
}

func (h *DashboardHandler) CloseForm(c *drift.Context) {
	h.dash.CloseForm()
	_ = c.JSON(200, dto.MessageResponse{Message: "form closed"})
}

// SubmitForm sends the open form. The body is the create or patch payload.
func (h *DashboardHandler) SubmitForm(c *drift.Context) {
	var raw json.RawMessage
	if err := c.BindJSON(&raw); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	res, err := h.dash.SubmitForm(c.Request.Context(), raw)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, res)
}

func (h *DashboardHandler) RequestDelete(c *drift.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	pd, err := h.dash.RequestDelete(kind, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, pd)
}

func (h *DashboardHandler) ConfirmDelete(c *drift.Context) {
	token, ok := idParam(c, "token")
	if !ok {
		return
	}

	if err := h.dash.ConfirmDelete(c.Request.Context(), token); err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, dto.MessageResponse{Message: "record deleted"})
}

func (h *DashboardHandler) CancelDelete(c *drift.Context) {
	h.dash.CancelDelete()
	_ = c.JSON(200, dto.MessageResponse{Message: "delete cancelled"})
}

func (h *DashboardHandler) DismissNotice(c *drift.Context) {
	h.dash.DismissNotice()
	_ = c.JSON(200, dto.MessageResponse{Message: "notice dismissed"})
}

func (h *DashboardHandler) ToggleExpand(c *drift.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	row, expanded, err := h.dash.ToggleExpand(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	_ = c.JSON(200, dto.ExpandResponse{Expanded: expanded, Row: row})
}

func (h *DashboardHandler) Logout(c *drift.Context) {
	h.logger.Info("logout requested",
		"operator_id", middleware.GetOperatorID(c),
		"email", middleware.GetOperatorEmail(c))
	h.dash.Logout()
	_ = c.JSON(200, dto.MessageResponse{Message: "logged out"})
}
