package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dimitrije/taskboard/internal/middleware"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Dashboard  DashboardService
	Hub        EventHub
	Session    middleware.SessionState
	Gatherer   prometheus.Gatherer
	Logger     *slog.Logger
	Production bool
}

// NewRouter mounts the dashboard API under /api/v1 and the metrics endpoint
// at /metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dashboardHandler := NewDashboardHandler(cfg.Dashboard, logger)
	sseHandler := NewSSEHandler(cfg.Hub, logger)

	app := drift.New()

	if cfg.Production {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(driftmw.Recovery())
	app.Use(driftmw.CORSWithConfig(driftmw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       86400,
	}))
	app.Use(driftmw.BodyParser())

	api := app.Group("/api/v1")

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	protected := api.Group("")
	protected.Use(middleware.RequireSession(cfg.Session))

	protected.Get("/state", dashboardHandler.State)
	protected.Get("/counts", dashboardHandler.Counts)

	protected.Post("/views/:kind/open", dashboardHandler.OpenView)
	protected.Get("/views/:kind", dashboardHandler.View)
	protected.Delete("/views", dashboardHandler.CloseView)

	protected.Post("/forms/:kind", dashboardHandler.OpenCreateForm)
	protected.Post("/forms/:kind/:id", dashboardHandler.OpenEditForm)
	protected.Post("/forms", dashboardHandler.SubmitForm)
	protected.Delete("/forms", dashboardHandler.CloseForm)

	protected.Post("/records/:kind/:id/delete", dashboardHandler.RequestDelete)
	protected.Post("/deletes/:token/confirm", dashboardHandler.ConfirmDelete)
	protected.Delete("/deletes", dashboardHandler.CancelDelete)
	protected.Delete("/notice", dashboardHandler.DismissNotice)

	protected.Post("/expand/:kind/:id", dashboardHandler.ToggleExpand)

	protected.Post("/picker", dashboardHandler.OpenPicker)
	protected.Get("/picker", dashboardHandler.Picker)
	protected.Post("/picker/select/:userId", dashboardHandler.PickerSelect)
	protected.Delete("/picker", dashboardHandler.ClosePicker)

	protected.Post("/chat", dashboardHandler.SendChat)
	protected.Get("/chat", dashboardHandler.ChatLog)

	protected.Post("/logout", dashboardHandler.Logout)

	protected.Get("/events", sseHandler.Connect)
	protected.Post("/events/:clientId/subscribe/:kind", sseHandler.Subscribe)
	protected.Post("/events/:clientId/unsubscribe/:kind", sseHandler.Unsubscribe)

	mux := http.NewServeMux()
	if cfg.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", app)
	return mux
}
