package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/dinemenu/internal/config"
	"github.com/dukerupert/dinemenu/internal/handler"
	"github.com/dukerupert/dinemenu/internal/menu"
	"github.com/dukerupert/dinemenu/internal/metrics"
	"github.com/dukerupert/dinemenu/internal/middleware"
	"github.com/dukerupert/dinemenu/internal/scrollsync"
	"github.com/dukerupert/dinemenu/internal/session"
	"github.com/dukerupert/dinemenu/internal/store"
	ws "github.com/dukerupert/dinemenu/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	sessions    *session.Manager
	metrics     *metrics.Metrics
	sessionH    *handler.SessionHandler
	menuPageH   *handler.MenuPageHandler
	snapshotH   *handler.SnapshotHandler
	rateLimiter func(http.Handler) http.Handler
	logger      *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))
	m := metrics.New()

	snapshots := store.NewSnapshotStore(db, logger.With("component", "snapshots"))
	client := menu.NewClient(menu.Config{
		BaseURL:      cfg.MenuAPIURL,
		AssetBaseURL: cfg.AssetBaseURL,
		Timeout:      cfg.FetchTimeout,
	}, snapshots, logger.With("component", "menu"))
	client.OnFetch(m.ObserveFetch)

	sessions := session.NewManager(session.ManagerConfig{
		Fetcher:  client,
		Notifier: session.Fanout{hub, m},
		Options: session.Options{
			Layout: scrollsync.Layout{
				HeaderHeight: cfg.HeaderHeight,
				TabBarHeight: cfg.TabBarHeight,
			},
			SettleDelay:        cfg.SettleDelay,
			Debounce:           cfg.ScrollDebounce,
			FilterBarThreshold: cfg.FilterBarThreshold,
		},
		TTL:     cfg.SessionTTL,
		Metrics: m,
		Watching: func(id string) bool {
			return hub.SessionClientCount(id) > 0
		},
	}, logger.With("component", "session"))

	rl, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	return &Server{
		db:          db,
		hub:         hub,
		sessions:    sessions,
		metrics:     m,
		sessionH:    handler.NewSessionHandler(sessions, logger.With("component", "session_handler")),
		menuPageH:   handler.NewMenuPageHandler(client, logger.With("component", "menu_page")),
		snapshotH:   handler.NewSnapshotHandler(snapshots, logger.With("component", "snapshot_handler")),
		rateLimiter: rl,
		logger:      logger,
	}, nil
}

// Sessions returns the session manager for the idle sweep.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", s.metrics.Handler())
	outerMux.HandleFunc("GET /menu/{restaurant}", s.menuPageH.Menu)
	outerMux.HandleFunc("GET /ws/sessions/{id}", ws.HandleWebSocket(s.hub, s.sessions.Exists))

	// Session API routes, rate limited per client
	apiMux := http.NewServeMux()
	s.registerAPIRoutes(apiMux)
	outerMux.Handle("/api/", s.rateLimiter(apiMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
		"clients":  s.hub.ClientCount(),
	})
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", s.sessionH.Create)
	mux.HandleFunc("GET /api/sessions/{id}", s.sessionH.Get)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.sessionH.Delete)

	// Filters
	mux.HandleFunc("PUT /api/sessions/{id}/filter", s.sessionH.Filter)
	mux.HandleFunc("POST /api/sessions/{id}/filter/veg", s.sessionH.ToggleVeg)
	mux.HandleFunc("POST /api/sessions/{id}/filter/non-veg", s.sessionH.ToggleNonVeg)

	// Item cards and cart
	mux.HandleFunc("POST /api/sessions/{id}/items/{item_id}/tap", s.sessionH.ItemAction("tap"))
	mux.HandleFunc("POST /api/sessions/{id}/items/{item_id}/increment", s.sessionH.ItemAction("increment"))
	mux.HandleFunc("POST /api/sessions/{id}/items/{item_id}/decrement", s.sessionH.ItemAction("decrement"))
	mux.HandleFunc("POST /api/sessions/{id}/items/{item_id}/collapse", s.sessionH.ItemAction("collapse"))
	mux.HandleFunc("PUT /api/sessions/{id}/items/{item_id}/quantity", s.sessionH.SetQuantity)
	mux.HandleFunc("GET /api/sessions/{id}/cart", s.sessionH.Cart)

	// Scroll sync
	mux.HandleFunc("POST /api/sessions/{id}/scroll", s.sessionH.Scroll)
	mux.HandleFunc("POST /api/sessions/{id}/scroll/end", s.sessionH.ScrollEnd)
	mux.HandleFunc("POST /api/sessions/{id}/scroll/animation-complete", s.sessionH.AnimationComplete)
	mux.HandleFunc("POST /api/sessions/{id}/tabs/{section_id}", s.sessionH.ClickTab)

	// Menu history
	mux.HandleFunc("GET /api/restaurants/{id}/snapshots", s.snapshotH.List)
}
