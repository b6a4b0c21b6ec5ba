package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hnordin/handla/internal/handler"
	"github.com/hnordin/handla/internal/middleware"
	"github.com/hnordin/handla/internal/store"
	ws "github.com/hnordin/handla/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	catalogH     *handler.CatalogHandler
	listH        *handler.ListHandler
	statsH       *handler.StatsHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	catalogStore := store.NewCatalogStore(db)
	listStore := store.NewListStore(db)
	statsStore := store.NewStatsStore(db)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		catalogH:     handler.NewCatalogHandler(catalogStore, hub, logger.With("component", "catalog")),
		listH:        handler.NewListHandler(listStore, hub, logger.With("component", "list")),
		statsH:       handler.NewStatsHandler(statsStore, logger.With("component", "stats")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(10, time.Minute),
		logger:       logger,
	}
}

// Hub exposes the broadcast hub, mainly for tests.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("POST /api/auth/register", s.rateLimiter.Limit(http.HandlerFunc(s.authH.Register)))
	outerMux.Handle("POST /api/auth/login", s.rateLimiter.Limit(http.HandlerFunc(s.authH.Login)))

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)

	// Catalog API routes
	mux.HandleFunc("GET /api/catalog", s.catalogH.Get)
	mux.HandleFunc("POST /api/catalog/items", s.catalogH.CreateItem)
	mux.HandleFunc("DELETE /api/catalog/items/{id}", s.catalogH.DeleteItem)

	// List API routes
	mux.HandleFunc("POST /api/lists", s.listH.Create)
	mux.HandleFunc("GET /api/lists", s.listH.List)
	mux.HandleFunc("GET /api/lists/current-id", s.listH.CurrentID)
	mux.HandleFunc("GET /api/lists/{id}", s.listH.Get)
	mux.HandleFunc("PUT /api/lists/{id}/name", s.listH.Rename)
	mux.HandleFunc("POST /api/lists/status", s.listH.ChangeStatus)
	mux.HandleFunc("PATCH /api/list-items/{id}", s.listH.ToggleItem)

	// Statistics API routes
	mux.HandleFunc("GET /api/statistics/top-items", s.statsH.TopItems)
	mux.HandleFunc("GET /api/statistics/top-categories", s.statsH.TopCategories)
	mux.HandleFunc("GET /api/statistics/timeline", s.statsH.Timeline)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
