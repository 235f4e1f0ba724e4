package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/ccpubsub/internal/api/handler"
	"github.com/mcoot/ccpubsub/internal/api/middleware"
	"github.com/mcoot/ccpubsub/internal/api/pubsub"
	"github.com/mcoot/ccpubsub/internal/api/response"
	"github.com/mcoot/ccpubsub/internal/services/auth"
	"github.com/mcoot/ccpubsub/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Hub         *pubsub.Hub
	Registry    *registry.Registry
	// EnableDebug mounts the /debug endpoints
	EnableDebug bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Hub, cfg.Logger)
	sessionHandler := handler.NewSessionHandler(cfg.Registry, cfg.Hub, cfg.Logger)
	debugHandler := handler.NewDebugHandler(cfg.Hub, cfg.Registry)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// logging wraps recovery so recovered panics are logged with their 500
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	// Pub/sub websocket endpoint
	r.HandleFunc("/", pubsub.Handler(cfg.Hub)).Methods(http.MethodGet)

	// Login page stand-in (no auth)
	r.HandleFunc("/auth", authHandler.Login).Methods(http.MethodGet)

	// Game session routes (bearer auth)
	sessions := r.PathPrefix("/game-session").Subrouter()
	sessions.Use(authMiddleware)
	sessions.HandleFunc("/start", sessionHandler.Start).Methods(http.MethodPost)
	sessions.HandleFunc("/stop", sessionHandler.Stop).Methods(http.MethodPost)

	if cfg.EnableDebug {
		debug := r.PathPrefix("/debug").Subrouter()
		debug.HandleFunc("/publish", debugHandler.Publish).Methods(http.MethodPost)
		debug.HandleFunc("/calls", debugHandler.Calls).Methods(http.MethodGet)
		debug.HandleFunc("/sessions", debugHandler.Sessions).Methods(http.MethodGet)
	}

	// Health check endpoint (no auth)
	r.HandleFunc("/health", healthHandler(cfg.Hub)).Methods(http.MethodGet)

	return r
}

func healthHandler(hub *pubsub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.HealthResponse{
			Status:      "ok",
			Connections: hub.ConnectionCount(),
		})
	}
}
