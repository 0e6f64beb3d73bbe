package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mcoot/turntimer/internal/api/handler"
	"github.com/mcoot/turntimer/internal/api/middleware"
	"github.com/mcoot/turntimer/internal/api/response"
	basemiddleware "github.com/mcoot/turntimer/internal/middleware"
	"github.com/mcoot/turntimer/internal/services/session"
	"github.com/mcoot/turntimer/internal/stream"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	SessionController *session.Controller
	HubManager        *stream.HubManager
	AllowedOrigins    []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(
		cfg.SessionController,
		cfg.HubManager,
		stream.NewUpgrader(cfg.AllowedOrigins),
		cfg.Logger,
	)

	// Create middleware
	loggingMiddleware := basemiddleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Session routes
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.HandleFunc("", sessionHandler.Create).Methods(http.MethodPost)
	sessions.HandleFunc("/{code}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{code}", sessionHandler.End).Methods(http.MethodDelete)

	// Timer intents
	sessions.HandleFunc("/{code}/timer/{intent}", sessionHandler.Timer).Methods(http.MethodPost)

	// Roster and ledger
	sessions.HandleFunc("/{code}/players/{player_id}", sessionHandler.RenamePlayer).Methods(http.MethodPatch)
	sessions.HandleFunc("/{code}/players/{player_id}/points", sessionHandler.AddPoints).Methods(http.MethodPost)

	// Live event streams
	sessions.HandleFunc("/{code}/events", sessionHandler.Events).Methods(http.MethodGet)
	sessions.HandleFunc("/{code}/ws", sessionHandler.WebSocket).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler(cfg.SessionController)).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(r)
}

func healthHandler(controller *session.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{
			Status:   "ok",
			Sessions: controller.SessionCount(),
		})
	}
}
