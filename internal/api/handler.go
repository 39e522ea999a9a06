package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"datadesk/m/internal/auth"
	"datadesk/m/internal/database"
	"datadesk/m/internal/store"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db          *sqlx.DB
	tokens      *auth.TokenService
	hasher      *auth.Hasher
	logger      *slog.Logger
	corsOrigins []string
}

// New constructs a Handler.
func New(db *sqlx.DB, tokens *auth.TokenService, hasher *auth.Hasher, logger *slog.Logger, corsOrigins []string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		db:          db,
		tokens:      tokens,
		hasher:      hasher,
		logger:      logger,
		corsOrigins: corsOrigins,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	if len(h.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.corsOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Route("/data", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/", h.createEntry)
		r.Get("/", h.listEntries)
		r.Get("/{id}", h.getEntry)
		r.Put("/{id}", h.updateEntry)
		r.Delete("/{id}", h.deleteEntry)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Use(h.loadUser)
		r.Get("/", h.listUsers)
		r.Get("/roles-chart", h.rolesChart)
		r.Get("/{id}", h.getUser)
		r.Group(func(admin chi.Router) {
			admin.Use(h.requireAdmin)
			admin.Put("/{id}", h.updateUser)
			admin.Delete("/{id}", h.deleteUser)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withStore runs fn in a request scoped transaction that commits only when fn succeeds.
func (h *Handler) withStore(ctx context.Context, fn func(s *store.Store) error) error {
	return database.WithTx(ctx, h.db, func(tx *sqlx.Tx) error {
		return fn(store.New(tx))
	})
}
