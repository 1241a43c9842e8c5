package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"congregationsite/internal/delivery/http/controllers"
	"congregationsite/internal/delivery/http/helpers"
	"congregationsite/internal/delivery/http/middleware"
	"congregationsite/internal/domain"
)

// Pinger reports storage health. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Events *controllers.EventController
	RSVPs  *controllers.RSVPController
	Auth   *controllers.AuthController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, db Pinger, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	admin := middleware.RequireAdmin(verifier, logger)

	// Public
	mux.HandleFunc("GET /events/{slug}", c.Events.GetPublicEvent)
	mux.HandleFunc("POST /events/{eventID}/rsvps", c.RSVPs.Submit)
	mux.HandleFunc("GET /rsvps/{code}", c.RSVPs.GetByCode)
	mux.HandleFunc("POST /rsvps/{code}/cancel", c.RSVPs.Cancel)

	// Admin
	mux.HandleFunc("POST /admin/login", c.Auth.Login)
	mux.HandleFunc("POST /admin/events", admin(c.Events.CreateEvent))
	mux.HandleFunc("GET /admin/events", admin(c.Events.ListEvents))
	mux.HandleFunc("DELETE /admin/events/{eventID}", admin(c.Events.DeleteEvent))
	mux.HandleFunc("GET /admin/events/{eventID}/rsvps", admin(c.RSVPs.ListByEvent))
	mux.HandleFunc("GET /admin/events/{eventID}/stats", admin(c.Events.GetEventStats))
	mux.HandleFunc("POST /admin/rsvps/{code}/promote", admin(c.RSVPs.Promote))

	mux.HandleFunc("GET /health", health(db, logger))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// Health godoc
// @Summary Health check
// @Description Reports whether the API can reach its database.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /health [get]
func health(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.ErrorContext(r.Context(), "health check failed", "err", err)
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, "unavailable", "database unreachable")
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Handler wraps the router with the middleware every request passes through.
func Handler(mux http.Handler, allowedOrigins []string, logger *slog.Logger) http.Handler {
	return middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.Recover(logger, middleware.CORS(allowedOrigins, mux))))
}
