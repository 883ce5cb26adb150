package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"tutor-backend/internal/handlers"
	"tutor-backend/internal/middleware"
)

func New(
	sessionAuth *middleware.SessionAuth,
	askLimiter *middleware.RateLimiter,
	sessionHandler *handlers.SessionHandler,
	gateHandler *handlers.GateHandler,
	wsHandler http.HandlerFunc,
	ui http.Handler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Method(http.MethodGet, "/", ui)

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Gate Routes (public) ────
		r.Get("/keywords", gateHandler.Keywords)
		r.Post("/relevance", gateHandler.Check)
		r.Get("/stats/gate", gateHandler.Stats)

		// ──── Session Routes ────
		r.Post("/sessions", sessionHandler.Start)

		r.Route("/session", func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Get("/", sessionHandler.Get)
			r.Delete("/", sessionHandler.End)
			r.Post("/reset", sessionHandler.Reset)
			r.Put("/theme", sessionHandler.SetTheme)

			r.Group(func(r chi.Router) {
				r.Use(askLimiter.Middleware)
				r.Post("/ask", sessionHandler.Ask)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHandler)
	})

	return r
}
