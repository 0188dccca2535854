package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-tutor/internal/api"
	apiMiddleware "github.com/phrazzld/scry-tutor/internal/api/middleware"
	"github.com/phrazzld/scry-tutor/internal/observe"
)

// setupRouter registers every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(observe.Middleware(app.telemetry.Metrics))

	tutorHandler := api.NewTutorHandler(app.tutorService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/sessions", tutorHandler.StartSession)
			r.Get("/sessions/{id}", tutorHandler.GetProgress)
			r.Post("/sessions/{id}/turns", tutorHandler.ProcessTurn)
			r.Delete("/sessions/{id}", tutorHandler.EndSession)

			r.Get("/learners/me/context", tutorHandler.GetLearnerContext)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.telemetry.Handler())

	return r
}
