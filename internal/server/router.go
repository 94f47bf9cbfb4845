package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursegen-ai/coursegen/internal/api"
	"github.com/coursegen-ai/coursegen/internal/api/handlers"
	"github.com/coursegen-ai/coursegen/internal/api/middleware"
)

type RouterConfig struct {
	// APIToken guards all course routes when set. Empty means open access.
	APIToken      string
	CourseHandler *handlers.CourseHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.APIToken))

		r.Route("/courses", func(r chi.Router) {
			r.Post("/", cfg.CourseHandler.Build)
			r.Get("/", cfg.CourseHandler.List)
			r.Post("/search", cfg.CourseHandler.Search)
			r.Get("/files", cfg.CourseHandler.ListFiles)
			r.Get("/files/{filename}", cfg.CourseHandler.GetFile)
			r.Get("/topic/{topic}", cfg.CourseHandler.GetByTopic)
			r.Get("/{id}", cfg.CourseHandler.Get)
			r.Get("/{id}/download", cfg.CourseHandler.Download)
		})
	})

	return r
}
