package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(s.config.HTTP.PublicURL+"/swagger/doc.json"),
	))

	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.ServeWsHandler)

	r.Get("/blobs/*", s.GetBlobHandler)
	r.Put("/blobs/*", s.PutBlobHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.LoginHandler)
		r.Post("/auth/register", s.RegisterHandler)
		r.Post("/auth/confirm", s.ConfirmHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)

			r.Post("/auth/logout", s.LogoutHandler)
			r.Get("/me", s.GetCurrentUserHandler)

			r.Get("/nodes", s.ListNodesHandler)
			r.Post("/nodes/folder", s.CreateFolderHandler)
			r.Post("/nodes/file", s.UploadFileHandler)
			r.Post("/nodes/upload-url", s.CreateUploadURLHandler)
			r.Post("/nodes/file/complete", s.CompleteUploadHandler)
			r.Get("/nodes/{nodeId}/download", s.DownloadFileHandler)
			r.Patch("/nodes/{nodeId}", s.RenameNodeHandler)
			r.Put("/nodes/{nodeId}/star", s.StarNodeHandler)
			r.Delete("/nodes/{nodeId}", s.DeleteNodeHandler)
			r.Post("/nodes/{nodeId}/restore", s.RestoreNodeHandler)
			r.Delete("/nodes/{nodeId}/permanent", s.PermanentDeleteHandler)

			r.Get("/starred", s.ListStarredHandler)
			r.Get("/trash", s.ListTrashHandler)
			r.Delete("/trash", s.PurgeTrashHandler)

			r.Post("/nodes/{nodeId}/share", s.ShareNodeHandler)
			r.Delete("/nodes/{nodeId}/share/{username}", s.UnshareNodeHandler)
			r.Get("/shared", s.ListSharedHandler)

			r.Get("/events", s.GetEventsHandler)
		})
	})

	return r
}
