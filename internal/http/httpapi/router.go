package httpapi

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"stylizer/internal/http/handlers"
	"stylizer/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(app.Cfg.AllowedOrigins))

	r.Get("/v1/healthz", app.Health)
	r.Get("/config", app.FrontendConfig)
	r.Get("/api/profiles", app.StyleProfiles)

	r.Post("/process-image", app.ProcessImage)
	r.Get("/status/{job_id}", app.JobStatus)
	r.Get("/result/{job_id}", app.JobResult)

	// The bundled UI is mounted last so API routes win.
	if info, err := os.Stat(app.Cfg.StaticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(app.Cfg.StaticDir)))
	}

	return r
}
