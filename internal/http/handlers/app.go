package handlers

import (
	"encoding/json"
	"net/http"

	"stylizer/internal/infra"
	"stylizer/internal/profile"
	"stylizer/internal/scheduler"
	"stylizer/internal/storage"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Cfg       *infra.Config
	Logger    infra.Logger
	Scheduler *scheduler.Scheduler
	Store     *storage.FileStore
	Catalog   *profile.Catalog
}

func NewApp(cfg *infra.Config, logger infra.Logger, sched *scheduler.Scheduler, store *storage.FileStore, catalog *profile.Catalog) *App {
	return &App{Cfg: cfg, Logger: logger, Scheduler: sched, Store: store, Catalog: catalog}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]string{"error": errCode, "message": msg})
}
