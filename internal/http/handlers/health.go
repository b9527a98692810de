package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	queued, processing := a.Scheduler.Counts()
	a.json(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"queued":     queued,
		"processing": processing,
	})
}
