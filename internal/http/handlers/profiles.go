package handlers

import (
	"errors"
	"net/http"

	"stylizer/internal/domain"
)

// StyleProfiles lists the selectable style presets.
func (a *App) StyleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.Catalog.List()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Profiles file not found.")
			return
		}
		a.Logger.Error().Err(err).Msg("api: load profiles failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load profiles")
		return
	}
	a.json(w, http.StatusOK, profiles)
}
