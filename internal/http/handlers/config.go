package handlers

import "net/http"

// FrontendConfig hands the bundled UI its bootstrap configuration.
func (a *App) FrontendConfig(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"apiBaseUrl": ""})
}
