package handlers

import (
	"net/http"

	"missionreport/version"
)

// GetVersionHandler returns the application version.
func GetVersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": version.AppVersion})
}
