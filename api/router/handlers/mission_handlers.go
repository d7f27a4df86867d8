package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"missionreport/core"
	"missionreport/database"
	"missionreport/logger"
	"missionreport/models"
)

func ListMissionsHandler(w http.ResponseWriter, r *http.Request) {
	missions, err := database.ListMissions(r.Context())
	if err != nil {
		writeError(w, "Listing missions", err)
		return
	}
	writeJSON(w, http.StatusOK, missions)
}

func validateMission(m models.Mission) error {
	if strings.TrimSpace(m.MissionName) == "" {
		return fmt.Errorf("mission_name is required: %w", models.ErrValidation)
	}
	if len(m.MissionNumber) > 5 {
		return fmt.Errorf("mission_number is longer than 5 characters: %w", models.ErrValidation)
	}
	if len(m.TestCaseIdentifier) > 20 {
		return fmt.Errorf("test_case_identifier is longer than 20 characters: %w", models.ErrValidation)
	}
	return nil
}

// CreateMissionHandler creates a mission. Include flags the body leaves out start
// enabled and empty section texts take the stock defaults.
func CreateMissionHandler(w http.ResponseWriter, r *http.Request) {
	m := models.Mission{MissionIncludeFlags: models.AllMissionIncludeFlags()}
	if err := decodeJSON(r, &m); err != nil {
		writeError(w, "Creating mission", err)
		return
	}
	if err := validateMission(m); err != nil {
		writeError(w, "Creating mission", err)
		return
	}
	if _, err := database.GetBusinessAreaByID(r.Context(), m.BusinessAreaID); err != nil {
		writeError(w, "Creating mission", fmt.Errorf("business area %d: %w", m.BusinessAreaID, models.ErrValidation))
		return
	}
	if err := core.ApplySectionDefaults(&m); err != nil {
		writeError(w, "Creating mission", err)
		return
	}
	id, err := database.CreateMission(r.Context(), m)
	if err != nil {
		writeError(w, "Creating mission", err)
		return
	}
	created, err := database.GetMissionByID(r.Context(), id)
	if err != nil {
		writeError(w, "Creating mission", err)
		return
	}
	logger.Info("Created mission %d '%s'", id, created.MissionName)
	writeStatus(w, http.StatusCreated, "Mission created", created)
}

func GetMissionHandler(w http.ResponseWriter, r *http.Request) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		writeError(w, "Fetching mission", err)
		return
	}
	m, err := database.GetMissionByID(r.Context(), missionID)
	if err != nil {
		writeError(w, "Fetching mission", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateMissionHandler applies the body on top of the stored mission, so fields
// the body leaves out keep their values.
func UpdateMissionHandler(w http.ResponseWriter, r *http.Request) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		writeError(w, "Updating mission", err)
		return
	}
	m, err := database.GetMissionByID(r.Context(), missionID)
	if err != nil {
		writeError(w, "Updating mission", err)
		return
	}
	if err := decodeJSON(r, &m); err != nil {
		writeError(w, "Updating mission", err)
		return
	}
	m.ID = missionID
	if err := validateMission(m); err != nil {
		writeError(w, "Updating mission", err)
		return
	}
	if err := database.UpdateMission(r.Context(), m); err != nil {
		writeError(w, "Updating mission", err)
		return
	}
	updated, err := database.GetMissionByID(r.Context(), missionID)
	if err != nil {
		writeError(w, "Updating mission", err)
		return
	}
	writeStatus(w, http.StatusOK, "Mission updated", updated)
}

// DeleteMissionHandler deletes the mission with everything below it, including
// the stored attachment files.
func DeleteMissionHandler(w http.ResponseWriter, r *http.Request) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		writeError(w, "Deleting mission", err)
		return
	}
	files, err := deps.Attachments.FilesOfMission(r.Context(), missionID)
	if err != nil {
		writeError(w, "Deleting mission", err)
		return
	}
	if err := database.DeleteMission(r.Context(), missionID); err != nil {
		writeError(w, "Deleting mission", err)
		return
	}
	deps.Attachments.RemoveFiles(r.Context(), files)
	writeStatus(w, http.StatusOK, fmt.Sprintf("Mission %d deleted", missionID), map[string]int64{"id": missionID})
}
