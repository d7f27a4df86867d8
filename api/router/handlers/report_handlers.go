package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"missionreport/core"
	"missionreport/database"
	"missionreport/logger"
)

// GenerateReportHandler renders the mission document.
func GenerateReportHandler(w http.ResponseWriter, r *http.Request) {
	serveReport(w, r, false)
}

// DownloadAttachmentsHandler returns the mission's attachments as a zip archive.
func DownloadAttachmentsHandler(w http.ResponseWriter, r *http.Request) {
	serveReport(w, r, true)
}

func serveReport(w http.ResponseWriter, r *http.Request, wantZip bool) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		writeError(w, "Generating report", err)
		return
	}
	out, err := deps.Reports.Generate(r.Context(), missionID, wantZip)
	if err != nil {
		writeError(w, "Generating report", err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Body); err != nil {
		logger.Error("Writing %s for mission %d: %v", out.Filename, missionID, err)
	}
}

func MissionStatsHandler(w http.ResponseWriter, r *http.Request) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		writeError(w, "Computing mission statistics", err)
		return
	}
	if _, err := database.GetMissionByID(r.Context(), missionID); err != nil {
		writeError(w, "Computing mission statistics", err)
		return
	}
	tcs, err := database.ListTestCasesByMission(r.Context(), missionID)
	if err != nil {
		writeError(w, "Computing mission statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, core.NewAnalyticsAggregator(tcs).Stats())
}
