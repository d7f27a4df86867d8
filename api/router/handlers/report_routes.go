package handlers

import (
	"github.com/go-chi/chi/v5"
)

func registerReportRoutes(r chi.Router) {
	r.Get("/report", GenerateReportHandler)
	r.Get("/attachments", DownloadAttachmentsHandler)
	r.Get("/stats", MissionStatsHandler)
}
