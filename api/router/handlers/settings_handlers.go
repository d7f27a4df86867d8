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

type settingsUpdate struct {
	SystemClassificationID *int64  `json:"system_classification_id"`
	HostOutputFormat       *string `json:"host_output_format"`
}

func GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	s, err := database.GetOrCreateDynamicSettings(r.Context())
	if err != nil {
		writeError(w, "Loading settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettingsHandler changes the system classification and the host output format.
// Omitted fields keep their current value.
func UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	current, err := database.GetOrCreateDynamicSettings(r.Context())
	if err != nil {
		writeError(w, "Updating settings", err)
		return
	}
	var req settingsUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Updating settings", err)
		return
	}

	legendID := current.SystemClassification.ID
	if req.SystemClassificationID != nil {
		if _, err := database.GetClassificationLegendByID(r.Context(), *req.SystemClassificationID); err != nil {
			writeError(w, "Updating settings", fmt.Errorf("unknown classification %d: %w", *req.SystemClassificationID, models.ErrValidation))
			return
		}
		legendID = *req.SystemClassificationID
	}
	format := current.HostOutputFormat
	if req.HostOutputFormat != nil {
		if err := core.ValidateHostOutputFormat(*req.HostOutputFormat); err != nil {
			writeError(w, "Updating settings", err)
			return
		}
		format = *req.HostOutputFormat
	}

	if err := database.UpdateDynamicSettings(r.Context(), legendID, format); err != nil {
		writeError(w, "Updating settings", err)
		return
	}
	updated, err := database.GetOrCreateDynamicSettings(r.Context())
	if err != nil {
		writeError(w, "Updating settings", err)
		return
	}
	logger.Info("Settings updated: classification %d, host format %q", legendID, format)
	writeStatus(w, http.StatusOK, "Settings updated", updated)
}

func ListBusinessAreasHandler(w http.ResponseWriter, r *http.Request) {
	areas, err := database.ListBusinessAreas(r.Context())
	if err != nil {
		writeError(w, "Listing business areas", err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

func CreateBusinessAreaHandler(w http.ResponseWriter, r *http.Request) {
	var area models.BusinessArea
	if err := decodeJSON(r, &area); err != nil {
		writeError(w, "Creating business area", err)
		return
	}
	area.Name = strings.TrimSpace(area.Name)
	if area.Name == "" {
		writeError(w, "Creating business area", fmt.Errorf("business area name is required: %w", models.ErrValidation))
		return
	}
	id, err := database.CreateBusinessArea(r.Context(), area.Name)
	if err != nil {
		writeError(w, "Creating business area", err)
		return
	}
	area.ID = id
	writeStatus(w, http.StatusCreated, "Business area created", area)
}

func DeleteBusinessAreaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "areaID")
	if err != nil {
		writeError(w, "Deleting business area", err)
		return
	}
	if err := database.DeleteBusinessArea(r.Context(), id); err != nil {
		writeError(w, "Deleting business area", err)
		return
	}
	writeStatus(w, http.StatusOK, fmt.Sprintf("Business area %d deleted", id), map[string]int64{"id": id})
}

func ListColorsHandler(w http.ResponseWriter, r *http.Request) {
	colors, err := database.ListColors(r.Context())
	if err != nil {
		writeError(w, "Listing colors", err)
		return
	}
	writeJSON(w, http.StatusOK, colors)
}

// CreateColorHandler stores the code in its six digit lower-case form.
func CreateColorHandler(w http.ResponseWriter, r *http.Request) {
	var c models.Color
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, "Creating color", err)
		return
	}
	c.DisplayText = strings.TrimSpace(c.DisplayText)
	if c.DisplayText == "" {
		writeError(w, "Creating color", fmt.Errorf("color display text is required: %w", models.ErrValidation))
		return
	}
	hex, err := core.NormalizeHex(c.HexColorCode)
	if err != nil {
		writeError(w, "Creating color", err)
		return
	}
	c.HexColorCode = hex
	id, err := database.CreateColor(r.Context(), c)
	if err != nil {
		writeError(w, "Creating color", err)
		return
	}
	c.ID = id
	writeStatus(w, http.StatusCreated, "Color created", c)
}

func DeleteColorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "colorID")
	if err != nil {
		writeError(w, "Deleting color", err)
		return
	}
	if err := database.DeleteColor(r.Context(), id); err != nil {
		writeError(w, "Deleting color", err)
		return
	}
	writeStatus(w, http.StatusOK, fmt.Sprintf("Color %d deleted", id), map[string]int64{"id": id})
}

func ListClassificationsHandler(w http.ResponseWriter, r *http.Request) {
	legends, err := database.ListClassificationLegends(r.Context())
	if err != nil {
		writeError(w, "Listing classifications", err)
		return
	}
	writeJSON(w, http.StatusOK, legends)
}

type classificationRequest struct {
	VerboseLegend             string `json:"verbose_legend"`
	ShortLegend               string `json:"short_legend"`
	TextColorID               int64  `json:"text_color_id"`
	BackgroundColorID         int64  `json:"background_color_id"`
	ReportLabelColorSelection string `json:"report_label_color_selection"`
}

func CreateClassificationHandler(w http.ResponseWriter, r *http.Request) {
	var req classificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Creating classification", err)
		return
	}
	legend := models.ClassificationLegend{
		VerboseLegend:             strings.TrimSpace(req.VerboseLegend),
		ShortLegend:               strings.TrimSpace(req.ShortLegend),
		ReportLabelColorSelection: strings.ToUpper(req.ReportLabelColorSelection),
	}
	if legend.VerboseLegend == "" {
		writeError(w, "Creating classification", fmt.Errorf("verbose legend is required: %w", models.ErrValidation))
		return
	}
	text, err := database.GetColorByID(r.Context(), req.TextColorID)
	if err != nil {
		writeError(w, "Creating classification", fmt.Errorf("unknown text color %d: %w", req.TextColorID, models.ErrValidation))
		return
	}
	background, err := database.GetColorByID(r.Context(), req.BackgroundColorID)
	if err != nil {
		writeError(w, "Creating classification", fmt.Errorf("unknown background color %d: %w", req.BackgroundColorID, models.ErrValidation))
		return
	}
	legend.TextColor, legend.BackgroundColor = text, background

	id, err := database.CreateClassificationLegend(r.Context(), legend)
	if err != nil {
		writeError(w, "Creating classification", err)
		return
	}
	created, err := database.GetClassificationLegendByID(r.Context(), id)
	if err != nil {
		writeError(w, "Creating classification", err)
		return
	}
	writeStatus(w, http.StatusCreated, "Classification created", created)
}

func DeleteClassificationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "legendID")
	if err != nil {
		writeError(w, "Deleting classification", err)
		return
	}
	if err := database.DeleteClassificationLegend(r.Context(), id); err != nil {
		writeError(w, "Deleting classification", err)
		return
	}
	writeStatus(w, http.StatusOK, fmt.Sprintf("Classification %d deleted", id), map[string]int64{"id": id})
}
