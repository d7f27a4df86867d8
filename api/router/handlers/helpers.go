package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"missionreport/core"
	"missionreport/logger"
	"missionreport/models"
	"missionreport/storage"
)

// Dependencies are the services the handlers share. cmd wires them once at start.
type Dependencies struct {
	Reports     *core.ReportAssembler
	TestOrder   *core.SortReconciler
	DataOrder   *core.SortReconciler
	Attachments *core.AttachmentService
}

var deps Dependencies

// Init installs the services used by every handler.
func Init(d Dependencies) {
	deps = d
}

// urlID parses the chi URL parameter name as a record id.
func urlID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, raw, models.ErrValidation)
	}
	return id, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request payload: %v: %w", err, models.ErrValidation)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// writeStatus answers a mutation with a ReturnStatus body.
func writeStatus(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, models.ReturnStatus{Success: true, Message: message, Data: data})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err under op and answers with a failed ReturnStatus. Unexpected
// errors are not echoed to the client.
func writeError(w http.ResponseWriter, op string, err error) {
	status := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("%s: %v", op, err)
		message = op + " failed"
	} else {
		logger.Info("%s: %v", op, err)
	}
	writeJSON(w, status, models.ReturnStatus{Success: false, Message: message, Data: map[string]interface{}{}})
}
