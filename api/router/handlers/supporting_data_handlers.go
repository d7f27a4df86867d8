package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"missionreport/core"
	"missionreport/database"
	"missionreport/logger"
	"missionreport/models"
)

const maxUploadMemory = 32 << 20

func ListSupportingDataHandler(w http.ResponseWriter, r *http.Request) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		writeError(w, "Listing supporting data", err)
		return
	}
	items, err := core.OrderedSupportingData(r.Context(), database.Store{}, deps.DataOrder, tc.ID, false)
	if err != nil {
		writeError(w, "Listing supporting data", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// formBool reads a checkbox style form value; a missing value yields def.
func formBool(r *http.Request, key string, def bool) bool {
	v := r.FormValue(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return strings.EqualFold(v, "on")
	}
	return b
}

// UploadSupportingDataHandler takes a multipart form with file, caption and
// include fields.
func UploadSupportingDataHandler(w http.ResponseWriter, r *http.Request) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		writeError(w, "Uploading supporting data", err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, "Uploading supporting data", fmt.Errorf("parsing upload: %v: %w", err, models.ErrValidation))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "Uploading supporting data", fmt.Errorf("upload has no file: %w", models.ErrValidation))
		return
	}
	defer file.Close()

	sd := models.SupportingData{
		TestCaseID: tc.ID,
		Caption:    r.FormValue("caption"),
		Include:    formBool(r, "include", true),
	}
	sd, err = deps.Attachments.Upload(r.Context(), sd, header.Filename, file)
	if err != nil {
		writeError(w, "Uploading supporting data", err)
		return
	}
	logger.Info("Uploaded %s for test case %d as supporting data %d", sd.TestFile, tc.ID, sd.ID)
	writeStatus(w, http.StatusCreated, "Supporting data uploaded", sd)
}

func supportingDataOfTestCase(r *http.Request) (models.SupportingData, error) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		return models.SupportingData{}, err
	}
	dataID, err := urlID(r, "dataID")
	if err != nil {
		return models.SupportingData{}, err
	}
	sd, err := database.GetSupportingDataByID(r.Context(), dataID)
	if err != nil {
		return sd, err
	}
	if sd.TestCaseID != tc.ID {
		return sd, fmt.Errorf("supporting data %d is not part of test case %d: %w", dataID, tc.ID, models.ErrNotFound)
	}
	return sd, nil
}

type supportingDataUpdate struct {
	Caption *string `json:"caption"`
	Include *bool   `json:"include_flag"`
}

// UpdateSupportingDataHandler changes caption and include flag from a JSON body,
// or from a multipart form that may also carry a replacement file.
func UpdateSupportingDataHandler(w http.ResponseWriter, r *http.Request) {
	sd, err := supportingDataOfTestCase(r)
	if err != nil {
		writeError(w, "Updating supporting data", err)
		return
	}
	previousFile := sd.TestFile
	replaced := false

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, "Updating supporting data", fmt.Errorf("parsing upload: %v: %w", err, models.ErrValidation))
			return
		}
		if _, ok := r.MultipartForm.Value["caption"]; ok {
			sd.Caption = r.FormValue("caption")
		}
		sd.Include = formBool(r, "include", sd.Include)
		if file, header, err := r.FormFile("file"); err == nil {
			name, err := deps.Attachments.Replace(r.Context(), header.Filename, file)
			file.Close()
			if err != nil {
				writeError(w, "Updating supporting data", err)
				return
			}
			sd.TestFile = name
			replaced = true
		}
	} else {
		var req supportingDataUpdate
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, "Updating supporting data", err)
			return
		}
		if req.Caption != nil {
			sd.Caption = *req.Caption
		}
		if req.Include != nil {
			sd.Include = *req.Include
		}
	}

	if err := database.UpdateSupportingData(r.Context(), sd); err != nil {
		if replaced {
			deps.Attachments.RemoveFile(r.Context(), sd.TestFile)
		}
		writeError(w, "Updating supporting data", err)
		return
	}
	if replaced {
		deps.Attachments.RemoveFile(r.Context(), previousFile)
	}
	writeStatus(w, http.StatusOK, "Supporting data updated", sd)
}

// DeleteSupportingDataHandler deletes the record and its stored file.
func DeleteSupportingDataHandler(w http.ResponseWriter, r *http.Request) {
	sd, err := supportingDataOfTestCase(r)
	if err != nil {
		writeError(w, "Deleting supporting data", err)
		return
	}
	if err := deps.Attachments.Delete(r.Context(), sd.ID); err != nil {
		writeError(w, "Deleting supporting data", err)
		return
	}
	writeStatus(w, http.StatusOK, fmt.Sprintf("Supporting data %d deleted", sd.ID), map[string]int64{"id": sd.ID})
}

func DownloadSupportingDataHandler(w http.ResponseWriter, r *http.Request) {
	sd, err := supportingDataOfTestCase(r)
	if err != nil {
		writeError(w, "Downloading supporting data", err)
		return
	}
	rc, name, err := deps.Attachments.Open(r.Context(), sd.ID)
	if err != nil {
		writeError(w, "Downloading supporting data", err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", core.ContentTypeOctetStream)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if _, err := io.Copy(w, rc); err != nil {
		logger.Error("Streaming supporting data %d: %v", sd.ID, err)
	}
}

func ReorderSupportingDataHandler(w http.ResponseWriter, r *http.Request) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		writeError(w, "Reordering supporting data", err)
		return
	}
	var req models.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Reordering supporting data", err)
		return
	}
	items, err := database.ListSupportingDataByTestCase(r.Context(), tc.ID)
	if err != nil {
		writeError(w, "Reordering supporting data", err)
		return
	}
	order, err := deps.DataOrder.ApplyUserOrder(r.Context(), tc.ID, req.Order, core.Entries(items))
	if err != nil {
		writeError(w, "Reordering supporting data", err)
		return
	}
	writeStatus(w, http.StatusOK, "Order saved", models.OrderRequest{Order: order})
}
