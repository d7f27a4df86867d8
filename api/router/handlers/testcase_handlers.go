package handlers

import (
	"fmt"
	"net/http"
	"time"

	"missionreport/core"
	"missionreport/database"
	"missionreport/logger"
	"missionreport/models"
)

// ListTestCasesHandler returns every test case of the mission in the user's
// order, hidden ones included. The stored order is repaired on the way.
func ListTestCasesHandler(w http.ResponseWriter, r *http.Request) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		writeError(w, "Listing test cases", err)
		return
	}
	if _, err := database.GetMissionByID(r.Context(), missionID); err != nil {
		writeError(w, "Listing test cases", err)
		return
	}
	tests, err := core.OrderedTestCases(r.Context(), database.Store{}, deps.TestOrder, missionID, false)
	if err != nil {
		writeError(w, "Listing test cases", err)
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

func validateTestCase(tc models.TestCase) error {
	if !tc.Status.Valid() {
		return fmt.Errorf("unknown test_case_status '%s': %w", tc.Status, models.ErrValidation)
	}
	if !tc.AttackPhase.Valid() {
		return fmt.Errorf("unknown attack_phase '%s': %w", tc.AttackPhase, models.ErrValidation)
	}
	if !tc.ExecutionStatus.Valid() {
		return fmt.Errorf("unknown execution_status '%s': %w", tc.ExecutionStatus, models.ErrValidation)
	}
	return nil
}

// CreateTestCaseHandler creates a test case. Without a test_number it takes the
// next number after the mission's highest.
func CreateTestCaseHandler(w http.ResponseWriter, r *http.Request) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		writeError(w, "Creating test case", err)
		return
	}
	if _, err := database.GetMissionByID(r.Context(), missionID); err != nil {
		writeError(w, "Creating test case", err)
		return
	}
	tc := models.NewTestCase(missionID, time.Now())
	if err := decodeJSON(r, &tc); err != nil {
		writeError(w, "Creating test case", err)
		return
	}
	tc.ID, tc.MissionID = 0, missionID
	tc.Normalize()
	if err := validateTestCase(tc); err != nil {
		writeError(w, "Creating test case", err)
		return
	}
	if tc.TestNumber == 0 {
		existing, err := database.ListTestCasesByMission(r.Context(), missionID)
		if err != nil {
			writeError(w, "Creating test case", err)
			return
		}
		for _, t := range existing {
			if t.TestNumber > tc.TestNumber {
				tc.TestNumber = t.TestNumber
			}
		}
		tc.TestNumber++
	}
	id, err := database.CreateTestCase(r.Context(), tc)
	if err != nil {
		writeError(w, "Creating test case", err)
		return
	}
	created, err := database.GetTestCaseByID(r.Context(), id)
	if err != nil {
		writeError(w, "Creating test case", err)
		return
	}
	writeStatus(w, http.StatusCreated, "Test case created", created)
}

// testCaseOfMission loads the test case named in the URL and checks it belongs to
// the mission in the URL.
func testCaseOfMission(r *http.Request) (models.TestCase, error) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		return models.TestCase{}, err
	}
	testID, err := urlID(r, "testID")
	if err != nil {
		return models.TestCase{}, err
	}
	tc, err := database.GetTestCaseByID(r.Context(), testID)
	if err != nil {
		return tc, err
	}
	if tc.MissionID != missionID {
		return tc, fmt.Errorf("test case %d is not part of mission %d: %w", testID, missionID, models.ErrNotFound)
	}
	return tc, nil
}

func GetTestCaseHandler(w http.ResponseWriter, r *http.Request) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		writeError(w, "Fetching test case", err)
		return
	}
	writeJSON(w, http.StatusOK, tc)
}

// UpdateTestCaseHandler applies the body on top of the stored test case.
// has_findings in the body is ignored; it always follows the findings text.
func UpdateTestCaseHandler(w http.ResponseWriter, r *http.Request) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		writeError(w, "Updating test case", err)
		return
	}
	id, missionID := tc.ID, tc.MissionID
	if err := decodeJSON(r, &tc); err != nil {
		writeError(w, "Updating test case", err)
		return
	}
	tc.ID, tc.MissionID = id, missionID
	tc.Normalize()
	if err := validateTestCase(tc); err != nil {
		writeError(w, "Updating test case", err)
		return
	}
	if err := database.UpdateTestCase(r.Context(), tc); err != nil {
		writeError(w, "Updating test case", err)
		return
	}
	updated, err := database.GetTestCaseByID(r.Context(), id)
	if err != nil {
		writeError(w, "Updating test case", err)
		return
	}
	writeStatus(w, http.StatusOK, "Test case updated", updated)
}

// DeleteTestCaseHandler deletes the test case and the files of its attachments.
func DeleteTestCaseHandler(w http.ResponseWriter, r *http.Request) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		writeError(w, "Deleting test case", err)
		return
	}
	files, err := deps.Attachments.FilesOfTestCase(r.Context(), tc.ID)
	if err != nil {
		writeError(w, "Deleting test case", err)
		return
	}
	if err := database.DeleteTestCase(r.Context(), tc.ID); err != nil {
		writeError(w, "Deleting test case", err)
		return
	}
	deps.Attachments.RemoveFiles(r.Context(), files)
	writeStatus(w, http.StatusOK, fmt.Sprintf("Test case %d deleted", tc.ID), map[string]int64{"id": tc.ID})
}

func CloneTestCaseHandler(w http.ResponseWriter, r *http.Request) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		writeError(w, "Cloning test case", err)
		return
	}
	newID, err := database.CloneTestCase(r.Context(), tc.ID)
	if err != nil {
		writeError(w, "Cloning test case", err)
		return
	}
	clone, err := database.GetTestCaseByID(r.Context(), newID)
	if err != nil {
		writeError(w, "Cloning test case", err)
		return
	}
	writeStatus(w, http.StatusCreated, fmt.Sprintf("Test case %d cloned", tc.ID), clone)
}

// ReorderTestCasesHandler saves the user's order of the mission's test cases.
func ReorderTestCasesHandler(w http.ResponseWriter, r *http.Request) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		writeError(w, "Reordering test cases", err)
		return
	}
	var req models.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Reordering test cases", err)
		return
	}
	tests, err := database.ListTestCasesByMission(r.Context(), missionID)
	if err != nil {
		writeError(w, "Reordering test cases", err)
		return
	}
	order, err := deps.TestOrder.ApplyUserOrder(r.Context(), missionID, req.Order, core.Entries(tests))
	if err != nil {
		writeError(w, "Reordering test cases", err)
		return
	}
	logger.Info("Test case order of mission %d saved", missionID)
	writeStatus(w, http.StatusOK, "Order saved", models.OrderRequest{Order: order})
}

func ListTestCaseHostsHandler(w http.ResponseWriter, r *http.Request) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		writeError(w, "Listing test case hosts", err)
		return
	}
	sources, err := database.ListTestCaseHosts(r.Context(), tc.ID, models.HostRoleSource)
	if err != nil {
		writeError(w, "Listing test case hosts", err)
		return
	}
	targets, err := database.ListTestCaseHosts(r.Context(), tc.ID, models.HostRoleTarget)
	if err != nil {
		writeError(w, "Listing test case hosts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Host{"sources": sources, "targets": targets})
}

func AddTestCaseHostHandler(w http.ResponseWriter, r *http.Request) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		writeError(w, "Linking host", err)
		return
	}
	var req models.HostLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Linking host", err)
		return
	}
	if err := database.AddTestCaseHost(r.Context(), tc.ID, req.HostID, req.Role); err != nil {
		writeError(w, "Linking host", err)
		return
	}
	writeStatus(w, http.StatusOK, fmt.Sprintf("Host %d added as %s", req.HostID, req.Role), req)
}

func RemoveTestCaseHostHandler(w http.ResponseWriter, r *http.Request) {
	tc, err := testCaseOfMission(r)
	if err != nil {
		writeError(w, "Unlinking host", err)
		return
	}
	var req models.HostLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Unlinking host", err)
		return
	}
	if err := database.RemoveTestCaseHost(r.Context(), tc.ID, req.HostID, req.Role); err != nil {
		writeError(w, "Unlinking host", err)
		return
	}
	writeStatus(w, http.StatusOK, fmt.Sprintf("Host %d removed as %s", req.HostID, req.Role), req)
}
