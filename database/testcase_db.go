package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"missionreport/logger"
	"missionreport/models"
)

const testCaseColumns = `
	id, mission_id, test_number, test_case_include_flag, test_case_status, enclave, test_objective,
	attack_phase, attack_phase_include_flag, attack_type, attack_type_include_flag,
	assumptions, assumptions_include_flag, test_description, test_description_include_flag,
	sources_include_flag, targets_include_flag, attack_time_date, attack_time_date_include_flag,
	tools_used, tools_used_include_flag, command_syntax, command_syntax_include_flag,
	test_result_observation, test_result_observation_include_flag, attack_side_effects, attack_side_effects_include_flag,
	execution_status, has_findings, findings, findings_include_flag, mitigation, mitigation_include_flag,
	point_of_contact, re_eval_test_case_number, supporting_data_order`

func scanTestCase(row rowScanner) (models.TestCase, error) {
	var t models.TestCase
	f := &t.TestCaseIncludeFlags
	err := row.Scan(
		&t.ID, &t.MissionID, &t.TestNumber, &t.Include, &t.Status, &t.Enclave, &t.TestObjective,
		&t.AttackPhase, &f.AttackPhaseInclude, &t.AttackType, &f.AttackTypeInclude,
		&t.Assumptions, &f.AssumptionsInclude, &t.Description, &f.TestDescriptionInclude,
		&f.SourcesInclude, &f.TargetsInclude, &t.AttackTime, &f.AttackTimeDateInclude,
		&t.ToolsUsed, &f.ToolsUsedInclude, &t.CommandSyntax, &f.CommandSyntaxInclude,
		&t.ResultObservation, &f.TestResultObservationInclude, &t.SideEffects, &f.AttackSideEffectsInclude,
		&t.ExecutionStatus, &t.HasFindings, &t.Findings, &f.FindingsInclude, &t.Mitigation, &f.MitigationInclude,
		&t.PointOfContact, &t.ReEvalTestCaseNumber, &t.SupportingDataOrder,
	)
	return t, err
}

// testCaseArgs returns the column values in testCaseColumns order, minus id and mission_id.
func testCaseArgs(t models.TestCase) []interface{} {
	f := t.TestCaseIncludeFlags
	return []interface{}{
		t.TestNumber, t.Include, t.Status, t.Enclave, t.TestObjective,
		t.AttackPhase, f.AttackPhaseInclude, t.AttackType, f.AttackTypeInclude,
		t.Assumptions, f.AssumptionsInclude, t.Description, f.TestDescriptionInclude,
		f.SourcesInclude, f.TargetsInclude, t.AttackTime, f.AttackTimeDateInclude,
		t.ToolsUsed, f.ToolsUsedInclude, t.CommandSyntax, f.CommandSyntaxInclude,
		t.ResultObservation, f.TestResultObservationInclude, t.SideEffects, f.AttackSideEffectsInclude,
		t.ExecutionStatus, t.HasFindings, t.Findings, f.FindingsInclude, t.Mitigation, f.MitigationInclude,
		t.PointOfContact, t.ReEvalTestCaseNumber, t.SupportingDataOrder,
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertTestCase(ctx context.Context, ex execer, t models.TestCase) (int64, error) {
	t.Normalize()
	args := append([]interface{}{t.MissionID}, testCaseArgs(t)...)
	result, err := ex.ExecContext(ctx, `
		INSERT INTO test_cases (
			mission_id, test_number, test_case_include_flag, test_case_status, enclave, test_objective,
			attack_phase, attack_phase_include_flag, attack_type, attack_type_include_flag,
			assumptions, assumptions_include_flag, test_description, test_description_include_flag,
			sources_include_flag, targets_include_flag, attack_time_date, attack_time_date_include_flag,
			tools_used, tools_used_include_flag, command_syntax, command_syntax_include_flag,
			test_result_observation, test_result_observation_include_flag, attack_side_effects, attack_side_effects_include_flag,
			execution_status, has_findings, findings, findings_include_flag, mitigation, mitigation_include_flag,
			point_of_contact, re_eval_test_case_number, supporting_data_order
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...)
	if err != nil {
		return 0, fmt.Errorf("executing create test case statement: %w", err)
	}
	return result.LastInsertId()
}

// CreateTestCase inserts the test case after recomputing has_findings.
func CreateTestCase(ctx context.Context, t models.TestCase) (int64, error) {
	logger.Info("Creating test case %d for mission %d", t.TestNumber, t.MissionID)
	return insertTestCase(ctx, DB, t)
}

func GetTestCaseByID(ctx context.Context, testCaseID int64) (models.TestCase, error) {
	row := DB.QueryRowContext(ctx, `SELECT `+testCaseColumns+` FROM test_cases WHERE id = ?`, testCaseID)
	t, err := scanTestCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, notFound("test case", testCaseID)
		}
		return t, fmt.Errorf("querying test case %d: %w", testCaseID, err)
	}
	return t, nil
}

// ListTestCasesByMission returns the mission's test cases in id order. Callers that
// need the user's ordering go through the reconciler.
func ListTestCasesByMission(ctx context.Context, missionID int64) ([]models.TestCase, error) {
	rows, err := DB.QueryContext(ctx, `SELECT `+testCaseColumns+` FROM test_cases WHERE mission_id = ? ORDER BY id ASC`, missionID)
	if err != nil {
		return nil, fmt.Errorf("querying test cases for mission %d: %w", missionID, err)
	}
	defer rows.Close()

	tests := []models.TestCase{}
	for rows.Next() {
		t, err := scanTestCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning test case row for mission %d: %w", missionID, err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// UpdateTestCase saves every editable column. has_findings is always recomputed
// from the findings text, whatever the caller sent. The supporting data order is
// owned by the reconciler and is left untouched.
func UpdateTestCase(ctx context.Context, t models.TestCase) error {
	logger.Info("Updating test case %d", t.ID)
	t.Normalize()
	f := t.TestCaseIncludeFlags
	result, err := DB.ExecContext(ctx, `
		UPDATE test_cases SET
			test_number = ?, test_case_include_flag = ?, test_case_status = ?, enclave = ?, test_objective = ?,
			attack_phase = ?, attack_phase_include_flag = ?, attack_type = ?, attack_type_include_flag = ?,
			assumptions = ?, assumptions_include_flag = ?, test_description = ?, test_description_include_flag = ?,
			sources_include_flag = ?, targets_include_flag = ?, attack_time_date = ?, attack_time_date_include_flag = ?,
			tools_used = ?, tools_used_include_flag = ?, command_syntax = ?, command_syntax_include_flag = ?,
			test_result_observation = ?, test_result_observation_include_flag = ?, attack_side_effects = ?, attack_side_effects_include_flag = ?,
			execution_status = ?, has_findings = ?, findings = ?, findings_include_flag = ?, mitigation = ?, mitigation_include_flag = ?,
			point_of_contact = ?, re_eval_test_case_number = ?
		WHERE id = ?`,
		t.TestNumber, t.Include, t.Status, t.Enclave, t.TestObjective,
		t.AttackPhase, f.AttackPhaseInclude, t.AttackType, f.AttackTypeInclude,
		t.Assumptions, f.AssumptionsInclude, t.Description, f.TestDescriptionInclude,
		f.SourcesInclude, f.TargetsInclude, t.AttackTime, f.AttackTimeDateInclude,
		t.ToolsUsed, f.ToolsUsedInclude, t.CommandSyntax, f.CommandSyntaxInclude,
		t.ResultObservation, f.TestResultObservationInclude, t.SideEffects, f.AttackSideEffectsInclude,
		t.ExecutionStatus, t.HasFindings, t.Findings, f.FindingsInclude, t.Mitigation, f.MitigationInclude,
		t.PointOfContact, t.ReEvalTestCaseNumber,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("executing update test case statement for test case %d: %w", t.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("test case", t.ID)
	}
	return nil
}

func DeleteTestCase(ctx context.Context, testCaseID int64) error {
	logger.Info("Deleting test case %d", testCaseID)
	result, err := DB.ExecContext(ctx, "DELETE FROM test_cases WHERE id = ?", testCaseID)
	if err != nil {
		return fmt.Errorf("deleting test case %d: %w", testCaseID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("test case", testCaseID)
	}
	return nil
}

// CloneTestCase copies a test case and its host links in one transaction. The copy
// starts in NEW status with no supporting data.
func CloneTestCase(ctx context.Context, testCaseID int64) (int64, error) {
	src, err := GetTestCaseByID(ctx, testCaseID)
	if err != nil {
		return 0, err
	}
	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning clone transaction for test case %d: %w", testCaseID, err)
	}
	defer tx.Rollback()

	newID, err := insertTestCase(ctx, tx, src.Clone())
	if err != nil {
		return 0, fmt.Errorf("cloning test case %d: %w", testCaseID, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO test_case_hosts (test_case_id, host_id, role)
		SELECT ?, host_id, role FROM test_case_hosts WHERE test_case_id = ?`, newID, testCaseID); err != nil {
		return 0, fmt.Errorf("copying host links from test case %d: %w", testCaseID, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing clone of test case %d: %w", testCaseID, err)
	}
	logger.Info("Cloned test case %d as %d", testCaseID, newID)
	return newID, nil
}

func GetSupportingDataOrder(ctx context.Context, testCaseID int64) (string, error) {
	var order string
	err := DB.QueryRowContext(ctx, "SELECT supporting_data_order FROM test_cases WHERE id = ?", testCaseID).Scan(&order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", notFound("test case", testCaseID)
		}
		return "", fmt.Errorf("querying supporting data order for test case %d: %w", testCaseID, err)
	}
	return order, nil
}

func SetSupportingDataOrder(ctx context.Context, testCaseID int64, order string) error {
	logger.Debug("Persisting supporting data order for test case %d: %s", testCaseID, order)
	result, err := DB.ExecContext(ctx, "UPDATE test_cases SET supporting_data_order = ? WHERE id = ?", order, testCaseID)
	if err != nil {
		return fmt.Errorf("updating supporting data order for test case %d: %w", testCaseID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("test case", testCaseID)
	}
	return nil
}
