package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"missionreport/logger"
	"missionreport/models"
)

const missionColumns = `
	m.id, m.mission_name, m.mission_number, m.test_case_identifier, m.business_area_id, COALESCE(b.name, ''),
	m.introduction, m.executive_summary, m.scope, m.objectives, m.technical_assessment_overview, m.conclusion,
	m.attack_phase_include_flag, m.attack_type_include_flag, m.assumptions_include_flag, m.test_description_include_flag,
	m.findings_include_flag, m.mitigation_include_flag, m.tools_used_include_flag, m.command_syntax_include_flag,
	m.targets_include_flag, m.sources_include_flag, m.attack_time_date_include_flag, m.attack_side_effects_include_flag,
	m.test_result_observation_include_flag, m.supporting_data_include_flag, m.customer_notes_include_flag,
	m.test_order`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMission(row rowScanner) (models.Mission, error) {
	var m models.Mission
	f := &m.MissionIncludeFlags
	err := row.Scan(
		&m.ID, &m.MissionName, &m.MissionNumber, &m.TestCaseIdentifier, &m.BusinessAreaID, &m.BusinessAreaName,
		&m.Introduction, &m.ExecutiveSummary, &m.Scope, &m.Objectives, &m.TechnicalAssessmentOverview, &m.Conclusion,
		&f.AttackPhaseInclude, &f.AttackTypeInclude, &f.AssumptionsInclude, &f.TestDescriptionInclude,
		&f.FindingsInclude, &f.MitigationInclude, &f.ToolsUsedInclude, &f.CommandSyntaxInclude,
		&f.TargetsInclude, &f.SourcesInclude, &f.AttackTimeDateInclude, &f.AttackSideEffectsInclude,
		&f.TestResultObservationInclude, &f.SupportingDataInclude, &f.CustomerNotesInclude,
		&m.TestOrder,
	)
	return m, err
}

func missionFlagArgs(f models.MissionIncludeFlags) []interface{} {
	return []interface{}{
		f.AttackPhaseInclude, f.AttackTypeInclude, f.AssumptionsInclude, f.TestDescriptionInclude,
		f.FindingsInclude, f.MitigationInclude, f.ToolsUsedInclude, f.CommandSyntaxInclude,
		f.TargetsInclude, f.SourcesInclude, f.AttackTimeDateInclude, f.AttackSideEffectsInclude,
		f.TestResultObservationInclude, f.SupportingDataInclude, f.CustomerNotesInclude,
	}
}

// CreateMission inserts a mission. The test order always starts empty.
func CreateMission(ctx context.Context, m models.Mission) (int64, error) {
	logger.Info("Creating mission: %s", m.MissionName)
	stmt, err := DB.PrepareContext(ctx, `
		INSERT INTO missions (
			mission_name, mission_number, test_case_identifier, business_area_id,
			introduction, executive_summary, scope, objectives, technical_assessment_overview, conclusion,
			attack_phase_include_flag, attack_type_include_flag, assumptions_include_flag, test_description_include_flag,
			findings_include_flag, mitigation_include_flag, tools_used_include_flag, command_syntax_include_flag,
			targets_include_flag, sources_include_flag, attack_time_date_include_flag, attack_side_effects_include_flag,
			test_result_observation_include_flag, supporting_data_include_flag, customer_notes_include_flag,
			test_order
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '[]')
	`)
	if err != nil {
		logger.Error("Error preparing create mission statement: %v", err)
		return 0, fmt.Errorf("preparing create mission statement: %w", err)
	}
	defer stmt.Close()

	args := []interface{}{
		m.MissionName, m.MissionNumber, m.TestCaseIdentifier, m.BusinessAreaID,
		m.Introduction, m.ExecutiveSummary, m.Scope, m.Objectives, m.TechnicalAssessmentOverview, m.Conclusion,
	}
	args = append(args, missionFlagArgs(m.MissionIncludeFlags)...)
	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("executing create mission statement: %w", err)
	}
	return result.LastInsertId()
}

func GetMissionByID(ctx context.Context, missionID int64) (models.Mission, error) {
	row := DB.QueryRowContext(ctx, `SELECT `+missionColumns+`
		FROM missions m LEFT JOIN business_areas b ON b.id = m.business_area_id
		WHERE m.id = ?`, missionID)
	m, err := scanMission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, notFound("mission", missionID)
		}
		return m, fmt.Errorf("querying mission %d: %w", missionID, err)
	}
	return m, nil
}

func ListMissions(ctx context.Context) ([]models.Mission, error) {
	rows, err := DB.QueryContext(ctx, `SELECT `+missionColumns+`
		FROM missions m LEFT JOIN business_areas b ON b.id = m.business_area_id
		ORDER BY m.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying missions: %w", err)
	}
	defer rows.Close()

	missions := []models.Mission{}
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning mission row: %w", err)
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// UpdateMission rewrites every editable column. The test order is owned by the
// reconciler and is left untouched.
func UpdateMission(ctx context.Context, m models.Mission) error {
	logger.Info("Updating mission %d", m.ID)
	args := []interface{}{
		m.MissionName, m.MissionNumber, m.TestCaseIdentifier, m.BusinessAreaID,
		m.Introduction, m.ExecutiveSummary, m.Scope, m.Objectives, m.TechnicalAssessmentOverview, m.Conclusion,
	}
	args = append(args, missionFlagArgs(m.MissionIncludeFlags)...)
	args = append(args, m.ID)
	result, err := DB.ExecContext(ctx, `
		UPDATE missions SET
			mission_name = ?, mission_number = ?, test_case_identifier = ?, business_area_id = ?,
			introduction = ?, executive_summary = ?, scope = ?, objectives = ?, technical_assessment_overview = ?, conclusion = ?,
			attack_phase_include_flag = ?, attack_type_include_flag = ?, assumptions_include_flag = ?, test_description_include_flag = ?,
			findings_include_flag = ?, mitigation_include_flag = ?, tools_used_include_flag = ?, command_syntax_include_flag = ?,
			targets_include_flag = ?, sources_include_flag = ?, attack_time_date_include_flag = ?, attack_side_effects_include_flag = ?,
			test_result_observation_include_flag = ?, supporting_data_include_flag = ?, customer_notes_include_flag = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("executing update mission statement for mission %d: %w", m.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("mission", m.ID)
	}
	return nil
}

// DeleteMission removes the mission with its hosts, test cases and supporting data
// rows. Test cases go first so their host links are gone before the hosts are.
func DeleteMission(ctx context.Context, missionID int64) error {
	logger.Info("Deleting mission %d", missionID)
	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete of mission %d: %w", missionID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM test_cases WHERE mission_id = ?", missionID); err != nil {
		return fmt.Errorf("deleting test cases of mission %d: %w", missionID, err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM missions WHERE id = ?", missionID)
	if err != nil {
		return fmt.Errorf("deleting mission %d: %w", missionID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("mission", missionID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of mission %d: %w", missionID, err)
	}
	return nil
}

func GetMissionTestOrder(ctx context.Context, missionID int64) (string, error) {
	var order string
	err := DB.QueryRowContext(ctx, "SELECT test_order FROM missions WHERE id = ?", missionID).Scan(&order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", notFound("mission", missionID)
		}
		return "", fmt.Errorf("querying test order for mission %d: %w", missionID, err)
	}
	return order, nil
}

func SetMissionTestOrder(ctx context.Context, missionID int64, order string) error {
	logger.Debug("Persisting test order for mission %d: %s", missionID, order)
	result, err := DB.ExecContext(ctx, "UPDATE missions SET test_order = ? WHERE id = ?", order, missionID)
	if err != nil {
		return fmt.Errorf("updating test order for mission %d: %w", missionID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("mission", missionID)
	}
	return nil
}
