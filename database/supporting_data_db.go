package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"missionreport/logger"
	"missionreport/models"
)

func CreateSupportingData(ctx context.Context, s models.SupportingData) (int64, error) {
	logger.Info("Creating supporting data '%s' for test case %d", s.TestFile, s.TestCaseID)
	result, err := DB.ExecContext(ctx,
		"INSERT INTO supporting_data (test_case_id, caption, include_flag, test_file) VALUES (?, ?, ?, ?)",
		s.TestCaseID, s.Caption, s.Include, s.TestFile)
	if err != nil {
		return 0, fmt.Errorf("inserting supporting data for test case %d: %w", s.TestCaseID, err)
	}
	return result.LastInsertId()
}

func GetSupportingDataByID(ctx context.Context, id int64) (models.SupportingData, error) {
	var s models.SupportingData
	err := DB.QueryRowContext(ctx,
		"SELECT id, test_case_id, caption, include_flag, test_file FROM supporting_data WHERE id = ?", id).
		Scan(&s.ID, &s.TestCaseID, &s.Caption, &s.Include, &s.TestFile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, notFound("supporting data", id)
		}
		return s, fmt.Errorf("querying supporting data %d: %w", id, err)
	}
	return s, nil
}

func ListSupportingDataByTestCase(ctx context.Context, testCaseID int64) ([]models.SupportingData, error) {
	rows, err := DB.QueryContext(ctx,
		"SELECT id, test_case_id, caption, include_flag, test_file FROM supporting_data WHERE test_case_id = ? ORDER BY id ASC", testCaseID)
	if err != nil {
		return nil, fmt.Errorf("querying supporting data for test case %d: %w", testCaseID, err)
	}
	defer rows.Close()
	return collectSupportingData(rows)
}

// ListSupportingDataByMission returns every attachment below the mission's test cases.
func ListSupportingDataByMission(ctx context.Context, missionID int64) ([]models.SupportingData, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT s.id, s.test_case_id, s.caption, s.include_flag, s.test_file
		FROM supporting_data s JOIN test_cases t ON t.id = s.test_case_id
		WHERE t.mission_id = ? ORDER BY s.id ASC`, missionID)
	if err != nil {
		return nil, fmt.Errorf("querying supporting data for mission %d: %w", missionID, err)
	}
	defer rows.Close()
	return collectSupportingData(rows)
}

func collectSupportingData(rows *sql.Rows) ([]models.SupportingData, error) {
	items := []models.SupportingData{}
	for rows.Next() {
		var s models.SupportingData
		if err := rows.Scan(&s.ID, &s.TestCaseID, &s.Caption, &s.Include, &s.TestFile); err != nil {
			return nil, fmt.Errorf("scanning supporting data row: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// UpdateSupportingData saves caption, include flag and, when non-empty, a replaced file name.
func UpdateSupportingData(ctx context.Context, s models.SupportingData) error {
	result, err := DB.ExecContext(ctx, `
		UPDATE supporting_data SET caption = ?, include_flag = ?,
			test_file = CASE WHEN ? = '' THEN test_file ELSE ? END
		WHERE id = ?`, s.Caption, s.Include, s.TestFile, s.TestFile, s.ID)
	if err != nil {
		return fmt.Errorf("updating supporting data %d: %w", s.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("supporting data", s.ID)
	}
	return nil
}

// DeleteSupportingData removes the row only. Removing the stored file is the
// caller's job; see core.AttachmentService.
func DeleteSupportingData(ctx context.Context, id int64) error {
	result, err := DB.ExecContext(ctx, "DELETE FROM supporting_data WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting supporting data %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("supporting data", id)
	}
	return nil
}
