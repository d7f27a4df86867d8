package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"missionreport/logger"
	"missionreport/models"
)

func CreateBusinessArea(ctx context.Context, name string) (int64, error) {
	logger.Info("Creating business area: %s", name)
	result, err := DB.ExecContext(ctx, "INSERT INTO business_areas (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("inserting business area '%s': %w", name, err)
	}
	return result.LastInsertId()
}

func GetBusinessAreaByID(ctx context.Context, id int64) (models.BusinessArea, error) {
	var b models.BusinessArea
	err := DB.QueryRowContext(ctx, "SELECT id, name FROM business_areas WHERE id = ?", id).Scan(&b.ID, &b.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, notFound("business area", id)
		}
		return b, fmt.Errorf("querying business area %d: %w", id, err)
	}
	return b, nil
}

func ListBusinessAreas(ctx context.Context) ([]models.BusinessArea, error) {
	rows, err := DB.QueryContext(ctx, "SELECT id, name FROM business_areas ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("querying business areas: %w", err)
	}
	defer rows.Close()

	areas := []models.BusinessArea{}
	for rows.Next() {
		var b models.BusinessArea
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("scanning business area row: %w", err)
		}
		areas = append(areas, b)
	}
	return areas, rows.Err()
}

// DeleteBusinessArea refuses while any mission still references the area.
func DeleteBusinessArea(ctx context.Context, id int64) error {
	var refs int
	if err := DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM missions WHERE business_area_id = ?", id).Scan(&refs); err != nil {
		return fmt.Errorf("counting missions for business area %d: %w", id, err)
	}
	if refs > 0 {
		return fmt.Errorf("business area %d is referenced by %d mission(s): %w", id, refs, models.ErrConflict)
	}
	result, err := DB.ExecContext(ctx, "DELETE FROM business_areas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting business area %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("business area", id)
	}
	return nil
}
