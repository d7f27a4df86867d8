package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"missionreport/logger"
	"missionreport/models"
)

func CreateColor(ctx context.Context, c models.Color) (int64, error) {
	result, err := DB.ExecContext(ctx, "INSERT INTO colors (display_text, hex_color_code) VALUES (?, ?)", c.DisplayText, c.HexColorCode)
	if err != nil {
		return 0, fmt.Errorf("inserting color '%s': %w", c.DisplayText, err)
	}
	return result.LastInsertId()
}

func GetColorByID(ctx context.Context, id int64) (models.Color, error) {
	var c models.Color
	err := DB.QueryRowContext(ctx, "SELECT id, display_text, hex_color_code FROM colors WHERE id = ?", id).
		Scan(&c.ID, &c.DisplayText, &c.HexColorCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, notFound("color", id)
		}
		return c, fmt.Errorf("querying color %d: %w", id, err)
	}
	return c, nil
}

func ListColors(ctx context.Context) ([]models.Color, error) {
	rows, err := DB.QueryContext(ctx, "SELECT id, display_text, hex_color_code FROM colors ORDER BY display_text ASC")
	if err != nil {
		return nil, fmt.Errorf("querying colors: %w", err)
	}
	defer rows.Close()
	colors := []models.Color{}
	for rows.Next() {
		var c models.Color
		if err := rows.Scan(&c.ID, &c.DisplayText, &c.HexColorCode); err != nil {
			return nil, fmt.Errorf("scanning color row: %w", err)
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

// UpdateColorHex rewrites a color's code; used by the label color self-heal.
func UpdateColorHex(ctx context.Context, colorID int64, hex string) error {
	logger.Info("Rewriting color %d hex code to %s", colorID, hex)
	result, err := DB.ExecContext(ctx, "UPDATE colors SET hex_color_code = ? WHERE id = ?", hex, colorID)
	if err != nil {
		return fmt.Errorf("updating hex code of color %d: %w", colorID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("color", colorID)
	}
	return nil
}

// DeleteColor refuses when the color is used by the active classification legend.
func DeleteColor(ctx context.Context, colorID int64) error {
	var inUse int
	err := DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM dynamic_settings s
		JOIN classification_legends l ON l.id = s.system_classification_id
		WHERE l.text_color_id = ? OR l.background_color_id = ?`, colorID, colorID).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("checking active legend for color %d: %w", colorID, err)
	}
	if inUse > 0 {
		return fmt.Errorf("color %d is used by the active classification legend: %w", colorID, models.ErrConflict)
	}
	result, err := DB.ExecContext(ctx, "DELETE FROM colors WHERE id = ?", colorID)
	if err != nil {
		return fmt.Errorf("deleting color %d: %w", colorID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("color", colorID)
	}
	return nil
}

const legendSelect = `
	SELECT l.id, l.verbose_legend, l.short_legend, l.report_label_color_selection,
	       tc.id, tc.display_text, tc.hex_color_code,
	       bc.id, bc.display_text, bc.hex_color_code
	FROM classification_legends l
	JOIN colors tc ON tc.id = l.text_color_id
	JOIN colors bc ON bc.id = l.background_color_id`

func scanLegend(row rowScanner) (models.ClassificationLegend, error) {
	var l models.ClassificationLegend
	err := row.Scan(&l.ID, &l.VerboseLegend, &l.ShortLegend, &l.ReportLabelColorSelection,
		&l.TextColor.ID, &l.TextColor.DisplayText, &l.TextColor.HexColorCode,
		&l.BackgroundColor.ID, &l.BackgroundColor.DisplayText, &l.BackgroundColor.HexColorCode)
	return l, err
}

func CreateClassificationLegend(ctx context.Context, l models.ClassificationLegend) (int64, error) {
	selection := l.ReportLabelColorSelection
	if selection != models.LabelColorText {
		selection = models.LabelColorBackground
	}
	result, err := DB.ExecContext(ctx, `
		INSERT INTO classification_legends (verbose_legend, short_legend, text_color_id, background_color_id, report_label_color_selection)
		VALUES (?, ?, ?, ?, ?)`, l.VerboseLegend, l.ShortLegend, l.TextColor.ID, l.BackgroundColor.ID, selection)
	if err != nil {
		return 0, fmt.Errorf("inserting classification legend '%s': %w", l.VerboseLegend, err)
	}
	return result.LastInsertId()
}

func GetClassificationLegendByID(ctx context.Context, id int64) (models.ClassificationLegend, error) {
	l, err := scanLegend(DB.QueryRowContext(ctx, legendSelect+" WHERE l.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return l, notFound("classification legend", id)
		}
		return l, fmt.Errorf("querying classification legend %d: %w", id, err)
	}
	return l, nil
}

func ListClassificationLegends(ctx context.Context) ([]models.ClassificationLegend, error) {
	rows, err := DB.QueryContext(ctx, legendSelect+" ORDER BY l.verbose_legend ASC")
	if err != nil {
		return nil, fmt.Errorf("querying classification legends: %w", err)
	}
	defer rows.Close()
	legends := []models.ClassificationLegend{}
	for rows.Next() {
		l, err := scanLegend(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning classification legend row: %w", err)
		}
		legends = append(legends, l)
	}
	return legends, rows.Err()
}

// DeleteClassificationLegend refuses to delete the active system classification.
func DeleteClassificationLegend(ctx context.Context, id int64) error {
	var active int
	if err := DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM dynamic_settings WHERE system_classification_id = ?", id).Scan(&active); err != nil {
		return fmt.Errorf("checking active classification for legend %d: %w", id, err)
	}
	if active > 0 {
		return fmt.Errorf("classification legend %d is the active system classification: %w", id, models.ErrConflict)
	}
	result, err := DB.ExecContext(ctx, "DELETE FROM classification_legends WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting classification legend %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("classification legend", id)
	}
	return nil
}

// GetOrCreateDynamicSettings returns the single settings row, creating it against the
// first legend when it is missing.
func GetOrCreateDynamicSettings(ctx context.Context) (models.DynamicSettings, error) {
	var s models.DynamicSettings
	var legendID int64
	err := DB.QueryRowContext(ctx, "SELECT id, system_classification_id, host_output_format FROM dynamic_settings WHERE id = 1").
		Scan(&s.ID, &legendID, &s.HostOutputFormat)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Info("Dynamic settings row missing, creating default")
		if err := DB.QueryRowContext(ctx, "SELECT id FROM classification_legends ORDER BY id ASC LIMIT 1").Scan(&legendID); err != nil {
			return s, fmt.Errorf("no classification legend available for default settings: %w", err)
		}
		if _, err := DB.ExecContext(ctx,
			"INSERT OR IGNORE INTO dynamic_settings (id, system_classification_id, host_output_format) VALUES (1, ?, ?)",
			legendID, models.DefaultHostOutputFormat); err != nil {
			return s, fmt.Errorf("creating default dynamic settings: %w", err)
		}
		return GetOrCreateDynamicSettings(ctx)
	}
	if err != nil {
		return s, fmt.Errorf("querying dynamic settings: %w", err)
	}
	legend, err := GetClassificationLegendByID(ctx, legendID)
	if err != nil {
		return s, err
	}
	s.SystemClassification = legend
	if s.HostOutputFormat == "" {
		s.HostOutputFormat = models.DefaultHostOutputFormat
	}
	return s, nil
}

func UpdateDynamicSettings(ctx context.Context, legendID int64, hostOutputFormat string) error {
	if _, err := GetOrCreateDynamicSettings(ctx); err != nil {
		return err
	}
	if _, err := DB.ExecContext(ctx,
		"UPDATE dynamic_settings SET system_classification_id = ?, host_output_format = ? WHERE id = 1",
		legendID, hostOutputFormat); err != nil {
		return fmt.Errorf("updating dynamic settings: %w", err)
	}
	return nil
}
