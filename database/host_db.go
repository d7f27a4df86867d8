package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"missionreport/logger"
	"missionreport/models"
)

func scanHost(row rowScanner) (models.Host, error) {
	var h models.Host
	var ip sql.NullString
	if err := row.Scan(&h.ID, &h.MissionID, &h.HostName, &ip, &h.IsNoHit); err != nil {
		return h, err
	}
	if ip.Valid {
		h.IPAddress = &ip.String
	}
	return h, nil
}

func nullableIP(ip *string) sql.NullString {
	if ip == nil || strings.TrimSpace(*ip) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*ip), Valid: true}
}

func CreateHost(ctx context.Context, h models.Host) (int64, error) {
	logger.Info("Creating host '%s' for mission %d", h.HostName, h.MissionID)
	result, err := DB.ExecContext(ctx,
		"INSERT INTO hosts (mission_id, host_name, ip_address, is_no_hit) VALUES (?, ?, ?, ?)",
		h.MissionID, h.HostName, nullableIP(h.IPAddress), h.IsNoHit)
	if err != nil {
		return 0, fmt.Errorf("inserting host for mission %d: %w", h.MissionID, err)
	}
	return result.LastInsertId()
}

func GetHostByID(ctx context.Context, hostID int64) (models.Host, error) {
	row := DB.QueryRowContext(ctx, "SELECT id, mission_id, host_name, ip_address, is_no_hit FROM hosts WHERE id = ?", hostID)
	h, err := scanHost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return h, notFound("host", hostID)
		}
		return h, fmt.Errorf("querying host %d: %w", hostID, err)
	}
	return h, nil
}

func ListHostsByMission(ctx context.Context, missionID int64) ([]models.Host, error) {
	rows, err := DB.QueryContext(ctx,
		"SELECT id, mission_id, host_name, ip_address, is_no_hit FROM hosts WHERE mission_id = ? ORDER BY id ASC", missionID)
	if err != nil {
		return nil, fmt.Errorf("querying hosts for mission %d: %w", missionID, err)
	}
	defer rows.Close()
	return collectHosts(rows)
}

func collectHosts(rows *sql.Rows) ([]models.Host, error) {
	hosts := []models.Host{}
	for rows.Next() {
		h, err := scanHost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning host row: %w", err)
		}
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

// UpdateHost saves name, address and no-hit state. A host already linked to a test
// case cannot be turned into a no-hit host.
func UpdateHost(ctx context.Context, h models.Host) error {
	if h.IsNoHit {
		linked, err := linkedTestNumbers(ctx, h.ID)
		if err != nil {
			return err
		}
		if len(linked) > 0 {
			return fmt.Errorf("host %d is used by test(s) %s and cannot be marked no-hit: %w", h.ID, strings.Join(linked, ", "), models.ErrConflict)
		}
	}
	result, err := DB.ExecContext(ctx,
		"UPDATE hosts SET host_name = ?, ip_address = ?, is_no_hit = ? WHERE id = ? AND mission_id = ?",
		h.HostName, nullableIP(h.IPAddress), h.IsNoHit, h.ID, h.MissionID)
	if err != nil {
		return fmt.Errorf("updating host %d: %w", h.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("host", h.ID)
	}
	return nil
}

// DeleteHost refuses while any test case still uses the host; the error names the tests.
func DeleteHost(ctx context.Context, hostID int64) error {
	linked, err := linkedTestNumbers(ctx, hostID)
	if err != nil {
		return err
	}
	if len(linked) > 0 {
		return fmt.Errorf("host %d is used as a source or target by test(s) %s: %w", hostID, strings.Join(linked, ", "), models.ErrConflict)
	}
	result, err := DB.ExecContext(ctx, "DELETE FROM hosts WHERE id = ?", hostID)
	if err != nil {
		return fmt.Errorf("deleting host %d: %w", hostID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("host", hostID)
	}
	return nil
}

func linkedTestNumbers(ctx context.Context, hostID int64) ([]string, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT DISTINCT t.test_number FROM test_case_hosts l
		JOIN test_cases t ON t.id = l.test_case_id
		WHERE l.host_id = ? ORDER BY t.test_number ASC`, hostID)
	if err != nil {
		return nil, fmt.Errorf("querying test cases linked to host %d: %w", hostID, err)
	}
	defer rows.Close()
	var numbers []string
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning linked test number for host %d: %w", hostID, err)
		}
		numbers = append(numbers, strconv.FormatInt(n, 10))
	}
	return numbers, rows.Err()
}

// ListTestCaseHosts returns the hosts linked to a test case in the given role.
func ListTestCaseHosts(ctx context.Context, testCaseID int64, role string) ([]models.Host, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT h.id, h.mission_id, h.host_name, h.ip_address, h.is_no_hit
		FROM test_case_hosts l JOIN hosts h ON h.id = l.host_id
		WHERE l.test_case_id = ? AND l.role = ?
		ORDER BY h.id ASC`, testCaseID, role)
	if err != nil {
		return nil, fmt.Errorf("querying %s hosts for test case %d: %w", role, testCaseID, err)
	}
	defer rows.Close()
	return collectHosts(rows)
}

func validRole(role string) bool {
	return role == models.HostRoleSource || role == models.HostRoleTarget
}

// AddTestCaseHost links a host to a test case. The host must belong to the test
// case's mission and must not be a no-hit host.
func AddTestCaseHost(ctx context.Context, testCaseID, hostID int64, role string) error {
	if !validRole(role) {
		return fmt.Errorf("unknown host role '%s': %w", role, models.ErrValidation)
	}
	tc, err := GetTestCaseByID(ctx, testCaseID)
	if err != nil {
		return err
	}
	h, err := GetHostByID(ctx, hostID)
	if err != nil {
		return err
	}
	if h.MissionID != tc.MissionID {
		return fmt.Errorf("host %d and test case %d belong to different missions: %w", hostID, testCaseID, models.ErrConflict)
	}
	if h.IsNoHit {
		return fmt.Errorf("host %d is marked no-hit and cannot be a %s: %w", hostID, role, models.ErrConflict)
	}
	if _, err := DB.ExecContext(ctx,
		"INSERT OR IGNORE INTO test_case_hosts (test_case_id, host_id, role) VALUES (?, ?, ?)",
		testCaseID, hostID, role); err != nil {
		return fmt.Errorf("linking host %d to test case %d: %w", hostID, testCaseID, err)
	}
	return nil
}

func RemoveTestCaseHost(ctx context.Context, testCaseID, hostID int64, role string) error {
	if !validRole(role) {
		return fmt.Errorf("unknown host role '%s': %w", role, models.ErrValidation)
	}
	result, err := DB.ExecContext(ctx,
		"DELETE FROM test_case_hosts WHERE test_case_id = ? AND host_id = ? AND role = ?",
		testCaseID, hostID, role)
	if err != nil {
		return fmt.Errorf("unlinking host %d from test case %d: %w", hostID, testCaseID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("host %d is not a %s of test case %d: %w", hostID, role, testCaseID, models.ErrNotFound)
	}
	return nil
}
