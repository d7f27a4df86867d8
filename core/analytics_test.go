package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionreport/models"
)

// isoWeek2024 returns the Wednesday of the given ISO week of 2024.
func isoWeek2024(week int) time.Time {
	// 2024-01-01 is the Monday of ISO week 1.
	return time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC).AddDate(0, 0, 7*(week-1))
}

func executedCase(phase models.AttackPhase, at time.Time) models.TestCase {
	return models.TestCase{
		Include:         true,
		ExecutionStatus: models.ExecRun,
		AttackPhase:     phase,
		AttackTime:      at,
	}
}

func TestWeeklyCountsKeepsEmptyWeeks(t *testing.T) {
	a := NewAnalyticsAggregator([]models.TestCase{
		executedCase(models.PhaseRecon, isoWeek2024(2)),
		executedCase(models.PhaseDelivery, isoWeek2024(2).AddDate(0, 0, 2)),
		executedCase(models.PhaseRecon, isoWeek2024(4)),
	})
	assert.Equal(t, []int{2, 0, 1}, a.WeeklyCounts())

	rows := a.WeeklyCountsByPhase()
	require.Len(t, rows, len(models.AttackPhases)+1)
	assert.Equal(t, "RECON", rows[0].Label)
	assert.Equal(t, []int{1, 0, 1}, rows[0].Counts)
	assert.Equal(t, []int{1, 0, 0}, rows[2].Counts)
	assert.Equal(t, "TOTAL", rows[len(rows)-1].Label)
	assert.Equal(t, []int{2, 0, 1}, rows[len(rows)-1].Counts)
}

func TestWeeklyCountsAcrossYearBoundary(t *testing.T) {
	// Monday 2024-12-30 opens ISO week 1 of 2025.
	a := NewAnalyticsAggregator([]models.TestCase{
		executedCase(models.PhaseRecon, time.Date(2024, 12, 27, 9, 0, 0, 0, time.UTC)),
		executedCase(models.PhaseRecon, time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)),
	})
	assert.Equal(t, []int{1, 1}, a.WeeklyCounts())
}

func TestWeeklyCountsWithoutExecutions(t *testing.T) {
	a := NewAnalyticsAggregator([]models.TestCase{
		{Include: true, ExecutionStatus: models.ExecNotRun, AttackTime: isoWeek2024(3)},
	})
	assert.Equal(t, []int{0}, a.WeeklyCounts())

	rows := a.WeeklyCountsByPhase()
	require.Len(t, rows, 1)
	assert.Equal(t, NoExecutionsLabel, rows[0].Label)
	assert.Empty(t, rows[0].Counts)
}

func TestPercentagesOnEmptyMission(t *testing.T) {
	a := NewAnalyticsAggregator(nil)
	assert.Equal(t, "0%", a.ExecutionPercentage())
	assert.Equal(t, "0%", a.CompletionPercentage())
	assert.Zero(t, a.CountOfTestCases())
}

func TestCountsSkipHiddenTestCases(t *testing.T) {
	a := NewAnalyticsAggregator([]models.TestCase{
		{Include: true, ExecutionStatus: models.ExecRun, Status: models.StatusFinal, Findings: "weak creds"},
		{Include: true, ExecutionStatus: models.ExecNotRun, Status: models.StatusNew},
		{Include: true, ExecutionStatus: models.ExecCancelled, Status: models.StatusReview},
		{Include: false, ExecutionStatus: models.ExecRun, Status: models.StatusFinal, Findings: "hidden"},
	})

	assert.Equal(t, 3, a.CountOfTestCases())
	assert.Equal(t, 1, a.CountOfFindings())
	assert.Equal(t, 2, a.CountOfExecuted())
	assert.Equal(t, 1, a.CountOfApproved())
	assert.Equal(t, "67%", a.ExecutionPercentage())
	assert.Equal(t, "33%", a.CompletionPercentage())

	rc := a.CountsByResult()
	assert.Equal(t, []string{"Not Run", "Run", "Cancelled", "N/A"}, rc.Labels)
	assert.Equal(t, []int{1, 1, 1, 0}, rc.Counts)
}
