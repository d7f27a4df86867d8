package core

import (
	"fmt"
	"time"

	"missionreport/models"
)

// NoExecutionsLabel is the single row returned by WeeklyCountsByPhase before any
// test case has run.
const NoExecutionsLabel = "No TCs have been executed yet!"

// PhaseRow is one row of the weekly phase table. Label is a phase code or "TOTAL".
type PhaseRow struct {
	Label  string `json:"label"`
	Counts []int  `json:"counts"`
}

// ResultCounts pairs the execution status display names with their counts.
type ResultCounts struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// MissionStats is the analytics payload served for a mission.
type MissionStats struct {
	ExecutionPercentage  string       `json:"execution_percentage"`
	CompletionPercentage string       `json:"completion_percentage"`
	CountOfFindings      int          `json:"count_of_findings"`
	CountOfTestCases     int          `json:"count_of_test_cases"`
	CountOfExecuted      int          `json:"count_of_executed"`
	CountOfApproved      int          `json:"count_of_approved"`
	CountsByResult       ResultCounts `json:"counts_by_result"`
	WeeklyCounts         []int        `json:"weekly_counts"`
	WeeklyCountsByPhase  []PhaseRow   `json:"weekly_counts_by_phase"`
}

// AnalyticsAggregator computes mission statistics over the test cases that appear
// in the report. Hidden test cases never count.
type AnalyticsAggregator struct {
	testCases []models.TestCase
}

func NewAnalyticsAggregator(testCases []models.TestCase) *AnalyticsAggregator {
	a := &AnalyticsAggregator{}
	for _, tc := range testCases {
		if tc.Reportable() {
			a.testCases = append(a.testCases, tc)
		}
	}
	return a
}

func (a *AnalyticsAggregator) CountOfTestCases() int { return len(a.testCases) }

func (a *AnalyticsAggregator) CountOfFindings() int {
	return a.count(func(tc models.TestCase) bool { return tc.Findings != "" })
}

func (a *AnalyticsAggregator) CountOfExecuted() int {
	return a.count(executed)
}

// CountOfApproved counts test cases in FINAL status.
func (a *AnalyticsAggregator) CountOfApproved() int {
	return a.count(func(tc models.TestCase) bool { return tc.Status == models.StatusFinal })
}

func (a *AnalyticsAggregator) ExecutionPercentage() string {
	return percentage(a.CountOfExecuted(), a.CountOfTestCases())
}

func (a *AnalyticsAggregator) CompletionPercentage() string {
	return percentage(a.CountOfApproved(), a.CountOfTestCases())
}

// CountsByResult follows the declared status order and reports zero for statuses
// no test case has.
func (a *AnalyticsAggregator) CountsByResult() ResultCounts {
	index := make(map[models.ExecutionStatus]int, len(models.ExecutionStatuses))
	rc := ResultCounts{
		Labels: make([]string, len(models.ExecutionStatuses)),
		Counts: make([]int, len(models.ExecutionStatuses)),
	}
	for i, s := range models.ExecutionStatuses {
		index[s] = i
		rc.Labels[i] = s.DisplayName()
	}
	for _, tc := range a.testCases {
		if i, ok := index[tc.ExecutionStatus]; ok {
			rc.Counts[i]++
		}
	}
	return rc
}

// WeeklyCounts buckets executed test cases by ISO week. Index 0 is the earliest
// week seen; weeks with nothing executed stay in place as zeros.
func (a *AnalyticsAggregator) WeeklyCounts() []int {
	first, span, ok := a.weekRange()
	if !ok {
		return []int{0}
	}
	counts := make([]int, span)
	for _, tc := range a.testCases {
		if executed(tc) {
			counts[weekIndex(first, tc.AttackTime)]++
		}
	}
	return counts
}

// WeeklyCountsByPhase returns one row per attack phase in kill chain order plus a
// TOTAL row, all with one column per week of WeeklyCounts.
func (a *AnalyticsAggregator) WeeklyCountsByPhase() []PhaseRow {
	first, span, ok := a.weekRange()
	if !ok {
		return []PhaseRow{{Label: NoExecutionsLabel, Counts: []int{}}}
	}
	rows := make([]PhaseRow, 0, len(models.AttackPhases)+1)
	index := make(map[models.AttackPhase]int, len(models.AttackPhases))
	for i, p := range models.AttackPhases {
		index[p] = i
		rows = append(rows, PhaseRow{Label: string(p), Counts: make([]int, span)})
	}
	total := PhaseRow{Label: "TOTAL", Counts: make([]int, span)}
	for _, tc := range a.testCases {
		if !executed(tc) {
			continue
		}
		w := weekIndex(first, tc.AttackTime)
		if i, ok := index[tc.AttackPhase]; ok {
			rows[i].Counts[w]++
			total.Counts[w]++
		}
	}
	return append(rows, total)
}

// Stats gathers every figure into one payload.
func (a *AnalyticsAggregator) Stats() MissionStats {
	return MissionStats{
		ExecutionPercentage:  a.ExecutionPercentage(),
		CompletionPercentage: a.CompletionPercentage(),
		CountOfFindings:      a.CountOfFindings(),
		CountOfTestCases:     a.CountOfTestCases(),
		CountOfExecuted:      a.CountOfExecuted(),
		CountOfApproved:      a.CountOfApproved(),
		CountsByResult:       a.CountsByResult(),
		WeeklyCounts:         a.WeeklyCounts(),
		WeeklyCountsByPhase:  a.WeeklyCountsByPhase(),
	}
}

func (a *AnalyticsAggregator) count(pred func(models.TestCase) bool) int {
	n := 0
	for _, tc := range a.testCases {
		if pred(tc) {
			n++
		}
	}
	return n
}

// weekRange returns the Monday of the earliest executed ISO week and the number of
// weeks up to and including the latest one.
func (a *AnalyticsAggregator) weekRange() (time.Time, int, bool) {
	var first, last time.Time
	found := false
	for _, tc := range a.testCases {
		if !executed(tc) {
			continue
		}
		monday := isoWeekStart(tc.AttackTime)
		if !found || monday.Before(first) {
			first = monday
		}
		if !found || monday.After(last) {
			last = monday
		}
		found = true
	}
	if !found {
		return time.Time{}, 0, false
	}
	return first, weeksBetween(first, last) + 1, true
}

func executed(tc models.TestCase) bool { return tc.ExecutionStatus != models.ExecNotRun }

func weekIndex(first, t time.Time) int { return weeksBetween(first, isoWeekStart(t)) }

// isoWeekStart returns midnight UTC of the Monday opening the ISO week that holds t
// in its own location.
func isoWeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func weeksBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24+0.5) / 7
}

func percentage(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(part)/float64(total)*100)
}
