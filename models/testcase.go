package models

import "time"

type TestCaseStatus string

const (
	StatusNew    TestCaseStatus = "NEW"
	StatusInWork TestCaseStatus = "IN_WORK"
	StatusReview TestCaseStatus = "REVIEW"
	StatusFinal  TestCaseStatus = "FINAL"
)

func (s TestCaseStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInWork, StatusReview, StatusFinal:
		return true
	}
	return false
}

// AttackPhase is one step of the seven phase kill chain.
type AttackPhase string

const (
	PhaseRecon         AttackPhase = "RECON"
	PhaseWeaponization AttackPhase = "WEP"
	PhaseDelivery      AttackPhase = "DEL"
	PhaseExploitation  AttackPhase = "EXP"
	PhaseInstallation  AttackPhase = "INS"
	PhaseC2            AttackPhase = "C2"
	PhaseActions       AttackPhase = "AOO"
)

// AttackPhases lists the phases in kill chain order. Report rows and analytics follow it.
var AttackPhases = []AttackPhase{
	PhaseRecon, PhaseWeaponization, PhaseDelivery, PhaseExploitation,
	PhaseInstallation, PhaseC2, PhaseActions,
}

var attackPhaseNames = map[AttackPhase]string{
	PhaseRecon:         "Reconnaissance",
	PhaseWeaponization: "Weaponization",
	PhaseDelivery:      "Delivery",
	PhaseExploitation:  "Exploitation",
	PhaseInstallation:  "Installation",
	PhaseC2:            "Command & Control",
	PhaseActions:       "Actions on Objectives",
}

// DisplayName returns the human readable phase, or the raw code when unknown.
func (p AttackPhase) DisplayName() string {
	if n, ok := attackPhaseNames[p]; ok {
		return n
	}
	return string(p)
}

func (p AttackPhase) Valid() bool {
	_, ok := attackPhaseNames[p]
	return ok || p == ""
}

type ExecutionStatus string

const (
	ExecNotRun        ExecutionStatus = "N"
	ExecRun           ExecutionStatus = "R"
	ExecCancelled     ExecutionStatus = "C"
	ExecNotApplicable ExecutionStatus = "NA"
)

// ExecutionStatuses is the declared result taxonomy order.
var ExecutionStatuses = []ExecutionStatus{ExecNotRun, ExecRun, ExecCancelled, ExecNotApplicable}

var executionStatusNames = map[ExecutionStatus]string{
	ExecNotRun:        "Not Run",
	ExecRun:           "Run",
	ExecCancelled:     "Cancelled",
	ExecNotApplicable: "N/A",
}

func (e ExecutionStatus) DisplayName() string {
	if n, ok := executionStatusNames[e]; ok {
		return n
	}
	return string(e)
}

func (e ExecutionStatus) Valid() bool {
	_, ok := executionStatusNames[e]
	return ok
}

// TestCase is one executed or planned test inside a mission.
type TestCase struct {
	ID                   int64           `json:"id"`
	MissionID            int64           `json:"mission_id"`
	TestNumber           int64           `json:"test_number"`
	Include              bool            `json:"test_case_include_flag"`
	Status               TestCaseStatus  `json:"test_case_status"`
	Enclave              string          `json:"enclave"`
	TestObjective        string          `json:"test_objective"`
	AttackPhase          AttackPhase     `json:"attack_phase"`
	AttackType           string          `json:"attack_type"`
	Assumptions          string          `json:"assumptions"`
	Description          string          `json:"test_description"`
	ToolsUsed            string          `json:"tools_used"`
	CommandSyntax        string          `json:"command_syntax"`
	ResultObservation    string          `json:"test_result_observation"`
	SideEffects          string          `json:"attack_side_effects"`
	AttackTime           time.Time       `json:"attack_time_date"`
	ExecutionStatus      ExecutionStatus `json:"execution_status"`
	HasFindings          bool            `json:"has_findings"`
	Findings             string          `json:"findings"`
	Mitigation           string          `json:"mitigation"`
	PointOfContact       string          `json:"point_of_contact"`
	ReEvalTestCaseNumber string          `json:"re_eval_test_case_number"`

	TestCaseIncludeFlags

	SupportingDataOrder string `json:"-"`
}

// TestCaseIncludeFlags mirror the mission flags; a row is reported only when both agree.
type TestCaseIncludeFlags struct {
	AttackPhaseInclude           bool `json:"attack_phase_include_flag"`
	AttackTypeInclude            bool `json:"attack_type_include_flag"`
	AssumptionsInclude           bool `json:"assumptions_include_flag"`
	TestDescriptionInclude       bool `json:"test_description_include_flag"`
	FindingsInclude              bool `json:"findings_include_flag"`
	MitigationInclude            bool `json:"mitigation_include_flag"`
	ToolsUsedInclude             bool `json:"tools_used_include_flag"`
	CommandSyntaxInclude         bool `json:"command_syntax_include_flag"`
	TargetsInclude               bool `json:"targets_include_flag"`
	SourcesInclude               bool `json:"sources_include_flag"`
	AttackTimeDateInclude        bool `json:"attack_time_date_include_flag"`
	AttackSideEffectsInclude     bool `json:"attack_side_effects_include_flag"`
	TestResultObservationInclude bool `json:"test_result_observation_include_flag"`
}

func AllTestCaseIncludeFlags() TestCaseIncludeFlags {
	return TestCaseIncludeFlags{
		AttackPhaseInclude: true, AttackTypeInclude: true, AssumptionsInclude: true,
		TestDescriptionInclude: true, FindingsInclude: true, MitigationInclude: true,
		ToolsUsedInclude: true, CommandSyntaxInclude: true, TargetsInclude: true,
		SourcesInclude: true, AttackTimeDateInclude: true, AttackSideEffectsInclude: true,
		TestResultObservationInclude: true,
	}
}

// NewTestCase returns a test case with the defaults of a freshly created record.
func NewTestCase(missionID int64, now time.Time) TestCase {
	return TestCase{
		MissionID:            missionID,
		Include:              true,
		Status:               StatusNew,
		ExecutionStatus:      ExecNotRun,
		AttackTime:           now,
		TestCaseIncludeFlags: AllTestCaseIncludeFlags(),
		SupportingDataOrder:  "[]",
	}
}

// Normalize recomputes derived fields. Every write path calls it before persisting.
func (t *TestCase) Normalize() {
	t.HasFindings = len(t.Findings) > 0
	if t.Status == "" {
		t.Status = StatusNew
	}
	if t.ExecutionStatus == "" {
		t.ExecutionStatus = ExecNotRun
	}
	if t.SupportingDataOrder == "" {
		t.SupportingDataOrder = "[]"
	}
}

// Clone copies the test case as a new, unsaved record in NEW status.
func (t TestCase) Clone() TestCase {
	c := t
	c.ID = 0
	c.Status = StatusNew
	c.SupportingDataOrder = "[]"
	return c
}

// OrderKey is the natural ordering used to seed a mission's first test order.
func (t TestCase) OrderKey() int64  { return t.TestNumber }
func (t TestCase) OrderID() int64   { return t.ID }
func (t TestCase) Reportable() bool { return t.Include }

// SupportingData is one evidence file attached to a test case.
type SupportingData struct {
	ID         int64  `json:"id"`
	TestCaseID int64  `json:"test_case_id"`
	Caption    string `json:"caption"`
	Include    bool   `json:"include_flag"`
	TestFile   string `json:"test_file"`
}

func (s SupportingData) OrderKey() int64  { return s.ID }
func (s SupportingData) OrderID() int64   { return s.ID }
func (s SupportingData) Reportable() bool { return s.Include }

// Filename is the base name of the stored object.
func (s SupportingData) Filename() string {
	name := s.TestFile
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' || name[i] == '\\' {
			return name[i+1:]
		}
	}
	return name
}
