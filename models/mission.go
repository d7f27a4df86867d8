package models

import "strings"

// Mission is a single engagement. Its section texts feed the report body, its
// include flags gate the per test case rows, and TestOrder holds the persisted
// test case ordering as a JSON list of ids.
type Mission struct {
	ID                 int64  `json:"id"`
	MissionName        string `json:"mission_name"`
	MissionNumber      string `json:"mission_number"`
	TestCaseIdentifier string `json:"test_case_identifier"`
	BusinessAreaID     int64  `json:"business_area_id"`
	BusinessAreaName   string `json:"business_area_name,omitempty"`

	Introduction                string `json:"introduction"`
	ExecutiveSummary            string `json:"executive_summary"`
	Scope                       string `json:"scope"`
	Objectives                  string `json:"objectives"`
	TechnicalAssessmentOverview string `json:"technical_assessment_overview"`
	Conclusion                  string `json:"conclusion"`

	MissionIncludeFlags

	TestOrder string `json:"-"`
}

// MissionIncludeFlags are the mission wide toggles for each optional report row.
type MissionIncludeFlags struct {
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
	SupportingDataInclude        bool `json:"supporting_data_include_flag"`
	CustomerNotesInclude         bool `json:"customer_notes_include_flag"`
}

// AllMissionIncludeFlags returns the flag set new missions start with.
func AllMissionIncludeFlags() MissionIncludeFlags {
	return MissionIncludeFlags{
		AttackPhaseInclude: true, AttackTypeInclude: true, AssumptionsInclude: true,
		TestDescriptionInclude: true, FindingsInclude: true, MitigationInclude: true,
		ToolsUsedInclude: true, CommandSyntaxInclude: true, TargetsInclude: true,
		SourcesInclude: true, AttackTimeDateInclude: true, AttackSideEffectsInclude: true,
		TestResultObservationInclude: true, SupportingDataInclude: true, CustomerNotesInclude: true,
	}
}

type BusinessArea struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Host is a mission scoped machine that test cases can reference as a source or target.
type Host struct {
	ID        int64   `json:"id"`
	MissionID int64   `json:"mission_id"`
	HostName  string  `json:"host_name"`
	IPAddress *string `json:"ip_address"`
	IsNoHit   bool    `json:"is_no_hit"`
}

// Format renders the host through a settings format string such as "{ip} ({name})".
func (h Host) Format(format string) string {
	ip := ""
	if h.IPAddress != nil {
		ip = *h.IPAddress
	}
	return strings.NewReplacer("{ip}", ip, "{name}", h.HostName).Replace(format)
}
