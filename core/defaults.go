package core

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"missionreport/models"
)

//go:embed templates/defaults.yaml
var defaultSectionsYAML []byte

// SectionDefaults holds the stock text for each mission report section.
type SectionDefaults struct {
	Introduction                string `yaml:"introduction"`
	ExecutiveSummary            string `yaml:"executive_summary"`
	Scope                       string `yaml:"scope"`
	Objectives                  string `yaml:"objectives"`
	TechnicalAssessmentOverview string `yaml:"technical_assessment_overview"`
	Conclusion                  string `yaml:"conclusion"`
}

var (
	sectionDefaultsOnce sync.Once
	sectionDefaults     SectionDefaults
	sectionDefaultsErr  error
)

// LoadSectionDefaults parses the embedded defaults once. Every text is compacted.
func LoadSectionDefaults() (SectionDefaults, error) {
	sectionDefaultsOnce.Do(func() {
		var d SectionDefaults
		if err := yaml.Unmarshal(defaultSectionsYAML, &d); err != nil {
			sectionDefaultsErr = fmt.Errorf("parsing default section texts: %w", err)
			return
		}
		for _, s := range []*string{&d.Introduction, &d.ExecutiveSummary, &d.Scope,
			&d.Objectives, &d.TechnicalAssessmentOverview, &d.Conclusion} {
			*s = CompactParagraphs(*s)
		}
		sectionDefaults = d
	})
	return sectionDefaults, sectionDefaultsErr
}

// ApplySectionDefaults fills every empty section text of m.
func ApplySectionDefaults(m *models.Mission) error {
	d, err := LoadSectionDefaults()
	if err != nil {
		return err
	}
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&m.Introduction, d.Introduction)
	fill(&m.ExecutiveSummary, d.ExecutiveSummary)
	fill(&m.Scope, d.Scope)
	fill(&m.Objectives, d.Objectives)
	fill(&m.TechnicalAssessmentOverview, d.TechnicalAssessmentOverview)
	fill(&m.Conclusion, d.Conclusion)
	return nil
}

// CompactParagraphs collapses runs of whitespace inside each line and drops blank lines.
func CompactParagraphs(text string) string {
	text = normalizeNewlines(text)
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if compact := strings.Join(strings.Fields(line), " "); compact != "" {
			out = append(out, compact)
		}
	}
	return strings.Join(out, "\n")
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
