package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"missionreport/docx"
	"missionreport/logger"
	"missionreport/metrics"
	"missionreport/models"
)

const (
	// ContentTypeOctetStream is served for both report outputs.
	ContentTypeOctetStream = "application/octet-stream"

	classificationStyle = "TableClassification"
	dataTableNote       = "This table is used during report generation and can be deleted in the final report output."
	attackTimeLayout    = "Jan 02, 2006 @ 03:04 PM"
	generationLayout    = "01/02/06"
	imageWidthEMU       = 5 * docx.EMUPerInch
)

// Rows of the test case table templates.
const (
	rowTopBanner = iota
	rowTitle
	rowPhaseType
	rowAssumptions
	rowDescription
	rowFindings
	rowMitigation
	rowTools
	rowCommands
	rowTargets
	rowSources
	rowAttackTime
	rowSideEffects
	rowDetails
	rowSupportingData
	rowNotes
	rowBottomBanner
	testTableRows
)

// ReportStore is the data the assembler reads.
type ReportStore interface {
	TestCaseLister
	SupportingDataLister
	ColorStore
	GetMissionByID(ctx context.Context, missionID int64) (models.Mission, error)
	ListTestCaseHosts(ctx context.Context, testCaseID int64, role string) ([]models.Host, error)
	GetOrCreateDynamicSettings(ctx context.Context) (models.DynamicSettings, error)
}

// ReportOutput is a finished document or attachment archive.
type ReportOutput struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportAssembler renders mission reports from the .docx template and packages
// mission attachments.
type ReportAssembler struct {
	Store     ReportStore
	TestOrder *SortReconciler
	DataOrder *SortReconciler
	Media     MediaReader
	Template  func() ([]byte, error)
	Location  *time.Location
	Now       func() time.Time
}

func (a *ReportAssembler) now() time.Time {
	t := time.Now()
	if a.Now != nil {
		t = a.Now()
	}
	if a.Location != nil {
		t = t.In(a.Location)
	}
	return t
}

// Generate builds the report document of a mission, or with wantZip the archive of
// its attachments.
func (a *ReportAssembler) Generate(ctx context.Context, missionID int64, wantZip bool) (out *ReportOutput, err error) {
	mode := "docx"
	if wantZip {
		mode = "zip"
	}
	started := time.Now()
	defer func() { metrics.ObserveReport(mode, started, err) }()

	mission, err := a.Store.GetMissionByID(ctx, missionID)
	if err != nil {
		return nil, err
	}
	testCases, err := OrderedTestCases(ctx, a.Store, a.TestOrder, missionID, true)
	if err != nil {
		return nil, fmt.Errorf("ordering test cases of mission %d: %w", missionID, err)
	}

	if wantZip {
		body, err := a.packageAttachments(ctx, mission, testCases)
		if err != nil {
			return nil, err
		}
		return &ReportOutput{
			Filename:    fmt.Sprintf("%d_supporting_data.zip", missionID),
			ContentType: ContentTypeOctetStream,
			Body:        body,
		}, nil
	}

	body, err := a.renderDocument(ctx, mission, testCases)
	if err != nil {
		return nil, err
	}
	return &ReportOutput{
		Filename:    fmt.Sprintf("%d_mission_report.docx", missionID),
		ContentType: ContentTypeOctetStream,
		Body:        body,
	}, nil
}

func (a *ReportAssembler) packageAttachments(ctx context.Context, mission models.Mission, testCases []models.TestCase) ([]byte, error) {
	var packaged []PackagedTestCase
	if mission.SupportingDataInclude {
		for i, tc := range testCases {
			items, err := OrderedSupportingData(ctx, a.Store, a.DataOrder, tc.ID, true)
			if err != nil {
				return nil, fmt.Errorf("ordering attachments of test case %d: %w", tc.ID, err)
			}
			packaged = append(packaged, PackagedTestCase{Position: i + 1, Attachments: items})
		}
	}
	p := &AttachmentPackager{Media: a.Media, Now: a.now}
	return p.Package(ctx, mission.ID, packaged)
}

// reportRun carries the state of one document rendering.
type reportRun struct {
	a        *ReportAssembler
	doc      *docx.Document
	mission  models.Mission
	settings models.DynamicSettings
	verbose  string
	short    string
}

func (a *ReportAssembler) renderDocument(ctx context.Context, mission models.Mission, testCases []models.TestCase) ([]byte, error) {
	settings, err := a.Store.GetOrCreateDynamicSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	legend := settings.SystemClassification
	label, err := NewClassificationColorResolver(a.Store).ResolveLabelColor(ctx, &legend)
	if err != nil {
		return nil, fmt.Errorf("resolving classification label color: %w", err)
	}

	source := a.Template
	if source == nil {
		source = DefaultTemplate
	}
	tpl, err := source()
	if err != nil {
		return nil, err
	}
	doc, err := docx.Open(tpl)
	if err != nil {
		return nil, fmt.Errorf("opening report template: %w", err)
	}
	tables := doc.Tables()
	if len(tables) < 3 {
		return nil, fmt.Errorf("report template holds %d tables, expected 3", len(tables))
	}
	noFindingsTable, findingsTable, dataTable := tables[0], tables[1], tables[2]
	for _, t := range []*docx.Table{noFindingsTable, findingsTable} {
		if n := len(t.Rows()); n < testTableRows {
			return nil, fmt.Errorf("report template test case table has %d rows, expected %d", n, testTableRows)
		}
	}
	for row := 0; row < 3; row++ {
		if dataTable.Cell(row, 0) == nil {
			return nil, fmt.Errorf("report template data table has no cell in row %d, expected 3 rows", row)
		}
	}
	if err := doc.SetStyleColor(classificationStyle, label.HexColorCode); err != nil {
		return nil, fmt.Errorf("setting classification label color: %w", err)
	}

	run := &reportRun{
		a:        a,
		doc:      doc,
		mission:  mission,
		settings: settings,
		verbose:  legend.VerboseLegend,
		short:    legend.ShortLegend,
	}

	run.section("Introduction", mission.Introduction)
	run.section("Scope", mission.Scope)
	run.section("Objectives", mission.Objectives)
	run.section("Executive Summary", mission.ExecutiveSummary)
	run.section("Technical Assessment / Attack Architecture", mission.TechnicalAssessmentOverview)
	doc.AddHeading("Technical Assessment / Test Cases and Results", 1)

	withFindings := 0
	for _, tc := range testCases {
		if tc.HasFindings {
			withFindings++
		}
	}
	withoutFindings := len(testCases) - withFindings

	remaining := map[bool]int{true: withFindings, false: withoutFindings}
	for i, tc := range testCases {
		if i > 0 {
			doc.AddPageBreak()
		}
		doc.AddHeading(testCaseHeading(tc), 2)

		tpl := noFindingsTable
		if tc.HasFindings {
			tpl = findingsTable
		}
		remaining[tc.HasFindings]--
		action := chooseTableAction(remaining[tc.HasFindings], i == len(testCases)-1)
		table := doc.AppendTable(tpl, action == cutTable)

		if err := run.fillTestCase(ctx, table, dataTable, tc, i+1); err != nil {
			return nil, err
		}
	}

	run.section("Conclusion", mission.Conclusion)

	if withoutFindings == 0 {
		doc.RemoveTable(noFindingsTable)
	}
	if withFindings == 0 {
		doc.RemoveTable(findingsTable)
	}
	setCellText(dataTable, 0, 0, "")
	setCellText(dataTable, 1, 0, dataTableNote)
	setCellText(dataTable, 2, 0, "")

	replaced := doc.ReplaceText(map[string]string{
		"{{AREA}}":                   mission.BusinessAreaName,
		"{{MISSION}}":                mission.MissionName,
		"{{GENERATION_DATE}}":        a.now().Format(generationLayout),
		"{{TOTAL_TESTS}}":            strconv.Itoa(len(testCases)),
		"{{TESTS_WITH_FINDINGS}}":    strconv.Itoa(withFindings),
		"{{TESTS_WITHOUT_FINDINGS}}": strconv.Itoa(withoutFindings),
	})
	logger.Debug("Replaced %d template placeholders in report of mission %d", replaced, mission.ID)

	body, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serializing report: %w", err)
	}
	logger.Info("Generated report for mission %d: %d test cases, %d bytes", mission.ID, len(testCases), len(body))
	return body, nil
}

type tableAction int

const (
	copyTable tableAction = iota
	cutTable
)

// chooseTableAction decides how the template table of a test case is used. The
// template moves into place on the last use of its kind or on the last test case
// overall, so no blank template is left behind; every other use takes a copy.
//
//	remaining > 0, not last: copy
//	remaining > 0, last:     cut
//	remaining = 0, not last: cut
//	remaining = 0, last:     cut
func chooseTableAction(remainingOfKind int, lastOverall bool) tableAction {
	if remainingOfKind <= 0 || lastOverall {
		return cutTable
	}
	return copyTable
}

func testCaseHeading(tc models.TestCase) string {
	var b strings.Builder
	if tc.HasFindings {
		b.WriteString("*")
	}
	if tc.Enclave != "" {
		fmt.Fprintf(&b, "(%s) ", tc.Enclave)
	}
	b.WriteString(tc.TestObjective)
	return b.String()
}

// section writes a level 1 heading and the portion marked paragraphs of text.
func (r *reportRun) section(title, text string) {
	r.doc.AddHeading(title, 1)
	for _, p := range PortionMark(r.short, text) {
		r.doc.AddParagraph(p, "")
	}
}

// PortionMark splits text into paragraphs, compacts their whitespace and prefixes
// each with the short classification legend in parentheses. Blank paragraphs are
// dropped.
func PortionMark(short, text string) []string {
	var out []string
	for _, line := range strings.Split(CompactParagraphs(text), "\n") {
		if line == "" {
			continue
		}
		if short != "" {
			line = "(" + short + ") " + line
		}
		out = append(out, line)
	}
	return out
}

// StandardizeField normalizes line endings and renders empty text as "N/A".
func StandardizeField(text string) string {
	text = normalizeNewlines(text)
	if text == "" {
		return "N/A"
	}
	return text
}

func setCellText(t *docx.Table, row, col int, text string) {
	if c := t.Cell(row, col); c != nil {
		c.SetText(text)
	}
}

func (r *reportRun) fillTestCase(ctx context.Context, table, dataTable *docx.Table, tc models.TestCase, number int) error {
	m := r.mission
	rows := table.Rows()
	var drop []*docx.Row

	rows[rowTopBanner].Cell(0).SetText(r.verbose)
	rows[rowBottomBanner].Cell(1).SetText(r.verbose)
	if m.TestCaseIdentifier != "" {
		rows[rowTitle].Cell(0).SetText(fmt.Sprintf("Test #%s-%d", m.TestCaseIdentifier, number))
	} else {
		rows[rowTitle].Cell(0).SetText(fmt.Sprintf("Test #%d", number))
	}
	rows[rowTitle].Cell(1).SetText(tc.TestObjective)

	phase := m.AttackPhaseInclude && tc.AttackPhaseInclude && tc.AttackPhase.DisplayName() != ""
	attackType := m.AttackTypeInclude && tc.AttackTypeInclude && tc.AttackType != ""
	switch {
	case phase && attackType:
		rows[rowPhaseType].Cell(1).SetText(tc.AttackPhase.DisplayName() + " - " + tc.AttackType)
	case phase:
		rows[rowPhaseType].Cell(0).SetText("Attack Phase:")
		rows[rowPhaseType].Cell(1).SetText(tc.AttackPhase.DisplayName())
	case attackType:
		rows[rowPhaseType].Cell(0).SetText("Attack Type:")
		rows[rowPhaseType].Cell(1).SetText(tc.AttackType)
	default:
		drop = append(drop, rows[rowPhaseType])
	}

	description := tc.Description
	if tc.ReEvalTestCaseNumber != "" {
		description = fmt.Sprintf("This is a reevaluation; reference previous test case #%s\n\n%s", tc.ReEvalTestCaseNumber, tc.Description)
	}

	targets, sources := "", ""
	if m.TargetsInclude && tc.TargetsInclude {
		hosts, err := r.hosts(ctx, tc.ID, models.HostRoleTarget)
		if err != nil {
			return err
		}
		targets = hosts
	}
	if m.SourcesInclude && tc.SourcesInclude {
		hosts, err := r.hosts(ctx, tc.ID, models.HostRoleSource)
		if err != nil {
			return err
		}
		sources = hosts
	}

	fields := []struct {
		row     int
		include bool
		text    string
	}{
		{rowAssumptions, m.AssumptionsInclude && tc.AssumptionsInclude, tc.Assumptions},
		{rowDescription, m.TestDescriptionInclude && tc.TestDescriptionInclude, description},
		{rowFindings, m.FindingsInclude && tc.FindingsInclude, tc.Findings},
		{rowMitigation, m.MitigationInclude && tc.MitigationInclude, tc.Mitigation},
		{rowTools, m.ToolsUsedInclude && tc.ToolsUsedInclude, tc.ToolsUsed},
		{rowCommands, m.CommandSyntaxInclude && tc.CommandSyntaxInclude, tc.CommandSyntax},
		{rowTargets, m.TargetsInclude && tc.TargetsInclude, targets},
		{rowSources, m.SourcesInclude && tc.SourcesInclude, sources},
		{rowAttackTime, m.AttackTimeDateInclude && tc.AttackTimeDateInclude, r.attackTime(tc.AttackTime)},
		{rowSideEffects, m.AttackSideEffectsInclude && tc.AttackSideEffectsInclude, tc.SideEffects},
		{rowDetails, m.TestResultObservationInclude && tc.TestResultObservationInclude, tc.ResultObservation},
	}
	for _, f := range fields {
		if !f.include {
			drop = append(drop, rows[f.row])
			continue
		}
		rows[f.row].Cell(1).SetText(StandardizeField(f.text))
	}

	if m.SupportingDataInclude {
		listed, err := r.attachments(ctx, dataTable, tc)
		if err != nil {
			return err
		}
		if len(listed) > 0 {
			rows[rowSupportingData].Cell(1).SetText(strings.Join(listed, "\n"))
		} else {
			drop = append(drop, rows[rowSupportingData])
		}
	} else {
		drop = append(drop, rows[rowSupportingData])
	}

	if tc.PointOfContact != "" {
		rows[rowNotes].Cell(1).SetText(normalizeNewlines(tc.PointOfContact))
	}

	for i := len(drop) - 1; i >= 0; i-- {
		table.RemoveRow(drop[i])
	}
	return nil
}

func (r *reportRun) attackTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if r.a.Location != nil {
		t = t.In(r.a.Location)
	}
	return t.Format(attackTimeLayout)
}

func (r *reportRun) hosts(ctx context.Context, testCaseID int64, role string) (string, error) {
	hosts, err := r.a.Store.ListTestCaseHosts(ctx, testCaseID, role)
	if err != nil {
		return "", fmt.Errorf("listing %s hosts of test case %d: %w", role, testCaseID, err)
	}
	lines := make([]string, 0, len(hosts))
	for _, h := range hosts {
		lines = append(lines, h.Format(r.settings.HostOutputFormat))
	}
	return strings.Join(lines, "\n"), nil
}

// attachments embeds the image attachments of tc as image tables after its test
// table and returns the bullet lines for the rest. Attachments that cannot be read
// are logged and left out; unreadable or unknown images are listed.
func (r *reportRun) attachments(ctx context.Context, dataTable *docx.Table, tc models.TestCase) ([]string, error) {
	items, err := OrderedSupportingData(ctx, r.a.Store, r.a.DataOrder, tc.ID, true)
	if err != nil {
		return nil, fmt.Errorf("ordering attachments of test case %d: %w", tc.ID, err)
	}

	var listed []string
	firstImage := true
	for _, sd := range items {
		att, err := LoadAttachment(ctx, r.a.Media, sd)
		if err != nil {
			var ioErr *AttachmentIOError
			if !errors.As(err, &ioErr) {
				return nil, err
			}
			logger.Warn("Skipping attachment %d of test case %d: %v", sd.ID, tc.ID, err)
			metrics.AttachmentSkipped("docx")
			continue
		}
		if att.IsImage() {
			err := r.embedImage(dataTable, att, firstImage)
			if err == nil {
				firstImage = false
				continue
			}
			logger.Warn("Listing attachment %d of test case %d: %v", sd.ID, tc.ID, err)
			metrics.AttachmentDemoted()
		} else if att.Corrupt {
			metrics.AttachmentDemoted()
		}
		listed = append(listed, fmt.Sprintf("- %s: %s", sd.Filename(), sd.Caption))
	}
	return listed, nil
}

func (r *reportRun) embedImage(dataTable *docx.Table, att LoadedAttachment, first bool) error {
	relID, err := r.doc.AddImage(att.Data, att.Format)
	if err != nil {
		return &MalformedAttachmentError{Name: att.Record.Filename(), Err: err}
	}
	if first {
		r.doc.AddHeading("Screenshots / Diagrams", 3)
	}
	table := r.doc.AppendTable(dataTable, false)
	r.doc.AddParagraph("", "")

	setCellText(table, 0, 0, r.verbose)
	setCellText(table, 2, 0, r.verbose)
	cell := table.Cell(1, 0)
	cell.Clear()
	cx, cy := docx.ScaleToWidth(att.Width, att.Height, imageWidthEMU)
	cell.AppendRun(r.doc.NewPictureRun(relID, att.Record.Filename(), cx, cy))
	cell.AppendText("\r" + att.Record.Caption)
	return nil
}
