package models

// Color is a named RGB value. HexColorCode holds six hex digits at rest; three digit
// shorthand codes are expanded the first time they are resolved.
type Color struct {
	ID           int64  `json:"id"`
	DisplayText  string `json:"display_text"`
	HexColorCode string `json:"hex_color_code"`
}

const (
	LabelColorText       = "T"
	LabelColorBackground = "B"
)

type ClassificationLegend struct {
	ID                        int64  `json:"id"`
	VerboseLegend             string `json:"verbose_legend"`
	ShortLegend               string `json:"short_legend"`
	TextColor                 Color  `json:"text_color"`
	BackgroundColor           Color  `json:"background_color"`
	ReportLabelColorSelection string `json:"report_label_color_selection"`
}

const DefaultHostOutputFormat = "{ip} ({name})"

// DynamicSettings is the single settings row. Exactly one row exists.
type DynamicSettings struct {
	ID                   int64                `json:"id"`
	SystemClassification ClassificationLegend `json:"system_classification"`
	HostOutputFormat     string               `json:"host_output_format"`
}
