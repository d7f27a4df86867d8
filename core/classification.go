package core

import (
	"context"
	"fmt"
	"strings"

	"missionreport/logger"
	"missionreport/models"
)

// ColorStore persists repaired color codes.
type ColorStore interface {
	UpdateColorHex(ctx context.Context, colorID int64, hex string) error
}

// NormalizeHex lower-cases a color code, drops a leading '#' and expands the three
// digit shorthand. Anything that is not three or six hex digits is rejected.
func NormalizeHex(code string) (string, error) {
	c := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(code), "#"))
	if len(c) != 3 && len(c) != 6 {
		return "", fmt.Errorf("color code %q must have 3 or 6 hex digits: %w", code, models.ErrValidation)
	}
	for _, ch := range c {
		if !strings.ContainsRune("0123456789abcdef", ch) {
			return "", fmt.Errorf("color code %q is not hexadecimal: %w", code, models.ErrValidation)
		}
	}
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	return c, nil
}

// ClassificationColorResolver picks the banner color of a legend and rewrites
// shorthand codes it meets along the way.
type ClassificationColorResolver struct {
	store ColorStore
}

func NewClassificationColorResolver(store ColorStore) *ClassificationColorResolver {
	return &ClassificationColorResolver{store: store}
}

// ResolveLabelColor returns the text color when the legend selects "T" and the
// background color otherwise. Both colors are healed first: a stored three digit
// code is expanded and written back.
func (r *ClassificationColorResolver) ResolveLabelColor(ctx context.Context, legend *models.ClassificationLegend) (models.Color, error) {
	for _, c := range []*models.Color{&legend.TextColor, &legend.BackgroundColor} {
		if len(c.HexColorCode) != 3 {
			continue
		}
		healed, err := NormalizeHex(c.HexColorCode)
		if err != nil {
			return models.Color{}, err
		}
		if err := r.store.UpdateColorHex(ctx, c.ID, healed); err != nil {
			return models.Color{}, fmt.Errorf("expanding color %d: %w", c.ID, err)
		}
		logger.Info("Expanded shorthand color %s (%d) from %s to %s", c.DisplayText, c.ID, c.HexColorCode, healed)
		c.HexColorCode = healed
	}
	if legend.ReportLabelColorSelection == models.LabelColorText {
		return legend.TextColor, nil
	}
	return legend.BackgroundColor, nil
}
