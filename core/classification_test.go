package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionreport/models"
)

type memColorStore struct {
	updates map[int64]string
}

func (s *memColorStore) UpdateColorHex(_ context.Context, colorID int64, hex string) error {
	if s.updates == nil {
		s.updates = map[int64]string{}
	}
	s.updates[colorID] = hex
	return nil
}

func TestNormalizeHex(t *testing.T) {
	cases := map[string]string{
		"abc":     "aabbcc",
		"#ABC":    "aabbcc",
		"A1B2C3":  "a1b2c3",
		" #fff ":  "ffffff",
		"#000000": "000000",
	}
	for in, want := range cases {
		got, err := NormalizeHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "abcd", "ggg", "#12345"} {
		_, err := NormalizeHex(bad)
		assert.ErrorIs(t, err, models.ErrValidation, bad)
	}
}

func TestResolveLabelColorHealsShorthand(t *testing.T) {
	store := &memColorStore{}
	r := NewClassificationColorResolver(store)
	legend := models.ClassificationLegend{
		TextColor:                 models.Color{ID: 1, HexColorCode: "abc"},
		BackgroundColor:           models.Color{ID: 2, HexColorCode: "112233"},
		ReportLabelColorSelection: models.LabelColorText,
	}

	c, err := r.ResolveLabelColor(context.Background(), &legend)
	require.NoError(t, err)
	assert.Equal(t, "aabbcc", c.HexColorCode)
	assert.Equal(t, map[int64]string{1: "aabbcc"}, store.updates)
	assert.Equal(t, "aabbcc", legend.TextColor.HexColorCode)

	store.updates = nil
	c, err = r.ResolveLabelColor(context.Background(), &legend)
	require.NoError(t, err)
	assert.Equal(t, "aabbcc", c.HexColorCode)
	assert.Empty(t, store.updates)
}

func TestResolveLabelColorSelectsBackground(t *testing.T) {
	r := NewClassificationColorResolver(&memColorStore{})
	legend := models.ClassificationLegend{
		TextColor:                 models.Color{ID: 1, HexColorCode: "ffffff"},
		BackgroundColor:           models.Color{ID: 2, HexColorCode: "008000"},
		ReportLabelColorSelection: models.LabelColorBackground,
	}
	c, err := r.ResolveLabelColor(context.Background(), &legend)
	require.NoError(t, err)
	assert.Equal(t, "008000", c.HexColorCode)
}
