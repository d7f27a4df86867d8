package core

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"missionreport/models"
	"missionreport/storage"
)

// memReportStore serves a single mission from memory.
type memReportStore struct {
	mission   models.Mission
	testCases []models.TestCase
	data      map[int64][]models.SupportingData
	hosts     map[int64]map[string][]models.Host
	settings  models.DynamicSettings
	colors    memColorStore
}

func newMemReportStore(m models.Mission) *memReportStore {
	return &memReportStore{
		mission: m,
		data:    map[int64][]models.SupportingData{},
		hosts:   map[int64]map[string][]models.Host{},
		settings: models.DynamicSettings{
			ID:               1,
			HostOutputFormat: models.DefaultHostOutputFormat,
			SystemClassification: models.ClassificationLegend{
				ID:                        1,
				VerboseLegend:             "UNRESTRICTED",
				ShortLegend:               "U",
				TextColor:                 models.Color{ID: 1, HexColorCode: "ffffff"},
				BackgroundColor:           models.Color{ID: 2, HexColorCode: "0a0"},
				ReportLabelColorSelection: models.LabelColorBackground,
			},
		},
	}
}

func (s *memReportStore) GetMissionByID(_ context.Context, missionID int64) (models.Mission, error) {
	if missionID != s.mission.ID {
		return models.Mission{}, fmt.Errorf("mission %d: %w", missionID, models.ErrNotFound)
	}
	return s.mission, nil
}

func (s *memReportStore) ListTestCasesByMission(_ context.Context, missionID int64) ([]models.TestCase, error) {
	if missionID != s.mission.ID {
		return []models.TestCase{}, nil
	}
	return s.testCases, nil
}

func (s *memReportStore) ListSupportingDataByTestCase(_ context.Context, testCaseID int64) ([]models.SupportingData, error) {
	return s.data[testCaseID], nil
}

func (s *memReportStore) ListTestCaseHosts(_ context.Context, testCaseID int64, role string) ([]models.Host, error) {
	return s.hosts[testCaseID][role], nil
}

func (s *memReportStore) GetOrCreateDynamicSettings(context.Context) (models.DynamicSettings, error) {
	return s.settings, nil
}

func (s *memReportStore) UpdateColorHex(ctx context.Context, colorID int64, hex string) error {
	return s.colors.UpdateColorHex(ctx, colorID, hex)
}

// memMedia is a MediaReader over a map of stored files.
type memMedia map[string][]byte

func (m memMedia) Open(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, storage.ErrObjectNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
