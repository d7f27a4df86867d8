package core

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionreport/models"
)

func readZip(t *testing.T, body []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = string(data)
	}
	return out
}

func TestPackageEmptyMission(t *testing.T) {
	p := &AttachmentPackager{Media: memMedia{}, Now: func() time.Time { return time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC) }}
	body, err := p.Package(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"7_20240501-083000/": ""}, readZip(t, body))
}

func TestPackageSkipsUnreadableFiles(t *testing.T) {
	p := &AttachmentPackager{
		Media: memMedia{"supporting_data/one.txt": []byte("1"), "two.png": []byte("2")},
		Now:   func() time.Time { return time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC) },
	}
	body, err := p.Package(context.Background(), 7, []PackagedTestCase{
		{Position: 1, Attachments: []models.SupportingData{{Include: true, TestFile: "missing.txt"}}},
		{Position: 2, Attachments: []models.SupportingData{
			{Include: true, TestFile: "supporting_data/one.txt"},
			{Include: false, TestFile: "two.png"},
		}},
	})
	require.NoError(t, err)

	// position 1 had nothing readable, so it gets no directory
	root := "7_20240501-083000/"
	assert.Equal(t, map[string]string{
		root:               "",
		root + "2/":        "",
		root + "2/one.txt": "1",
	}, readZip(t, body))
}

func TestRootDir(t *testing.T) {
	assert.Equal(t, "12_20231231-235959/", RootDir(12, time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)))
}
