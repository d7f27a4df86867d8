package core

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"missionreport/logger"
	"missionreport/metrics"
	"missionreport/models"
)

// PackagedTestCase is one reportable test case and its ordered attachments.
// Position is the 1-based number the test case carries in the report.
type PackagedTestCase struct {
	Position    int
	Attachments []models.SupportingData
}

// AttachmentPackager zips the files behind a mission's attachments.
type AttachmentPackager struct {
	Media MediaReader
	Now   func() time.Time
}

// RootDir is the directory every entry of a mission archive lives under.
func RootDir(missionID int64, at time.Time) string {
	return fmt.Sprintf("%d_%s/", missionID, at.Format("20060102-150405"))
}

// Package writes {root}/{position}/{file} for every reportable attachment. The root
// directory entry is always present, so a mission without attachments still yields
// a valid archive. Files that cannot be read are logged and left out.
func (p *AttachmentPackager) Package(ctx context.Context, missionID int64, testCases []PackagedTestCase) ([]byte, error) {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	root := RootDir(missionID, now)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.CreateHeader(&zip.FileHeader{Name: root, Modified: now}); err != nil {
		return nil, fmt.Errorf("creating archive root: %w", err)
	}

	written := 0
	for _, tc := range testCases {
		dirCreated := false
		for _, sd := range tc.Attachments {
			if !sd.Reportable() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := ReadAttachment(ctx, p.Media, sd)
			if err != nil {
				var ioErr *AttachmentIOError
				if errors.As(err, &ioErr) {
					logger.Warn("Skipping attachment in archive of mission %d: %v", missionID, err)
					metrics.AttachmentSkipped("zip")
					continue
				}
				return nil, err
			}
			dir := path.Join(root, fmt.Sprint(tc.Position)) + "/"
			if !dirCreated {
				if _, err := zw.CreateHeader(&zip.FileHeader{Name: dir, Modified: now}); err != nil {
					return nil, fmt.Errorf("creating archive directory %s: %w", dir, err)
				}
				dirCreated = true
			}
			w, err := zw.CreateHeader(&zip.FileHeader{Name: dir + sd.Filename(), Method: zip.Deflate, Modified: now})
			if err != nil {
				return nil, fmt.Errorf("adding %s to archive: %w", sd.Filename(), err)
			}
			if _, err := w.Write(data); err != nil {
				return nil, fmt.Errorf("writing %s to archive: %w", sd.Filename(), err)
			}
			written++
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	logger.Info("Packaged %d attachments for mission %d under %s", written, missionID, root)
	return buf.Bytes(), nil
}
