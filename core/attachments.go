package core

import (
	"context"
	"fmt"
	"io"

	"missionreport/logger"
	"missionreport/models"
	"missionreport/storage"
)

// AttachmentStore is the record side of supporting data.
type AttachmentStore interface {
	SupportingDataLister
	CreateSupportingData(ctx context.Context, s models.SupportingData) (int64, error)
	GetSupportingDataByID(ctx context.Context, id int64) (models.SupportingData, error)
	ListSupportingDataByMission(ctx context.Context, missionID int64) ([]models.SupportingData, error)
	DeleteSupportingData(ctx context.Context, id int64) error
}

// AttachmentService keeps supporting data records and their stored files in step.
type AttachmentService struct {
	Store AttachmentStore
	Media storage.MediaStore
}

// Upload stores the file and creates its record. The stored file is removed again
// when the record cannot be written.
func (s *AttachmentService) Upload(ctx context.Context, sd models.SupportingData, filename string, r io.Reader) (models.SupportingData, error) {
	if storage.SanitizeName(filename) == "" {
		return sd, fmt.Errorf("upload has no file name: %w", models.ErrValidation)
	}
	name, err := s.Media.Save(ctx, filename, r)
	if err != nil {
		return sd, fmt.Errorf("storing %s: %w", filename, err)
	}
	sd.TestFile = name
	id, err := s.Store.CreateSupportingData(ctx, sd)
	if err != nil {
		if derr := s.Media.Delete(ctx, name); derr != nil {
			logger.Error("Removing orphaned media file %s: %v", name, derr)
		}
		return sd, err
	}
	sd.ID = id
	return sd, nil
}

// Replace stores a new file for an existing record and returns the stored name.
// The previous file is removed once the caller has saved the record.
func (s *AttachmentService) Replace(ctx context.Context, filename string, r io.Reader) (string, error) {
	if storage.SanitizeName(filename) == "" {
		return "", fmt.Errorf("upload has no file name: %w", models.ErrValidation)
	}
	return s.Media.Save(ctx, filename, r)
}

// Delete removes the record, then its stored file. A file that cannot be removed
// is logged; the record is already gone at that point.
func (s *AttachmentService) Delete(ctx context.Context, id int64) error {
	sd, err := s.Store.GetSupportingDataByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteSupportingData(ctx, id); err != nil {
		return err
	}
	s.removeFile(ctx, sd.TestFile)
	return nil
}

// RemoveFile deletes a stored file that no record refers to anymore.
func (s *AttachmentService) RemoveFile(ctx context.Context, name string) {
	s.removeFile(ctx, name)
}

func (s *AttachmentService) removeFile(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.Media.Delete(ctx, name); err != nil {
		logger.Error("Deleting media file %s: %v", name, err)
		return
	}
	logger.Info("Deleted media file %s", name)
}

// FilesOfTestCase lists the stored files of a test case. Callers collect them
// before a cascading delete and pass them to RemoveFiles afterwards.
func (s *AttachmentService) FilesOfTestCase(ctx context.Context, testCaseID int64) ([]string, error) {
	items, err := s.Store.ListSupportingDataByTestCase(ctx, testCaseID)
	if err != nil {
		return nil, err
	}
	return fileNames(items), nil
}

func (s *AttachmentService) FilesOfMission(ctx context.Context, missionID int64) ([]string, error) {
	items, err := s.Store.ListSupportingDataByMission(ctx, missionID)
	if err != nil {
		return nil, err
	}
	return fileNames(items), nil
}

func (s *AttachmentService) RemoveFiles(ctx context.Context, names []string) {
	for _, n := range names {
		s.removeFile(ctx, n)
	}
}

// Open returns the stored file of a record and the name to download it as.
func (s *AttachmentService) Open(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	sd, err := s.Store.GetSupportingDataByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.Media.Open(ctx, sd.TestFile)
	if err != nil {
		return nil, "", err
	}
	return rc, storage.SanitizeName(sd.TestFile), nil
}

func fileNames(items []models.SupportingData) []string {
	names := make([]string, 0, len(items))
	for _, sd := range items {
		if sd.TestFile != "" {
			names = append(names, sd.TestFile)
		}
	}
	return names
}
