package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionreport/models"
	"missionreport/storage"
)

type memAttachmentStore struct {
	rows      map[int64]models.SupportingData
	nextID    int64
	createErr error
}

func newMemAttachmentStore() *memAttachmentStore {
	return &memAttachmentStore{rows: map[int64]models.SupportingData{}, nextID: 1}
}

func (s *memAttachmentStore) CreateSupportingData(_ context.Context, sd models.SupportingData) (int64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	sd.ID = s.nextID
	s.nextID++
	s.rows[sd.ID] = sd
	return sd.ID, nil
}

func (s *memAttachmentStore) GetSupportingDataByID(_ context.Context, id int64) (models.SupportingData, error) {
	sd, ok := s.rows[id]
	if !ok {
		return sd, fmt.Errorf("supporting data %d: %w", id, models.ErrNotFound)
	}
	return sd, nil
}

func (s *memAttachmentStore) ListSupportingDataByTestCase(_ context.Context, testCaseID int64) ([]models.SupportingData, error) {
	var out []models.SupportingData
	for _, sd := range s.rows {
		if sd.TestCaseID == testCaseID {
			out = append(out, sd)
		}
	}
	return out, nil
}

func (s *memAttachmentStore) ListSupportingDataByMission(ctx context.Context, _ int64) ([]models.SupportingData, error) {
	var out []models.SupportingData
	for _, sd := range s.rows {
		out = append(out, sd)
	}
	return out, nil
}

func (s *memAttachmentStore) DeleteSupportingData(_ context.Context, id int64) error {
	delete(s.rows, id)
	return nil
}

func newAttachmentService(t *testing.T) (*AttachmentService, *memAttachmentStore, *storage.FileStore) {
	t.Helper()
	media, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	store := newMemAttachmentStore()
	return &AttachmentService{Store: store, Media: media}, store, media
}

func TestAttachmentUploadAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, store, media := newAttachmentService(t)

	sd, err := svc.Upload(ctx, models.SupportingData{TestCaseID: 4, Include: true}, "dump.txt", strings.NewReader("creds"))
	require.NoError(t, err)
	assert.Equal(t, "dump.txt", sd.TestFile)
	assert.Contains(t, store.rows, sd.ID)

	rc, name, err := svc.Open(ctx, sd.ID)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "dump.txt", name)
	assert.Equal(t, "creds", string(data))

	require.NoError(t, svc.Delete(ctx, sd.ID))
	assert.NotContains(t, store.rows, sd.ID)
	_, err = media.Open(ctx, "dump.txt")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestAttachmentUploadRemovesFileWhenRecordFails(t *testing.T) {
	ctx := context.Background()
	svc, store, media := newAttachmentService(t)
	store.createErr = errors.New("disk full")

	_, err := svc.Upload(ctx, models.SupportingData{TestCaseID: 4}, "dump.txt", strings.NewReader("creds"))
	require.Error(t, err)
	_, err = media.Open(ctx, "dump.txt")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestAttachmentUploadNeedsName(t *testing.T) {
	svc, _, _ := newAttachmentService(t)
	_, err := svc.Upload(context.Background(), models.SupportingData{}, "", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAttachmentFilesOfTestCase(t *testing.T) {
	ctx := context.Background()
	svc, _, media := newAttachmentService(t)
	for _, name := range []string{"a.txt", "b.txt"} {
		_, err := svc.Upload(ctx, models.SupportingData{TestCaseID: 9}, name, strings.NewReader(name))
		require.NoError(t, err)
	}

	files, err := svc.FilesOfTestCase(ctx, 9)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, files)

	svc.RemoveFiles(ctx, files)
	for _, f := range files {
		_, err := media.Open(ctx, f)
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	}
}
