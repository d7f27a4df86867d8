package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"missionreport/logger"
)

// FileStore keeps objects as files in one directory.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, errors.New("media root is empty")
	}
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("creating media root %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(name string) (string, error) {
	base := SanitizeName(name)
	if base == "" {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.root, base), nil
}

func (s *FileStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	base := SanitizeName(name)
	if base == "" {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	f, err := os.OpenFile(filepath.Join(s.root, base), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if errors.Is(err, os.ErrExist) {
		ext := filepath.Ext(base)
		base = fmt.Sprintf("%s_%s%s", strings.TrimSuffix(base, ext), uuid.NewString()[:8], ext)
		f, err = os.OpenFile(filepath.Join(s.root, base), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	}
	if err != nil {
		return "", fmt.Errorf("creating media file %s: %w", base, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing media file %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing media file %s: %w", base, err)
	}
	logger.Debug("Stored media file %s", base)
	return base, nil
}

func (s *FileStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(p), ErrObjectNotFound)
	}
	return f, err
}

// Delete removes the file. A file that is already gone is not an error.
func (s *FileStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing media file %s: %w", filepath.Base(p), err)
	}
	return nil
}
