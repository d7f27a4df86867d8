// Package storage keeps the files behind supporting data records. Objects are
// addressed by base file name only.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"missionreport/config"
)

// ErrObjectNotFound is returned when the named object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// MediaStore is an attachment blob store.
type MediaStore interface {
	// Save stores r under name, or under a unique variant of name when it is taken,
	// and returns the name actually used.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// LegacyPrefix is the directory older records carry in front of the file name.
const LegacyPrefix = "supporting_data/"

// SanitizeName reduces name to its base file name. Legacy directory prefixes and
// any path a client sent are dropped.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, LegacyPrefix)
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// New returns the media store selected by media.backend.
func New(ctx context.Context, cfg *config.Configuration) (MediaStore, error) {
	switch strings.ToLower(cfg.Media.Backend) {
	case "", "fs":
		return NewFileStore(cfg.Media.Root)
	case "s3":
		return NewS3Store(ctx, cfg.Media.S3)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Media.Backend)
	}
}
