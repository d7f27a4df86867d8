package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"missionreport/logger"
	"missionreport/models"
)

// MediaReader opens stored attachment files.
type MediaReader interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// embeddableFormats is the raster allow-list, keyed by the image.DecodeConfig name.
var embeddableFormats = map[string]bool{
	"gif":  true,
	"tiff": true,
	"jpeg": true,
	"bmp":  true,
	"png":  true,
}

// MalformedAttachmentError marks content that is not an embeddable image. The
// attachment is listed by name instead of embedded.
type MalformedAttachmentError struct {
	Name string
	Err  error
}

func (e *MalformedAttachmentError) Error() string {
	return fmt.Sprintf("attachment %s is not an embeddable image: %v", e.Name, e.Err)
}

func (e *MalformedAttachmentError) Unwrap() error { return e.Err }

// AttachmentIOError marks an attachment whose stored file could not be read.
type AttachmentIOError struct {
	Name string
	Err  error
}

func (e *AttachmentIOError) Error() string {
	return fmt.Sprintf("reading attachment %s: %v", e.Name, e.Err)
}

func (e *AttachmentIOError) Unwrap() error { return e.Err }

// LoadedAttachment is a supporting data record with its file content.
type LoadedAttachment struct {
	Record models.SupportingData
	Data   []byte

	// Format, Width and Height are set when Data is an embeddable image.
	Format string
	Width  int
	Height int

	// Corrupt marks content that starts like a known image format but does not
	// decode.
	Corrupt bool
}

func (a LoadedAttachment) IsImage() bool { return a.Format != "" }

// ReadAttachment loads the stored file of sd. Failures come back as
// *AttachmentIOError. A failed close after a complete read is only logged.
func ReadAttachment(ctx context.Context, media MediaReader, sd models.SupportingData) ([]byte, error) {
	rc, err := media.Open(ctx, sd.TestFile)
	if err != nil {
		return nil, &AttachmentIOError{Name: sd.Filename(), Err: err}
	}
	data, err := io.ReadAll(rc)
	if cerr := rc.Close(); cerr != nil {
		logger.Warn("Closing attachment %s: %v", sd.Filename(), cerr)
	}
	if err != nil {
		return nil, &AttachmentIOError{Name: sd.Filename(), Err: err}
	}
	return data, nil
}

// SniffImage identifies data by content. It returns *MalformedAttachmentError for
// formats outside the allow-list and for streams that do not decode completely.
func SniffImage(name string, data []byte) (string, int, int, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, &MalformedAttachmentError{Name: name, Err: err}
	}
	if !embeddableFormats[format] {
		return "", 0, 0, &MalformedAttachmentError{Name: name, Err: fmt.Errorf("format %s is not allowed", format)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", 0, 0, &MalformedAttachmentError{Name: name, Err: fmt.Errorf("image has no extent")}
	}
	// DecodeConfig stops after the header; a truncated or damaged pixel stream
	// only shows up on a full decode.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return "", 0, 0, &MalformedAttachmentError{Name: name, Err: fmt.Errorf("decoding %s stream: %w", format, err)}
	}
	return format, cfg.Width, cfg.Height, nil
}

// LoadAttachment reads sd and classifies it. Only an *AttachmentIOError is
// returned; content that is not an image comes back with an empty Format, and
// with Corrupt set when it carried a recognized image header.
func LoadAttachment(ctx context.Context, media MediaReader, sd models.SupportingData) (LoadedAttachment, error) {
	data, err := ReadAttachment(ctx, media, sd)
	if err != nil {
		return LoadedAttachment{}, err
	}
	a := LoadedAttachment{Record: sd, Data: data}
	format, w, h, err := SniffImage(sd.Filename(), data)
	if err != nil {
		a.Corrupt = !errors.Is(err, image.ErrFormat)
		logger.Debug("Listing %s instead of embedding: %v", sd.Filename(), err)
		return a, nil
	}
	a.Format, a.Width, a.Height = format, w, h
	return a, nil
}
