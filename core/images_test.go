package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionreport/models"
)

func TestSniffImage(t *testing.T) {
	format, w, h, err := SniffImage("shot.png", pngBytes(t, 12, 7))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 12, w)
	assert.Equal(t, 7, h)

	_, _, _, err = SniffImage("notes.txt", []byte("plain text"))
	var malformed *MalformedAttachmentError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "notes.txt", malformed.Name)

	// a PNG signature with a truncated header
	_, _, _, err = SniffImage("broken.png", pngBytes(t, 4, 4)[:12])
	assert.True(t, errors.As(err, &malformed))
}

func TestLoadAttachment(t *testing.T) {
	media := memMedia{"a.png": pngBytes(t, 3, 3), "b.bin": {0, 1, 2, 3}}

	a, err := LoadAttachment(context.Background(), media, models.SupportingData{TestFile: "a.png"})
	require.NoError(t, err)
	assert.True(t, a.IsImage())

	b, err := LoadAttachment(context.Background(), media, models.SupportingData{TestFile: "b.bin"})
	require.NoError(t, err)
	assert.False(t, b.IsImage())
	assert.Equal(t, []byte{0, 1, 2, 3}, b.Data)

	_, err = LoadAttachment(context.Background(), media, models.SupportingData{TestFile: "gone.png"})
	var ioErr *AttachmentIOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestSniffImageRejectsTruncatedStream(t *testing.T) {
	// signature and IHDR only; the header decodes, the pixel data is missing
	cut := pngBytes(t, 40, 20)[:33]

	_, _, _, err := SniffImage("cut.png", cut)
	var malformed *MalformedAttachmentError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "cut.png", malformed.Name)
}

func TestLoadAttachmentMarksCorruptImages(t *testing.T) {
	media := memMedia{
		"cut.png":   pngBytes(t, 40, 20)[:33],
		"notes.txt": []byte("nmap output"),
		"ok.png":    pngBytes(t, 2, 2),
	}
	tests := []struct {
		name    string
		image   bool
		corrupt bool
	}{
		{"cut.png", false, true},
		{"notes.txt", false, false},
		{"ok.png", true, false},
	}
	for _, tt := range tests {
		a, err := LoadAttachment(context.Background(), media, models.SupportingData{TestFile: tt.name})
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.image, a.IsImage(), tt.name)
		assert.Equal(t, tt.corrupt, a.Corrupt, tt.name)
	}
}
