package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "shot.png", SanitizeName("supporting_data/shot.png"))
	assert.Equal(t, "shot.png", SanitizeName(`C:\Users\op\shot.png`))
	assert.Equal(t, "passwd", SanitizeName("../../etc/passwd"))
	assert.Equal(t, "", SanitizeName(""))
	assert.Equal(t, "", SanitizeName(".."))
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)

	name, err := s.Save(ctx, "../scan.txt", strings.NewReader("open ports"))
	require.NoError(t, err)
	assert.Equal(t, "scan.txt", name)
	assert.FileExists(t, filepath.Join(root, "scan.txt"))

	rc, err := s.Open(ctx, LegacyPrefix+name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "open ports", string(data))

	require.NoError(t, s.Delete(ctx, name))
	require.NoError(t, s.Delete(ctx, name))
	_, err = s.Open(ctx, name)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestFileStoreKeepsExistingFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)

	first, err := s.Save(ctx, "shot.png", strings.NewReader("first"))
	require.NoError(t, err)
	second, err := s.Save(ctx, "shot.png", strings.NewReader("second"))
	require.NoError(t, err)

	assert.Equal(t, "shot.png", first)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "shot_"))
	assert.True(t, strings.HasSuffix(second, ".png"))

	data, err := os.ReadFile(filepath.Join(root, first))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestNewFileStoreNeedsRoot(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}
