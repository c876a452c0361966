package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SmallGIF is a 2x1 gif.
var SmallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func TestSaveImage(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "/media/", 1<<20)

	rel, err := s.SaveImage(context.Background(), "small.gif", bytes.NewReader(SmallGIF))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "posts/"))
	assert.True(t, strings.HasSuffix(rel, ".gif"))
	assert.Equal(t, "/media/"+rel, s.URL(rel))

	data, err := os.ReadFile(filepath.Join(s.Dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, SmallGIF, data)
}

func TestSaveImageRejectsNonImages(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "/media", 1<<20)
	_, err := s.SaveImage(context.Background(), "notes.txt", strings.NewReader("just text"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestSaveImageEnforcesLimit(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "/media", 10)
	_, err := s.SaveImage(context.Background(), "small.gif", bytes.NewReader(SmallGIF))
	assert.Error(t, err)
}

func TestURLEmpty(t *testing.T) {
	assert.Equal(t, "", NewLocalStore("x", "/media", 0).URL(""))
}
