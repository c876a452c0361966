// Package storage persists uploaded post images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotImage is returned when an upload does not sniff as an image.
var ErrNotImage = errors.New("upload a valid image")

// ImageStore saves images and returns the relative path to store on a post.
type ImageStore interface {
	SaveImage(ctx context.Context, filename string, r io.Reader) (string, error)
	URL(rel string) string
}

// LocalStore writes files under Dir/posts and serves them from URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
}

func NewLocalStore(dir, urlPrefix string, maxBytes int64) *LocalStore {
	return &LocalStore{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/"), MaxBytes: maxBytes}
}

func (s *LocalStore) SaveImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	limit := s.MaxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("image larger than %d bytes", limit)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotImage
	}

	ext := mt.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	rel := path.Join("posts", uuid.NewString()+ext)
	full := filepath.Join(s.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return rel, nil
}

func (s *LocalStore) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.URLPrefix + "/" + rel
}
