// Package media keeps uploaded files and serves them back by name.
package media

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("media file not found")
	ErrInvalidName = errors.New("invalid media file name")
)

// Store persists blobs under generated names.
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

var namePattern = regexp.MustCompile(`^[a-f0-9]{32}(\.[a-z0-9]{1,10})?$`)

// NewName builds a collision free name that keeps the original extension.
func NewName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > 11 || !namePattern.MatchString("00000000000000000000000000000000"+ext) {
		ext = ""
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

// ValidName rejects anything NewName could not have produced.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}
