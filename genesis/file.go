package genesis

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
)

// FileSource reads the genesis descriptor from the local filesystem. Used in
// local development and tests, and for descriptors staged onto the instance
// by the deployment layer.
type FileSource struct {
	path string
	log  *slog.Logger
}

// NewFileSource creates a filesystem-backed genesis source.
func NewFileSource(path string, log *slog.Logger) *FileSource {
	return &FileSource{path: path, log: log}
}

func newFileSourceFromURL(u *url.URL, log *slog.Logger) (*FileSource, error) {
	if u.Path == "" {
		return nil, fmt.Errorf("file genesis source requires a path")
	}
	return NewFileSource(u.Path, log), nil
}

// Fetch reads the descriptor file.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}
	s.log.Debug("Fetched genesis descriptor from file",
		slog.String("path", s.path), slog.Int("size", len(data)))
	return data, nil
}

// Location returns the URI that identifies this source.
func (s *FileSource) Location() string {
	return "file://" + s.path
}
