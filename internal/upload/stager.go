package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/op/go-logging"
)

// Stager writes incoming bytes to uniquely named files under a scratch
// directory so concurrent uploads never collide on disk.
type Stager struct {
	dir string
	log *logging.Logger
}

// NewStager creates a stager rooted at dir. The directory must exist.
func NewStager(dir string, log *logging.Logger) *Stager {
	return &Stager{dir: dir, log: log}
}

// Stage copies data to a fresh file and returns its path. The caller must
// Release the path when done, on success and failure alike.
func (s *Stager) Stage(name string, data io.Reader) (string, error) {
	path := filepath.Join(s.dir, uuid.NewString()+"-"+filepath.Base(name))

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", name, err)
	}
	if _, err := io.Copy(dst, data); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to stage %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to stage %s: %w", name, err)
	}
	return path, nil
}

// Release removes a staged file. Removal failure is logged and swallowed so
// cleanup never masks the primary result.
func (s *Stager) Release(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warningf("Failed to remove staged file %s: %v", path, err)
	}
}
