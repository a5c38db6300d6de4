// Package upload stores media blobs so clients can share a locator instead
// of pushing the whole file through the signal socket.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrTooLarge = errors.New("upload too large")
	ErrEmpty    = errors.New("upload empty")
)

type Store struct {
	dir       string
	maxSize   int64
	urlPrefix string
}

// Stored describes a saved blob.
type Stored struct {
	Name string `json:"name"`
	URL  string `json:"mediaUrl"`
	MIME string `json:"mime"`
	Size int64  `json:"size"`
}

func NewStore(dir string, maxSize int64, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload dir %s: %w", dir, err)
	}
	return &Store{dir: dir, maxSize: maxSize, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save copies r to disk under a fresh name. The returned URL is stable for
// the life of the file.
func (s *Store) Save(r io.Reader) (Stored, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return Stored{}, fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(r, s.maxSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Stored{}, fmt.Errorf("write upload: %w", err)
	}
	if n == 0 {
		return Stored{}, ErrEmpty
	}
	if n > s.maxSize {
		return Stored{}, ErrTooLarge
	}

	mt, err := mimetype.DetectFile(tmpName)
	if err != nil {
		return Stored{}, fmt.Errorf("detect type: %w", err)
	}
	name := uuid.NewString() + mt.Extension()
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return Stored{}, fmt.Errorf("store upload: %w", err)
	}
	keep = true

	log.Info().Str("module", "upload").Str("name", name).Str("mime", mt.String()).Int64("size", n).Msg("stored upload")
	return Stored{Name: name, URL: s.urlPrefix + "/" + name, MIME: mt.String(), Size: n}, nil
}
