// Package snapshot archives rendered chart images together with the study
// set they were rendered from.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ErrNotFound is returned for unknown or malformed snapshot ids.
var ErrNotFound = errors.New("snapshot not found")

const imageExt = ".png"

// Meta describes a stored snapshot.
type Meta struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	SizeBytes  int             `json:"sizeBytes"`
	CreatedAt  time.Time       `json:"createdAt"`
	StudyCount int             `json:"studyCount"`
	Studies    []drawing.Study `json:"studies,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// Store manages snapshot files on disk: one PNG and one JSON sidecar per id.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) paths(id string) (img, meta string) {
	return filepath.Join(s.dir, id+imageExt), filepath.Join(s.dir, id+".json")
}

func validateID(id string) error {
	if !uuidRe.MatchString(id) {
		return fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return nil
}

// Save writes the image and its metadata sidecar.
func (s *Store) Save(meta Meta, png []byte) error {
	if err := validateID(meta.ID); err != nil {
		return err
	}
	meta.SizeBytes = len(png)
	meta.StudyCount = len(meta.Studies)

	s.mu.Lock()
	defer s.mu.Unlock()

	imgPath, jsonPath := s.paths(meta.ID)
	if err := os.WriteFile(imgPath, png, 0o644); err != nil {
		return fmt.Errorf("snapshot store: write image: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		s.removeQuiet(imgPath)
		return fmt.Errorf("snapshot store: marshal meta: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		s.removeQuiet(imgPath)
		return fmt.Errorf("snapshot store: write meta: %w", err)
	}
	return nil
}

// Get reads snapshot metadata by id.
func (s *Store) Get(id string) (Meta, error) {
	if err := validateID(id); err != nil {
		return Meta{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readMeta(id)
}

func (s *Store) readMeta(id string) (Meta, error) {
	_, jsonPath := s.paths(id)
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Meta{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Meta{}, fmt.Errorf("snapshot store: read meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, fmt.Errorf("snapshot store: unmarshal meta: %w", err)
	}
	return meta, nil
}

// List returns snapshots newest first. symbol filters when non-empty.
// Studies are omitted from list entries.
func (s *Store) List(symbol string) ([]Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("snapshot store: glob: %w", err)
	}

	metas := make([]Meta, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Debug("snapshot meta unreadable", "path", path, "error", err)
			continue
		}
		var meta Meta
		if err := json.Unmarshal(data, &meta); err != nil {
			slog.Debug("snapshot meta corrupt", "path", path, "error", err)
			continue
		}
		if symbol != "" && meta.Symbol != symbol {
			continue
		}
		meta.Studies = nil
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// ReadImage returns the PNG bytes of a snapshot.
func (s *Store) ReadImage(id string) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	imgPath, _ := s.paths(id)
	data, err := os.ReadFile(imgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: image %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("snapshot store: read image: %w", err)
	}
	return data, nil
}

// Delete removes the image and the sidecar. A missing image is logged, not
// returned.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readMeta(id); err != nil {
		return err
	}
	imgPath, jsonPath := s.paths(id)
	if err := os.Remove(imgPath); err != nil {
		slog.Debug("snapshot image cleanup failed", "id", id, "error", err)
	}
	if err := os.Remove(jsonPath); err != nil {
		return fmt.Errorf("snapshot store: remove meta: %w", err)
	}
	return nil
}

func (s *Store) removeQuiet(path string) {
	if err := os.Remove(path); err != nil {
		slog.Debug("snapshot cleanup failed", "path", path, "error", err)
	}
}
