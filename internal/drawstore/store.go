// Package drawstore provides local durable caches for encoded drawing
// records.
package drawstore

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const maxKeyLen = 200

// Store is a drawing.Cache that can also enumerate and drop keys.
type Store interface {
	drawing.Cache
	Keys() ([]string, error)
	Delete(key string) error
	Close() error
}

// Open builds the backend named by backend.
func Open(backend, dir, dbPath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(dbPath)
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("drawstore: unknown backend %q", backend)
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || len(key) > maxKeyLen {
		return fmt.Errorf("drawstore: invalid key %q", key)
	}
	return nil
}
