package drawing

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// RecordVersion is the only local-cache record version this package reads.
const RecordVersion = 1

// DefaultSaveDebounce coalesces rapid mutations into one remote sync.
const DefaultSaveDebounce = 300 * time.Millisecond

// Record is the persisted study set for one chart subject.
type Record struct {
	Version  int     `json:"version"`
	Drawings []Study `json:"drawings"`
}

// Cache stores encoded records by key. Load returns nil data and a nil error
// when nothing is stored under key.
type Cache interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// SaveFunc is the remote sync hook. Errors are logged and dropped.
type SaveFunc func(ctx context.Context, subject string, rec Record) error

const cacheKeyPrefix = "chart_drawings_"

// CacheKey derives the local-cache key for a chart subject.
func CacheKey(subject string) string {
	return cacheKeyPrefix + strings.ToUpper(strings.TrimSpace(subject))
}

// SubjectFromCacheKey reverses CacheKey. Keys written by anything else
// return ok=false.
func SubjectFromCacheKey(key string) (subject string, ok bool) {
	subject, ok = strings.CutPrefix(key, cacheKeyPrefix)
	return subject, ok && subject != ""
}

// EncodeRecord serializes studies as a version 1 record.
func EncodeRecord(studies []Study) ([]byte, error) {
	if studies == nil {
		studies = []Study{}
	}
	return json.Marshal(Record{Version: RecordVersion, Drawings: studies})
}

// DecodeRecord parses a stored record. Malformed or version-mismatched data
// yields ok=false. Entries that fail validation or repeat an id are skipped.
func DecodeRecord(data []byte) (studies []Study, ok bool) {
	if len(data) == 0 {
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Warn("drawing cache record malformed", "error", err)
		return nil, false
	}
	if rec.Version != RecordVersion {
		slog.Warn("drawing cache record version mismatch", "version", rec.Version, "want", RecordVersion)
		return nil, false
	}
	seen := make(map[string]struct{}, len(rec.Drawings))
	out := make([]Study, 0, len(rec.Drawings))
	for _, s := range rec.Drawings {
		if err := s.Validate(); err != nil {
			slog.Warn("drawing cache entry skipped", "error", err)
			continue
		}
		if _, dup := seen[s.ID]; dup {
			slog.Warn("drawing cache entry skipped", "id", s.ID, "error", "duplicate id")
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out, true
}

// Stopper cancels a scheduled callback. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc is the production value.
type AfterFunc func(d time.Duration, f func()) Stopper

func realAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// debouncer holds at most one pending record and fires it once the delay
// passes without a newer Schedule.
type debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	afterFunc AfterFunc
	fire      func(Record)

	timer   Stopper
	pending *Record
	gen     uint64
}

func newDebouncer(delay time.Duration, after AfterFunc, fire func(Record)) *debouncer {
	if after == nil {
		after = realAfterFunc
	}
	return &debouncer{delay: delay, afterFunc: after, fire: fire}
}

// Schedule replaces the pending record and restarts the delay.
func (d *debouncer) Schedule(rec Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = &rec
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.afterFunc(d.delay, func() { d.run(gen) })
}

func (d *debouncer) run(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	rec := *d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	d.fire(rec)
}

// Flush cancels the timer and fires any pending record synchronously.
func (d *debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	rec := d.pending
	d.pending = nil
	d.mu.Unlock()
	if rec != nil {
		d.fire(*rec)
	}
}

// Pending reports whether a record is waiting to be sent.
func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
