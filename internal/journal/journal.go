// Package journal appends every synced study set to date-organized JSONL
// files, one line per sync.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

var (
	ErrClosed     = errors.New("journal closed")
	ErrBufferFull = errors.New("journal buffer full")
)

// Entry is one journal line.
type Entry struct {
	Time     time.Time       `json:"time"`
	Subject  string          `json:"subject"`
	Version  int             `json:"version"`
	Drawings []drawing.Study `json:"drawings"`
}

// Writer handles async writing of journal entries to date-organized files.
type Writer struct {
	baseDir   string
	maxSizeMB int
	now       func() time.Time
	writeCh   chan Entry
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu          sync.Mutex
	currentDate string
	logger      *lumberjack.Logger
}

// NewWriter creates an async journal writer rooted at baseDir.
func NewWriter(baseDir string, bufferSize, maxSizeMB int) *Writer {
	if bufferSize < 1 {
		bufferSize = 1
	}
	w := &Writer{
		baseDir:   baseDir,
		maxSizeMB: maxSizeMB,
		now:       time.Now,
		writeCh:   make(chan Entry, bufferSize),
		done:      make(chan struct{}),
	}

	w.wg.Add(1)
	go w.writeLoop()

	return w
}

// Save implements drawing.SaveFunc by queueing one entry.
func (w *Writer) Save(_ context.Context, subject string, rec drawing.Record) error {
	drawings := rec.Drawings
	if drawings == nil {
		drawings = []drawing.Study{}
	}
	return w.Write(Entry{Time: w.now().UTC(), Subject: subject, Version: rec.Version, Drawings: drawings})
}

// Write queues an entry without blocking.
func (w *Writer) Write(e Entry) error {
	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	select {
	case w.writeCh <- e:
		return nil
	default:
		slog.Warn("journal write buffer full, dropping entry", "subject", e.Subject)
		return ErrBufferFull
	}
}

// Rotate starts a new backup file for the current date. It is a no-op
// before the first write.
func (w *Writer) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.logger == nil {
		return nil
	}
	return w.logger.Rotate()
}

// Close shuts down the writer after writing every queued entry.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.logger != nil {
		err := w.logger.Close()
		w.logger = nil
		return err
	}
	return nil
}

func (w *Writer) writeLoop() {
	defer w.wg.Done()

	for {
		select {
		case e := <-w.writeCh:
			w.writeEntry(e)
		case <-w.done:
			for {
				select {
				case e := <-w.writeCh:
					w.writeEntry(e)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) writeEntry(e Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("journal entry marshal failed", "error", err, "subject", e.Subject)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	date := e.Time.UTC().Format("2006-01-02")
	if w.logger == nil || date != w.currentDate {
		if !w.openForDate(date) {
			return
		}
	}

	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		slog.Error("journal write failed", "error", err, "subject", e.Subject)
	}
}

func (w *Writer) openForDate(date string) bool {
	if w.logger != nil {
		_ = w.logger.Close()
		w.logger = nil
	}

	dir := filepath.Join(w.baseDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("journal directory create failed", "error", err, "dir", dir)
		return false
	}

	filename := filepath.Join(dir, "drawings.jsonl")
	w.logger = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    w.maxSizeMB,
		MaxBackups: 100,
		MaxAge:     30,
		Compress:   false,
		LocalTime:  false,
	}
	w.currentDate = date
	slog.Info("journal file opened", "file", filename)
	return true
}

// Path returns the journal file for date (YYYY-MM-DD).
func (w *Writer) Path(date string) string {
	return filepath.Join(w.baseDir, date, "drawings.jsonl")
}
