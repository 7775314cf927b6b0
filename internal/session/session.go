// Package session runs one drawing manager per chart symbol on its own
// event-loop goroutine.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
	"github.com/dgnsrekt/tv_drawings/internal/events"
	"github.com/dgnsrekt/tv_drawings/internal/surface"
)

// ErrClosed is returned by Do once the session has shut down.
var ErrClosed = errors.New("session closed")

// Config is shared by every session a Registry opens.
type Config struct {
	Viewport surface.Viewport
	Theme    surface.Theme
	Cache    drawing.Cache
	// OnSave receives the debounced study set after it has been published.
	OnSave   drawing.SaveFunc
	Debounce time.Duration
	// SyncTimeout bounds one OnSave call. Zero uses the manager default.
	SyncTimeout time.Duration
	Styles      map[drawing.StudyType]drawing.Style
	Broker      *events.Broker
}

// Session owns a surface and the Manager drawing on it. Every access goes
// through Do, which runs on the session goroutine.
type Session struct {
	symbol   string
	openedAt time.Time
	broker   *events.Broker

	surface *surface.Surface
	mgr     *drawing.Manager

	cmds      chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Open builds a session for symbol and starts its loop.
func Open(symbol string, vp surface.Viewport, cfg Config) (*Session, error) {
	surf, err := surface.New(vp, cfg.Theme)
	if err != nil {
		return nil, err
	}
	s := &Session{
		symbol:   symbol,
		openedAt: time.Now().UTC(),
		broker:   cfg.Broker,
		surface:  surf,
		cmds:     make(chan func()),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	downstream := cfg.OnSave
	s.mgr = drawing.NewManager(surf, drawing.Options{
		Subject:     symbol,
		Cache:       cfg.Cache,
		Debounce:    cfg.Debounce,
		SyncTimeout: cfg.SyncTimeout,
		Styles:      cfg.Styles,
		OnSave: func(ctx context.Context, subject string, rec drawing.Record) error {
			s.publish(events.TypeStudies, rec)
			if downstream == nil {
				return nil
			}
			return downstream(ctx, subject, rec)
		},
		Callbacks: drawing.Callbacks{
			OnSelectionChange: func(id string) {
				s.publish(events.TypeSelection, map[string]string{"id": id})
			},
			OnContextMenu: func(x, y float64, id string) {
				s.publish(events.TypeContextMenu, map[string]any{"x": x, "y": y, "id": id})
			},
			OnToolChange: func(tool drawing.StudyType) {
				s.publish(events.TypeTool, map[string]string{"tool": string(tool)})
			},
		},
	})
	go s.loop()
	slog.Info("drawing session opened", "symbol", symbol, "studies", len(s.mgr.Studies()))
	return s, nil
}

func (s *Session) publish(typ string, payload any) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(events.NewEvent(typ, s.symbol, payload))
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case fn := <-s.cmds:
			fn()
		case <-s.quit:
			s.mgr.Close()
			return
		}
	}
}

func (s *Session) Symbol() string      { return s.symbol }
func (s *Session) OpenedAt() time.Time { return s.openedAt }

// Do runs fn on the session goroutine and returns its error.
func (s *Session) Do(ctx context.Context, fn func(m *drawing.Manager, surf *surface.Surface) error) error {
	errc := make(chan error, 1)
	cmd := func() { errc <- fn(s.mgr, s.surface) }
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop, detaches every study and flushes any pending remote
// sync. It blocks until the loop has exited.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
		slog.Info("drawing session closed", "symbol", s.symbol)
	})
}

// Done is closed once the session loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }
