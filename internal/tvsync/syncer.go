// Package tvsync mirrors a chart's study set into a live TradingView tab
// over the Chrome DevTools Protocol.
package tvsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/target"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

// ErrNoChartTab is returned when no page target matches the tab filter or
// every matching tab shows another symbol.
var ErrNoChartTab = errors.New("tvsync: no matching chart tab")

// Result summarizes one tab update.
type Result struct {
	Removed int `json:"removed"`
	Created int `json:"created"`
}

type evalEnvelope struct {
	OK           bool            `json:"ok"`
	Data         json.RawMessage `json:"data,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// Syncer pushes study sets into every matching chart tab.
type Syncer struct {
	tabFilter   string
	evalTimeout time.Duration
	now         func() time.Time

	mu   sync.Mutex
	conn *cdpConn
}

func New(cdpURL, tabFilter string, evalTimeout time.Duration) *Syncer {
	if evalTimeout <= 0 {
		evalTimeout = 5 * time.Second
	}
	return &Syncer{
		tabFilter:   tabFilter,
		evalTimeout: evalTimeout,
		now:         time.Now,
		conn:        newCDPConn(cdpURL),
	}
}

// Save implements drawing.SaveFunc.
func (s *Syncer) Save(ctx context.Context, subject string, rec drawing.Record) error {
	_, err := s.Sync(ctx, subject, rec.Drawings)
	return err
}

// Sync replaces the shapes previously pushed for subject with studies. It
// returns the per-tab results keyed by target id.
func (s *Syncer) Sync(ctx context.Context, subject string, studies []drawing.Study) (map[string]Result, error) {
	js := jsSyncShapes(subject, shapesFor(studies, s.now()))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.connect(ctx); err != nil {
		return nil, err
	}
	targets, err := s.conn.listTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("tvsync: list targets: %w", err)
	}

	out := make(map[string]Result)
	var errs []error
	for _, t := range s.matchTabs(targets) {
		res, err := s.syncTab(ctx, t.TargetID, js)
		if err != nil {
			var coded *evalError
			if errors.As(err, &coded) && coded.code == codeSymbolMismatch {
				slog.Debug("tvsync tab skipped", "target_id", t.TargetID, "subject", subject, "reason", coded.msg)
				continue
			}
			errs = append(errs, fmt.Errorf("tab %s: %w", t.TargetID, err))
			continue
		}
		out[string(t.TargetID)] = res
	}
	if !s.conn.connected() {
		slog.Warn("tvsync cdp connection lost", "subject", subject)
	}
	if len(out) == 0 {
		errs = append(errs, ErrNoChartTab)
		return nil, errors.Join(errs...)
	}
	slog.Debug("tvsync pushed studies", "subject", subject, "tabs", len(out), "studies", len(studies))
	return out, errors.Join(errs...)
}

func (s *Syncer) matchTabs(targets []*target.Info) []*target.Info {
	var out []*target.Info
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		if s.tabFilter != "" && !strings.Contains(t.URL, s.tabFilter) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Syncer) syncTab(ctx context.Context, id target.ID, js string) (Result, error) {
	sessionID, err := s.conn.attachToTarget(ctx, id)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := s.conn.detachFromTarget(context.WithoutCancel(ctx), sessionID); err != nil {
			slog.Debug("tvsync detach failed", "target_id", id, "error", err)
		}
	}()

	evalCtx, cancel := context.WithTimeout(ctx, s.evalTimeout)
	defer cancel()
	raw, err := s.conn.evaluate(evalCtx, sessionID, js)
	if err != nil {
		return Result{}, err
	}

	var env evalEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Result{}, fmt.Errorf("invalid evaluation envelope: %w", err)
	}
	if !env.OK {
		code := env.ErrorCode
		if code == "" {
			code = codeEvalFailure
		}
		return Result{}, &evalError{code: code, msg: env.ErrorMessage}
	}
	var res Result
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &res); err != nil {
			return Result{}, fmt.Errorf("invalid evaluation data: %w", err)
		}
	}
	return res, nil
}

// Close drops the browser connection. Open tabs are left untouched.
func (s *Syncer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.close()
	return nil
}

type evalError struct {
	code string
	msg  string
}

func (e *evalError) Error() string { return e.code + ": " + e.msg }
