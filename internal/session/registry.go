package session

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/dgnsrekt/tv_drawings/internal/events"
	"github.com/dgnsrekt/tv_drawings/internal/surface"
)

var symbolRe = regexp.MustCompile(`^[A-Z0-9._:!/-]{1,64}$`)

// NormalizeSymbol upper-cases and validates a chart symbol.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolRe.MatchString(s) {
		return "", fmt.Errorf("invalid symbol %q", symbol)
	}
	return s, nil
}

// Registry opens sessions lazily and tracks them by symbol.
type Registry struct {
	cfg Config

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, sessions: make(map[string]*Session)}
}

// Open returns the session for symbol, creating it when absent. vp overrides
// the default viewport for a new session and is ignored otherwise.
func (r *Registry) Open(symbol string, vp *surface.Viewport) (s *Session, created bool, err error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sym]; ok {
		return s, false, nil
	}
	view := r.cfg.Viewport
	if vp != nil {
		view = *vp
	}
	s, err = Open(sym, view, r.cfg)
	if err != nil {
		return nil, false, err
	}
	r.sessions[sym] = s
	r.publish(sym, "opened")
	return s, true, nil
}

// Get returns an open session.
func (r *Registry) Get(symbol string) (*Session, bool) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sym]
	return s, ok
}

// List returns open sessions ordered by symbol.
func (r *Registry) List() []*Session {
	r.mu.Lock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].symbol < out[j].symbol })
	return out
}

// Close shuts one session down. It reports whether the session existed.
func (r *Registry) Close(symbol string) bool {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return false
	}
	r.mu.Lock()
	s, ok := r.sessions[sym]
	delete(r.sessions, sym)
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.Close()
	r.publish(sym, "closed")
	return true
}

// CloseAll shuts every session down, flushing pending remote syncs.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range all {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()
}

func (r *Registry) publish(symbol, status string) {
	if r.cfg.Broker == nil {
		return
	}
	r.cfg.Broker.Publish(events.NewEvent(events.TypeSession, symbol, map[string]string{"status": status}))
}
