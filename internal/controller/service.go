package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
	"github.com/dgnsrekt/tv_drawings/internal/drawstore"
	"github.com/dgnsrekt/tv_drawings/internal/session"
	"github.com/dgnsrekt/tv_drawings/internal/snapshot"
	"github.com/dgnsrekt/tv_drawings/internal/surface"
)

// Pointer actions accepted by Service.Pointer.
const (
	ActionMove    = "move"
	ActionClick   = "click"
	ActionDown    = "down"
	ActionUp      = "up"
	ActionContext = "context"
)

// SessionInfo summarizes one open chart session.
type SessionInfo struct {
	Symbol   string           `json:"symbol"`
	OpenedAt time.Time        `json:"openedAt"`
	Viewport surface.Viewport `json:"viewport"`
	State    drawing.State    `json:"state"`
}

// PointerResult reports what a pointer event did.
type PointerResult struct {
	Hit         *drawing.Hit  `json:"hit,omitempty"`
	Cursor      string        `json:"cursor"`
	DragStarted bool          `json:"dragStarted,omitempty"`
	ContextID   string        `json:"contextId,omitempty"`
	State       drawing.State `json:"state"`
}

// StudyPatch carries the optional fields of a study update.
type StudyPatch struct {
	Color     *string
	LineWidth *float64
}

// Service wraps drawing session operations for the API layer.
type Service struct {
	sessions *session.Registry
	cache    drawstore.Store
	snaps    *snapshot.Store
}

// NewService builds a Service. cache must be the store the registry's
// sessions persist to. snaps may be nil, which disables snapshots.
func NewService(sessions *session.Registry, cache drawstore.Store, snaps *snapshot.Store) *Service {
	return &Service{sessions: sessions, cache: cache, snaps: snaps}
}

func (s *Service) requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &CodedError{Code: CodeValidation, Message: fieldName + " is required"}
	}
	return nil
}

func (s *Service) get(symbol string) (*session.Session, error) {
	if err := s.requireNonEmpty(symbol, "symbol"); err != nil {
		return nil, err
	}
	sess, ok := s.sessions.Get(symbol)
	if !ok {
		return nil, newError(CodeSessionNotFound, "no open session for "+strings.ToUpper(strings.TrimSpace(symbol)), nil)
	}
	return sess, nil
}

// do runs fn on the session for symbol and classifies its error.
func (s *Service) do(ctx context.Context, symbol string, fn func(*drawing.Manager, *surface.Surface) error) error {
	sess, err := s.get(symbol)
	if err != nil {
		return err
	}
	return classify(sess.Symbol(), sess.Do(ctx, fn))
}

func info(sess *session.Session, m *drawing.Manager, surf *surface.Surface) SessionInfo {
	return SessionInfo{
		Symbol:   sess.Symbol(),
		OpenedAt: sess.OpenedAt(),
		Viewport: surf.Viewport(),
		State:    m.State(),
	}
}

// OpenSession opens (or returns) the session for symbol.
func (s *Service) OpenSession(ctx context.Context, symbol string, vp *surface.Viewport) (SessionInfo, bool, error) {
	if err := s.requireNonEmpty(symbol, "symbol"); err != nil {
		return SessionInfo{}, false, err
	}
	sess, created, err := s.sessions.Open(symbol, vp)
	if err != nil {
		return SessionInfo{}, false, newError(CodeValidation, err.Error(), nil)
	}
	var out SessionInfo
	err = sess.Do(ctx, func(m *drawing.Manager, surf *surface.Surface) error {
		out = info(sess, m, surf)
		return nil
	})
	return out, created, classify(sess.Symbol(), err)
}

// ListSessions returns every open session.
func (s *Service) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	all := s.sessions.List()
	out := make([]SessionInfo, 0, len(all))
	for _, sess := range all {
		err := sess.Do(ctx, func(m *drawing.Manager, surf *surface.Surface) error {
			out = append(out, info(sess, m, surf))
			return nil
		})
		if err != nil && ctx.Err() != nil {
			return nil, classify(sess.Symbol(), err)
		}
	}
	return out, nil
}

// CloseSession closes the session for symbol, flushing its pending sync.
func (s *Service) CloseSession(_ context.Context, symbol string) error {
	if _, err := s.get(symbol); err != nil {
		return err
	}
	if !s.sessions.Close(symbol) {
		return newError(CodeSessionNotFound, "no open session for "+symbol, nil)
	}
	return nil
}

// GetSession returns the current session summary.
func (s *Service) GetSession(ctx context.Context, symbol string) (SessionInfo, error) {
	sess, err := s.get(symbol)
	if err != nil {
		return SessionInfo{}, err
	}
	var out SessionInfo
	err = sess.Do(ctx, func(m *drawing.Manager, surf *surface.Surface) error {
		out = info(sess, m, surf)
		return nil
	})
	return out, classify(sess.Symbol(), err)
}

// SetViewport replaces the visible window of a session.
func (s *Service) SetViewport(ctx context.Context, symbol string, vp surface.Viewport) (surface.Viewport, error) {
	if err := vp.Validate(); err != nil {
		return surface.Viewport{}, newError(CodeValidation, err.Error(), nil)
	}
	var out surface.Viewport
	err := s.do(ctx, symbol, func(_ *drawing.Manager, surf *surface.Surface) error {
		if err := surf.SetViewport(vp); err != nil {
			return newError(CodeValidation, err.Error(), nil)
		}
		out = surf.Viewport()
		return nil
	})
	return out, err
}

// Pan scrolls the time axis by dx pixels and optionally zooms.
func (s *Service) Pan(ctx context.Context, symbol string, dx, zoom float64) (surface.Viewport, error) {
	if zoom < 0 {
		return surface.Viewport{}, newError(CodeValidation, "zoom must be positive", nil)
	}
	var out surface.Viewport
	err := s.do(ctx, symbol, func(_ *drawing.Manager, surf *surface.Surface) error {
		if dx != 0 {
			if err := surf.Pan(dx); err != nil {
				return err
			}
		}
		if zoom != 0 && zoom != 1 {
			if err := surf.Zoom(zoom); err != nil {
				return err
			}
		}
		out = surf.Viewport()
		return nil
	})
	return out, err
}

// SetTool activates a drawing tool, or pointer mode for "pointer".
func (s *Service) SetTool(ctx context.Context, symbol, tool string) (drawing.State, error) {
	t, err := drawing.ParseStudyType(tool)
	if err != nil {
		return drawing.State{}, newError(CodeValidation, err.Error(), nil)
	}
	var out drawing.State
	err = s.do(ctx, symbol, func(m *drawing.Manager, _ *surface.Surface) error {
		if err := m.SetTool(t); err != nil {
			return err
		}
		out = m.State()
		return nil
	})
	return out, err
}

// Pointer delivers one pointer event at (x, y).
func (s *Service) Pointer(ctx context.Context, symbol, action string, x, y float64, button int) (PointerResult, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	switch action {
	case ActionMove, ActionClick, ActionDown, ActionUp, ActionContext:
	default:
		return PointerResult{}, newError(CodeValidation, fmt.Sprintf("unknown pointer action %q", action), nil)
	}
	var out PointerResult
	err := s.do(ctx, symbol, func(m *drawing.Manager, surf *surface.Surface) error {
		switch action {
		case ActionMove:
			out.Hit = surf.Move(x, y)
			m.PointerMove(x, y)
		case ActionClick:
			out.Hit = surf.Click(x, y)
		case ActionDown:
			out.DragStarted = m.PointerDown(x, y, button)
		case ActionUp:
			m.PointerUp(x, y)
		case ActionContext:
			out.ContextID = m.ContextMenu(x, y)
		}
		out.Cursor = surf.Cursor()
		out.State = m.State()
		return nil
	})
	return out, err
}

// Key delivers a key press and reports whether it was handled.
func (s *Service) Key(ctx context.Context, symbol, key string) (bool, drawing.State, error) {
	if err := s.requireNonEmpty(key, "key"); err != nil {
		return false, drawing.State{}, err
	}
	var handled bool
	var out drawing.State
	err := s.do(ctx, symbol, func(m *drawing.Manager, _ *surface.Surface) error {
		handled = m.KeyDown(key)
		out = m.State()
		return nil
	})
	return handled, out, err
}

// ListStudies returns every study of a session in creation order.
func (s *Service) ListStudies(ctx context.Context, symbol string) ([]drawing.Study, error) {
	var out []drawing.Study
	err := s.do(ctx, symbol, func(m *drawing.Manager, _ *surface.Surface) error {
		out = m.Studies()
		return nil
	})
	return out, err
}

// GetStudy returns one study.
func (s *Service) GetStudy(ctx context.Context, symbol, id string) (drawing.Study, error) {
	if err := s.requireNonEmpty(id, "studyId"); err != nil {
		return drawing.Study{}, err
	}
	var out drawing.Study
	err := s.do(ctx, symbol, func(m *drawing.Manager, _ *surface.Surface) error {
		st, ok := m.Study(id)
		if !ok {
			return newError(CodeStudyNotFound, "study not found: "+id, nil)
		}
		out = st
		return nil
	})
	return out, err
}

// UpdateStudy applies a recolor and/or line width change.
func (s *Service) UpdateStudy(ctx context.Context, symbol, id string, patch StudyPatch) (drawing.Study, error) {
	if err := s.requireNonEmpty(id, "studyId"); err != nil {
		return drawing.Study{}, err
	}
	if patch.Color == nil && patch.LineWidth == nil {
		return drawing.Study{}, newError(CodeValidation, "color or lineWidth is required", nil)
	}
	var out drawing.Study
	err := s.do(ctx, symbol, func(m *drawing.Manager, _ *surface.Surface) error {
		if patch.Color != nil {
			if err := m.SetColor(id, strings.TrimSpace(*patch.Color)); err != nil {
				return classify(symbol, err)
			}
		}
		if patch.LineWidth != nil {
			if err := m.SetLineWidth(id, *patch.LineWidth); err != nil {
				return classify(symbol, err)
			}
		}
		out, _ = m.Study(id)
		return nil
	})
	return out, err
}

// SelectStudy selects a study, or clears the selection for "".
func (s *Service) SelectStudy(ctx context.Context, symbol, id string) (drawing.State, error) {
	var out drawing.State
	err := s.do(ctx, symbol, func(m *drawing.Manager, _ *surface.Surface) error {
		if err := m.Select(strings.TrimSpace(id)); err != nil {
			return err
		}
		out = m.State()
		return nil
	})
	return out, err
}

// DeleteStudy removes one study.
func (s *Service) DeleteStudy(ctx context.Context, symbol, id string) error {
	if err := s.requireNonEmpty(id, "studyId"); err != nil {
		return err
	}
	return s.do(ctx, symbol, func(m *drawing.Manager, _ *surface.Surface) error {
		return m.Delete(id)
	})
}

// ClearStudies removes every study of a session.
func (s *Service) ClearStudies(ctx context.Context, symbol string) (int, error) {
	var n int
	err := s.do(ctx, symbol, func(m *drawing.Manager, _ *surface.Surface) error {
		n = m.Clear()
		return nil
	})
	return n, err
}

// StateView is the manager state plus host-side interaction flags.
type StateView struct {
	drawing.State
	Interaction bool   `json:"interaction"`
	Cursor      string `json:"cursor"`
	Redraws     int    `json:"redraws"`
}

// State returns the interaction state of a session.
func (s *Service) State(ctx context.Context, symbol string) (StateView, error) {
	var out StateView
	err := s.do(ctx, symbol, func(m *drawing.Manager, surf *surface.Surface) error {
		out = StateView{
			State:       m.State(),
			Interaction: surf.InteractionEnabled(),
			Cursor:      surf.Cursor(),
			Redraws:     surf.Redraws(),
		}
		return nil
	})
	return out, err
}

// Render returns the session chart as PNG bytes.
func (s *Service) Render(ctx context.Context, symbol string) ([]byte, error) {
	var buf bytes.Buffer
	err := s.do(ctx, symbol, func(_ *drawing.Manager, surf *surface.Surface) error {
		if err := surf.RenderPNG(&buf); err != nil {
			return newError(CodeRenderFailure, "render failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
