package surface

import (
	"errors"
	"fmt"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

// ErrNotAttached is returned when detaching a primitive the surface does not
// hold.
var ErrNotAttached = errors.New("primitive not attached")

type subscription struct {
	id int
	fn func(drawing.PointerEvent)
}

// Surface implements drawing.Host without a browser. It is not safe for
// concurrent use; the owning session serializes every call.
type Surface struct {
	vp          Viewport
	theme       Theme
	prims       []drawing.Primitive
	clicks      []subscription
	moves       []subscription
	nextSub     int
	interaction bool
	redraws     int
	cursor      string
}

// New builds a surface over vp.
func New(vp Viewport, theme Theme) (*Surface, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	return &Surface{vp: vp, theme: theme, interaction: true, cursor: "default"}, nil
}

func (s *Surface) Viewport() Viewport { return s.vp }

// SetViewport replaces the visible window. Primitives recompute on the next
// pass.
func (s *Surface) SetViewport(vp Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}
	s.vp = vp
	s.RequestRedraw()
	return nil
}

// Pan scrolls the time axis by dx pixels.
func (s *Surface) Pan(dx float64) error {
	if !s.interaction {
		return ErrInteractionLocked
	}
	s.vp = s.vp.pan(dx)
	s.RequestRedraw()
	return nil
}

// Zoom scales the time axis around its center.
func (s *Surface) Zoom(factor float64) error {
	if !s.interaction {
		return ErrInteractionLocked
	}
	if !(factor > 0) {
		return fmt.Errorf("zoom factor %v must be positive", factor)
	}
	s.vp = s.vp.zoom(factor)
	s.RequestRedraw()
	return nil
}

func (s *Surface) TimeToX(t int64) (float64, bool)    { return s.vp.timeToX(t) }
func (s *Surface) XToTime(x float64) (int64, bool)    { return s.vp.xToTime(x) }
func (s *Surface) PriceToY(p float64) (float64, bool) { return s.vp.priceToY(p) }
func (s *Surface) YToPrice(y float64) (float64, bool) { return s.vp.yToPrice(y) }

func (s *Surface) SubscribeClick(fn func(drawing.PointerEvent)) func() {
	s.nextSub++
	id := s.nextSub
	s.clicks = append(s.clicks, subscription{id: id, fn: fn})
	return func() { s.clicks = removeSub(s.clicks, id) }
}

func (s *Surface) SubscribeCrosshairMove(fn func(drawing.PointerEvent)) func() {
	s.nextSub++
	id := s.nextSub
	s.moves = append(s.moves, subscription{id: id, fn: fn})
	return func() { s.moves = removeSub(s.moves, id) }
}

func removeSub(subs []subscription, id int) []subscription {
	for i, sub := range subs {
		if sub.id == id {
			return append(subs[:i], subs[i+1:]...)
		}
	}
	return subs
}

// AttachPrimitive adds p on top of the z-order.
func (s *Surface) AttachPrimitive(p drawing.Primitive) {
	s.prims = append(s.prims, p)
	p.Attached(drawing.AttachedParams{Chart: s, Series: s, RequestUpdate: s.RequestRedraw})
	s.RequestRedraw()
}

// DetachPrimitive removes p, returning ErrNotAttached if it is not held.
func (s *Surface) DetachPrimitive(p drawing.Primitive) error {
	for i, q := range s.prims {
		if q == p {
			s.prims = append(s.prims[:i], s.prims[i+1:]...)
			p.Detached()
			s.RequestRedraw()
			return nil
		}
	}
	return ErrNotAttached
}

func (s *Surface) SetInteractionEnabled(enabled bool) { s.interaction = enabled }
func (s *Surface) InteractionEnabled() bool           { return s.interaction }

func (s *Surface) RequestRedraw() { s.redraws++ }

// Redraws counts redraw requests since creation.
func (s *Surface) Redraws() int { return s.redraws }

// Cursor is the cursor kind reported by the latest Move.
func (s *Surface) Cursor() string { return s.cursor }

// Primitives returns the attached primitive count.
func (s *Surface) Primitives() int { return len(s.prims) }

func (s *Surface) updateViews() {
	for _, p := range s.prims {
		p.UpdateAllViews()
	}
}

// HitTest returns the topmost hit at (x, y), or nil.
func (s *Surface) HitTest(x, y float64) *drawing.Hit {
	s.updateViews()
	for i := len(s.prims) - 1; i >= 0; i-- {
		if hit := s.prims[i].HitTest(x, y); hit != nil {
			return hit
		}
	}
	return nil
}

func (s *Surface) event(x, y float64) (drawing.PointerEvent, *drawing.Hit) {
	ev := drawing.PointerEvent{X: x, Y: y}
	hit := s.HitTest(x, y)
	if hit != nil {
		ev.HoveredID = hit.StudyID
	}
	return ev, hit
}

// Move delivers a crosshair move to subscribers and returns the hover hit.
func (s *Surface) Move(x, y float64) *drawing.Hit {
	ev, hit := s.event(x, y)
	s.cursor = "default"
	if hit != nil {
		s.cursor = hit.Cursor
	}
	for _, sub := range append([]subscription(nil), s.moves...) {
		sub.fn(ev)
	}
	return hit
}

// Click delivers a primary click to subscribers. The cursor is refreshed
// afterwards since a click may change the selection under it.
func (s *Surface) Click(x, y float64) *drawing.Hit {
	ev, hit := s.event(x, y)
	for _, sub := range append([]subscription(nil), s.clicks...) {
		sub.fn(ev)
	}
	s.cursor = "default"
	if after := s.HitTest(x, y); after != nil {
		s.cursor = after.Cursor
	}
	return hit
}
