package drawing

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/dgnsrekt/tv_drawings/internal/geometry"
)

const (
	testBaseTime = int64(1_700_000_000)
	testWidth    = 1000.0
	testHeight   = 400.0
)

// fakeHost maps 10px per 60s bar from testBaseTime and 2px per price unit
// over 0..200.
type fakeHost struct {
	prims       []Primitive
	clickSubs   map[int]func(PointerEvent)
	moveSubs    map[int]func(PointerEvent)
	nextSub     int
	interaction bool
	redraws     int
	detachErrs  int
	noTime      bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		clickSubs:   map[int]func(PointerEvent){},
		moveSubs:    map[int]func(PointerEvent){},
		interaction: true,
	}
}

func (h *fakeHost) TimeToX(t int64) (float64, bool) {
	if h.noTime {
		return 0, false
	}
	x := float64(t-testBaseTime) / 60 * 10
	if x < 0 || x > testWidth {
		return 0, false
	}
	return x, true
}

func (h *fakeHost) XToTime(x float64) (int64, bool) {
	if h.noTime || x < 0 || x > testWidth {
		return 0, false
	}
	return testBaseTime + int64(math.Round(x/10))*60, true
}

func (h *fakeHost) PriceToY(p float64) (float64, bool) { return testHeight - p*2, true }
func (h *fakeHost) YToPrice(y float64) (float64, bool) { return (testHeight - y) / 2, true }

func (h *fakeHost) SubscribeClick(fn func(PointerEvent)) func() {
	h.nextSub++
	id := h.nextSub
	h.clickSubs[id] = fn
	return func() { delete(h.clickSubs, id) }
}

func (h *fakeHost) SubscribeCrosshairMove(fn func(PointerEvent)) func() {
	h.nextSub++
	id := h.nextSub
	h.moveSubs[id] = fn
	return func() { delete(h.moveSubs, id) }
}

func (h *fakeHost) AttachPrimitive(p Primitive) {
	h.prims = append(h.prims, p)
	p.Attached(AttachedParams{Chart: h, Series: h, RequestUpdate: h.RequestRedraw})
}

func (h *fakeHost) DetachPrimitive(p Primitive) error {
	for i, q := range h.prims {
		if q == p {
			h.prims = append(h.prims[:i], h.prims[i+1:]...)
			p.Detached()
			return nil
		}
	}
	h.detachErrs++
	return errors.New("primitive not attached")
}

func (h *fakeHost) SetInteractionEnabled(enabled bool) { h.interaction = enabled }
func (h *fakeHost) RequestRedraw()                     { h.redraws++ }

func (h *fakeHost) hitTest(x, y float64) *Hit {
	for i := len(h.prims) - 1; i >= 0; i-- {
		h.prims[i].UpdateAllViews()
		if hit := h.prims[i].HitTest(x, y); hit != nil {
			return hit
		}
	}
	return nil
}

func (h *fakeHost) move(x, y float64) {
	ev := PointerEvent{X: x, Y: y}
	if hit := h.hitTest(x, y); hit != nil {
		ev.HoveredID = hit.StudyID
	}
	for _, fn := range h.moveSubs {
		fn(ev)
	}
}

func (h *fakeHost) click(x, y float64) {
	ev := PointerEvent{X: x, Y: y}
	for _, fn := range h.clickSubs {
		fn(ev)
	}
}

type memCache struct {
	data  map[string][]byte
	saves int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Load(key string) ([]byte, error) { return c.data[key], nil }

func (c *memCache) Save(key string, data []byte) error {
	c.saves++
	c.data[key] = append([]byte(nil), data...)
	return nil
}

// fakeTimers captures debounced callbacks so tests fire them by hand.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (f *fakeTimers) AfterFunc(_ time.Duration, fn func()) Stopper {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// fireAll runs every timer that has not been stopped.
func (f *fakeTimers) fireAll() {
	f.mu.Lock()
	timers := f.timers
	f.timers = nil
	f.mu.Unlock()
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

type recordingTarget struct {
	lines   []Stroke
	circles int
	polys   int
	texts   []string
	ends    []geometry.Point
}

func (r *recordingTarget) Size() (float64, float64) { return testWidth, testHeight }

func (r *recordingTarget) Line(_, b geometry.Point, s Stroke) {
	r.lines = append(r.lines, s)
	r.ends = append(r.ends, b)
}

func (r *recordingTarget) FillPolygon([]geometry.Point, string, uint8) { r.polys++ }
func (r *recordingTarget) FillCircle(geometry.Point, float64, string)  { r.circles++ }
func (r *recordingTarget) Text(_ geometry.Point, text, _ string)       { r.texts = append(r.texts, text) }

func xAt(t int64) float64   { return float64(t-testBaseTime) / 60 * 10 }
func yAt(p float64) float64 { return testHeight - p*2 }
