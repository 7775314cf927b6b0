package drawing

import (
	"github.com/dgnsrekt/tv_drawings/internal/geometry"
)

// TimeScale converts between host time values and x pixels. ok is false when
// the value lies outside the visible mapping range.
type TimeScale interface {
	TimeToX(t int64) (x float64, ok bool)
	XToTime(x float64) (t int64, ok bool)
}

// PriceScale converts between prices and y pixels.
type PriceScale interface {
	PriceToY(price float64) (y float64, ok bool)
	YToPrice(y float64) (price float64, ok bool)
}

// AttachedParams is handed to a primitive when the host attaches it.
type AttachedParams struct {
	Chart         TimeScale
	Series        PriceScale
	RequestUpdate func()
}

// Cursor kinds reported by hit-tests.
const (
	CursorPointer = "pointer"
	CursorMove    = "move"
	CursorGrab    = "grab"
)

// HandleNone marks a body hit rather than an anchor handle.
const HandleNone = -1

// Hit describes what a hit-test matched.
type Hit struct {
	Cursor  string `json:"cursor"`
	StudyID string `json:"studyId"`
	Handle  int    `json:"handle"`
}

// Stroke describes how a line is painted.
type Stroke struct {
	Color  string
	Width  float64
	Dashed bool
}

// RenderTarget is the paint surface handed to Draw.
type RenderTarget interface {
	Size() (w, h float64)
	Line(a, b geometry.Point, s Stroke)
	FillPolygon(pts []geometry.Point, color string, alpha uint8)
	FillCircle(c geometry.Point, r float64, color string)
	Text(at geometry.Point, text, color string)
}

// Primitive is the render and hit-test contract the host surface drives.
type Primitive interface {
	Attached(p AttachedParams)
	Detached()
	UpdateAllViews()
	Draw(t RenderTarget)
	HitTest(x, y float64) *Hit
	RequestUpdate()
}

// studyPrimitive is a Primitive backed by a mutable Study. Only the Manager
// mutates the study data.
type studyPrimitive interface {
	Primitive
	data() *Study
	setSelected(bool)
}

// Selection handle sizes in pixels.
const (
	handleDrawRadius = 5.0
	handleHitRadius  = geometry.HitThreshold
)

// base carries the host references and per-frame state shared by all study
// types.
type base struct {
	study    Study
	params   AttachedParams
	attached bool
	selected bool
}

func (b *base) data() *Study         { return &b.study }
func (b *base) setSelected(sel bool) { b.selected = sel }

func (b *base) Attached(p AttachedParams) {
	b.params = p
	b.attached = true
}

func (b *base) Detached() {
	b.params = AttachedParams{}
	b.attached = false
}

func (b *base) RequestUpdate() {
	if b.attached && b.params.RequestUpdate != nil {
		b.params.RequestUpdate()
	}
}

// mapAnchor converts a logical anchor through the host converters. The
// converters are queried fresh on every call.
func (b *base) mapAnchor(a Anchor) (geometry.Point, bool) {
	if !b.attached || b.params.Chart == nil || b.params.Series == nil {
		return geometry.Point{}, false
	}
	x, ok := b.params.Chart.TimeToX(a.Time)
	if !ok {
		return geometry.Point{}, false
	}
	y, ok := b.params.Series.PriceToY(a.Price)
	if !ok {
		return geometry.Point{}, false
	}
	return geometry.Pt(x, y), true
}

func (b *base) mapPrice(price float64) (float64, bool) {
	if !b.attached || b.params.Series == nil {
		return 0, false
	}
	return b.params.Series.PriceToY(price)
}

func (b *base) bodyHit() *Hit {
	cursor := CursorPointer
	if b.selected {
		cursor = CursorMove
	}
	return &Hit{Cursor: cursor, StudyID: b.study.ID, Handle: HandleNone}
}

func (b *base) stroke(dashed bool) Stroke {
	return Stroke{Color: b.study.Color, Width: b.study.LineWidth, Dashed: dashed}
}

func (b *base) drawHandles(t RenderTarget, pts ...geometry.Point) {
	if !b.selected {
		return
	}
	for _, p := range pts {
		t.FillCircle(p, handleDrawRadius, b.study.Color)
	}
}
