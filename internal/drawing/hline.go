package drawing

import (
	"math"
	"strconv"

	"github.com/dgnsrekt/tv_drawings/internal/geometry"
)

// horizontalLine spans the full chart width at a fixed price.
type horizontalLine struct {
	base
	y       float64
	visible bool
}

func (h *horizontalLine) UpdateAllViews() {
	h.y, h.visible = h.mapPrice(h.study.Price)
}

func (h *horizontalLine) Draw(t RenderTarget) {
	if !h.visible {
		return
	}
	w, _ := t.Size()
	t.Line(geometry.Pt(0, h.y), geometry.Pt(w, h.y), h.stroke(true))
	t.Text(geometry.Pt(w-4, h.y-4), strconv.FormatFloat(h.study.Price, 'f', 2, 64), h.study.Color)
	h.drawHandles(t, geometry.Pt(w/2, h.y))
}

func (h *horizontalLine) HitTest(_, y float64) *Hit {
	if !h.visible {
		return nil
	}
	if !geometry.IsHit(math.Abs(y - h.y)) {
		return nil
	}
	return h.bodyHit()
}
