package drawing

import "github.com/dgnsrekt/tv_drawings/internal/geometry"

// ray starts at p1, passes through p2 and runs to the canvas edge.
type ray struct {
	base
	p1, p2  geometry.Point
	visible bool
}

func (r *ray) UpdateAllViews() {
	r.visible = false
	p1, ok := r.mapAnchor(*r.study.P1)
	if !ok {
		return
	}
	p2, ok := r.mapAnchor(*r.study.P2)
	if !ok {
		return
	}
	r.p1, r.p2, r.visible = p1, p2, true
}

func (r *ray) Draw(t RenderTarget) {
	if !r.visible {
		return
	}
	w, h := t.Size()
	t.Line(r.p1, geometry.ExtendRay(r.p1, r.p2, w, h), r.stroke(false))
	r.drawHandles(t, r.p1, r.p2)
}

func (r *ray) HitTest(x, y float64) *Hit {
	if !r.visible {
		return nil
	}
	p := geometry.Pt(x, y)
	// Endpoint handles win over the body while selected.
	if r.selected {
		for i, a := range []geometry.Point{r.p1, r.p2} {
			if geometry.Dist(p, a) <= handleHitRadius {
				return &Hit{Cursor: CursorGrab, StudyID: r.study.ID, Handle: i}
			}
		}
	}
	if !geometry.IsHit(geometry.PointToRayDist(p, r.p1, r.p2)) {
		return nil
	}
	return r.bodyHit()
}
