package drawing

import "github.com/dgnsrekt/tv_drawings/internal/geometry"

// trendLine is a finite segment between two anchors.
type trendLine struct {
	base
	p1, p2  geometry.Point
	visible bool
}

func (l *trendLine) UpdateAllViews() {
	l.visible = false
	p1, ok := l.mapAnchor(*l.study.P1)
	if !ok {
		return
	}
	p2, ok := l.mapAnchor(*l.study.P2)
	if !ok {
		return
	}
	l.p1, l.p2, l.visible = p1, p2, true
}

func (l *trendLine) Draw(t RenderTarget) {
	if !l.visible {
		return
	}
	t.Line(l.p1, l.p2, l.stroke(false))
	l.drawHandles(t, l.p1, l.p2)
}

func (l *trendLine) HitTest(x, y float64) *Hit {
	if !l.visible {
		return nil
	}
	if !geometry.IsHit(geometry.PointToSegmentDist(geometry.Pt(x, y), l.p1, l.p2)) {
		return nil
	}
	return l.bodyHit()
}
