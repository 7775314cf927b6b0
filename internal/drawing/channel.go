package drawing

import (
	"math"

	"github.com/dgnsrekt/tv_drawings/internal/geometry"
)

// channelFillAlpha is the opacity of the band between the two edges.
const channelFillAlpha = 0x26

// parallelChannel is a base edge p1->p2 plus a parallel edge shifted in
// price by ChannelOffset.
type parallelChannel struct {
	base
	p1, p2  geometry.Point
	q1, q2  geometry.Point
	visible bool
}

func (c *parallelChannel) UpdateAllViews() {
	c.visible = false
	a1, a2 := *c.study.P1, *c.study.P2
	var pts [4]geometry.Point
	for i, a := range []Anchor{
		a1,
		a2,
		{Time: a1.Time, Price: a1.Price + c.study.ChannelOffset},
		{Time: a2.Time, Price: a2.Price + c.study.ChannelOffset},
	} {
		p, ok := c.mapAnchor(a)
		if !ok {
			return
		}
		pts[i] = p
	}
	c.p1, c.p2, c.q1, c.q2 = pts[0], pts[1], pts[2], pts[3]
	c.visible = true
}

func (c *parallelChannel) Draw(t RenderTarget) {
	if !c.visible {
		return
	}
	t.FillPolygon([]geometry.Point{c.p1, c.p2, c.q2, c.q1}, c.study.Color, channelFillAlpha)
	t.Line(c.p1, c.p2, c.stroke(false))
	t.Line(c.q1, c.q2, c.stroke(true))
	c.drawHandles(t, c.p1, c.p2, c.q1)
}

func (c *parallelChannel) HitTest(x, y float64) *Hit {
	if !c.visible {
		return nil
	}
	p := geometry.Pt(x, y)
	d := math.Min(
		geometry.PointToSegmentDist(p, c.p1, c.p2),
		geometry.PointToSegmentDist(p, c.q1, c.q2),
	)
	if !geometry.IsHit(d) {
		return nil
	}
	return c.bodyHit()
}
