package geometry

import (
	"math"
	"math/rand"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPointToSegmentDistClampsToEndpoints(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)

	if got := PointToSegmentDist(Pt(5, 3), a, b); !near(got, 3) {
		t.Fatalf("PointToSegmentDist(mid) = %v; want 3", got)
	}
	if got := PointToSegmentDist(Pt(-3, 4), a, b); !near(got, 5) {
		t.Fatalf("PointToSegmentDist(before a) = %v; want 5", got)
	}
	if got := PointToSegmentDist(Pt(13, 4), a, b); !near(got, 5) {
		t.Fatalf("PointToSegmentDist(past b) = %v; want 5", got)
	}
}

func TestPointToSegmentDistSymmetric(t *testing.T) {
	points := []Point{Pt(3, 7), Pt(-20, 4), Pt(55, -9), Pt(12.5, 12.5), Pt(0, 0)}
	segments := [][2]Point{
		{Pt(0, 0), Pt(10, 10)},
		{Pt(-5, 2), Pt(40, -3)},
		{Pt(7, 7), Pt(7, 7)},
		{Pt(100, 0), Pt(0, 100)},
	}
	for _, s := range segments {
		for _, p := range points {
			ab := PointToSegmentDist(p, s[0], s[1])
			ba := PointToSegmentDist(p, s[1], s[0])
			if ab != ba {
				t.Fatalf("PointToSegmentDist(%v, %v, %v) = %v; reversed = %v", p, s[0], s[1], ab, ba)
			}
		}
	}
}

func TestPointToSegmentDistSymmetricExactRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pt := func() Point { return Pt(rng.Float64()*1000, rng.Float64()*600) }
	for i := 0; i < 20000; i++ {
		p, a, b := pt(), pt(), pt()
		ab := PointToSegmentDist(p, a, b)
		ba := PointToSegmentDist(p, b, a)
		if ab != ba {
			t.Fatalf("PointToSegmentDist(%v, %v, %v) = %v; reversed = %v", p, a, b, ab, ba)
		}
	}
}

func TestPointToLineDistIgnoresSegmentBounds(t *testing.T) {
	if got := PointToLineDist(Pt(100, 4), Pt(0, 0), Pt(10, 0)); !near(got, 4) {
		t.Fatalf("PointToLineDist() = %v; want 4", got)
	}
}

func TestPointToRayDistBehindOrigin(t *testing.T) {
	a, b := Pt(10, 10), Pt(20, 10)

	if got := PointToRayDist(Pt(500, 13), a, b); !near(got, 3) {
		t.Fatalf("PointToRayDist(ahead) = %v; want 3", got)
	}
	if got := PointToRayDist(Pt(7, 14), a, b); !near(got, 5) {
		t.Fatalf("PointToRayDist(behind) = %v; want 5", got)
	}
}

func TestZeroLengthDegradesToPointDistance(t *testing.T) {
	a := Pt(4, 4)
	p := Pt(7, 8)
	for name, fn := range map[string]func(Point, Point, Point) float64{
		"segment": PointToSegmentDist,
		"line":    PointToLineDist,
		"ray":     PointToRayDist,
	} {
		if got := fn(p, a, a); !near(got, 5) {
			t.Fatalf("%s distance with zero length = %v; want 5", name, got)
		}
	}
}

func TestIsHitBoundary(t *testing.T) {
	if !IsHit(8) {
		t.Fatal("IsHit(8) = false; want true")
	}
	if IsHit(8.0001) {
		t.Fatal("IsHit(8.0001) = true; want false")
	}
}

func TestExtendRayEndsOnBoundary(t *testing.T) {
	const w, h = 800.0, 400.0
	cases := []struct {
		a, b Point
		want Point
	}{
		{Pt(100, 200), Pt(200, 200), Pt(800, 200)},
		{Pt(100, 200), Pt(50, 200), Pt(0, 200)},
		{Pt(100, 200), Pt(100, 100), Pt(100, 0)},
		{Pt(100, 200), Pt(200, 300), Pt(300, 400)},
		{Pt(400, 200), Pt(500, 150), Pt(800, 0)},
	}
	for _, c := range cases {
		got := ExtendRay(c.a, c.b, w, h)
		if !near(got.X, c.want.X) || !near(got.Y, c.want.Y) {
			t.Fatalf("ExtendRay(%v, %v) = %v; want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestExtendRayDirectionPreserved(t *testing.T) {
	const w, h = 640.0, 480.0
	a, b := Pt(120, 330), Pt(180, 300)
	end := ExtendRay(a, b, w, h)

	onEdge := near(end.X, 0) || near(end.X, w) || near(end.Y, 0) || near(end.Y, h)
	if !onEdge {
		t.Fatalf("ExtendRay() = %v; want a point on the canvas boundary", end)
	}
	if d := PointToLineDist(end, a, b); d > 1e-6 {
		t.Fatalf("ExtendRay() = %v is %v px off the ray line", end, d)
	}
	if (end.X-a.X)*(b.X-a.X)+(end.Y-a.Y)*(b.Y-a.Y) <= 0 {
		t.Fatalf("ExtendRay() = %v points away from b", end)
	}
}

func TestExtendRayDegenerate(t *testing.T) {
	p := Pt(5, 5)
	if got := ExtendRay(p, p, 100, 100); got != p {
		t.Fatalf("ExtendRay(p, p) = %v; want %v", got, p)
	}
}
