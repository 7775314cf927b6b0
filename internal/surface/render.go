package surface

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	chartdraw "github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
	"github.com/dgnsrekt/tv_drawings/internal/geometry"
)

// Theme holds the colors used outside of studies.
type Theme struct {
	Background string
	Grid       string
}

// DarkTheme matches the default TradingView dark chart.
var DarkTheme = Theme{Background: "#131722", Grid: "#2a2e39"}

const gridLines = 8

var dashPattern = []float64{6, 4}

// Render rasterizes the grid and every attached primitive.
func (s *Surface) Render() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, s.vp.Width, s.vp.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(parseColor(s.theme.Background)), image.Point{}, draw.Src)

	gc, err := chartdraw.NewRasterGraphicContext(img)
	if err != nil {
		return nil, fmt.Errorf("surface: graphic context: %w", err)
	}
	t := &rasterTarget{img: img, gc: gc}
	t.grid(s.theme.Grid)

	s.updateViews()
	for _, p := range s.prims {
		p.Draw(t)
	}
	return img, nil
}

// RenderPNG writes the rendered chart as PNG.
func (s *Surface) RenderPNG(w io.Writer) error {
	img, err := s.Render()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("surface: png encode: %w", err)
	}
	return nil
}

// rasterTarget paints drawing primitives onto an RGBA image.
type rasterTarget struct {
	img *image.RGBA
	gc  *chartdraw.RasterGraphicContext
}

var _ drawing.RenderTarget = (*rasterTarget)(nil)

func (t *rasterTarget) Size() (float64, float64) {
	b := t.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (t *rasterTarget) grid(hex string) {
	w, h := t.Size()
	s := drawing.Stroke{Color: hex, Width: 1}
	for i := 1; i < gridLines; i++ {
		y := math.Round(h*float64(i)/gridLines) + 0.5
		t.Line(geometry.Pt(0, y), geometry.Pt(w, y), s)
		x := math.Round(w*float64(i)/gridLines) + 0.5
		t.Line(geometry.Pt(x, 0), geometry.Pt(x, h), s)
	}
}

func (t *rasterTarget) Line(a, b geometry.Point, s drawing.Stroke) {
	t.gc.SetStrokeColor(parseColor(s.Color))
	t.gc.SetLineWidth(s.Width)
	if s.Dashed {
		t.gc.SetLineDash(dashPattern, 0)
	} else {
		t.gc.SetLineDash(nil, 0)
	}
	t.gc.BeginPath()
	t.gc.MoveTo(a.X, a.Y)
	t.gc.LineTo(b.X, b.Y)
	t.gc.Stroke()
}

func (t *rasterTarget) FillPolygon(pts []geometry.Point, hex string, alpha uint8) {
	if len(pts) < 3 {
		return
	}
	t.gc.SetFillColor(parseColor(hex).WithAlpha(alpha))
	t.gc.BeginPath()
	t.gc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		t.gc.LineTo(p.X, p.Y)
	}
	t.gc.Close()
	t.gc.Fill()
}

func (t *rasterTarget) FillCircle(c geometry.Point, r float64, hex string) {
	t.gc.SetFillColor(parseColor(hex))
	t.gc.BeginPath()
	t.gc.ArcTo(c.X, c.Y, r, r, 0, 2*math.Pi)
	t.gc.Close()
	t.gc.Fill()
}

// Text draws text right-aligned so that it ends at at, with at on the
// baseline.
func (t *rasterTarget) Text(at geometry.Point, text, hex string) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  t.img,
		Src:  image.NewUniform(parseColor(hex)),
		Face: face,
		Dot:  fixed.P(int(math.Round(at.X))-width, int(math.Round(at.Y))),
	}
	d.DrawString(text)
}

// parseColor accepts #rgb and #rrggbb. Anything else paints white.
func parseColor(hex string) chartdraw.Color {
	h := strings.TrimPrefix(hex, "#")
	if !drawing.ValidColor("#" + h) {
		return chartdraw.ColorWhite
	}
	return chartdraw.ColorFromHex(h)
}
