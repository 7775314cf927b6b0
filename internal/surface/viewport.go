// Package surface is a headless chart host: it owns the visible coordinate
// mapping, dispatches pointer events to subscribers, and rasterizes attached
// drawing primitives.
package surface

import (
	"errors"
	"fmt"
	"math"
)

// ErrInteractionLocked is returned by Pan and Zoom while native interaction
// is disabled, for example during a drag.
var ErrInteractionLocked = errors.New("chart interaction disabled")

// Viewport is the visible window of the chart.
type Viewport struct {
	// From and To bound the visible time range in unix seconds.
	From int64 `json:"from"`
	To   int64 `json:"to"`
	// Interval is the bar size in seconds. Pixel-to-time conversion snaps to
	// bar boundaries when it is positive.
	Interval int64   `json:"interval,omitempty"`
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// Validate reports whether v describes a usable mapping.
func (v Viewport) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("viewport size %dx%d must be positive", v.Width, v.Height)
	}
	if v.To <= v.From {
		return fmt.Errorf("viewport time range [%d, %d] is empty", v.From, v.To)
	}
	if !(v.MaxPrice > v.MinPrice) || math.IsInf(v.MaxPrice-v.MinPrice, 0) {
		return fmt.Errorf("viewport price range [%v, %v] is empty", v.MinPrice, v.MaxPrice)
	}
	if v.Interval < 0 {
		return fmt.Errorf("viewport interval %d is negative", v.Interval)
	}
	return nil
}

func (v Viewport) timeToX(t int64) (float64, bool) {
	if t < v.From || t > v.To || v.To <= v.From {
		return 0, false
	}
	return float64(t-v.From) / float64(v.To-v.From) * float64(v.Width), true
}

func (v Viewport) xToTime(x float64) (int64, bool) {
	if x < 0 || x > float64(v.Width) || v.Width <= 0 {
		return 0, false
	}
	t := float64(v.From) + x/float64(v.Width)*float64(v.To-v.From)
	if v.Interval > 0 {
		bars := math.Round((t - float64(v.From)) / float64(v.Interval))
		return v.From + int64(bars)*v.Interval, true
	}
	return int64(math.Round(t)), true
}

func (v Viewport) priceToY(p float64) (float64, bool) {
	span := v.MaxPrice - v.MinPrice
	if !(span > 0) || math.IsNaN(p) {
		return 0, false
	}
	return (v.MaxPrice - p) / span * float64(v.Height), true
}

func (v Viewport) yToPrice(y float64) (float64, bool) {
	span := v.MaxPrice - v.MinPrice
	if !(span > 0) || v.Height <= 0 {
		return 0, false
	}
	return v.MaxPrice - y/float64(v.Height)*span, true
}

// pan shifts the time range by dx pixels. Positive dx reveals later times.
func (v Viewport) pan(dx float64) Viewport {
	shift := int64(math.Round(dx / float64(v.Width) * float64(v.To-v.From)))
	v.From += shift
	v.To += shift
	return v
}

// zoom scales the time range around its center. factor > 1 zooms in.
func (v Viewport) zoom(factor float64) Viewport {
	span := float64(v.To-v.From) / factor
	if span < 1 {
		span = 1
	}
	center := float64(v.From+v.To) / 2
	v.From = int64(math.Round(center - span/2))
	v.To = int64(math.Round(center + span/2))
	if v.To <= v.From {
		v.To = v.From + 1
	}
	return v
}
