// Package drawing implements interactive chart annotations: study types,
// their render/hit-test primitives, and the Manager that places, selects,
// drags and persists them against a host chart surface.
package drawing

import (
	"fmt"
	"regexp"
	"strings"
)

// StudyType discriminates the kinds of drawings. The empty value doubles as
// the pointer (select) tool.
type StudyType string

const (
	TypeHorizontalLine  StudyType = "horizontal_line"
	TypeTrendLine       StudyType = "trendline"
	TypeRay             StudyType = "ray"
	TypeParallelChannel StudyType = "parallel_channel"

	// ToolPointer is the select/pointer mode.
	ToolPointer StudyType = ""
)

// StudyTypes lists every placeable study type.
var StudyTypes = []StudyType{TypeHorizontalLine, TypeTrendLine, TypeRay, TypeParallelChannel}

// ParseStudyType maps a user-facing tool name onto a StudyType. "pointer",
// "select", "none" and the empty string all mean ToolPointer.
func ParseStudyType(s string) (StudyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pointer", "select", "none":
		return ToolPointer, nil
	case string(TypeHorizontalLine), "hline", "horizontal":
		return TypeHorizontalLine, nil
	case string(TypeTrendLine), "trend_line", "trend":
		return TypeTrendLine, nil
	case string(TypeRay):
		return TypeRay, nil
	case string(TypeParallelChannel), "channel":
		return TypeParallelChannel, nil
	}
	return ToolPointer, fmt.Errorf("unknown study type %q", s)
}

// clicks returns the number of clicks needed to place a study of type t.
func (t StudyType) clicks() int {
	switch t {
	case TypeHorizontalLine:
		return 1
	case TypeTrendLine, TypeRay:
		return 2
	case TypeParallelChannel:
		return 3
	}
	return 0
}

// Anchor is a logical control point. Time is the host time-axis value
// (unix seconds).
type Anchor struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

// Study is one persisted annotation.
type Study struct {
	ID            string    `json:"id"`
	Type          StudyType `json:"type"`
	Color         string    `json:"color"`
	LineWidth     float64   `json:"lineWidth"`
	Price         float64   `json:"price,omitempty"`
	P1            *Anchor   `json:"p1,omitempty"`
	P2            *Anchor   `json:"p2,omitempty"`
	ChannelOffset float64   `json:"channelOffset,omitempty"`
}

// Clone returns a deep copy of s.
func (s Study) Clone() Study {
	out := s
	if s.P1 != nil {
		p := *s.P1
		out.P1 = &p
	}
	if s.P2 != nil {
		p := *s.P2
		out.P2 = &p
	}
	return out
}

// Anchors returns the study's logical control points.
func (s Study) Anchors() []Anchor {
	var out []Anchor
	if s.P1 != nil {
		out = append(out, *s.P1)
	}
	if s.P2 != nil {
		out = append(out, *s.P2)
	}
	return out
}

// withPriceShift copies every price component of origin, moved by delta,
// into s. Times are left untouched.
func (s *Study) withPriceShift(origin Study, delta float64) {
	if s.Type == TypeHorizontalLine {
		s.Price = origin.Price + delta
		return
	}
	if s.P1 != nil && origin.P1 != nil {
		s.P1.Price = origin.P1.Price + delta
	}
	if s.P2 != nil && origin.P2 != nil {
		s.P2.Price = origin.P2.Price + delta
	}
}

// Validate checks that s carries the fields its type requires.
func (s Study) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("study id is required")
	}
	if !ValidColor(s.Color) {
		return fmt.Errorf("study %s: invalid color %q", s.ID, s.Color)
	}
	if !ValidLineWidth(s.LineWidth) {
		return fmt.Errorf("study %s: line width %v out of range", s.ID, s.LineWidth)
	}
	switch s.Type {
	case TypeHorizontalLine:
		return nil
	case TypeTrendLine, TypeRay, TypeParallelChannel:
		if s.P1 == nil || s.P2 == nil {
			return fmt.Errorf("study %s: %s requires p1 and p2", s.ID, s.Type)
		}
		return nil
	}
	return fmt.Errorf("study %s: unknown type %q", s.ID, s.Type)
}

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether c is a #rgb or #rrggbb color.
func ValidColor(c string) bool {
	return colorPattern.MatchString(c)
}

// MaxLineWidth bounds stroke widths in pixels.
const MaxLineWidth = 10

// ValidLineWidth reports whether w is a usable stroke width.
func ValidLineWidth(w float64) bool {
	return w > 0 && w <= MaxLineWidth
}

// Style is the default appearance for newly placed studies of one type.
type Style struct {
	Color     string  `json:"color" yaml:"color"`
	LineWidth float64 `json:"lineWidth" yaml:"line_width"`
}

// DefaultStyles is used when no style table is configured.
func DefaultStyles() map[StudyType]Style {
	return map[StudyType]Style{
		TypeHorizontalLine:  {Color: "#f59e0b", LineWidth: 1},
		TypeTrendLine:       {Color: "#2962ff", LineWidth: 2},
		TypeRay:             {Color: "#9c27b0", LineWidth: 2},
		TypeParallelChannel: {Color: "#26a69a", LineWidth: 2},
	}
}
