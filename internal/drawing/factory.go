package drawing

import "fmt"

// newStudyPrimitive builds the primitive for s keyed on its type. The study
// is cloned so the primitive owns its data.
func newStudyPrimitive(s Study) (studyPrimitive, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	b := base{study: s.Clone()}
	switch s.Type {
	case TypeHorizontalLine:
		return &horizontalLine{base: b}, nil
	case TypeTrendLine:
		return &trendLine{base: b}, nil
	case TypeRay:
		return &ray{base: b}, nil
	case TypeParallelChannel:
		return &parallelChannel{base: b}, nil
	}
	return nil, fmt.Errorf("unsupported study type %q", s.Type)
}
