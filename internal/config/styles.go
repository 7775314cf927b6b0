package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

// StylesConfig is the top-level YAML configuration for tool defaults.
//
//	styles:
//	  trendline: {color: "#2962ff", line_width: 2}
//	  channel:   {color: "#26a69a"}
type StylesConfig struct {
	Styles map[string]drawing.Style `yaml:"styles"`
}

// LoadStyles reads a styles YAML file and merges it over the built-in
// defaults. Keys accept the same aliases as tool names; omitted fields keep
// their default. An empty path returns the defaults.
func LoadStyles(path string) (map[drawing.StudyType]drawing.Style, error) {
	out := drawing.DefaultStyles()
	if path == "" {
		return out, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("styles config: %w", err)
	}
	var cfg StylesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("styles config: %w", err)
	}
	for name, st := range cfg.Styles {
		typ, err := drawing.ParseStudyType(name)
		if err != nil || typ == drawing.ToolPointer {
			return nil, fmt.Errorf("styles config: unknown study type %q", name)
		}
		merged := out[typ]
		if st.Color != "" {
			if !drawing.ValidColor(st.Color) {
				return nil, fmt.Errorf("styles config: %s color %q is not a hex color", name, st.Color)
			}
			merged.Color = st.Color
		}
		if st.LineWidth != 0 {
			if !drawing.ValidLineWidth(st.LineWidth) {
				return nil, fmt.Errorf("styles config: %s line_width %v out of range", name, st.LineWidth)
			}
			merged.LineWidth = st.LineWidth
		}
		out[typ] = merged
	}
	return out, nil
}
