package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder helps construct ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// ATrim cuts audio to [start, start+duration). A zero duration keeps the rest.
func (fb *FilterBuilder) ATrim(start, duration float64) *FilterBuilder {
	if start <= 0 && duration <= 0 {
		return fb
	}
	f := fmt.Sprintf("atrim=start=%g", start)
	if duration > 0 {
		f += fmt.Sprintf(":duration=%g", duration)
	}
	fb.filters = append(fb.filters, f, "asetpts=PTS-STARTPTS")
	return fb
}

// DrawText centres text on the frame
func (fb *FilterBuilder) DrawText(text string, size int, color string) *FilterBuilder {
	if text == "" {
		return fb
	}
	if size <= 0 {
		size = 32
	}
	if color == "" {
		color = "white"
	}
	fb.filters = append(fb.filters, fmt.Sprintf(
		"drawtext=text='%s':fontsize=%d:fontcolor=%s:x=(w-text_w)/2:y=(h-text_h)/2",
		escapeText(text), size, color))
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
	`%`, `\%`,
	",", `\,`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
