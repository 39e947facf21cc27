package stage

import (
	"fmt"
	"strings"
)

// FilterBuilder helps construct CSS filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// Blur adds a gaussian blur in pixels
func (fb *FilterBuilder) Blur(px float64) *FilterBuilder {
	if px <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("blur(%gpx)", px))
	return fb
}

// Brightness adds a brightness percentage; 100 is unchanged
func (fb *FilterBuilder) Brightness(pct float64) *FilterBuilder {
	if pct <= 0 || pct == 100 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("brightness(%g%%)", pct))
	return fb
}

// Opacity adds an opacity percentage; 0 means unset and 100 is unchanged
func (fb *FilterBuilder) Opacity(pct float64) *FilterBuilder {
	if pct <= 0 || pct >= 100 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("opacity(%g%%)", pct))
	return fb
}

// DropShadow adds a drop shadow
func (fb *FilterBuilder) DropShadow(enabled bool) *FilterBuilder {
	if !enabled {
		return fb
	}
	fb.filters = append(fb.filters, "drop-shadow(0 10px 30px rgba(0,0,0,0.5))")
	return fb
}

// Custom adds a custom filter string
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	if filter == "" {
		return fb
	}
	fb.filters = append(fb.filters, filter)
	return fb
}

// Build returns the complete filter string joined with spaces
func (fb *FilterBuilder) Build() string {
	return strings.Join(fb.filters, " ")
}
