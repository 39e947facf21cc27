package waveform

import (
	"strconv"
	"strings"
)

// Path renders peaks as a closed SVG path filling a width x height box.
// The upper edge traces the maxima left to right, the lower edge traces the
// minima back.
func Path(peaks []Peak, width, height float64) string {
	if len(peaks) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	mid := height / 2
	step := width / float64(len(peaks))

	var b strings.Builder
	b.Grow(len(peaks) * 24)
	for i, p := range peaks {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		writePoint(&b, cmd, float64(i)*step, mid-float64(clamp(p.Max))*mid)
	}
	for i := len(peaks) - 1; i >= 0; i-- {
		writePoint(&b, "L", float64(i)*step, mid-float64(clamp(peaks[i].Min))*mid)
	}
	b.WriteString("Z")
	return b.String()
}

// SVG wraps Path in a standalone document.
func SVG(peaks []Peak, width, height int, fill string) string {
	if fill == "" {
		fill = "#a78bfa"
	}
	w, h := strconv.Itoa(width), strconv.Itoa(height)
	return `<svg xmlns="http://www.w3.org/2000/svg" width="` + w + `" height="` + h +
		`" viewBox="0 0 ` + w + ` ` + h + `" preserveAspectRatio="none"><path d="` +
		Path(peaks, float64(width), float64(height)) + `" fill="` + fill + `"/></svg>`
}

func writePoint(b *strings.Builder, cmd string, x, y float64) {
	b.WriteString(cmd)
	b.WriteString(strconv.FormatFloat(x, 'f', 2, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(y, 'f', 2, 64))
	b.WriteByte(' ')
}

func clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
