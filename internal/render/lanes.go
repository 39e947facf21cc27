package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kikiluvv/framecannon/internal/clips"
	"github.com/kikiluvv/framecannon/internal/surface"
	"github.com/kikiluvv/framecannon/internal/waveform"
)

// GutterWidth is the column count reserved for lane labels.
const GutterWidth = 16

// RulerRows is the number of rows above the first lane.
const RulerRows = 1

var (
	gutterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa")).
			Background(lipgloss.Color("#27272a"))

	gutterLockedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#71717a")).
				Background(lipgloss.Color("#27272a"))

	laneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3f3f46")).
			Background(lipgloss.Color("#18181b"))

	rulerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	playheadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ef4444")).
			Bold(true)

	clipTextColor = lipgloss.Color("#f4f4f5")
)

var levels = []rune("▁▂▃▄▅▆▇█")

// Frame is everything needed to draw the timeline once.
type Frame struct {
	Lanes  []surface.Lane
	Boxes  []surface.Box
	Ticks  []surface.Tick
	Scroll float64
	// Width is the viewport width in pixels.
	Width float64
	// CellWidth is how many pixels one terminal column covers.
	CellWidth           float64
	PlayheadX           float64
	Selected            int64
	HasSelection        bool
	RegenerateAvailable bool
	// Peaks, when set, are drawn inside audio clips.
	Peaks []waveform.Peak
}

// FrameOf captures the surface's current geometry.
func FrameOf(s *surface.Surface, cellWidth float64, regenerate bool, peaks []waveform.Peak) Frame {
	sel, has := s.Selected()
	return Frame{
		Lanes:               s.Lanes(),
		Boxes:               s.Boxes(),
		Ticks:               s.Ticks(),
		Scroll:              s.Scroll(),
		Width:               s.ViewportWidth(),
		CellWidth:           cellWidth,
		PlayheadX:           s.PlayheadX(),
		Selected:            sel,
		HasSelection:        has,
		RegenerateAvailable: regenerate,
		Peaks:               peaks,
	}
}

// Columns is the number of timeline columns the frame spans.
func (f Frame) Columns() int {
	if f.CellWidth <= 0 {
		return 0
	}
	return int(f.Width / f.CellWidth)
}

type cell struct {
	ch    string
	style lipgloss.Style
}

type row []cell

func newRow(n int, fill string, st lipgloss.Style) row {
	r := make(row, n)
	for i := range r {
		r[i] = cell{fill, st}
	}
	return r
}

func (r row) put(col int, s string, st lipgloss.Style) {
	for _, ch := range s {
		if col >= 0 && col < len(r) {
			r[col] = cell{string(ch), st}
		}
		col++
	}
}

func (r row) String() string {
	var b strings.Builder
	for _, c := range r {
		b.WriteString(c.style.Render(c.ch))
	}
	return b.String()
}

// Timeline draws the ruler and one row per lane.
func Timeline(f Frame) string {
	cols := f.Columns()
	if cols <= 0 {
		return ""
	}

	ruler := newRow(cols, " ", rulerStyle)
	for _, t := range f.Ticks {
		col := int(t.X / f.CellWidth)
		if t.Label != "" {
			ruler.put(col, t.Label, rulerStyle)
		} else {
			ruler.put(col, "·", rulerStyle)
		}
	}
	rows := []row{ruler}

	for i, lane := range f.Lanes {
		r := newRow(cols, " ", laneStyle)
		locked := lane.Layer.Locked || lane.Layer.Isolated
		for _, b := range f.Boxes {
			if b.Lane != i {
				continue
			}
			f.drawClip(r, b, locked)
		}
		rows = append(rows, r)
	}

	if ph := int(math.Floor(f.PlayheadX / f.CellWidth)); f.PlayheadX >= 0 && ph < cols {
		for _, r := range rows {
			r[ph] = cell{"│", playheadStyle.Background(r[ph].style.GetBackground())}
		}
	}

	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		lines = append(lines, f.gutter(i)+r.String())
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (f Frame) gutter(row int) string {
	if row < RulerRows {
		return gutterStyle.Width(GutterWidth).Render("")
	}
	lane := f.Lanes[row-RulerRows].Layer
	label := lane.Name
	st := gutterStyle
	if lane.Locked || lane.Isolated {
		label = string(BadgeLock) + " " + label
		st = gutterLockedStyle
	}
	if !lane.Visible {
		label = string(BadgeHidden) + " " + label
	}
	runes := []rune(label)
	if len(runes) > GutterWidth-1 {
		runes = runes[:GutterWidth-1]
	}
	return st.Width(GutterWidth).Render(string(runes))
}

func (f Frame) drawClip(r row, b surface.Box, layerLocked bool) {
	first := int(math.Floor((b.X - f.Scroll) / f.CellWidth))
	last := int(math.Ceil((b.X+b.W-f.Scroll)/f.CellWidth)) - 1
	if last < first {
		last = first
	}
	if last < 0 || first >= len(r) {
		return
	}

	v := Clip(b.Clip, View{
		LayerLocked:         layerLocked,
		Selected:            f.HasSelection && f.Selected == b.Clip.ID,
		RegenerateAvailable: f.RegenerateAvailable,
	})
	split := 0.5
	if v.HasFill {
		split = v.FillRatio
	}

	span := last - first + 1
	for i := 0; i < span; i++ {
		col := first + i
		if col < 0 || col >= len(r) {
			continue
		}
		bg := v.Colors.From
		if float64(i)+0.5 > split*float64(span) {
			bg = v.Colors.To
		}
		st := lipgloss.NewStyle().Foreground(clipTextColor).Background(bg)
		if v.Selected {
			st = st.Bold(true).Underline(true)
		}
		if v.Dimmed {
			st = st.Faint(true)
		}
		r[col] = cell{" ", st}
	}

	label := v.Icon
	for _, badge := range v.Badges {
		label += " " + string(badge)
	}
	if b.Clip.Title != "" {
		label += " " + b.Clip.Title
	}
	if b.Clip.Type() == clips.TypeAudio && len(f.Peaks) > 0 {
		f.drawPeaks(r, first, span)
		label = v.Icon
	}
	offset := 0
	if v.ShowHandles {
		offset = 1
	}
	for j, ch := range []rune(label) {
		col := first + offset + j
		if col > last-offset || col < 0 || col >= len(r) {
			break
		}
		r[col] = cell{string(ch), r[col].style}
	}

	if v.ShowHandles && span >= 2 {
		r.restyle(first, "▏")
		r.restyle(last, "▕")
	}
	if v.ShowRegenerate && span >= 4 {
		col := last - 1
		if !v.RegenerateEnabled {
			r.restyle(col, "·")
		} else {
			r.restyle(col, RegenerateIcon)
		}
	}
}

func (r row) restyle(col int, ch string) {
	if col >= 0 && col < len(r) {
		r[col] = cell{ch, r[col].style}
	}
}

func (f Frame) drawPeaks(r row, first, span int) {
	for i := 0; i < span; i++ {
		col := first + i
		if col < 0 || col >= len(r) {
			continue
		}
		p := f.Peaks[i*len(f.Peaks)/span]
		amp := math.Max(math.Abs(float64(p.Max)), math.Abs(float64(p.Min)))
		lvl := int(math.Min(1, amp) * float64(len(levels)-1))
		r[col] = cell{string(levels[lvl]), r[col].style}
	}
}
