package render

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/kikiluvv/framecannon/internal/clips"
)

// Badge is an overlay glyph drawn on a clip.
type Badge string

const (
	BadgeLock     Badge = "⊠"
	BadgeHidden   Badge = "⊘"
	BadgeAI       Badge = "AI"
	BadgeIsolated Badge = "●"
)

// RegenerateIcon marks the regenerate action.
const RegenerateIcon = "✧"

// Colors is a clip's gradient, left to right.
type Colors struct {
	From lipgloss.Color
	To   lipgloss.Color
}

type style struct {
	icon   string
	colors Colors
}

var styles = map[clips.Type]style{
	clips.TypeVideo:      {"▶", Colors{"#7c3aed", "#db2777"}},
	clips.TypeImage:      {"▣", Colors{"#2563eb", "#0891b2"}},
	clips.TypeTransition: {"⇄", Colors{"#ea580c", "#ca8a04"}},
	clips.TypeAudio:      {"♪", Colors{"#059669", "#65a30d"}},
	clips.TypeEffect:     {"✦", Colors{"#c026d3", "#9333ea"}},
	clips.TypeText:       {"T", Colors{"#475569", "#64748b"}},
}

var fallback = style{"?", Colors{"#3f3f46", "#52525b"}}

// View is what the renderer needs beyond the clip itself.
type View struct {
	LayerLocked bool
	Selected    bool
	// RegenerateAvailable is true when the host supplied a regenerate callback.
	RegenerateAvailable bool
}

// ClipView is the resolved presentation of one clip.
type ClipView struct {
	Icon           string
	Colors         Colors
	Badges         []Badge
	HasFill        bool
	FillRatio      float64
	ShowHandles    bool
	ShowRegenerate bool
	// RegenerateEnabled is false when the action shows but the layer is locked.
	RegenerateEnabled bool
	Selected          bool
	Dimmed            bool
}

// Icon returns the glyph for a clip type.
func Icon(t clips.Type) string {
	if s, ok := styles[t]; ok {
		return s.icon
	}
	return fallback.icon
}

// Palette returns the colour pair for a clip type.
func Palette(t clips.Type) Colors {
	if s, ok := styles[t]; ok {
		return s.colors
	}
	return fallback.colors
}

// Clip maps a clip to its presentation.
func Clip(c clips.Clip, v View) ClipView {
	out := ClipView{
		Icon:        Icon(c.Type()),
		Colors:      Palette(c.Type()),
		ShowHandles: clips.Editable(c, v.LayerLocked),
		Selected:    v.Selected,
		Dimmed:      !c.Visible,
	}
	if c.Locked {
		out.Badges = append(out.Badges, BadgeLock)
	}
	if !c.Visible {
		out.Badges = append(out.Badges, BadgeHidden)
	}
	if c.Placeholder {
		out.Badges = append(out.Badges, BadgeAI)
	}
	if c.Isolated {
		out.Badges = append(out.Badges, BadgeIsolated)
	}
	if c.MaxDuration > 0 {
		out.HasFill = true
		out.FillRatio = math.Max(0, math.Min(1, c.Duration/c.MaxDuration))
	}
	if c.Placeholder && v.RegenerateAvailable {
		out.ShowRegenerate = true
		out.RegenerateEnabled = clips.CanRegenerate(c, v.LayerLocked)
	}
	return out
}

// Has reports whether the view carries badge b.
func (v ClipView) Has(b Badge) bool {
	for _, x := range v.Badges {
		if x == b {
			return true
		}
	}
	return false
}
