package surface

import (
	"math"

	"github.com/kikiluvv/framecannon/internal/clips"
)

// DragThreshold is how far the pointer must travel before a press counts as
// a drag rather than a click, in pixels.
const DragThreshold = 3.0

// Mode is the active pointer interaction.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeResizingStart
	ModeResizingEnd
)

func (m Mode) String() string {
	switch m {
	case ModeDragging:
		return "dragging"
	case ModeResizingStart:
		return "resizing-start"
	case ModeResizingEnd:
		return "resizing-end"
	default:
		return "idle"
	}
}

type interaction struct {
	mode    Mode
	origin  clips.Clip
	originX float64
	moved   bool
}

// Mode reports the active interaction.
func (s *Surface) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ModeIdle
	}
	return s.active.mode
}

// PointerDown starts a drag or resize on the clip under a viewport point
// using the standard handle width.
func (s *Surface) PointerDown(x, y float64) bool {
	return s.PointerDownWithin(x, y, HandleWidth)
}

// PointerDownWithin is PointerDown with a custom handle width, for hosts
// whose pointer resolution is coarser than a pixel.
func (s *Surface) PointerDownWithin(x, y, handleZone float64) bool {
	s.mu.Lock()
	hit, ok := s.hitTest(x, y, handleZone)
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.Select(hit.ClipID)
	switch hit.Zone {
	case ZoneStart:
		return s.begin(hit.ClipID, ModeResizingStart, x)
	case ZoneEnd:
		return s.begin(hit.ClipID, ModeResizingEnd, x)
	default:
		return s.begin(hit.ClipID, ModeDragging, x)
	}
}

// BeginDrag starts moving a clip. It fails when the clip is not editable or
// another interaction is active.
func (s *Surface) BeginDrag(clipID int64, x float64) bool {
	return s.begin(clipID, ModeDragging, x)
}

// BeginResize starts resizing one edge of a clip.
func (s *Surface) BeginResize(clipID int64, fromStart bool, x float64) bool {
	if fromStart {
		return s.begin(clipID, ModeResizingStart, x)
	}
	return s.begin(clipID, ModeResizingEnd, x)
}

func (s *Surface) begin(clipID int64, mode Mode, x float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return false
	}
	c, ok := s.clip(clipID)
	if !ok || !clips.Editable(c, s.layerLocked(c.Layer)) {
		s.logger.Debug().Int64("clip", clipID).Msg("interaction blocked")
		return false
	}
	s.active = &interaction{mode: mode, origin: c, originX: x}
	s.logger.Debug().Int64("clip", clipID).Stringer("mode", mode).Msg("interaction started")
	return true
}

// PointerMove updates the active interaction. Proposals are computed from
// the clip as it was when the interaction began and diffed against the
// current snapshot, so returning to the origin proposes a revert.
func (s *Surface) PointerMove(x float64) {
	s.mu.Lock()
	a := s.active
	if a == nil {
		s.mu.Unlock()
		return
	}
	if math.Abs(x-a.originX) >= DragThreshold {
		a.moved = true
	}
	if !a.moved {
		s.mu.Unlock()
		return
	}
	current, ok := s.clip(a.origin.ID)
	if !ok {
		s.active = nil
		s.mu.Unlock()
		return
	}
	if !clips.Editable(current, s.layerLocked(current.Layer)) {
		s.mu.Unlock()
		return
	}

	delta := (x - a.originX) / s.pps()
	target := a.origin
	var u clips.Update
	var changed bool
	switch a.mode {
	case ModeDragging:
		u, changed = clips.Move(a.origin, a.origin.Start+delta, false)
	case ModeResizingStart:
		u, changed = clips.ResizeStart(a.origin, a.origin.Start+delta, false)
	case ModeResizingEnd:
		u, changed = clips.ResizeEnd(a.origin, a.origin.End()+delta, false)
	}
	if changed {
		target = u.ApplyTo(a.origin)
	}
	proposal, ok := clips.Diff(current, target.Start, target.Duration)
	cb := s.cb.OnClipUpdate
	s.mu.Unlock()

	if ok && cb != nil {
		cb(current.ID, proposal)
	}
}

// PointerUp ends the active interaction. It reports whether the pointer
// actually dragged, in which case the host should not treat the release as
// a click.
func (s *Surface) PointerUp(x float64) bool {
	s.PointerMove(x)
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.active
	s.active = nil
	if a == nil {
		return false
	}
	s.logger.Debug().Int64("clip", a.origin.ID).Bool("moved", a.moved).Msg("interaction ended")
	return a.moved
}

// Cancel abandons the active interaction without a final proposal.
func (s *Surface) Cancel() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}

// Click seeks to the time under a viewport x, clamped to the timeline. It is
// ignored while an interaction is active.
func (s *Surface) Click(x float64) bool {
	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return false
	}
	t := (x + s.scroll.pos) / s.pps()
	t = math.Max(0, math.Min(t, s.duration))
	cb := s.cb.OnTimeUpdate
	s.mu.Unlock()

	s.logger.Debug().Float64("time", t).Msg("seek requested")
	if cb != nil {
		cb(t)
	}
	return true
}

// SplitAt splits a clip at t. The host receives the split signal while the
// clip still has its full span, then the truncation.
func (s *Surface) SplitAt(clipID int64, t float64) bool {
	s.mu.Lock()
	c, ok := s.clip(clipID)
	onSplit, onUpdate := s.cb.OnSplitClip, s.cb.OnClipUpdate
	if !ok || onSplit == nil {
		s.mu.Unlock()
		return false
	}
	u, req, ok := clips.Split(c, t, s.layerLocked(c.Layer))
	s.mu.Unlock()
	if !ok {
		s.logger.Debug().Int64("clip", clipID).Float64("at", t).Msg("split rejected")
		return false
	}
	onSplit(req.ClipID, req.SplitTime)
	if onUpdate != nil {
		onUpdate(req.ClipID, u)
	}
	return true
}

// SplitAtPlayhead splits the selected clip, or the topmost clip under the
// playhead, at the current time.
func (s *Surface) SplitAtPlayhead() bool {
	s.mu.Lock()
	t := s.current
	id, found := int64(0), false
	if sel, ok := s.clip(s.selected); s.hasSel && ok && sel.Contains(t) {
		id, found = sel.ID, true
	} else {
		lane := -1
		for _, b := range s.boxes() {
			if b.Clip.Contains(t) && (lane < 0 || b.Lane < lane) {
				id, found, lane = b.Clip.ID, true, b.Lane
			}
		}
	}
	s.mu.Unlock()
	if !found {
		return false
	}
	return s.SplitAt(id, t)
}

// CanRegenerate reports whether the regenerate action should be offered.
func (s *Surface) CanRegenerate(clipID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clip(clipID)
	if !ok || s.cb.OnRegenerate == nil {
		return false
	}
	return clips.CanRegenerate(c, s.layerLocked(c.Layer))
}

// Regenerate asks the host to regenerate a placeholder clip.
func (s *Surface) Regenerate(clipID int64) bool {
	if !s.CanRegenerate(clipID) {
		s.logger.Debug().Int64("clip", clipID).Msg("regenerate blocked")
		return false
	}
	s.mu.Lock()
	cb := s.cb.OnRegenerate
	s.mu.Unlock()
	cb(clipID)
	return true
}
