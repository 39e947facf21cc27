package clips

import "math"

const epsilon = 1e-9

// ClampDuration bounds d to [MinDuration, ceiling]. A ceiling of zero or
// less means none; a ceiling below the floor is raised to the floor.
func ClampDuration(d, ceiling float64) float64 {
	if ceiling > 0 {
		if ceiling < MinDuration {
			ceiling = MinDuration
		}
		d = math.Min(d, ceiling)
	}
	return math.Max(d, MinDuration)
}

// Move proposes relocating c to newStart. Its duration is re-clamped as part
// of the move. The bool is false when the move is blocked or changes nothing.
func Move(c Clip, newStart float64, layerLocked bool) (Update, bool) {
	if !Editable(c, layerLocked) {
		return Update{}, false
	}
	start := math.Max(0, newStart)
	dur := ClampDuration(c.Duration, c.MaxDuration)
	return Diff(c, start, dur)
}

// ResizeStart proposes moving the clip's leading edge while its end stays put.
func ResizeStart(c Clip, newStart float64, layerLocked bool) (Update, bool) {
	if !Editable(c, layerLocked) {
		return Update{}, false
	}
	end := c.End()
	dur := ClampDuration(end-math.Max(0, newStart), c.MaxDuration)
	start := math.Max(0, end-dur)
	return Diff(c, start, end-start)
}

// ResizeEnd proposes moving the clip's trailing edge while its start stays put.
func ResizeEnd(c Clip, newEnd float64, layerLocked bool) (Update, bool) {
	if !Editable(c, layerLocked) {
		return Update{}, false
	}
	dur := ClampDuration(newEnd-c.Start, c.MaxDuration)
	return Diff(c, c.Start, dur)
}

// Split truncates c at t and asks for a new clip covering [t, end). Both
// fragments must be at least MinDuration long. The remainder does not carry
// the parent's MaxDuration.
func Split(c Clip, t float64, layerLocked bool) (Update, SplitRequest, bool) {
	if !Editable(c, layerLocked) || !c.Contains(t) {
		return Update{}, SplitRequest{}, false
	}
	head := t - c.Start
	tail := c.End() - t
	if head < MinDuration-epsilon || tail < MinDuration-epsilon {
		return Update{}, SplitRequest{}, false
	}
	return Update{Duration: &head}, SplitRequest{
		ClipID:    c.ID,
		SplitTime: t,
		Start:     t,
		Duration:  tail,
	}, true
}

// Diff builds the update turning c into the given geometry. The bool is
// false when nothing changes.
func Diff(c Clip, start, dur float64) (Update, bool) {
	var u Update
	if math.Abs(start-c.Start) > epsilon {
		u.Start = &start
	}
	if math.Abs(dur-c.Duration) > epsilon {
		u.Duration = &dur
	}
	return u, !u.Empty()
}
