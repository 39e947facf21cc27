package clips

import "errors"

// MinDuration is the shortest a clip may ever become, in seconds.
const MinDuration = 0.5

// ErrInvalidClip is returned when a persisted clip fails validation.
var ErrInvalidClip = errors.New("invalid clip")

// Clip is a timed piece of content placed on one layer. Times are seconds.
type Clip struct {
	ID                int64
	Start             float64
	Duration          float64
	Layer             int64
	Locked            bool
	Visible           bool
	Title             string
	Description       string
	Isolated          bool
	Placeholder       bool
	PendingGeneration bool
	// MaxDuration caps Duration when positive.
	MaxDuration float64
	Content     Content
}

// End returns the clip's end time.
func (c Clip) End() float64 {
	return c.Start + c.Duration
}

// Type returns the content type, or "" for a clip without content.
func (c Clip) Type() Type {
	if c.Content == nil {
		return ""
	}
	return c.Content.Type()
}

// Contains reports whether t lies strictly inside the clip.
func (c Clip) Contains(t float64) bool {
	return t > c.Start && t < c.End()
}

// Editable reports whether both gates pass: the owning layer is unlocked and
// the clip itself is neither locked nor isolated.
func Editable(c Clip, layerLocked bool) bool {
	return !layerLocked && !c.Locked && !c.Isolated
}

// CanRegenerate reports whether a regeneration request may be issued.
func CanRegenerate(c Clip, layerLocked bool) bool {
	return c.Placeholder && !layerLocked && !c.Isolated
}

// Update is a proposed partial change. Nil fields are unchanged.
type Update struct {
	Start    *float64
	Duration *float64
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Start == nil && u.Duration == nil
}

// ApplyTo returns c with the update applied.
func (u Update) ApplyTo(c Clip) Clip {
	if u.Start != nil {
		c.Start = *u.Start
	}
	if u.Duration != nil {
		c.Duration = *u.Duration
	}
	return c
}

// SplitRequest asks the host to create the clip covering the remainder of a
// split.
type SplitRequest struct {
	ClipID    int64
	SplitTime float64
	Start     float64
	Duration  float64
}
