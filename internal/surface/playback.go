package surface

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Playhead follows the current time with a spring while playing and snaps
// while paused. Position is in seconds.
type Playhead struct {
	spring   harmonica.Spring
	pos      float64
	velocity float64
	target   float64
}

// NewPlayhead creates a playhead stepped at fps.
func NewPlayhead(fps int) *Playhead {
	return &Playhead{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0)}
}

// Snap jumps to t and kills any momentum.
func (p *Playhead) Snap(t float64) {
	p.pos, p.target, p.velocity = t, t, 0
}

// Follow retargets the spring without moving.
func (p *Playhead) Follow(t float64) {
	p.target = t
}

// Step advances the spring by one frame.
func (p *Playhead) Step() float64 {
	p.pos, p.velocity = p.spring.Update(p.pos, p.velocity, p.target)
	if math.Abs(p.pos-p.target) < 1e-4 && math.Abs(p.velocity) < 1e-4 {
		p.pos, p.velocity = p.target, 0
	}
	return p.pos
}

// Position is where the playhead is drawn.
func (p *Playhead) Position() float64 { return p.pos }

// Target is the time the playhead is heading to.
func (p *Playhead) Target() float64 { return p.target }

// SetCurrentTime pushes the host's current time. The playhead springs there
// while playing and snaps while paused.
func (s *Surface) SetCurrentTime(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = math.Max(0, t)
	if s.playing {
		s.playhead.Follow(s.current)
		s.autoScroll()
		return
	}
	s.playhead.Snap(s.current)
}

// CurrentTime returns the last time pushed by the host.
func (s *Surface) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// PlayheadPosition is the drawn playhead time.
func (s *Surface) PlayheadPosition() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playhead.Position()
}

// PlayheadX is the drawn playhead in viewport pixels.
func (s *Surface) PlayheadX() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playhead.Position()*s.pps() - s.scroll.pos
}

// Playing reports whether the host said playback is running.
func (s *Surface) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// SetPlaying mirrors the host's playback state without emitting callbacks.
func (s *Surface) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = playing
	if !playing {
		s.playhead.Snap(s.current)
	}
}

// TogglePlay asks the host to play or pause.
func (s *Surface) TogglePlay() {
	s.mu.Lock()
	playing := !s.playing
	s.playing = playing
	if !playing {
		s.playhead.Snap(s.current)
	}
	cb := s.cb
	s.mu.Unlock()

	if playing {
		s.logger.Debug().Float64("at", s.CurrentTime()).Msg("play requested")
		if cb.OnPlay != nil {
			cb.OnPlay()
		}
		return
	}
	s.logger.Debug().Float64("at", s.CurrentTime()).Msg("pause requested")
	if cb.OnPause != nil {
		cb.OnPause()
	}
}

// Tick advances the playhead spring and any smooth scroll by dt seconds.
func (s *Surface) Tick(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		s.playhead.Step()
	}
	s.scroll.step(dt)
}

// autoScroll keeps the playhead inside the viewport while playing. Near the
// right edge it lands at the lead-out fraction, near the left at lead-in.
func (s *Surface) autoScroll() {
	x := s.current * s.pps()
	rel := x - s.scroll.target
	w := s.width
	var target float64
	switch {
	case rel > w*(1-s.cfg.ScrollEdge):
		target = x - w*s.cfg.ScrollLeadOut
	case rel < w*s.cfg.ScrollEdge:
		target = x - w*s.cfg.ScrollLeadIn
	default:
		return
	}
	target = math.Max(0, math.Min(target, s.maxScroll()))
	if target == s.scroll.target {
		return
	}
	s.scroll.start(target)
}
