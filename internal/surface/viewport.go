package surface

import "math"

// Zoom bounds and step. One zoom unit is 100 pixels per second.
const (
	MinZoom             = 0.1
	MaxZoom             = 10.0
	ZoomStep            = 1.5
	BasePixelsPerSecond = 100.0
	// ScrollDuration is how long an auto-scroll takes to settle.
	ScrollDuration = 0.25
)

func clampZoom(z, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, z))
}

// Zoom returns the current zoom factor.
func (s *Surface) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// SetZoom sets the zoom factor, clamped to the configured range.
func (s *Surface) SetZoom(z float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = clampZoom(z, s.cfg.MinZoom, s.cfg.MaxZoom)
	s.scroll.clamp(s.maxScroll())
	return s.zoom
}

// ZoomIn multiplies the zoom by the step.
func (s *Surface) ZoomIn() float64 {
	return s.SetZoom(s.Zoom() * s.cfg.ZoomStep)
}

// ZoomOut divides the zoom by the step.
func (s *Surface) ZoomOut() float64 {
	return s.SetZoom(s.Zoom() / s.cfg.ZoomStep)
}

// PixelsPerSecond is zoom x 100.
func (s *Surface) PixelsPerSecond() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pps()
}

func (s *Surface) pps() float64 {
	return s.zoom * BasePixelsPerSecond
}

// TimeToPixels converts seconds to content pixels.
func (s *Surface) TimeToPixels(t float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t * s.pps()
}

// PixelsToTime converts content pixels to seconds.
func (s *Surface) PixelsToTime(px float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return px / s.pps()
}

// ContentWidth is the pixel width of the whole timeline.
func (s *Surface) ContentWidth() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration * s.pps()
}

// SetViewportWidth sets the visible width in pixels.
func (s *Surface) SetViewportWidth(w float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w > 0 {
		s.width = w
	}
	s.scroll.clamp(s.maxScroll())
}

// ViewportWidth returns the visible width in pixels.
func (s *Surface) ViewportWidth() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// Scroll returns the current horizontal scroll offset in pixels.
func (s *Surface) Scroll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll.pos
}

// ScrollTarget returns where an in-flight smooth scroll is heading.
func (s *Surface) ScrollTarget() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll.target
}

// ScrollTo jumps the scroll offset, cancelling any smooth scroll.
func (s *Surface) ScrollTo(px float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll.jump(math.Max(0, math.Min(px, s.maxScroll())))
}

// ScrollBy shifts the scroll offset.
func (s *Surface) ScrollBy(dx float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll.jump(math.Max(0, math.Min(s.scroll.pos+dx, s.maxScroll())))
}

func (s *Surface) maxScroll() float64 {
	return math.Max(0, s.duration*s.pps()-s.width)
}

// scrollAnim eases the scroll offset towards a target.
type scrollAnim struct {
	pos     float64
	from    float64
	target  float64
	elapsed float64
	active  bool
}

func (a *scrollAnim) jump(px float64) {
	a.pos, a.from, a.target = px, px, px
	a.active = false
}

func (a *scrollAnim) start(target float64) {
	if target == a.target {
		return
	}
	a.from = a.pos
	a.target = target
	a.elapsed = 0
	a.active = true
}

func (a *scrollAnim) step(dt float64) {
	if !a.active {
		return
	}
	a.elapsed += dt
	p := math.Min(1, a.elapsed/ScrollDuration)
	eased := 1 - math.Pow(1-p, 3)
	a.pos = a.from + (a.target-a.from)*eased
	if p >= 1 {
		a.pos = a.target
		a.active = false
	}
}

func (a *scrollAnim) clamp(max float64) {
	if a.pos > max || a.target > max {
		a.jump(math.Min(a.pos, max))
	}
}
