package surface

import (
	"math"

	"github.com/kikiluvv/framecannon/pkg/util"
)

// MinTickSpacing is the narrowest gap between ruler ticks, in pixels.
const MinTickSpacing = 60.0

var tickIntervals = []float64{0.5, 1, 2, 5, 10, 15, 30, 60}

// Tick is one ruler mark. X is in viewport pixels.
type Tick struct {
	Time  float64
	X     float64
	Label string
}

// TickInterval picks the smallest interval that keeps ticks apart.
func TickInterval(pps float64) float64 {
	for _, iv := range tickIntervals {
		if iv*pps >= MinTickSpacing {
			return iv
		}
	}
	return tickIntervals[len(tickIntervals)-1]
}

// Ticks returns the ruler marks inside the viewport. Only whole seconds get
// a label.
func (s *Surface) Ticks() []Tick {
	s.mu.Lock()
	defer s.mu.Unlock()

	pps := s.pps()
	iv := TickInterval(pps)
	first := math.Floor(s.scroll.pos/pps/iv) * iv
	last := math.Min(s.duration, (s.scroll.pos+s.width)/pps)

	var out []Tick
	for n := 0; ; n++ {
		t := first + float64(n)*iv
		if t > last+1e-9 {
			break
		}
		x := t*pps - s.scroll.pos
		if x < 0 {
			continue
		}
		tick := Tick{Time: t, X: x}
		if t == math.Trunc(t) {
			tick.Label = util.FormatClock(t)
		}
		out = append(out, tick)
	}
	return out
}
