package tween

import (
	"math"
	"sort"
	"sync"
)

// Props are named numeric properties of a target.
type Props map[string]float64

// Target is anything a tween can animate.
type Target interface {
	Prop(name string) float64
	SetProp(name string, v float64)
}

type posKind int

const (
	posAbsolute posKind = iota
	posAfterEnd
	posWithPrevious
)

// Position places a child on the timeline.
type Position struct {
	kind   posKind
	offset float64
}

// At places a child at an absolute time.
func At(t float64) Position { return Position{kind: posAbsolute, offset: t} }

// AfterEnd places a child offset seconds after the current end of the timeline.
func AfterEnd(offset float64) Position { return Position{kind: posAfterEnd, offset: offset} }

// WithPrevious places a child offset seconds after the start of the most
// recently added child.
func WithPrevious(offset float64) Position { return Position{kind: posWithPrevious, offset: offset} }

type tween struct {
	seq       int
	target    Target
	from, to  Props
	start     float64
	duration  float64
	ease      EaseFunc
	immediate bool
}

func (tw *tween) end() float64 { return tw.start + tw.duration }

type callback struct {
	at float64
	fn func()
}

// Timeline sequences tweens and callbacks against a single clock. It starts
// paused at time zero.
type Timeline struct {
	mu         sync.Mutex
	tweens     []*tween
	callbacks  []callback
	bases      map[Target]Props
	seq        int
	lastStart  float64
	end        float64
	time       float64
	playing    bool
	complete   bool
	killed     bool
	onUpdate   func(progress float64)
	onComplete func()
}

// New creates an empty paused timeline.
func New() *Timeline {
	return &Timeline{bases: make(map[Target]Props)}
}

// OnUpdate registers the per-tick progress callback.
func (tl *Timeline) OnUpdate(fn func(progress float64)) *Timeline {
	tl.mu.Lock()
	tl.onUpdate = fn
	tl.mu.Unlock()
	return tl
}

// OnComplete registers the end-of-timeline callback.
func (tl *Timeline) OnComplete(fn func()) *Timeline {
	tl.mu.Lock()
	tl.onComplete = fn
	tl.mu.Unlock()
	return tl
}

// FromTo animates target from one set of values to another. The from values
// are applied immediately when this is the first tween touching a property.
func (tl *Timeline) FromTo(target Target, from, to Props, duration float64, ease EaseFunc, pos Position) *Timeline {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.add(target, from, to, duration, ease, pos, true)
	tl.render()
	return tl
}

// Set snaps target properties at a point in time.
func (tl *Timeline) Set(target Target, props Props, pos Position) *Timeline {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.add(target, props, props, 0, Linear, pos, false)
	tl.render()
	return tl
}

// Call schedules fn when playback crosses the position.
func (tl *Timeline) Call(fn func(), pos Position) *Timeline {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.killed {
		return tl
	}
	at := tl.resolve(pos)
	tl.callbacks = append(tl.callbacks, callback{at: at, fn: fn})
	sort.SliceStable(tl.callbacks, func(i, j int) bool { return tl.callbacks[i].at < tl.callbacks[j].at })
	tl.lastStart = at
	if at > tl.end {
		tl.end = at
	}
	return tl
}

func (tl *Timeline) add(target Target, from, to Props, duration float64, ease EaseFunc, pos Position, immediate bool) {
	if tl.killed || target == nil {
		return
	}
	if ease == nil {
		ease = DefaultEase
	}
	duration = math.Max(0, duration)

	base, ok := tl.bases[target]
	if !ok {
		base = make(Props)
		tl.bases[target] = base
	}
	for name := range to {
		if _, seen := base[name]; !seen {
			base[name] = target.Prop(name)
		}
	}

	tw := &tween{
		seq:       tl.seq,
		target:    target,
		from:      copyProps(from),
		to:        copyProps(to),
		start:     tl.resolve(pos),
		duration:  duration,
		ease:      ease,
		immediate: immediate,
	}
	tl.seq++
	tl.tweens = append(tl.tweens, tw)
	sort.SliceStable(tl.tweens, func(i, j int) bool {
		if tl.tweens[i].start != tl.tweens[j].start {
			return tl.tweens[i].start < tl.tweens[j].start
		}
		return tl.tweens[i].seq < tl.tweens[j].seq
	})
	tl.lastStart = tw.start
	if e := tw.end(); e > tl.end {
		tl.end = e
	}
}

func (tl *Timeline) resolve(pos Position) float64 {
	var t float64
	switch pos.kind {
	case posAfterEnd:
		t = tl.end + pos.offset
	case posWithPrevious:
		t = tl.lastStart + pos.offset
	default:
		t = pos.offset
	}
	return math.Max(0, t)
}

// render writes every animated property for the current time. Each
// property starts from its base (or the first tween's from values) and is
// then overwritten by every started tween in start order.
func (tl *Timeline) render() {
	type key struct {
		target Target
		name   string
	}
	values := make(map[key]float64)
	order := make([]key, 0)

	for target, base := range tl.bases {
		for name, v := range base {
			k := key{target, name}
			values[k] = v
		}
	}
	seen := make(map[key]bool)
	for _, tw := range tl.tweens {
		for name := range tw.to {
			k := key{tw.target, name}
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
				if tw.immediate {
					if v, ok := tw.from[name]; ok {
						values[k] = v
					}
				}
			}
		}
	}

	for _, tw := range tl.tweens {
		if tl.time < tw.start {
			continue
		}
		p := 1.0
		if tw.duration > 0 {
			p = math.Min(1, (tl.time-tw.start)/tw.duration)
		}
		eased := tw.ease(p)
		if p >= 1 {
			eased = 1
		}
		for name, to := range tw.to {
			k := key{tw.target, name}
			from, ok := tw.from[name]
			if !ok {
				from = values[k]
			}
			values[k] = from + (to-from)*eased
		}
	}

	for _, k := range order {
		k.target.SetProp(k.name, values[k])
	}
}

// Play resumes from the current time.
func (tl *Timeline) Play() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.killed {
		return
	}
	tl.playing = true
}

// Pause stops the clock.
func (tl *Timeline) Pause() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.playing = false
}

// Restart rewinds to zero and plays.
func (tl *Timeline) Restart() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.killed {
		return
	}
	tl.time = 0
	tl.complete = false
	tl.playing = true
	tl.render()
}

// Seek jumps to t seconds without firing callbacks.
func (tl *Timeline) Seek(t float64) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.killed {
		return
	}
	tl.time = math.Max(0, math.Min(t, tl.end))
	if tl.time < tl.end {
		tl.complete = false
	}
	tl.render()
}

// SeekProgress jumps to a fraction of the duration.
func (tl *Timeline) SeekProgress(p float64) {
	tl.mu.Lock()
	d := tl.end
	tl.mu.Unlock()
	tl.Seek(math.Max(0, math.Min(1, p)) * d)
}

// Tick advances the clock by dt seconds when playing, firing callbacks
// whose time falls in the traversed span.
func (tl *Timeline) Tick(dt float64) {
	tl.mu.Lock()
	if tl.killed || !tl.playing || dt < 0 {
		tl.mu.Unlock()
		return
	}
	prev := tl.time
	next := math.Min(prev+dt, tl.end)
	tl.time = next
	tl.render()

	var fire []func()
	for _, cb := range tl.callbacks {
		if (cb.at >= prev && cb.at < next) || (cb.at == next && next >= tl.end && prev < next) {
			fire = append(fire, cb.fn)
		}
	}

	progress := tl.progress()
	onUpdate := tl.onUpdate
	var onComplete func()
	if next >= tl.end {
		tl.playing = false
		tl.complete = true
		onComplete = tl.onComplete
	}
	tl.mu.Unlock()

	for _, fn := range fire {
		fn()
	}
	if onUpdate != nil {
		onUpdate(progress)
	}
	if onComplete != nil {
		onComplete()
	}
}

// Kill stops the timeline and drops every child. Later calls are no-ops.
func (tl *Timeline) Kill() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.killed = true
	tl.playing = false
	tl.tweens = nil
	tl.callbacks = nil
	tl.bases = make(map[Target]Props)
	tl.onUpdate = nil
	tl.onComplete = nil
}

// Duration returns the end time of the last child.
func (tl *Timeline) Duration() float64 {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.end
}

// Time returns the playhead position in seconds.
func (tl *Timeline) Time() float64 {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.time
}

// Progress returns time/duration in [0,1].
func (tl *Timeline) Progress() float64 {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.progress()
}

func (tl *Timeline) progress() float64 {
	if tl.end <= 0 {
		return 0
	}
	return tl.time / tl.end
}

// Playing reports whether the clock is running.
func (tl *Timeline) Playing() bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.playing
}

// Complete reports whether playback reached the end.
func (tl *Timeline) Complete() bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.complete
}

// Killed reports whether Kill was called.
func (tl *Timeline) Killed() bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.killed
}

// StartTimes returns the start time of every tween touching target.
func (tl *Timeline) StartTimes(target Target) []float64 {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	var out []float64
	for _, tw := range tl.tweens {
		if tw.target == target {
			out = append(out, tw.start)
		}
	}
	return out
}

func copyProps(p Props) Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
