package compositor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/framecannon/internal/scenes"
	"github.com/kikiluvv/framecannon/internal/stage"
	"github.com/kikiluvv/framecannon/internal/tween"
)

var (
	ErrNoScenes            = errors.New("no scenes to composite")
	ErrNotMounted          = errors.New("container is not mounted")
	ErrTimelineUnavailable = errors.New("animation timeline unavailable")
)

// State is the playback lifecycle.
type State int

const (
	StateIdle State = iota
	StatePaused
	StatePlaying
	StateComplete
)

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	case StateComplete:
		return "complete"
	default:
		return "idle"
	}
}

// Callbacks are pushed to the host. Any may be nil.
type Callbacks struct {
	OnUpdate      func(progress float64)
	OnSceneChange func(index int)
	OnComplete    func()
}

// Option customizes a Compositor.
type Option func(*Compositor)

// WithDefaults overrides the transition and camera defaults.
func WithDefaults(d scenes.Defaults) Option {
	return func(c *Compositor) { c.defaults = d }
}

// WithTimelineFactory replaces how the underlying timeline is constructed.
func WithTimelineFactory(fn func() (*tween.Timeline, error)) Option {
	return func(c *Compositor) { c.newTimeline = fn }
}

// Compositor turns an ordered scene list into one animated sequence mounted
// in a container. One instance serves one preview surface; Build may be
// called again after Destroy or to replace the current sequence.
type Compositor struct {
	mu          sync.Mutex
	logger      zerolog.Logger
	container   stage.Container
	callbacks   Callbacks
	defaults    scenes.Defaults
	newTimeline func() (*tween.Timeline, error)

	tl       *tween.Timeline
	elements []*stage.Element
	plan     *Plan
	session  string
}

// New creates an idle compositor for container.
func New(logger zerolog.Logger, container stage.Container, cb Callbacks, opts ...Option) *Compositor {
	c := &Compositor{
		logger:      logger.With().Str("component", "compositor").Logger(),
		container:   container,
		callbacks:   cb,
		defaults:    scenes.StandardDefaults(),
		newTimeline: func() (*tween.Timeline, error) { return tween.New(), nil },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build creates elements and schedules every tween for list. On failure the
// previous sequence, if any, is left as it was.
func (c *Compositor) Build(list []scenes.Scene) error {
	if len(list) == 0 {
		c.logger.Warn().Msg("build declined: no scenes")
		return ErrNoScenes
	}
	if c.container == nil || !c.container.Mounted() {
		c.logger.Warn().Msg("build declined: container not mounted")
		return ErrNotMounted
	}
	if err := scenes.ValidateAll(list); err != nil {
		c.logger.Warn().Err(err).Msg("build declined: invalid scene")
		return err
	}
	if err := c.defaults.Validate(); err != nil {
		c.logger.Warn().Err(err).Msg("build declined: invalid defaults")
		return err
	}

	tl, err := c.newTimeline()
	if err != nil || tl == nil {
		if err == nil {
			err = errors.New("factory returned nil")
		}
		c.logger.Error().Err(err).Msg("timeline construction failed")
		return fmt.Errorf("%w: %v", ErrTimelineUnavailable, err)
	}

	c.Destroy()

	resolved := make([]scenes.Scene, len(list))
	for i, s := range list {
		resolved[i] = s.Resolved(c.defaults)
	}
	plan := NewPlan(resolved)

	elements := make([]*stage.Element, len(resolved))
	for i, s := range resolved {
		elements[i] = stage.NewElement(s.Image, filterFor(s.Effects))
		c.container.Append(elements[i])
	}

	cb := c.callbacks
	for i, s := range resolved {
		schedule(tl, elements[i], s, plan.Scenes[i])
		if next := i + 1; next < len(resolved) {
			scheduleExit(tl, elements[i], *resolved[next].Transition, plan.Scenes[i])
		}
		index := i
		tl.Call(func() {
			if cb.OnSceneChange != nil {
				cb.OnSceneChange(index)
			}
		}, tween.At(plan.Scenes[i].HoldStart))
	}
	// keeps the final hold on the clock
	tl.Call(func() {}, tween.At(plan.Total))
	if cb.OnUpdate != nil {
		tl.OnUpdate(cb.OnUpdate)
	}
	tl.OnComplete(func() {
		c.logger.Debug().Msg("playback complete")
		if cb.OnComplete != nil {
			cb.OnComplete()
		}
	})
	tl.Seek(0)

	c.mu.Lock()
	c.tl = tl
	c.elements = elements
	c.plan = plan
	c.session = uuid.NewString()
	session := c.session
	c.mu.Unlock()

	c.logger.Info().
		Str("session", session).
		Int("scenes", len(resolved)).
		Float64("duration", tl.Duration()).
		Msg("timeline built")
	return nil
}

func (c *Compositor) timeline() (*tween.Timeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tl == nil {
		return nil, ErrTimelineUnavailable
	}
	return c.tl, nil
}

// Play starts or resumes playback. Playing a completed sequence restarts it.
func (c *Compositor) Play() error {
	tl, err := c.timeline()
	if err != nil {
		return err
	}
	if tl.Complete() {
		tl.Restart()
		return nil
	}
	tl.Play()
	return nil
}

// Pause stops playback at the current time.
func (c *Compositor) Pause() error {
	tl, err := c.timeline()
	if err != nil {
		return err
	}
	tl.Pause()
	return nil
}

// Restart replays from time zero and resumes playing.
func (c *Compositor) Restart() error {
	tl, err := c.timeline()
	if err != nil {
		return err
	}
	tl.Restart()
	return nil
}

// Seek jumps to a progress fraction in [0,1].
func (c *Compositor) Seek(progress float64) error {
	tl, err := c.timeline()
	if err != nil {
		return err
	}
	tl.SeekProgress(progress)
	return nil
}

// SeekTime jumps to a time in seconds.
func (c *Compositor) SeekTime(seconds float64) error {
	tl, err := c.timeline()
	if err != nil {
		return err
	}
	tl.Seek(seconds)
	return nil
}

// Tick advances playback by dt seconds.
func (c *Compositor) Tick(dt float64) {
	if tl, err := c.timeline(); err == nil {
		tl.Tick(dt)
	}
}

// Run drives playback from a frame loop until ctx ends or Destroy is called.
func (c *Compositor) Run(ctx context.Context, fps int, onFrame func()) error {
	tl, err := c.timeline()
	if err != nil {
		return err
	}
	var frame func(*tween.Timeline)
	if onFrame != nil {
		frame = func(*tween.Timeline) { onFrame() }
	}
	return tween.Run(ctx, tl, fps, frame)
}

// State reports the lifecycle state.
func (c *Compositor) State() State {
	tl, err := c.timeline()
	if err != nil {
		return StateIdle
	}
	switch {
	case tl.Complete():
		return StateComplete
	case tl.Playing():
		return StatePlaying
	default:
		return StatePaused
	}
}

// CurrentTime returns the playhead in seconds.
func (c *Compositor) CurrentTime() float64 {
	if tl, err := c.timeline(); err == nil {
		return tl.Time()
	}
	return 0
}

// Progress returns the playhead as a fraction of the total duration.
func (c *Compositor) Progress() float64 {
	if tl, err := c.timeline(); err == nil {
		return tl.Progress()
	}
	return 0
}

// TotalDuration returns the duration computed at build time.
func (c *Compositor) TotalDuration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plan == nil {
		return 0
	}
	return c.plan.Total
}

// CurrentScene returns the index of the scene whose hold has most recently
// begun, or -1 when idle.
func (c *Compositor) CurrentScene() int {
	c.mu.Lock()
	plan, tl := c.plan, c.tl
	c.mu.Unlock()
	if plan == nil || tl == nil {
		return -1
	}
	return plan.SceneAt(tl.Time())
}

// SceneStarts returns the hold start time of each scene.
func (c *Compositor) SceneStarts() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plan == nil {
		return nil
	}
	out := make([]float64, len(c.plan.Scenes))
	for i, s := range c.plan.Scenes {
		out[i] = s.HoldStart
	}
	return out
}

// Plan returns the computed schedule, or nil when idle.
func (c *Compositor) Plan() *Plan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plan
}

// Elements returns the mounted elements in scene order.
func (c *Compositor) Elements() []*stage.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*stage.Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// Session returns the id of the current build, or "" when idle.
func (c *Compositor) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Destroy kills the timeline and removes every created element. Safe to call
// in any state, any number of times.
func (c *Compositor) Destroy() {
	c.mu.Lock()
	tl := c.tl
	elements := c.elements
	session := c.session
	c.tl = nil
	c.elements = nil
	c.plan = nil
	c.session = ""
	c.mu.Unlock()

	if tl == nil && len(elements) == 0 {
		return
	}
	if tl != nil {
		tl.Kill()
	}
	for _, e := range elements {
		c.container.Remove(e)
	}
	c.logger.Debug().Str("session", session).Int("elements", len(elements)).Msg("timeline destroyed")
}

func filterFor(fx *scenes.Effects) string {
	if fx == nil {
		return ""
	}
	return stage.NewFilterBuilder().
		Blur(fx.Blur).
		Brightness(fx.Brightness).
		Opacity(fx.Opacity).
		DropShadow(fx.Shadow).
		Build()
}
