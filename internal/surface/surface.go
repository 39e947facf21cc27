package surface

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/framecannon/internal/clips"
	"github.com/kikiluvv/framecannon/internal/layers"
)

// Callbacks are the proposals the surface sends to its host. OnRegenerate
// and OnSplitClip are optional; the related actions are disabled without
// them.
type Callbacks struct {
	OnTimeUpdate func(seconds float64)
	OnClipUpdate func(clipID int64, u clips.Update)
	OnPlay       func()
	OnPause      func()
	OnRegenerate func(clipID int64)
	OnSplitClip  func(clipID int64, splitTime float64)
}

// Config sizes the viewport and tunes auto-scroll.
type Config struct {
	Zoom          float64
	MinZoom       float64
	MaxZoom       float64
	ZoomStep      float64
	Duration      float64
	ViewportWidth float64
	// Fractions of the viewport width.
	ScrollEdge    float64
	ScrollLeadIn  float64
	ScrollLeadOut float64
	FPS           int
}

// DefaultConfig mirrors the stock editor settings.
func DefaultConfig() Config {
	return Config{
		Zoom:          1,
		MinZoom:       MinZoom,
		MaxZoom:       MaxZoom,
		ZoomStep:      ZoomStep,
		Duration:      60,
		ViewportWidth: 1200,
		ScrollEdge:    0.2,
		ScrollLeadIn:  0.3,
		ScrollLeadOut: 0.7,
		FPS:           60,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinZoom <= 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom <= c.MinZoom {
		c.MaxZoom = d.MaxZoom
	}
	if c.ZoomStep <= 1 {
		c.ZoomStep = d.ZoomStep
	}
	if c.Zoom <= 0 {
		c.Zoom = d.Zoom
	}
	if c.Duration <= 0 {
		c.Duration = d.Duration
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = d.ViewportWidth
	}
	if c.ScrollEdge <= 0 || c.ScrollEdge >= 0.5 {
		c.ScrollEdge = d.ScrollEdge
	}
	if c.ScrollLeadIn <= 0 || c.ScrollLeadIn >= 1 {
		c.ScrollLeadIn = d.ScrollLeadIn
	}
	if c.ScrollLeadOut <= 0 || c.ScrollLeadOut >= 1 {
		c.ScrollLeadOut = d.ScrollLeadOut
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	return c
}

// Surface is the interactive timeline. It never owns clip state: it reads
// snapshots pushed by the host and proposes changes through Callbacks.
type Surface struct {
	mu     sync.Mutex
	logger zerolog.Logger
	cfg    Config
	cb     Callbacks

	zoom     float64
	duration float64
	width    float64
	scroll   scrollAnim

	clips    []clips.Clip
	layers   []layers.Layer
	selected int64
	hasSel   bool
	active   *interaction

	current  float64
	playing  bool
	playhead *Playhead
}

// New creates a surface.
func New(logger zerolog.Logger, cfg Config, cb Callbacks) *Surface {
	cfg = cfg.withDefaults()
	s := &Surface{
		logger:   logger.With().Str("component", "surface").Logger(),
		cfg:      cfg,
		cb:       cb,
		duration: cfg.Duration,
		width:    cfg.ViewportWidth,
		playhead: NewPlayhead(cfg.FPS),
	}
	s.zoom = clampZoom(cfg.Zoom, cfg.MinZoom, cfg.MaxZoom)
	return s
}

// SetClips replaces the clip snapshot.
func (s *Surface) SetClips(snapshot []clips.Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips = append(s.clips[:0:0], snapshot...)
	if s.hasSel && s.clipIndex(s.selected) < 0 {
		s.hasSel = false
	}
}

// SetLayers replaces the layer snapshot, lowest z first.
func (s *Surface) SetLayers(snapshot []layers.Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = append(s.layers[:0:0], snapshot...)
}

// Clips returns the current snapshot.
func (s *Surface) Clips() []clips.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]clips.Clip(nil), s.clips...)
}

// Layers returns the current layer snapshot.
func (s *Surface) Layers() []layers.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]layers.Layer(nil), s.layers...)
}

// SetDuration sets the nominal timeline length in seconds.
func (s *Surface) SetDuration(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.duration = d
	}
	s.scroll.clamp(s.maxScroll())
}

// Duration returns the nominal timeline length.
func (s *Surface) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Select marks a clip as selected.
func (s *Surface) Select(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clipIndex(id) < 0 {
		return false
	}
	s.selected, s.hasSel = id, true
	return true
}

// ClearSelection drops the selection.
func (s *Surface) ClearSelection() {
	s.mu.Lock()
	s.hasSel = false
	s.mu.Unlock()
}

// Selected returns the selected clip id.
func (s *Surface) Selected() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSel
}

func (s *Surface) clipIndex(id int64) int {
	for i, c := range s.clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Surface) clip(id int64) (clips.Clip, bool) {
	if i := s.clipIndex(id); i >= 0 {
		return s.clips[i], true
	}
	return clips.Clip{}, false
}

// layerLocked treats unknown layers as locked.
func (s *Surface) layerLocked(id int64) bool {
	for _, l := range s.layers {
		if l.ID == id {
			return l.Locked || l.Isolated
		}
	}
	return true
}

// LayerLocked reports the lock state the surface gates edits with.
func (s *Surface) LayerLocked(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layerLocked(id)
}
