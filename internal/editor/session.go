package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kikiluvv/framecannon/internal/clips"
	"github.com/kikiluvv/framecannon/internal/config"
	"github.com/kikiluvv/framecannon/internal/ffmpeg"
	"github.com/kikiluvv/framecannon/internal/generate"
	"github.com/kikiluvv/framecannon/internal/layers"
	"github.com/kikiluvv/framecannon/internal/surface"
	"github.com/kikiluvv/framecannon/internal/waveform"
)

var (
	ErrClipNotFound      = errors.New("clip not found")
	ErrEditRejected      = errors.New("edit rejected")
	ErrNoPlaceholderHost = errors.New("no layer accepts placeholders")
	ErrNoGenerator       = errors.New("no generator configured")
	ErrNoDecoder         = errors.New("no audio decoder configured")
)

// AudioDecoder turns a media file into samples. *ffmpeg.Executor satisfies it.
type AudioDecoder interface {
	DecodeAudio(ctx context.Context, input string, opts ffmpeg.DecodeOptions) (*waveform.Buffer, error)
}

// Option customizes a Session.
type Option func(*Session)

// WithGenerator enables placeholder regeneration.
func WithGenerator(g generate.Generator) Option {
	return func(s *Session) { s.generator = g }
}

// WithDecoder enables audio import.
func WithDecoder(d AudioDecoder) Option {
	return func(s *Session) { s.decoder = d }
}

// OnChange registers a hook fired after any state change. It may be called
// from a generation goroutine.
func OnChange(fn func()) Option {
	return func(s *Session) { s.onChange = fn }
}

// Session is the host that owns clip and layer state for one editing
// session. The timeline surface only proposes changes; the session decides.
type Session struct {
	mu       sync.Mutex
	base     zerolog.Logger
	logger   zerolog.Logger
	cfg      *config.Config
	id       string
	name     string
	created  time.Time
	metadata map[string]string

	registry *layers.Registry
	store    *clips.Store
	surface  *surface.Surface

	generator generate.Generator
	decoder   AudioDecoder
	onChange  func()

	duration float64
	current  float64
	playing  bool
	audio    *waveform.Buffer
	strip    *peakStrip

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
}

// New starts a session on an empty project.
func New(logger zerolog.Logger, cfg *config.Config, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	return Open(logger, cfg, NewProject("", cfg.Editor.DefaultDuration), opts...)
}

// Open starts a session on p.
func Open(logger zerolog.Logger, cfg *config.Config, p *Project, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		base:     logger,
		logger:   logger.With().Str("component", "editor").Logger(),
		cfg:      cfg,
		id:       uuid.NewString(),
		name:     p.Name,
		created:  p.CreatedAt,
		metadata: p.Metadata,
		registry: layers.NewFrom(logger, p.Layers),
		store:    clips.NewStore(),
		duration: p.Duration,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.duration <= 0 {
		s.duration = cfg.Editor.DefaultDuration
	}
	for _, c := range p.Clips {
		s.store.Add(c)
	}
	s.duration = math.Max(s.duration, s.store.End())

	cb := surface.Callbacks{
		OnTimeUpdate: s.Seek,
		OnClipUpdate: func(id int64, u clips.Update) { s.ApplyUpdate(id, u) },
		OnPlay:       s.Play,
		OnPause:      s.Pause,
		OnSplitClip:  s.onSplitSignal,
	}
	if s.generator != nil {
		cb.OnRegenerate = func(id int64) {
			if err := s.Regenerate(id); err != nil {
				s.logger.Warn().Err(err).Int64("clip", id).Msg("regenerate failed")
			}
		}
	}
	s.surface = surface.New(logger, surface.Config{
		Zoom:          cfg.Editor.DefaultZoom,
		MinZoom:       cfg.Editor.MinZoom,
		MaxZoom:       cfg.Editor.MaxZoom,
		ZoomStep:      cfg.Editor.ZoomStep,
		Duration:      s.duration,
		ViewportWidth: cfg.Editor.ViewportWidth,
		ScrollEdge:    cfg.Editor.ScrollEdge,
		ScrollLeadIn:  cfg.Editor.ScrollLeadIn,
		ScrollLeadOut: cfg.Editor.ScrollLeadOut,
		FPS:           cfg.Playback.FPS,
	}, cb)
	s.surface.SetLayers(s.registry.Layers())
	s.surface.SetClips(s.store.All())
	s.unsubscribe = s.registry.Subscribe(func(ls []layers.Layer) {
		s.surface.SetLayers(ls)
		s.changed()
	})

	s.logger.Info().
		Str("session", s.id).
		Str("project", s.name).
		Int("clips", len(p.Clips)).
		Msg("session opened")
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Name returns the project name.
func (s *Session) Name() string { return s.name }

// Surface returns the interactive timeline bound to this session.
func (s *Session) Surface() *surface.Surface { return s.surface }

// Registry returns the layer registry. Layer changes propagate to the
// surface automatically.
func (s *Session) Registry() *layers.Registry { return s.registry }

// RegenerateAvailable reports whether a generator is configured.
func (s *Session) RegenerateAvailable() bool { return s.generator != nil }

// Clips returns a snapshot of every clip.
func (s *Session) Clips() []clips.Clip { return s.store.All() }

// Clip looks up one clip.
func (s *Session) Clip(id int64) (clips.Clip, bool) { return s.store.Get(id) }

// Duration returns the timeline length in seconds.
func (s *Session) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Peaks returns the imported audio envelope, if any.
func (s *Session) Peaks() []waveform.Peak {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.strip == nil {
		return nil
	}
	return s.strip.peaks
}

// ScrubAudio seeks from a position picked on the audio waveform.
func (s *Session) ScrubAudio(t float64) bool {
	s.mu.Lock()
	strip := s.strip
	s.mu.Unlock()
	if strip == nil {
		return false
	}
	strip.scrub(t)
	return true
}

// Audio returns the imported audio buffer, if any.
func (s *Session) Audio() *waveform.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio
}

// ApplyUpdate writes a proposed change if both lock gates pass.
func (s *Session) ApplyUpdate(id int64, u clips.Update) bool {
	c, ok := s.store.Get(id)
	if !ok {
		s.logger.Debug().Int64("clip", id).Msg("update for unknown clip")
		return false
	}
	if s.registry.IsLocked(c.Layer) {
		s.logger.Debug().Int64("clip", id).Int64("layer", c.Layer).Msg("update rejected: layer locked")
		return false
	}
	updated, ok := s.store.Apply(id, u)
	if !ok {
		s.logger.Debug().Int64("clip", id).Msg("update rejected")
		return false
	}
	s.extendTo(updated.End())
	s.sync()
	return true
}

// Split cuts a clip at t and returns the new remainder clip.
func (s *Session) Split(id int64, t float64) (clips.Clip, error) {
	c, ok := s.store.Get(id)
	if !ok {
		return clips.Clip{}, fmt.Errorf("%w: %d", ErrClipNotFound, id)
	}
	u, req, ok := clips.Split(c, t, s.registry.IsLocked(c.Layer))
	if !ok {
		return clips.Clip{}, fmt.Errorf("%w: cannot split clip %d at %.2fs", ErrEditRejected, id, t)
	}
	rest := s.addRemainder(c, req)
	s.store.Apply(id, u)
	s.sync()
	return rest, nil
}

// onSplitSignal fulfils the surface's split request. The truncation follows
// as a separate clip update.
func (s *Session) onSplitSignal(id int64, t float64) {
	c, ok := s.store.Get(id)
	if !ok {
		return
	}
	_, req, ok := clips.Split(c, t, s.registry.IsLocked(c.Layer))
	if !ok {
		return
	}
	s.addRemainder(c, req)
	s.sync()
}

// addRemainder stores the clip covering [split, end). It copies content and
// layer but not the parent's duration ceiling.
func (s *Session) addRemainder(parent clips.Clip, req clips.SplitRequest) clips.Clip {
	rest := parent
	rest.ID = 0
	rest.Start = req.Start
	rest.Duration = req.Duration
	rest.MaxDuration = 0
	rest = s.store.Add(rest)
	s.logger.Debug().
		Int64("parent", parent.ID).
		Int64("clip", rest.ID).
		Float64("at", req.SplitTime).
		Msg("clip split")
	return rest
}

// InsertPlaceholder adds an AI placeholder image at the given time on the
// placeholder host layer.
func (s *Session) InsertPlaceholder(prompt string, at float64) (clips.Clip, error) {
	host, ok := s.registry.PlaceholderHost()
	if !ok {
		return clips.Clip{}, ErrNoPlaceholderHost
	}
	ceiling := s.cfg.Generation.MaxClipDuration
	span := s.cfg.Generation.PlaceholderSpan
	if span <= 0 {
		span = ceiling
	}
	c := s.store.Add(clips.Clip{
		Start:             math.Max(0, at),
		Duration:          span,
		Layer:             host.ID,
		Visible:           true,
		Title:             "AI image",
		Description:       prompt,
		Placeholder:       true,
		PendingGeneration: true,
		MaxDuration:       ceiling,
		Content:           clips.Image{Prompt: prompt},
	})
	s.logger.Info().Int64("clip", c.ID).Float64("at", c.Start).Msg("placeholder inserted")
	s.extendTo(c.End())
	s.sync()
	return c, nil
}

// Regenerate requests new media for a placeholder. Generation runs in the
// background; the clip is replaced when it finishes.
func (s *Session) Regenerate(id int64) error {
	if err := s.checkRegenerate(id); err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.generate(s.ctx, id); err != nil {
			s.logger.Error().Err(err).Int64("clip", id).Msg("generation failed")
		}
	}()
	return nil
}

// GeneratePending regenerates every placeholder that may be regenerated,
// running at most workers generations at once (the configured worker count
// when workers is zero), and waits for them. It returns how many were
// attempted; the first failure cancels the rest.
func (s *Session) GeneratePending(ctx context.Context, workers int) (int, error) {
	if s.generator == nil {
		return 0, ErrNoGenerator
	}
	var ids []int64
	for _, c := range s.store.All() {
		if clips.CanRegenerate(c, s.registry.IsLocked(c.Layer)) {
			ids = append(ids, c.ID)
		}
	}

	if workers <= 0 {
		workers = s.cfg.Generation.Workers
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, id := range ids {
		g.Go(func() error {
			if err := s.generate(gctx, id); err != nil {
				return fmt.Errorf("clip %d: %w", id, err)
			}
			return nil
		})
	}
	err := g.Wait()
	s.logger.Info().Int("placeholders", len(ids)).Err(err).Msg("batch generation finished")
	return len(ids), err
}

func (s *Session) checkRegenerate(id int64) error {
	c, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrClipNotFound, id)
	}
	if s.generator == nil {
		return ErrNoGenerator
	}
	if !clips.CanRegenerate(c, s.registry.IsLocked(c.Layer)) {
		return fmt.Errorf("%w: clip %d cannot be regenerated", ErrEditRejected, id)
	}
	return nil
}

// generate runs one generation and swaps the result into the placeholder.
func (s *Session) generate(ctx context.Context, id int64) error {
	c, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrClipNotFound, id)
	}
	s.store.MarkPending(id)
	s.sync()

	prompt := c.Description
	if img, ok := c.Content.(clips.Image); ok && img.Prompt != "" {
		prompt = img.Prompt
	}
	img, err := s.generator.Generate(ctx, generate.Request{
		ClipID: id,
		Prompt: prompt,
		Width:  s.cfg.Generation.Width,
		Height: s.cfg.Generation.Height,
	})
	if err != nil {
		return err
	}
	if _, ok := s.store.ReplaceWithGenerated(id, img); !ok {
		s.logger.Warn().Int64("clip", id).Msg("generated clip no longer exists")
		return nil
	}
	s.logger.Info().Int64("clip", id).Str("src", img.Src).Msg("placeholder generated")
	s.sync()
	return nil
}

// Wait blocks until in-flight generations finish.
func (s *Session) Wait() {
	s.wg.Wait()
}

// ImportAudio decodes path and installs it as the isolated audio track.
func (s *Session) ImportAudio(ctx context.Context, path string) (clips.Clip, error) {
	if s.decoder == nil {
		return clips.Clip{}, ErrNoDecoder
	}
	buf, err := s.decoder.DecodeAudio(ctx, path, ffmpeg.DecodeOptions{
		SampleRate: s.cfg.Waveform.DecodeRate,
		Channels:   s.cfg.Waveform.DecodeChannels,
		Limit:      float64(s.cfg.FFmpeg.DecodeLimit),
	})
	if err != nil {
		return clips.Clip{}, fmt.Errorf("import audio: %w", err)
	}
	return s.SetAudio(path, buf)
}

// SetAudio installs an already decoded buffer as the isolated audio track.
// An empty buffer is declined and the previous track stays.
func (s *Session) SetAudio(src string, buf *waveform.Buffer) (clips.Clip, error) {
	if buf == nil {
		return clips.Clip{}, waveform.ErrEmptyBuffer
	}
	strip := &peakStrip{}
	binding, err := waveform.Attach(s.base, strip, *buf, s.cfg.Waveform.Buckets, s.Seek)
	if err != nil {
		s.logger.Warn().Err(err).Str("src", src).Msg("audio declined")
		return clips.Clip{}, err
	}
	c := s.store.ReplaceIsolated(layers.AudioLayerID, clips.Clip{
		Duration: buf.Duration(),
		Visible:  true,
		Title:    filepath.Base(src),
		Content:  clips.Audio{Src: src, SampleRate: buf.SampleRate},
	})

	s.mu.Lock()
	s.audio = buf
	s.strip = strip
	s.mu.Unlock()

	s.logger.Info().
		Str("src", src).
		Str("source", binding.Source()).
		Float64("seconds", buf.Duration()).
		Int("peaks", len(strip.peaks)).
		Msg("audio imported")
	s.extendTo(c.End())
	s.sync()
	return c, nil
}

// RemoveClip deletes a clip when its layer is unlocked. Isolated clips stay.
func (s *Session) RemoveClip(id int64) bool {
	c, ok := s.store.Get(id)
	if !ok || s.registry.IsLocked(c.Layer) {
		return false
	}
	if !s.store.Remove(id) {
		return false
	}
	s.sync()
	return true
}

// SetClipLocked changes a clip's own lock.
func (s *Session) SetClipLocked(id int64, locked bool) bool {
	if !s.store.SetLocked(id, locked) {
		return false
	}
	s.sync()
	return true
}

// Seek moves the playhead, clamped to the timeline.
func (s *Session) Seek(t float64) {
	s.mu.Lock()
	t = math.Max(0, math.Min(t, s.duration))
	s.current = t
	s.mu.Unlock()
	s.surface.SetCurrentTime(t)
}

// CurrentTime returns the playhead in seconds.
func (s *Session) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Play starts the session clock. Playing at the end restarts from zero.
func (s *Session) Play() {
	s.mu.Lock()
	restart := s.current >= s.duration
	if restart {
		s.current = 0
	}
	s.playing = true
	s.mu.Unlock()
	if restart {
		// snap rather than spring back from the end
		s.surface.SetPlaying(false)
		s.surface.SetCurrentTime(0)
	}
	s.surface.SetPlaying(true)
	s.logger.Debug().Bool("restart", restart).Msg("playing")
}

// Pause stops the session clock.
func (s *Session) Pause() {
	s.mu.Lock()
	s.playing = false
	t := s.current
	s.mu.Unlock()
	s.surface.SetPlaying(false)
	s.surface.SetCurrentTime(t)
	s.logger.Debug().Float64("at", t).Msg("paused")
}

// Playing reports whether the clock is running.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Tick advances the clock by dt seconds and animates the surface.
func (s *Session) Tick(dt float64) {
	s.mu.Lock()
	playing := s.playing
	ended := false
	if playing {
		s.current += dt
		if s.current >= s.duration {
			s.current = s.duration
			s.playing = false
			ended = true
		}
	}
	t := s.current
	s.mu.Unlock()

	if playing {
		s.surface.SetCurrentTime(t)
	}
	if ended {
		s.surface.SetPlaying(false)
		s.surface.SetCurrentTime(t)
		s.changed()
	}
	s.surface.Tick(dt)
}

// Project captures the session as a persistable project.
func (s *Session) Project() *Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Project{
		Version:   ProjectVersion,
		Name:      s.name,
		Duration:  s.duration,
		Layers:    s.registry.Layers(),
		Clips:     s.store.All(),
		Metadata:  s.metadata,
		CreatedAt: s.created,
		UpdatedAt: time.Now().UTC(),
	}
}

// Save writes the session's project to path.
func (s *Session) Save(path string) error {
	if err := SaveProject(s.Project(), path); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	s.logger.Info().Str("path", path).Msg("project saved")
	return nil
}

// Close cancels in-flight generations and detaches observers. Safe to call
// more than once.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (s *Session) extendTo(end float64) {
	s.mu.Lock()
	grew := end > s.duration
	if grew {
		s.duration = end
	}
	d := s.duration
	s.mu.Unlock()
	if grew {
		s.surface.SetDuration(d)
	}
}

func (s *Session) sync() {
	s.surface.SetClips(s.store.All())
	s.changed()
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
