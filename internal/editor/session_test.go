package editor

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikiluvv/framecannon/internal/clips"
	"github.com/kikiluvv/framecannon/internal/config"
	"github.com/kikiluvv/framecannon/internal/ffmpeg"
	"github.com/kikiluvv/framecannon/internal/generate"
	"github.com/kikiluvv/framecannon/internal/layers"
	"github.com/kikiluvv/framecannon/internal/scenes"
	"github.com/kikiluvv/framecannon/internal/waveform"
)

type fakeDecoder struct {
	buf  *waveform.Buffer
	err  error
	opts ffmpeg.DecodeOptions
}

func (f *fakeDecoder) DecodeAudio(_ context.Context, _ string, opts ffmpeg.DecodeOptions) (*waveform.Buffer, error) {
	f.opts = opts
	return f.buf, f.err
}

type fakeGenerator struct {
	mu   sync.Mutex
	err  error
	reqs []generate.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req generate.Request) (clips.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return clips.Image{}, f.err
	}
	return clips.Image{Src: "gen.png", Prompt: req.Prompt}, nil
}

func (f *fakeGenerator) Close() error { return nil }

func tone(seconds float64) *waveform.Buffer {
	rate := 1000
	n := int(seconds * float64(rate))
	ch := make([]float32, n)
	for i := range ch {
		ch[i] = float32(i%10) / 10
	}
	return &waveform.Buffer{SampleRate: rate, Channels: [][]float32{ch}}
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := New(zerolog.Nop(), config.Default(), opts...)
	t.Cleanup(s.Close)
	return s
}

func image(start, dur float64) clips.Clip {
	return clips.Clip{
		Start:    start,
		Duration: dur,
		Layer:    layers.VideoLayerID,
		Visible:  true,
		Content:  clips.Image{Src: "a.png"},
	}
}

func openWith(t *testing.T, cs []clips.Clip, opts ...Option) *Session {
	t.Helper()
	p := NewProject("test", 60)
	p.Clips = cs
	s := Open(zerolog.Nop(), config.Default(), p, opts...)
	t.Cleanup(s.Close)
	return s
}

func onlyClip(t *testing.T, s *Session) clips.Clip {
	t.Helper()
	all := s.Clips()
	require.Len(t, all, 1)
	return all[0]
}

func TestApplyUpdateHonoursLayerLock(t *testing.T) {
	s := openWith(t, []clips.Clip{image(1, 2)})
	c := onlyClip(t, s)

	start := 4.0
	assert.True(t, s.ApplyUpdate(c.ID, clips.Update{Start: &start}))
	got, _ := s.Clip(c.ID)
	assert.Equal(t, 4.0, got.Start)

	require.True(t, s.Registry().ToggleLock(layers.VideoLayerID))
	start = 8
	assert.False(t, s.ApplyUpdate(c.ID, clips.Update{Start: &start}))
	got, _ = s.Clip(c.ID)
	assert.Equal(t, 4.0, got.Start)

	assert.False(t, s.ApplyUpdate(999, clips.Update{Start: &start}))
}

func TestSurfaceDragFlowsIntoStore(t *testing.T) {
	s := openWith(t, []clips.Clip{image(1, 2)})
	c := onlyClip(t, s)
	surf := s.Surface()

	// video lane spans y 100-180 at zoom 1
	require.True(t, surf.PointerDown(150, 120))
	surf.PointerMove(350)
	surf.PointerMove(450)
	assert.True(t, surf.PointerUp(450))

	got, _ := s.Clip(c.ID)
	assert.InDelta(t, 4.0, got.Start, 1e-9)
	assert.Equal(t, got.Start, surf.Clips()[0].Start)
}

func TestLayerLockReachesSurface(t *testing.T) {
	s := openWith(t, []clips.Clip{image(1, 2)})
	require.True(t, s.Registry().ToggleLock(layers.VideoLayerID))
	assert.True(t, s.Surface().LayerLocked(layers.VideoLayerID))
	assert.False(t, s.Surface().PointerDown(150, 120))
}

func TestSplitCreatesRemainder(t *testing.T) {
	c := image(0, 10)
	c.MaxDuration = 12
	c.Title = "shot"
	s := openWith(t, []clips.Clip{c})
	id := onlyClip(t, s).ID

	rest, err := s.Split(id, 4)
	require.NoError(t, err)

	head, _ := s.Clip(id)
	assert.Equal(t, 0.0, head.Start)
	assert.Equal(t, 4.0, head.Duration)
	assert.Equal(t, 12.0, head.MaxDuration)

	assert.NotEqual(t, id, rest.ID)
	assert.Equal(t, 4.0, rest.Start)
	assert.Equal(t, 6.0, rest.Duration)
	assert.Equal(t, 0.0, rest.MaxDuration)
	assert.Equal(t, "shot", rest.Title)
	assert.Equal(t, head.Layer, rest.Layer)
	assert.Equal(t, head.Content, rest.Content)
	assert.Len(t, s.Clips(), 2)

	_, err = s.Split(id, 3.8)
	assert.ErrorIs(t, err, ErrEditRejected)
	_, err = s.Split(12345, 1)
	assert.ErrorIs(t, err, ErrClipNotFound)
}

func TestSurfaceSplitAtPlayhead(t *testing.T) {
	s := openWith(t, []clips.Clip{image(0, 10)})
	id := onlyClip(t, s).ID

	s.Seek(4)
	require.True(t, s.Surface().SplitAtPlayhead())

	all := s.Clips()
	require.Len(t, all, 2)
	head, _ := s.Clip(id)
	assert.Equal(t, 4.0, head.Duration)
	for _, c := range all {
		if c.ID != id {
			assert.Equal(t, 4.0, c.Start)
			assert.Equal(t, 6.0, c.Duration)
		}
	}
}

func TestInsertPlaceholder(t *testing.T) {
	s := newTestSession(t)
	c, err := s.InsertPlaceholder("a lighthouse at dusk", 58)
	require.NoError(t, err)

	assert.Equal(t, layers.VideoLayerID, c.Layer)
	assert.True(t, c.Placeholder)
	assert.True(t, c.PendingGeneration)
	assert.Equal(t, 5.0, c.MaxDuration)
	assert.Equal(t, 5.0, c.Duration)
	assert.Equal(t, clips.Image{Prompt: "a lighthouse at dusk"}, c.Content)
	assert.Equal(t, 63.0, s.Duration())
	assert.Equal(t, 63.0, s.Surface().Duration())
}

func TestRegenerateReplacesPlaceholder(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, WithGenerator(gen))
	c, err := s.InsertPlaceholder("neon city", 0)
	require.NoError(t, err)

	require.True(t, s.Surface().Regenerate(c.ID))
	s.Wait()

	got, _ := s.Clip(c.ID)
	assert.False(t, got.Placeholder)
	assert.False(t, got.PendingGeneration)
	assert.Equal(t, clips.Image{Src: "gen.png", Prompt: "neon city"}, got.Content)
	require.Len(t, gen.reqs, 1)
	assert.Equal(t, "neon city", gen.reqs[0].Prompt)

	assert.ErrorIs(t, s.Regenerate(c.ID), ErrEditRejected)
}

func TestRegenerateFailureKeepsPlaceholder(t *testing.T) {
	s := newTestSession(t, WithGenerator(&fakeGenerator{err: errors.New("offline")}))
	c, _ := s.InsertPlaceholder("x", 0)
	require.NoError(t, s.Regenerate(c.ID))
	s.Wait()

	got, _ := s.Clip(c.ID)
	assert.True(t, got.Placeholder)
}

func TestRegenerateRequiresGeneratorAndUnlockedLayer(t *testing.T) {
	s := newTestSession(t)
	c, _ := s.InsertPlaceholder("x", 0)
	assert.ErrorIs(t, s.Regenerate(c.ID), ErrNoGenerator)
	assert.False(t, s.Surface().CanRegenerate(c.ID))

	g := newTestSession(t, WithGenerator(&fakeGenerator{}))
	c, _ = g.InsertPlaceholder("x", 0)
	require.True(t, g.Registry().ToggleLock(layers.VideoLayerID))
	assert.ErrorIs(t, g.Regenerate(c.ID), ErrEditRejected)
	assert.False(t, g.Surface().Regenerate(c.ID))
}

func TestGeneratePending(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, WithGenerator(gen))
	for _, at := range []float64{0, 10, 20} {
		_, err := s.InsertPlaceholder("scene", at)
		require.NoError(t, err)
	}

	n, err := s.GeneratePending(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, gen.reqs, 3)
	for _, c := range s.Clips() {
		assert.False(t, c.Placeholder)
		assert.Equal(t, "gen.png", c.Content.(clips.Image).Src)
	}

	n, err = s.GeneratePending(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGeneratePendingSkipsLockedLayer(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(t, WithGenerator(gen))
	_, err := s.InsertPlaceholder("scene", 0)
	require.NoError(t, err)
	require.True(t, s.Registry().ToggleLock(layers.VideoLayerID))

	n, err := s.GeneratePending(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, gen.reqs)
}

func TestGeneratePendingErrors(t *testing.T) {
	_, err := newTestSession(t).GeneratePending(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoGenerator)

	s := newTestSession(t, WithGenerator(&fakeGenerator{err: errors.New("offline")}))
	c, _ := s.InsertPlaceholder("x", 0)
	_, err = s.GeneratePending(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")

	got, _ := s.Clip(c.ID)
	assert.True(t, got.Placeholder)
}

func TestImportAudio(t *testing.T) {
	dec := &fakeDecoder{buf: tone(90)}
	s := newTestSession(t, WithDecoder(dec))

	c, err := s.ImportAudio(context.Background(), "/music/track.mp3")
	require.NoError(t, err)
	assert.Equal(t, layers.AudioLayerID, c.Layer)
	assert.True(t, c.Isolated)
	assert.True(t, c.Locked)
	assert.Equal(t, "track.mp3", c.Title)
	assert.InDelta(t, 90.0, c.Duration, 1e-9)
	assert.InDelta(t, 90.0, s.Duration(), 1e-9)
	assert.Len(t, s.Peaks(), 2000)
	assert.Equal(t, 44100, dec.opts.SampleRate)

	start := 5.0
	assert.False(t, s.ApplyUpdate(c.ID, clips.Update{Start: &start}))
	assert.False(t, s.RemoveClip(c.ID))
	assert.False(t, s.SetClipLocked(c.ID, false))

	// a second import replaces the track
	dec.buf = tone(10)
	_, err = s.ImportAudio(context.Background(), "/music/b.wav")
	require.NoError(t, err)
	var audio int
	for _, x := range s.Clips() {
		if x.Layer == layers.AudioLayerID {
			audio++
		}
	}
	assert.Equal(t, 1, audio)
}

func TestImportAudioDeclinesEmptyBuffer(t *testing.T) {
	dec := &fakeDecoder{buf: tone(10)}
	s := newTestSession(t, WithDecoder(dec))
	_, err := s.ImportAudio(context.Background(), "a.wav")
	require.NoError(t, err)

	dec.buf = &waveform.Buffer{SampleRate: 1000, Channels: [][]float32{{}}}
	_, err = s.ImportAudio(context.Background(), "b.wav")
	assert.ErrorIs(t, err, waveform.ErrEmptyBuffer)
	assert.Equal(t, "a.wav", s.Clips()[0].Content.(clips.Audio).Src)

	_, err = newTestSession(t).ImportAudio(context.Background(), "a.wav")
	assert.ErrorIs(t, err, ErrNoDecoder)
}

func TestPlaybackClock(t *testing.T) {
	s := openWith(t, []clips.Clip{image(0, 2)})
	p := s.Project()
	require.Equal(t, 60.0, p.Duration)

	s.Play()
	assert.True(t, s.Surface().Playing())
	s.Tick(1.5)
	assert.InDelta(t, 1.5, s.CurrentTime(), 1e-9)
	assert.InDelta(t, 1.5, s.Surface().CurrentTime(), 1e-9)

	s.Pause()
	s.Tick(1)
	assert.InDelta(t, 1.5, s.CurrentTime(), 1e-9)
	assert.Equal(t, 1.5, s.Surface().PlayheadPosition())

	s.Seek(59.5)
	s.Play()
	s.Tick(2)
	assert.Equal(t, 60.0, s.CurrentTime())
	assert.False(t, s.Playing())
	assert.False(t, s.Surface().Playing())

	s.Play()
	assert.Equal(t, 0.0, s.CurrentTime())
	assert.Equal(t, 0.0, s.Surface().CurrentTime())
	assert.Equal(t, 0.0, s.Surface().PlayheadPosition())
	assert.True(t, s.Surface().Playing())

	s.Seek(-3)
	assert.Equal(t, 0.0, s.CurrentTime())
}

func TestSurfaceClickSeeksSession(t *testing.T) {
	s := newTestSession(t)
	require.True(t, s.Surface().Click(250))
	assert.InDelta(t, 2.5, s.CurrentTime(), 1e-9)
	assert.InDelta(t, 2.5, s.Surface().PlayheadPosition(), 1e-9)
}

func TestOnChangeFires(t *testing.T) {
	var n atomic.Int32
	s := newTestSession(t, OnChange(func() { n.Add(1) }))
	_, err := s.InsertPlaceholder("x", 0)
	require.NoError(t, err)
	s.Registry().ToggleVisibility(layers.TextLayerID)
	assert.GreaterOrEqual(t, n.Load(), int32(2))
}

func TestSaveAndReopen(t *testing.T) {
	s := newTestSession(t, WithDecoder(&fakeDecoder{buf: tone(3)}))
	_, err := s.InsertPlaceholder("castle", 1)
	require.NoError(t, err)
	_, err = s.ImportAudio(context.Background(), "song.wav")
	require.NoError(t, err)
	s.Registry().AddLayer(layers.KindText, "Captions", nil)

	path := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, s.Save(path))

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, s.Name(), p.Name)
	assert.Len(t, p.Layers, 5)
	assert.Len(t, p.Clips, 2)

	re := Open(zerolog.Nop(), config.Default(), p)
	defer re.Close()
	assert.ElementsMatch(t, s.Clips(), re.Clips())
}

func TestLoadProjectRejectsUnknownLayer(t *testing.T) {
	p := NewProject("bad", 10)
	c := image(0, 2)
	c.ID = 1
	c.Layer = 77
	p.Clips = []clips.Clip{c}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, SaveProject(p, path))
	_, err := LoadProject(path)
	assert.ErrorIs(t, err, clips.ErrInvalidClip)
}

func TestScenesFromClips(t *testing.T) {
	a := image(0, 3)
	a.ID = 1
	b := image(3, 2)
	b.ID = 2
	b.Content = clips.Image{Src: "b.png"}
	ph := image(5, 2)
	ph.ID = 3
	ph.Placeholder = true
	ph.Content = clips.Image{Prompt: "pending"}
	tr := clips.Clip{ID: 4, Start: 2.5, Duration: 1, Layer: layers.EffectsLayerID, Visible: true,
		Content: clips.Transition{Kind: clips.TransitionCrossfade, Duration: 1}}
	fx := clips.Clip{ID: 5, Start: 0, Duration: 1, Layer: layers.EffectsLayerID, Visible: true,
		Content: clips.Effect{Kind: clips.EffectBlur, Intensity: 0.4}}

	out := ScenesFromClips([]clips.Clip{b, ph, tr, a, fx})
	require.Len(t, out, 2)
	assert.Equal(t, "a.png", out[0].Image)
	assert.Equal(t, 3.0, out[0].Duration)
	require.NotNil(t, out[0].Effects)
	assert.InDelta(t, 4.0, out[0].Effects.Blur, 1e-9)
	assert.Nil(t, out[0].Transition)

	assert.Equal(t, "b.png", out[1].Image)
	require.NotNil(t, out[1].Transition)
	assert.Equal(t, scenes.TransitionCrossfade, out[1].Transition.Type)
	assert.NoError(t, scenes.ValidateAll(out))
}

func TestScrubAudio(t *testing.T) {
	s := newTestSession(t, WithDecoder(&fakeDecoder{buf: tone(20)}))
	assert.False(t, s.ScrubAudio(3))

	_, err := s.ImportAudio(context.Background(), "a.wav")
	require.NoError(t, err)
	require.True(t, s.ScrubAudio(3))
	assert.Equal(t, 3.0, s.CurrentTime())
	assert.Equal(t, 3.0, s.Surface().PlayheadPosition())
}
