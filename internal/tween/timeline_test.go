package tween

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type box struct {
	mu    sync.Mutex
	props map[string]float64
}

func newBox(init Props) *box {
	b := &box{props: map[string]float64{}}
	for k, v := range init {
		b.props[k] = v
	}
	return b
}

func (b *box) Prop(name string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props[name]
}

func (b *box) SetProp(name string, v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.props[name] = v
}

func TestFromToInterpolates(t *testing.T) {
	b := newBox(Props{"opacity": 0})
	tl := New().FromTo(b, Props{"opacity": 0}, Props{"opacity": 1}, 2, Linear, At(1))

	assert.Equal(t, 3.0, tl.Duration())

	tl.Seek(0.5)
	assert.Equal(t, 0.0, b.Prop("opacity"))
	tl.Seek(2)
	assert.InDelta(t, 0.5, b.Prop("opacity"), 1e-9)
	tl.Seek(10)
	assert.Equal(t, 1.0, b.Prop("opacity"))
	assert.Equal(t, 3.0, tl.Time())
}

func TestImmediateFromValues(t *testing.T) {
	b := newBox(Props{"scale": 1})
	New().FromTo(b, Props{"scale": 0.5}, Props{"scale": 1}, 1, Linear, At(4))
	assert.Equal(t, 0.5, b.Prop("scale"), "from values render before the tween starts")
}

func TestLaterTweenOverrides(t *testing.T) {
	b := newBox(Props{"opacity": 0})
	tl := New().
		FromTo(b, Props{"opacity": 0}, Props{"opacity": 1}, 1, Linear, At(0)).
		FromTo(b, Props{"opacity": 1}, Props{"opacity": 0}, 1, Linear, At(3))

	tl.Seek(2)
	assert.Equal(t, 1.0, b.Prop("opacity"))
	tl.Seek(3.5)
	assert.InDelta(t, 0.5, b.Prop("opacity"), 1e-9)
	tl.Seek(0.5)
	assert.InDelta(t, 0.5, b.Prop("opacity"), 1e-9, "seeking back re-renders from scratch")
}

func TestSetIsInstant(t *testing.T) {
	b := newBox(Props{"opacity": 1})
	tl := New().Set(b, Props{"opacity": 0}, At(2))

	assert.Equal(t, 1.0, b.Prop("opacity"))
	tl.Seek(2)
	assert.Equal(t, 0.0, b.Prop("opacity"))
	tl.Seek(1.9)
	assert.Equal(t, 1.0, b.Prop("opacity"))
}

func TestPositions(t *testing.T) {
	b := newBox(nil)
	tl := New()
	tl.FromTo(b, Props{"x": 0}, Props{"x": 1}, 2, Linear, At(0))
	tl.FromTo(b, Props{"y": 0}, Props{"y": 1}, 1, Linear, AfterEnd(0.5))
	tl.FromTo(b, Props{"z": 0}, Props{"z": 1}, 4, Linear, WithPrevious(0))

	assert.Equal(t, []float64{0, 2.5, 2.5}, tl.StartTimes(b))
	assert.Equal(t, 6.5, tl.Duration())

	tl.FromTo(b, Props{"w": 0}, Props{"w": 1}, 1, Linear, At(-3))
	assert.Equal(t, 0.0, tl.StartTimes(b)[0])
}

func TestTickFiresCallbacksInOrder(t *testing.T) {
	b := newBox(nil)
	tl := New().FromTo(b, Props{"x": 0}, Props{"x": 1}, 3, Linear, At(0))

	var got []string
	tl.Call(func() { got = append(got, "two") }, At(2))
	tl.Call(func() { got = append(got, "zero") }, At(0))
	tl.Call(func() { got = append(got, "end") }, At(3))

	var updates int
	completed := false
	tl.OnUpdate(func(float64) { updates++ })
	tl.OnComplete(func() { completed = true })

	tl.Tick(1)
	assert.Empty(t, got, "paused timelines do not advance")

	tl.Play()
	tl.Tick(1)
	assert.Equal(t, []string{"zero"}, got)
	tl.Tick(1.5)
	assert.Equal(t, []string{"zero", "two"}, got)
	assert.False(t, completed)
	tl.Tick(1)
	assert.Equal(t, []string{"zero", "two", "end"}, got)
	assert.True(t, completed)
	assert.True(t, tl.Complete())
	assert.False(t, tl.Playing())
	assert.Equal(t, 3, updates)
	assert.Equal(t, 1.0, tl.Progress())
}

func TestSeekDoesNotFireCallbacks(t *testing.T) {
	b := newBox(nil)
	tl := New().FromTo(b, Props{"x": 0}, Props{"x": 1}, 4, Linear, At(0))
	fired := 0
	tl.Call(func() { fired++ }, At(1))

	tl.Seek(3)
	tl.SeekProgress(0.25)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1.0, tl.Time())

	tl.Play()
	tl.Tick(0.5)
	assert.Equal(t, 1, fired)
}

func TestRestartReplays(t *testing.T) {
	b := newBox(nil)
	tl := New().FromTo(b, Props{"x": 0}, Props{"x": 1}, 1, Linear, At(0))
	count := 0
	tl.Call(func() { count++ }, At(0))

	tl.Play()
	tl.Tick(2)
	require.True(t, tl.Complete())

	tl.Restart()
	assert.True(t, tl.Playing())
	assert.Equal(t, 0.0, tl.Time())
	assert.Equal(t, 0.0, b.Prop("x"))
	tl.Tick(0.1)
	assert.Equal(t, 2, count)
}

func TestKill(t *testing.T) {
	b := newBox(nil)
	tl := New().FromTo(b, Props{"x": 0}, Props{"x": 1}, 1, Linear, At(0))
	tl.Kill()
	tl.Kill()

	assert.True(t, tl.Killed())
	tl.Play()
	assert.False(t, tl.Playing())
	tl.FromTo(b, Props{"x": 5}, Props{"x": 6}, 1, Linear, At(0))
	assert.Equal(t, 0.0, b.Prop("x"))
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"power2.inOut", "power2-inOut", "sine.in", "expo", "back.out", "linear", "none", "circ.inOut"} {
		fn, ok := Lookup(name)
		require.True(t, ok, name)
		assert.InDelta(t, 0.0, fn(0), 1e-9, name)
		assert.InDelta(t, 1.0, fn(1), 1e-9, name)
	}

	_, ok := Lookup("wobble")
	assert.False(t, ok)
	_, ok = Lookup("power2.sideways")
	assert.False(t, ok)

	inOut := Ease("power2.inOut")
	assert.InDelta(t, 0.5, inOut(0.5), 1e-9)
	assert.InDelta(t, 0.0625, inOut(0.25), 1e-9)
	assert.Equal(t, DefaultEase(0.3), Ease("nonsense")(0.3))
}

func TestRunDrivesTimeline(t *testing.T) {
	b := newBox(nil)
	tl := New().FromTo(b, Props{"x": 0}, Props{"x": 1}, 0.05, Linear, At(0))
	done := make(chan struct{})
	tl.OnComplete(func() { close(done) })
	tl.Play()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- Run(ctx, tl, 120, nil) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timeline never completed")
	}
	assert.Equal(t, 1.0, b.Prop("x"))

	tl.Kill()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		cancel()
		<-errc
	}
}
