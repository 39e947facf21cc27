package clips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageClip(start, dur float64) Clip {
	return Clip{ID: 1, Start: start, Duration: dur, Layer: 1, Visible: true, Content: Image{Src: "a.png"}}
}

func TestClampDuration(t *testing.T) {
	tests := []struct {
		name   string
		d, max float64
		want   float64
	}{
		{"floor", 0.1, 0, 0.5},
		{"no ceiling", 42, 0, 42},
		{"ceiling", 9, 5, 5},
		{"inside", 3, 5, 3},
		{"ceiling below floor", 3, 0.2, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampDuration(tt.d, tt.max))
		})
	}
}

func TestEditableGates(t *testing.T) {
	c := imageClip(0, 2)
	assert.True(t, Editable(c, false))
	assert.False(t, Editable(c, true))

	c.Locked = true
	assert.False(t, Editable(c, false))

	c.Locked = false
	c.Isolated = true
	assert.False(t, Editable(c, false))
}

func TestMove(t *testing.T) {
	c := imageClip(2, 3)

	u, ok := Move(c, 5, false)
	require.True(t, ok)
	require.NotNil(t, u.Start)
	assert.Equal(t, 5.0, *u.Start)
	assert.Nil(t, u.Duration)

	u, ok = Move(c, -4, false)
	require.True(t, ok)
	assert.Equal(t, 0.0, *u.Start)

	_, ok = Move(c, 2, false)
	assert.False(t, ok, "no-op move")

	_, ok = Move(c, 5, true)
	assert.False(t, ok, "layer locked")
}

func TestMoveReclampsOversizedClip(t *testing.T) {
	c := imageClip(0, 8)
	c.MaxDuration = 5

	u, ok := Move(c, 1, false)
	require.True(t, ok)
	require.NotNil(t, u.Duration)
	assert.Equal(t, 5.0, *u.Duration)
}

func TestResizeStartKeepsEnd(t *testing.T) {
	c := imageClip(2, 3)

	u, ok := ResizeStart(c, 1, false)
	require.True(t, ok)
	got := u.ApplyTo(c)
	assert.Equal(t, 1.0, got.Start)
	assert.Equal(t, 5.0, got.End())

	u, ok = ResizeStart(c, 4.9, false)
	require.True(t, ok)
	got = u.ApplyTo(c)
	assert.InDelta(t, 0.5, got.Duration, 1e-9)
	assert.InDelta(t, 5.0, got.End(), 1e-9)
}

func TestResizeStartRespectsCeiling(t *testing.T) {
	c := imageClip(4, 2)
	c.MaxDuration = 5

	u, ok := ResizeStart(c, 0, false)
	require.True(t, ok)
	got := u.ApplyTo(c)
	assert.Equal(t, 5.0, got.Duration)
	assert.Equal(t, 1.0, got.Start)
}

func TestResizeEnd(t *testing.T) {
	c := imageClip(1, 2)
	c.MaxDuration = 5

	u, ok := ResizeEnd(c, 10, false)
	require.True(t, ok)
	assert.Nil(t, u.Start)
	assert.Equal(t, 5.0, *u.Duration)

	u, ok = ResizeEnd(c, 0, false)
	require.True(t, ok)
	assert.Equal(t, MinDuration, *u.Duration)
}

func TestDurationBoundsHoldForAllResizes(t *testing.T) {
	c := imageClip(3, 2)
	c.MaxDuration = 5
	for x := -10.0; x <= 20; x += 0.37 {
		for _, op := range []func(Clip, float64, bool) (Update, bool){ResizeStart, ResizeEnd, Move} {
			u, _ := op(c, x, false)
			got := u.ApplyTo(c)
			assert.GreaterOrEqual(t, got.Duration, MinDuration-1e-9)
			assert.LessOrEqual(t, got.Duration, 5+1e-9)
			assert.GreaterOrEqual(t, got.Start, 0.0)
		}
	}
}

func TestIsolatedClipNeverChanges(t *testing.T) {
	c := Clip{ID: 9, Start: 0, Duration: 30, Layer: 0, Locked: true, Isolated: true, Content: Audio{Src: "song.mp3"}}
	for x := -5.0; x < 40; x += 1.5 {
		_, ok := Move(c, x, false)
		assert.False(t, ok)
		_, ok = ResizeStart(c, x, false)
		assert.False(t, ok)
		_, ok = ResizeEnd(c, x, false)
		assert.False(t, ok)
		_, _, ok = Split(c, x, false)
		assert.False(t, ok)
	}
	assert.False(t, CanRegenerate(c, false))
}

func TestSplit(t *testing.T) {
	c := imageClip(0, 10)

	u, req, ok := Split(c, 4, false)
	require.True(t, ok)
	got := u.ApplyTo(c)
	assert.Equal(t, 0.0, got.Start)
	assert.Equal(t, 4.0, got.Duration)

	assert.Equal(t, c.ID, req.ClipID)
	assert.Equal(t, 4.0, req.SplitTime)
	assert.Equal(t, 4.0, req.Start)
	assert.Equal(t, 6.0, req.Duration)
}

func TestSplitRejections(t *testing.T) {
	c := imageClip(2, 4)
	tests := []struct {
		name   string
		at     float64
		locked bool
	}{
		{"at start", 2, false},
		{"at end", 6, false},
		{"outside", 8, false},
		{"head too short", 2.2, false},
		{"tail too short", 5.8, false},
		{"layer locked", 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := Split(c, tt.at, tt.locked)
			assert.False(t, ok)
		})
	}
}

func TestCanRegenerate(t *testing.T) {
	c := imageClip(0, 5)
	assert.False(t, CanRegenerate(c, false))

	c.Placeholder = true
	assert.True(t, CanRegenerate(c, false))
	assert.False(t, CanRegenerate(c, true))
}

func TestUpdateEmpty(t *testing.T) {
	assert.True(t, Update{}.Empty())
	v := 1.0
	assert.False(t, Update{Start: &v}.Empty())
	assert.Equal(t, 1.0, Update{Duration: &v}.ApplyTo(imageClip(0, 3)).Duration)
}
