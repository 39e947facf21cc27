package clips

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	s := NewStore()
	s.now = func() time.Time { return time.UnixMilli(5000) }
	return s
}

func TestStoreAddAssignsIDs(t *testing.T) {
	s := newTestStore()

	a := s.Add(Clip{Duration: 2, Content: Text{Body: "hi"}})
	b := s.Add(Clip{Duration: 2, Content: Text{Body: "there"}})
	c := s.Add(Clip{ID: a.ID, Duration: 2, Content: Text{Body: "dup"}})

	assert.Equal(t, int64(5000), a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Len(t, s.All(), 3)
}

func TestStoreAddNormalizes(t *testing.T) {
	s := newTestStore()
	c := s.Add(Clip{ID: 3, Start: -2, Duration: 0.1, Content: Video{}})
	assert.Equal(t, 0.0, c.Start)
	assert.Equal(t, MinDuration, c.Duration)

	capped := s.Add(Clip{ID: 4, Duration: 9, MaxDuration: 5, Content: Image{}})
	assert.Equal(t, 5.0, capped.Duration)
}

func TestStoreApply(t *testing.T) {
	s := newTestStore()
	s.Add(Clip{ID: 1, Start: 0, Duration: 10, Layer: 1, Content: Image{}})

	d := 4.0
	got, ok := s.Apply(1, Update{Duration: &d})
	require.True(t, ok)
	assert.Equal(t, 4.0, got.Duration)

	stored, _ := s.Get(1)
	assert.Equal(t, 4.0, stored.Duration)

	_, ok = s.Apply(99, Update{Duration: &d})
	assert.False(t, ok)
	_, ok = s.Apply(1, Update{})
	assert.False(t, ok)
}

func TestStoreApplyRejectsIsolated(t *testing.T) {
	s := newTestStore()
	s.Add(Clip{ID: 1, Start: 0, Duration: 30, Isolated: true, Locked: true, Content: Audio{}})

	start := 5.0
	_, ok := s.Apply(1, Update{Start: &start})
	assert.False(t, ok)
	assert.False(t, s.SetLocked(1, false))
	assert.False(t, s.Remove(1))

	c, _ := s.Get(1)
	assert.Equal(t, 0.0, c.Start)
	assert.True(t, c.Locked)
}

func TestStoreQueries(t *testing.T) {
	s := newTestStore()
	s.Add(Clip{ID: 1, Start: 4, Duration: 2, Layer: 1, Content: Image{}})
	s.Add(Clip{ID: 2, Start: 0, Duration: 3, Layer: 1, Content: Image{}})
	s.Add(Clip{ID: 3, Start: 0, Duration: 20, Layer: 0, Content: Audio{}})

	on := s.OnLayer(1)
	require.Len(t, on, 2)
	assert.Equal(t, int64(2), on[0].ID)

	at := s.At(1)
	require.Len(t, at, 2)
	assert.Equal(t, int64(3), at[0].ID)

	assert.Equal(t, 20.0, s.End())
	assert.True(t, s.Remove(2))
	assert.Len(t, s.All(), 2)
}

func TestReplaceWithGenerated(t *testing.T) {
	s := newTestStore()
	s.Add(Clip{ID: 1, Duration: 5, MaxDuration: 5, Placeholder: true, Content: Image{Prompt: "neon city"}})

	assert.True(t, s.MarkPending(1))
	c, _ := s.Get(1)
	assert.True(t, c.PendingGeneration)

	c, ok := s.ReplaceWithGenerated(1, Image{Src: "gen/1.png", Prompt: "neon city"})
	require.True(t, ok)
	assert.False(t, c.Placeholder)
	assert.False(t, c.PendingGeneration)
	assert.Equal(t, "gen/1.png", c.Content.(Image).Src)
	assert.Equal(t, 5.0, c.MaxDuration)

	assert.False(t, s.MarkPending(1), "no longer a placeholder")
}

func TestReplaceIsolated(t *testing.T) {
	s := NewStore()
	s.Add(Clip{ID: 1, Start: 0, Duration: 3, Layer: 1, Content: Image{Src: "a.png"}})
	first := s.ReplaceIsolated(0, Clip{Duration: 10, Content: Audio{Src: "a.wav"}})
	assert.True(t, first.Isolated)
	assert.True(t, first.Locked)
	assert.Equal(t, int64(0), first.Layer)

	second := s.ReplaceIsolated(0, Clip{Duration: 20, Content: Audio{Src: "b.wav"}})
	audio := s.OnLayer(0)
	require.Len(t, audio, 1)
	assert.Equal(t, second.ID, audio[0].ID)
	assert.Equal(t, 20.0, audio[0].Duration)
	assert.Len(t, s.All(), 2)

	assert.False(t, s.Remove(second.ID))
}
