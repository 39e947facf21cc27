package gui

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikiluvv/framecannon/internal/compositor"
	"github.com/kikiluvv/framecannon/internal/scenes"
	"github.com/kikiluvv/framecannon/internal/stage"
)

func writePNG(t *testing.T, name string, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func twoScenes(t *testing.T) []scenes.Scene {
	return []scenes.Scene{
		{Image: writePNG(t, "a.png", color.White), Duration: 3},
		{Image: writePNG(t, "b.png", color.Black), Duration: 3},
	}
}

func TestPlace(t *testing.T) {
	area := fyne.NewSize(200, 100)

	pos, size := Place(stage.State{Opacity: 1, Scale: 1, CamScale: 1}, area)
	assert.Equal(t, fyne.NewPos(0, 0), pos)
	assert.Equal(t, area, size)

	pos, size = Place(stage.State{Scale: 1.1, CamScale: 1}, area)
	assert.InDelta(t, 220, size.Width, 1e-3)
	assert.InDelta(t, -10, pos.X, 1e-3)
	assert.InDelta(t, -5, pos.Y, 1e-3)

	pos, _ = Place(stage.State{X: 50, PanX: -10, Y: -100, Scale: 1, CamScale: 1}, area)
	assert.InDelta(t, 80, pos.X, 1e-3)
	assert.InDelta(t, -100, pos.Y, 1e-3)
}

func TestStageContainer(t *testing.T) {
	test.NewTempApp(t)
	st := NewStage(fyne.NewSize(320, 180))
	assert.True(t, st.Mounted())

	a := stage.NewElement("a.png", "")
	b := stage.NewElement("b.png", "")
	st.Append(a)
	st.Append(b)
	assert.Equal(t, []*stage.Element{a, b}, st.Children())

	st.Remove(a)
	assert.Equal(t, []*stage.Element{b}, st.Children())
	_, ok := st.Image(a)
	assert.False(t, ok)

	st.SetMounted(false)
	c := compositor.New(zerolog.Nop(), st, compositor.Callbacks{})
	assert.ErrorIs(t, c.Build(twoScenes(t)), compositor.ErrNotMounted)
}

func TestStageSyncFollowsCompositor(t *testing.T) {
	test.NewTempApp(t)
	st := NewStage(fyne.NewSize(320, 180))
	c := compositor.New(zerolog.Nop(), st, compositor.Callbacks{})
	require.NoError(t, c.Build(twoScenes(t)))
	els := c.Elements()
	require.Len(t, els, 2)

	require.NoError(t, c.SeekTime(1.5))
	st.Sync()
	first, _ := st.Image(els[0])
	second, _ := st.Image(els[1])
	assert.True(t, first.Visible())
	assert.InDelta(t, 0, first.Translucency, 1e-9)
	assert.False(t, second.Visible())

	c.Destroy()
	assert.Empty(t, st.Children())
}

func TestPlayerControls(t *testing.T) {
	test.NewTempApp(t)
	p, err := NewPlayer(zerolog.Nop(), twoScenes(t), Options{Width: 320, Height: 180})
	require.NoError(t, err)
	t.Cleanup(p.Compositor().Destroy)

	w := test.NewWindow(p.Content())
	defer w.Close()

	assert.Equal(t, "Play", p.playButton.Text)
	assert.Equal(t, "0:00.00 / 0:06.00", p.timeLabel.Text)
	assert.Equal(t, "scene 1/2", p.sceneLabel.Text)

	test.Tap(p.playButton)
	assert.Equal(t, compositor.StatePlaying, p.Compositor().State())
	assert.Equal(t, "Pause", p.playButton.Text)

	p.Compositor().Tick(4)
	p.Sync()
	assert.Equal(t, "scene 2/2", p.sceneLabel.Text)
	assert.InDelta(t, 4.0/6.0, p.slider.Value, 1e-6)

	test.Tap(p.playButton)
	assert.Equal(t, compositor.StatePaused, p.Compositor().State())

	p.slider.OnChangeEnded(0)
	assert.Equal(t, 0.0, p.Compositor().CurrentTime())
}

func TestPlayerRejectsEmptyList(t *testing.T) {
	test.NewTempApp(t)
	_, err := NewPlayer(zerolog.Nop(), nil, Options{})
	assert.ErrorIs(t, err, compositor.ErrNoScenes)
}
