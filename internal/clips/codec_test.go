package clips

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCodecKeepsTypedPayload(t *testing.T) {
	in := []Clip{
		{ID: 1, Start: 0, Duration: 30, Layer: 0, Locked: true, Isolated: true, Visible: true, Content: Audio{Src: "song.mp3", SampleRate: 44100}},
		{ID: 2, Start: 1, Duration: 5, Layer: 1, Visible: true, Placeholder: true, PendingGeneration: true, MaxDuration: 5, Content: Image{Prompt: "sunset"}},
		{ID: 3, Start: 6, Duration: 1, Layer: 3, Visible: false, Content: Transition{Kind: TransitionCrossfade, Duration: 1}},
		{ID: 4, Start: 2, Duration: 2, Layer: 3, Visible: true, Content: Effect{Kind: EffectGlow, Intensity: 0.4}},
		{ID: 5, Start: 2, Duration: 2, Layer: 2, Visible: true, Title: "Verse", Content: Text{Body: "la la"}},
	}

	data, err := yaml.Marshal(in)
	require.NoError(t, err)
	t.Logf("encoded:\n%s", data)

	var out []Clip
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestCodecRejectsForeignFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"transition on audio", "id: 1\ntype: audio\nstart: 0\nduration: 4\nlayer: 0\ntransition_type: fade\n"},
		{"text on image", "id: 1\ntype: image\nstart: 0\nduration: 4\nlayer: 1\ntext: nope\n"},
		{"unknown type", "id: 1\ntype: hologram\nstart: 0\nduration: 4\nlayer: 1\n"},
		{"bad effect", "id: 1\ntype: effect\nstart: 0\nduration: 4\nlayer: 3\neffect_type: wobble\n"},
		{"too short", "id: 1\ntype: text\nstart: 0\nduration: 0.2\nlayer: 2\n"},
		{"negative start", "id: 1\ntype: text\nstart: -1\nduration: 2\nlayer: 2\n"},
		{"over ceiling", "id: 1\ntype: image\nstart: 0\nduration: 7\nmax_duration: 5\nlayer: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Clip
			err := yaml.Unmarshal([]byte(tt.doc), &c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidClip), "got %v", err)
		})
	}
}

func TestCodecDefaults(t *testing.T) {
	var c Clip
	require.NoError(t, yaml.Unmarshal([]byte("id: 7\ntype: video\nstart: 1\nduration: 2\nlayer: 1\nsrc: a.mp4\n"), &c))
	assert.True(t, c.Visible, "visible defaults to true")
	assert.Equal(t, Video{Src: "a.mp4"}, c.Content)

	require.NoError(t, yaml.Unmarshal([]byte("id: 8\ntype: audio\nstart: 0\nduration: 2\nlayer: 0\nisolated: true\n"), &c))
	assert.True(t, c.Locked, "isolated implies locked")
}

func TestCodecRequiresContent(t *testing.T) {
	_, err := yaml.Marshal(Clip{ID: 1, Duration: 1})
	assert.Error(t, err)
}
