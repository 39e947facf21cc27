package layers

import "fmt"

// Kind identifies what a layer carries.
type Kind string

const (
	KindAudio   Kind = "audio"
	KindVideo   Kind = "video"
	KindText    Kind = "text"
	KindEffects Kind = "effects"
)

// Semantic slot ids of the four default layers.
const (
	AudioLayerID   int64 = 0
	VideoLayerID   int64 = 1
	TextLayerID    int64 = 2
	EffectsLayerID int64 = 3
)

// DefaultHeight is used for appended layers that do not specify one.
const DefaultHeight = 60

// ParseKind validates a user supplied kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindAudio, KindVideo, KindText, KindEffects:
		return Kind(s), nil
	case "image", "video-image":
		return KindVideo, nil
	}
	return "", fmt.Errorf("unknown layer kind %q", s)
}

// Layer is a horizontal lane of the timeline.
type Layer struct {
	ID              int64             `yaml:"id"`
	Name            string            `yaml:"name"`
	Kind            Kind              `yaml:"kind"`
	Locked          bool              `yaml:"locked"`
	Visible         bool              `yaml:"visible"`
	Height          int               `yaml:"height"`
	Isolated        bool              `yaml:"isolated"`
	PlaceholderHost bool              `yaml:"placeholder_host"`
	Metadata        map[string]string `yaml:"metadata,omitempty"`
}

// Patch carries optional layer field updates. Nil fields are left alone.
type Patch struct {
	Name            *string
	Locked          *bool
	Visible         *bool
	Height          *int
	Isolated        *bool
	PlaceholderHost *bool
	Metadata        map[string]string
}

// Defaults returns the canonical four layers, lowest z first.
func Defaults() []Layer {
	return []Layer{
		{
			ID:       AudioLayerID,
			Name:     "Audio",
			Kind:     KindAudio,
			Locked:   true,
			Visible:  true,
			Height:   60,
			Isolated: true,
		},
		{
			ID:              VideoLayerID,
			Name:            "Video & Images",
			Kind:            KindVideo,
			Visible:         true,
			Height:          80,
			PlaceholderHost: true,
		},
		{
			ID:      TextLayerID,
			Name:    "Text",
			Kind:    KindText,
			Visible: true,
			Height:  50,
		},
		{
			ID:      EffectsLayerID,
			Name:    "Effects",
			Kind:    KindEffects,
			Visible: true,
			Height:  50,
		},
	}
}

// normalize enforces the audio invariant on a single layer.
func normalize(l Layer) Layer {
	if l.Kind == KindAudio {
		l.Isolated = true
		l.Locked = true
	}
	if l.Isolated {
		l.Locked = true
	}
	if l.Height <= 0 {
		l.Height = DefaultHeight
	}
	return l
}

func copyLayers(src []Layer) []Layer {
	out := make([]Layer, len(src))
	for i, l := range src {
		out[i] = l
		if l.Metadata != nil {
			md := make(map[string]string, len(l.Metadata))
			for k, v := range l.Metadata {
				md[k] = v
			}
			out[i].Metadata = md
		}
	}
	return out
}
