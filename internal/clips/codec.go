package clips

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// clipDoc is the flat persisted form of a clip. Payload fields that do not
// belong to the declared type are rejected on decode.
type clipDoc struct {
	ID                int64   `yaml:"id"`
	Type              Type    `yaml:"type"`
	Start             float64 `yaml:"start"`
	Duration          float64 `yaml:"duration"`
	Layer             int64   `yaml:"layer"`
	Locked            bool    `yaml:"locked,omitempty"`
	Visible           *bool   `yaml:"visible,omitempty"`
	Title             string  `yaml:"title,omitempty"`
	Description       string  `yaml:"description,omitempty"`
	Isolated          bool    `yaml:"isolated,omitempty"`
	Placeholder       bool    `yaml:"placeholder,omitempty"`
	PendingGeneration bool    `yaml:"pending_generation,omitempty"`
	MaxDuration       float64 `yaml:"max_duration,omitempty"`

	Src                string  `yaml:"src,omitempty"`
	Prompt             string  `yaml:"prompt,omitempty"`
	SampleRate         int     `yaml:"sample_rate,omitempty"`
	TransitionType     string  `yaml:"transition_type,omitempty"`
	TransitionDuration float64 `yaml:"transition_duration,omitempty"`
	EffectType         string  `yaml:"effect_type,omitempty"`
	EffectIntensity    float64 `yaml:"effect_intensity,omitempty"`
	Text               string  `yaml:"text,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (c Clip) MarshalYAML() (interface{}, error) {
	if c.Content == nil {
		return nil, fmt.Errorf("%w: clip %d has no content", ErrInvalidClip, c.ID)
	}
	visible := c.Visible
	doc := clipDoc{
		ID:                c.ID,
		Type:              c.Content.Type(),
		Start:             c.Start,
		Duration:          c.Duration,
		Layer:             c.Layer,
		Locked:            c.Locked,
		Visible:           &visible,
		Title:             c.Title,
		Description:       c.Description,
		Isolated:          c.Isolated,
		Placeholder:       c.Placeholder,
		PendingGeneration: c.PendingGeneration,
		MaxDuration:       c.MaxDuration,
	}
	switch v := c.Content.(type) {
	case Video:
		doc.Src = v.Src
	case Image:
		doc.Src = v.Src
		doc.Prompt = v.Prompt
	case Audio:
		doc.Src = v.Src
		doc.SampleRate = v.SampleRate
	case Transition:
		doc.TransitionType = string(v.Kind)
		doc.TransitionDuration = v.Duration
	case Effect:
		doc.EffectType = string(v.Kind)
		doc.EffectIntensity = v.Intensity
	case Text:
		doc.Text = v.Body
	}
	return doc, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Clip) UnmarshalYAML(value *yaml.Node) error {
	var doc clipDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	content, err := doc.content()
	if err != nil {
		return fmt.Errorf("%w: clip %d: %v", ErrInvalidClip, doc.ID, err)
	}
	if doc.Start < 0 || math.IsNaN(doc.Start) {
		return fmt.Errorf("%w: clip %d: negative start", ErrInvalidClip, doc.ID)
	}
	if doc.Duration < MinDuration {
		return fmt.Errorf("%w: clip %d: duration %.3f below %.1f", ErrInvalidClip, doc.ID, doc.Duration, MinDuration)
	}
	if doc.MaxDuration > 0 && doc.Duration > ClampDuration(doc.Duration, doc.MaxDuration) {
		return fmt.Errorf("%w: clip %d: duration exceeds max_duration", ErrInvalidClip, doc.ID)
	}

	*c = Clip{
		ID:                doc.ID,
		Start:             doc.Start,
		Duration:          doc.Duration,
		Layer:             doc.Layer,
		Locked:            doc.Locked || doc.Isolated,
		Visible:           doc.Visible == nil || *doc.Visible,
		Title:             doc.Title,
		Description:       doc.Description,
		Isolated:          doc.Isolated,
		Placeholder:       doc.Placeholder,
		PendingGeneration: doc.PendingGeneration,
		MaxDuration:       doc.MaxDuration,
		Content:           content,
	}
	return nil
}

func (d clipDoc) content() (Content, error) {
	type field struct {
		name string
		set  bool
	}
	fields := []field{
		{"src", d.Src != ""},
		{"prompt", d.Prompt != ""},
		{"sample_rate", d.SampleRate != 0},
		{"transition_type", d.TransitionType != ""},
		{"transition_duration", d.TransitionDuration != 0},
		{"effect_type", d.EffectType != ""},
		{"effect_intensity", d.EffectIntensity != 0},
		{"text", d.Text != ""},
	}

	var allowed map[string]bool
	var content Content
	switch d.Type {
	case TypeVideo:
		allowed = map[string]bool{"src": true}
		content = Video{Src: d.Src}
	case TypeImage:
		allowed = map[string]bool{"src": true, "prompt": true}
		content = Image{Src: d.Src, Prompt: d.Prompt}
	case TypeAudio:
		allowed = map[string]bool{"src": true, "sample_rate": true}
		content = Audio{Src: d.Src, SampleRate: d.SampleRate}
	case TypeTransition:
		kind := TransitionKind(d.TransitionType)
		if !kind.valid() {
			return nil, fmt.Errorf("unknown transition type %q", d.TransitionType)
		}
		allowed = map[string]bool{"transition_type": true, "transition_duration": true}
		content = Transition{Kind: kind, Duration: d.TransitionDuration}
	case TypeEffect:
		kind := EffectKind(d.EffectType)
		if !kind.valid() {
			return nil, fmt.Errorf("unknown effect type %q", d.EffectType)
		}
		allowed = map[string]bool{"effect_type": true, "effect_intensity": true}
		content = Effect{Kind: kind, Intensity: d.EffectIntensity}
	case TypeText:
		allowed = map[string]bool{"text": true}
		content = Text{Body: d.Text}
	default:
		return nil, fmt.Errorf("unknown type %q", d.Type)
	}

	for _, f := range fields {
		if f.set && !allowed[f.name] {
			return nil, fmt.Errorf("field %s not allowed on %s clip", f.name, d.Type)
		}
	}
	return content, nil
}
