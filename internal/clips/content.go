package clips

// Type names the kind of content a clip carries.
type Type string

const (
	TypeVideo      Type = "video"
	TypeImage      Type = "image"
	TypeTransition Type = "transition"
	TypeAudio      Type = "audio"
	TypeEffect     Type = "effect"
	TypeText       Type = "text"
)

// Types lists every clip type in display order.
var Types = []Type{TypeVideo, TypeImage, TypeTransition, TypeAudio, TypeEffect, TypeText}

// TransitionKind is the blend a transition clip applies.
type TransitionKind string

const (
	TransitionCrossfade TransitionKind = "crossfade"
	TransitionWipe      TransitionKind = "wipe"
	TransitionFade      TransitionKind = "fade"
	TransitionSlide     TransitionKind = "slide"
	TransitionZoom      TransitionKind = "zoom"
)

func (k TransitionKind) valid() bool {
	switch k {
	case TransitionCrossfade, TransitionWipe, TransitionFade, TransitionSlide, TransitionZoom:
		return true
	}
	return false
}

// EffectKind is the filter an effect clip applies.
type EffectKind string

const (
	EffectBlur       EffectKind = "blur"
	EffectGlow       EffectKind = "glow"
	EffectSepia      EffectKind = "sepia"
	EffectGrayscale  EffectKind = "grayscale"
	EffectSaturation EffectKind = "saturation"
	EffectCustom     EffectKind = "custom"
)

func (k EffectKind) valid() bool {
	switch k {
	case EffectBlur, EffectGlow, EffectSepia, EffectGrayscale, EffectSaturation, EffectCustom:
		return true
	}
	return false
}

// Content is the type specific payload of a clip. Only the types in this
// package implement it.
type Content interface {
	Type() Type
	isContent()
}

// Video references a video file.
type Video struct {
	Src string
}

// Image references a still. Prompt is kept for generated images so they can
// be requested again.
type Image struct {
	Src    string
	Prompt string
}

// Transition blends neighbouring clips.
type Transition struct {
	Kind     TransitionKind
	Duration float64
}

// Audio references the soundtrack.
type Audio struct {
	Src        string
	SampleRate int
}

// Effect applies a filter over the layers below it.
type Effect struct {
	Kind      EffectKind
	Intensity float64
}

// Text is an on-screen caption.
type Text struct {
	Body string
}

func (Video) Type() Type      { return TypeVideo }
func (Image) Type() Type      { return TypeImage }
func (Transition) Type() Type { return TypeTransition }
func (Audio) Type() Type      { return TypeAudio }
func (Effect) Type() Type     { return TypeEffect }
func (Text) Type() Type       { return TypeText }

func (Video) isContent()      {}
func (Image) isContent()      {}
func (Transition) isContent() {}
func (Audio) isContent()      {}
func (Effect) isContent()     {}
func (Text) isContent()       {}
