package scenes

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidScene is returned for scenes that cannot be played.
var ErrInvalidScene = errors.New("invalid scene")

// TransitionType is how a scene enters, and how the previous one leaves.
type TransitionType string

const (
	TransitionFade       TransitionType = "fade"
	TransitionCrossfade  TransitionType = "crossfade"
	TransitionDissolve   TransitionType = "dissolve"
	TransitionSlideLeft  TransitionType = "slide-left"
	TransitionSlideRight TransitionType = "slide-right"
	TransitionSlideUp    TransitionType = "slide-up"
	TransitionSlideDown  TransitionType = "slide-down"
	TransitionZoomIn     TransitionType = "zoom-in"
	TransitionZoomOut    TransitionType = "zoom-out"
	TransitionCut        TransitionType = "cut"
)

// Overlaps reports whether the outgoing scene blends with the incoming one
// instead of finishing first.
func (t TransitionType) Overlaps() bool {
	return t == TransitionCrossfade || t == TransitionDissolve
}

// IsSlide reports whether t is one of the slide variants.
func (t TransitionType) IsSlide() bool {
	return strings.HasPrefix(string(t), "slide-")
}

func (t TransitionType) valid() bool {
	switch t {
	case TransitionFade, TransitionCrossfade, TransitionDissolve,
		TransitionSlideLeft, TransitionSlideRight, TransitionSlideUp, TransitionSlideDown,
		TransitionZoomIn, TransitionZoomOut, TransitionCut:
		return true
	}
	return false
}

// Movement is the simulated camera move across a scene's hold.
type Movement string

const (
	MovementStatic   Movement = "static"
	MovementPanLeft  Movement = "pan-left"
	MovementPanRight Movement = "pan-right"
	MovementZoomIn   Movement = "zoom-in"
	MovementZoomOut  Movement = "zoom-out"
)

func (m Movement) valid() bool {
	switch m {
	case "", MovementStatic, MovementPanLeft, MovementPanRight, MovementZoomIn, MovementZoomOut:
		return true
	}
	return false
}

// Transition configures an entry animation.
type Transition struct {
	Type     TransitionType `yaml:"type"`
	Duration float64        `yaml:"duration"`
	Ease     string         `yaml:"ease,omitempty"`
	Delay    float64        `yaml:"delay,omitempty"`
}

// Camera configures the movement across the hold. Intensity is a fraction.
type Camera struct {
	Movement  Movement `yaml:"movement"`
	Intensity float64  `yaml:"intensity,omitempty"`
}

// Effects are static visual filters.
type Effects struct {
	Blur       float64 `yaml:"blur,omitempty"`
	Brightness float64 `yaml:"brightness,omitempty"`
	Opacity    float64 `yaml:"opacity,omitempty"`
	Shadow     bool    `yaml:"shadow,omitempty"`
}

// Scene is one still image in a playback sequence.
type Scene struct {
	Image      string      `yaml:"image"`
	Duration   float64     `yaml:"duration"`
	Transition *Transition `yaml:"transition,omitempty"`
	Camera     *Camera     `yaml:"camera,omitempty"`
	Effects    *Effects    `yaml:"effects,omitempty"`
}

// Defaults fill unspecified scene settings.
type Defaults struct {
	Transition      TransitionType
	Duration        float64
	Ease            string
	CameraIntensity float64
}

// StandardDefaults is fade over 0.5s with power2.inOut and 10% camera moves.
func StandardDefaults() Defaults {
	return Defaults{
		Transition:      TransitionFade,
		Duration:        0.5,
		Ease:            "power2.inOut",
		CameraIntensity: 0.1,
	}
}

// Validate checks the values scenes fall back to.
func (d Defaults) Validate() error {
	if !d.Transition.valid() {
		return fmt.Errorf("%w: unknown default transition %q", ErrInvalidScene, d.Transition)
	}
	if d.Duration < 0 {
		return fmt.Errorf("%w: negative default transition duration", ErrInvalidScene)
	}
	if d.CameraIntensity < 0 || d.CameraIntensity > 1 {
		return fmt.Errorf("%w: default camera intensity must be within [0,1]", ErrInvalidScene)
	}
	return nil
}

// Resolved returns a copy of s with every optional field filled in.
func (s Scene) Resolved(d Defaults) Scene {
	tr := Transition{}
	if s.Transition != nil {
		tr = *s.Transition
	}
	if tr.Type == "" {
		tr.Type = d.Transition
	}
	if tr.Duration <= 0 && tr.Type != TransitionCut {
		tr.Duration = d.Duration
	}
	if tr.Type == TransitionCut {
		tr.Duration = 0
	}
	if tr.Ease == "" {
		tr.Ease = d.Ease
	}
	s.Transition = &tr

	cam := Camera{Movement: MovementStatic}
	if s.Camera != nil {
		cam = *s.Camera
	}
	if cam.Movement == "" {
		cam.Movement = MovementStatic
	}
	if cam.Intensity <= 0 {
		cam.Intensity = d.CameraIntensity
	}
	s.Camera = &cam

	if s.Effects != nil {
		fx := *s.Effects
		s.Effects = &fx
	}
	return s
}

// Validate checks a scene before it is scheduled.
func (s Scene) Validate() error {
	if s.Image == "" {
		return fmt.Errorf("%w: image is required", ErrInvalidScene)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("%w: %s: duration must be positive", ErrInvalidScene, s.Image)
	}
	if s.Transition != nil {
		if s.Transition.Type != "" && !s.Transition.Type.valid() {
			return fmt.Errorf("%w: %s: unknown transition %q", ErrInvalidScene, s.Image, s.Transition.Type)
		}
		if s.Transition.Duration < 0 || s.Transition.Delay < 0 {
			return fmt.Errorf("%w: %s: negative transition timing", ErrInvalidScene, s.Image)
		}
	}
	if s.Camera != nil {
		if !s.Camera.Movement.valid() {
			return fmt.Errorf("%w: %s: unknown camera movement %q", ErrInvalidScene, s.Image, s.Camera.Movement)
		}
		if s.Camera.Intensity < 0 || s.Camera.Intensity > 1 {
			return fmt.Errorf("%w: %s: camera intensity must be within [0,1]", ErrInvalidScene, s.Image)
		}
	}
	if s.Effects != nil {
		if s.Effects.Blur < 0 || s.Effects.Brightness < 0 || s.Effects.Opacity < 0 || s.Effects.Opacity > 100 {
			return fmt.Errorf("%w: %s: effect values out of range", ErrInvalidScene, s.Image)
		}
	}
	return nil
}

// ValidateAll checks every scene, reporting the first failure with its index.
func ValidateAll(list []Scene) error {
	for i, s := range list {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("scene %d: %w", i, err)
		}
	}
	return nil
}
