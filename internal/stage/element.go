package stage

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Animatable property names understood by Element.
const (
	PropOpacity  = "opacity"
	PropX        = "x"
	PropY        = "y"
	PropScale    = "scale"
	PropPanX     = "panX"
	PropCamScale = "camScale"
)

// Element is one full-bleed visual. Offsets are percentages of its own size.
type Element struct {
	ID     string
	Src    string
	Filter string

	mu    sync.RWMutex
	props map[string]float64
}

// State is a point-in-time copy of an element's properties.
type State struct {
	Opacity  float64
	X        float64
	Y        float64
	Scale    float64
	PanX     float64
	CamScale float64
}

// NewElement creates an element for src with opacity 0 at rest.
func NewElement(src, filter string) *Element {
	return &Element{
		ID:     uuid.NewString(),
		Src:    src,
		Filter: filter,
		props: map[string]float64{
			PropOpacity:  0,
			PropX:        0,
			PropY:        0,
			PropScale:    1,
			PropPanX:     0,
			PropCamScale: 1,
		},
	}
}

// Prop implements tween.Target.
func (e *Element) Prop(name string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.props[name]
}

// SetProp implements tween.Target.
func (e *Element) SetProp(name string, v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.props[name] = v
}

// State returns the current property values.
func (e *Element) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return State{
		Opacity:  e.props[PropOpacity],
		X:        e.props[PropX],
		Y:        e.props[PropY],
		Scale:    e.props[PropScale],
		PanX:     e.props[PropPanX],
		CamScale: e.props[PropCamScale],
	}
}

// EffectiveScale combines the transition and camera scales.
func (s State) EffectiveScale() float64 {
	return s.Scale * s.CamScale
}

// EffectiveX combines the transition and camera horizontal offsets.
func (s State) EffectiveX() float64 {
	return s.X + s.PanX
}

// Transform renders the state as a CSS transform.
func (s State) Transform() string {
	return fmt.Sprintf("translate(%.2f%%, %.2f%%) scale(%.4f)", s.EffectiveX(), s.Y, s.EffectiveScale())
}
