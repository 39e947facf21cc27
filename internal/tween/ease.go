package tween

import (
	"math"
	"strings"
)

// EaseFunc maps linear progress in [0,1] to eased progress.
type EaseFunc func(p float64) float64

// Linear is the identity ease.
func Linear(p float64) float64 { return p }

func powerIn(n float64) EaseFunc {
	return func(p float64) float64 { return math.Pow(p, n) }
}

func powerOut(n float64) EaseFunc {
	return func(p float64) float64 { return 1 - math.Pow(1-p, n) }
}

func powerInOut(n float64) EaseFunc {
	return func(p float64) float64 {
		if p < 0.5 {
			return math.Pow(2*p, n) / 2
		}
		return 1 - math.Pow(2*(1-p), n)/2
	}
}

const backOvershoot = 1.70158

func backIn(p float64) float64 {
	return p * p * ((backOvershoot+1)*p - backOvershoot)
}

func backOut(p float64) float64 {
	return 1 - backIn(1-p)
}

func backInOut(p float64) float64 {
	if p < 0.5 {
		return backIn(2*p) / 2
	}
	return 1 - backIn(2*(1-p))/2
}

func sineIn(p float64) float64  { return 1 - math.Cos(p*math.Pi/2) }
func sineOut(p float64) float64 { return math.Sin(p * math.Pi / 2) }
func sineInOut(p float64) float64 {
	return -(math.Cos(math.Pi*p) - 1) / 2
}

func expoIn(p float64) float64 {
	if p == 0 {
		return 0
	}
	return math.Pow(2, 10*(p-1))
}

func expoOut(p float64) float64 {
	if p == 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*p)
}

func expoInOut(p float64) float64 {
	if p < 0.5 {
		return expoIn(2*p) / 2
	}
	return 1 - expoIn(2*(1-p))/2
}

func circIn(p float64) float64  { return 1 - math.Sqrt(1-p*p) }
func circOut(p float64) float64 { return math.Sqrt(1 - (p-1)*(p-1)) }
func circInOut(p float64) float64 {
	if p < 0.5 {
		return circIn(2*p) / 2
	}
	return 1 - circIn(2*(1-p))/2
}

type family struct {
	in, out, inOut EaseFunc
}

func power(n float64) family {
	return family{powerIn(n), powerOut(n), powerInOut(n)}
}

var families = map[string]family{
	"power1": power(2),
	"power2": power(3),
	"power3": power(4),
	"power4": power(5),
	"quad":   power(2),
	"cubic":  power(3),
	"quart":  power(4),
	"quint":  power(5),
	"sine":   {sineIn, sineOut, sineInOut},
	"expo":   {expoIn, expoOut, expoInOut},
	"circ":   {circIn, circOut, circInOut},
	"back":   {backIn, backOut, backInOut},
}

// DefaultEase is used when a name does not resolve.
var DefaultEase = families["power1"].out

// Lookup resolves names such as "power2.inOut", "power2-inOut", "sine.in",
// "expo" (out) or "linear".
func Lookup(name string) (EaseFunc, bool) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", ".")
	if name == "" {
		return nil, false
	}
	if name == "none" || name == "linear" || strings.HasPrefix(name, "power0") {
		return Linear, true
	}

	base, variant, _ := strings.Cut(name, ".")
	f, ok := families[base]
	if !ok {
		return nil, false
	}
	switch variant {
	case "", "out":
		return f.out, true
	case "in":
		return f.in, true
	case "inout":
		return f.inOut, true
	}
	return nil, false
}

// Ease resolves name, falling back to DefaultEase.
func Ease(name string) EaseFunc {
	if fn, ok := Lookup(name); ok {
		return fn
	}
	return DefaultEase
}
