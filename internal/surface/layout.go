package surface

import (
	"github.com/kikiluvv/framecannon/internal/clips"
	"github.com/kikiluvv/framecannon/internal/layers"
)

// HandleWidth is the resize hit zone at each clip edge, in pixels.
const HandleWidth = 2.0

// Zone is the part of a clip under the pointer.
type Zone int

const (
	ZoneBody Zone = iota
	ZoneStart
	ZoneEnd
)

// Lane is one layer's row.
type Lane struct {
	Layer  layers.Layer
	Y      float64
	Height float64
}

// Box is a clip placed in content pixels.
type Box struct {
	Clip clips.Clip
	Lane int
	X    float64
	Y    float64
	W    float64
	H    float64
}

// Hit is the result of a hit test.
type Hit struct {
	ClipID int64
	Layer  int64
	Zone   Zone
}

// Lanes lays the layers out top to bottom, highest z first.
func (s *Surface) Lanes() []Lane {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lanes()
}

func (s *Surface) lanes() []Lane {
	out := make([]Lane, 0, len(s.layers))
	y := 0.0
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		h := float64(l.Height)
		if h <= 0 {
			h = layers.DefaultHeight
		}
		out = append(out, Lane{Layer: l, Y: y, Height: h})
		y += h
	}
	return out
}

// Boxes places every clip whose layer has a lane.
func (s *Surface) Boxes() []Box {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boxes()
}

func (s *Surface) boxes() []Box {
	lanes := s.lanes()
	index := make(map[int64]int, len(lanes))
	for i, l := range lanes {
		index[l.Layer.ID] = i
	}
	pps := s.pps()
	out := make([]Box, 0, len(s.clips))
	for _, c := range s.clips {
		i, ok := index[c.Layer]
		if !ok {
			continue
		}
		out = append(out, Box{
			Clip: c,
			Lane: i,
			X:    c.Start * pps,
			Y:    lanes[i].Y,
			W:    c.Duration * pps,
			H:    lanes[i].Height,
		})
	}
	return out
}

// HitTest finds the clip under a viewport point. Edge zones are only
// reported for clips that may be resized.
func (s *Surface) HitTest(x, y, handleZone float64) (Hit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hitTest(x, y, handleZone)
}

func (s *Surface) hitTest(x, y, handleZone float64) (Hit, bool) {
	cx := x + s.scroll.pos
	boxes := s.boxes()
	for i := len(boxes) - 1; i >= 0; i-- {
		b := boxes[i]
		if y < b.Y || y >= b.Y+b.H || cx < b.X || cx > b.X+b.W {
			continue
		}
		hit := Hit{ClipID: b.Clip.ID, Layer: b.Clip.Layer, Zone: ZoneBody}
		if clips.Editable(b.Clip, s.layerLocked(b.Clip.Layer)) && b.W > 2*handleZone {
			switch {
			case cx <= b.X+handleZone:
				hit.Zone = ZoneStart
			case cx >= b.X+b.W-handleZone:
				hit.Zone = ZoneEnd
			}
		}
		return hit, true
	}
	return Hit{}, false
}
