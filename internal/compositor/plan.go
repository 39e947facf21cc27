package compositor

import (
	"math"

	"github.com/kikiluvv/framecannon/internal/scenes"
)

// ScenePlan is the resolved schedule of one scene, in seconds from the start
// of the sequence.
type ScenePlan struct {
	EntryStart    float64
	EntryDuration float64
	HoldStart     float64
	HoldEnd       float64
	Moves         bool
	MoveStart     float64
	MoveEnd       float64
	HasExit       bool
	ExitStart     float64
	ExitDuration  float64
}

// Plan is the schedule of a whole sequence.
type Plan struct {
	Scenes []ScenePlan
	Total  float64
}

// NewPlan lays out resolved scenes back to back. Each hold starts where the
// previous one ends. Sequenced exits begin at that boundary alongside the
// next entry; crossfade and dissolve exits begin one transition duration
// earlier, together with the next entry. The last scene has no exit.
func NewPlan(list []scenes.Scene) *Plan {
	p := &Plan{Scenes: make([]ScenePlan, len(list))}
	cursor := 0.0

	for i, s := range list {
		tr := *s.Transition
		sp := ScenePlan{
			HoldStart:     cursor,
			HoldEnd:       cursor + s.Duration,
			EntryDuration: tr.Duration,
		}

		boundary := cursor
		if i > 0 {
			prev := &p.Scenes[i-1]
			if tr.Type.Overlaps() {
				boundary = math.Max(prev.EntryStart, cursor-tr.Duration)
			}
			prev.HasExit = true
			prev.ExitStart = boundary
			prev.ExitDuration = tr.Duration
		}
		sp.EntryStart = boundary + tr.Delay

		if s.Camera != nil && s.Camera.Movement != scenes.MovementStatic {
			sp.Moves = true
			sp.MoveStart = sp.EntryStart
			sp.MoveEnd = sp.EntryStart + s.Duration
		}

		p.Scenes[i] = sp
		cursor = sp.HoldEnd
	}

	for _, sp := range p.Scenes {
		p.Total = math.Max(p.Total, sp.HoldEnd)
		p.Total = math.Max(p.Total, sp.EntryStart+sp.EntryDuration)
		if sp.Moves {
			p.Total = math.Max(p.Total, sp.MoveEnd)
		}
		if sp.HasExit {
			p.Total = math.Max(p.Total, sp.ExitStart+sp.ExitDuration)
		}
	}
	return p
}

// SceneAt returns the index of the last scene whose hold started at or
// before t.
func (p *Plan) SceneAt(t float64) int {
	idx := 0
	for i, sp := range p.Scenes {
		if sp.HoldStart <= t {
			idx = i
		}
	}
	return idx
}
