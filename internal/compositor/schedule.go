package compositor

import (
	"github.com/kikiluvv/framecannon/internal/scenes"
	"github.com/kikiluvv/framecannon/internal/stage"
	"github.com/kikiluvv/framecannon/internal/tween"
)

// slideOffset is where a sliding element starts, in percent of its size.
func slideOffset(t scenes.TransitionType) (dx, dy float64) {
	switch t {
	case scenes.TransitionSlideLeft:
		return 100, 0
	case scenes.TransitionSlideRight:
		return -100, 0
	case scenes.TransitionSlideUp:
		return 0, 100
	case scenes.TransitionSlideDown:
		return 0, -100
	}
	return 0, 0
}

// schedule adds the entry and camera movement of one scene.
func schedule(tl *tween.Timeline, el *stage.Element, s scenes.Scene, sp ScenePlan) {
	tr := *s.Transition
	ease := tween.Ease(tr.Ease)
	at := tween.At(sp.EntryStart)

	switch {
	case tr.Type == scenes.TransitionCut:
		tl.Set(el, tween.Props{stage.PropOpacity: 1}, at)
	case tr.Type.IsSlide():
		dx, dy := slideOffset(tr.Type)
		tl.Set(el, tween.Props{stage.PropOpacity: 1}, at)
		tl.FromTo(el,
			tween.Props{stage.PropX: dx, stage.PropY: dy},
			tween.Props{stage.PropX: 0, stage.PropY: 0},
			sp.EntryDuration, ease, at)
	case tr.Type == scenes.TransitionZoomIn:
		tl.FromTo(el,
			tween.Props{stage.PropOpacity: 0, stage.PropScale: 0.5},
			tween.Props{stage.PropOpacity: 1, stage.PropScale: 1},
			sp.EntryDuration, ease, at)
	case tr.Type == scenes.TransitionZoomOut:
		tl.FromTo(el,
			tween.Props{stage.PropOpacity: 0, stage.PropScale: 1.5},
			tween.Props{stage.PropOpacity: 1, stage.PropScale: 1},
			sp.EntryDuration, ease, at)
	default:
		tl.FromTo(el,
			tween.Props{stage.PropOpacity: 0},
			tween.Props{stage.PropOpacity: 1},
			sp.EntryDuration, ease, at)
	}

	if !sp.Moves {
		return
	}
	span := sp.MoveEnd - sp.MoveStart
	move := tween.At(sp.MoveStart)
	intensity := s.Camera.Intensity
	switch s.Camera.Movement {
	case scenes.MovementPanLeft:
		tl.FromTo(el, tween.Props{stage.PropPanX: 0}, tween.Props{stage.PropPanX: -intensity * 100}, span, tween.Linear, move)
	case scenes.MovementPanRight:
		tl.FromTo(el, tween.Props{stage.PropPanX: 0}, tween.Props{stage.PropPanX: intensity * 100}, span, tween.Linear, move)
	case scenes.MovementZoomIn:
		tl.FromTo(el, tween.Props{stage.PropCamScale: 1}, tween.Props{stage.PropCamScale: 1 + intensity}, span, tween.Linear, move)
	case scenes.MovementZoomOut:
		tl.FromTo(el, tween.Props{stage.PropCamScale: 1 + intensity}, tween.Props{stage.PropCamScale: 1}, span, tween.Linear, move)
	}
}

// scheduleExit adds the exit of a scene driven by the next scene's
// transition.
func scheduleExit(tl *tween.Timeline, el *stage.Element, next scenes.Transition, sp ScenePlan) {
	ease := tween.Ease(next.Ease)
	at := tween.At(sp.ExitStart)
	d := sp.ExitDuration

	switch {
	case next.Type == scenes.TransitionCut:
		tl.Set(el, tween.Props{stage.PropOpacity: 0}, at)
	case next.Type.IsSlide():
		dx, dy := slideOffset(next.Type)
		tl.FromTo(el,
			tween.Props{stage.PropX: 0, stage.PropY: 0},
			tween.Props{stage.PropX: -dx, stage.PropY: -dy},
			d, ease, at)
		tl.Set(el, tween.Props{stage.PropOpacity: 0}, tween.At(sp.ExitStart+d))
	case next.Type == scenes.TransitionZoomIn:
		tl.FromTo(el,
			tween.Props{stage.PropOpacity: 1, stage.PropScale: 1},
			tween.Props{stage.PropOpacity: 0, stage.PropScale: 0.5},
			d, ease, at)
	case next.Type == scenes.TransitionZoomOut:
		tl.FromTo(el,
			tween.Props{stage.PropOpacity: 1, stage.PropScale: 1},
			tween.Props{stage.PropOpacity: 0, stage.PropScale: 1.5},
			d, ease, at)
	default:
		tl.FromTo(el,
			tween.Props{stage.PropOpacity: 1},
			tween.Props{stage.PropOpacity: 0},
			d, ease, at)
	}
}
