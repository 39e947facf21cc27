package editor

import (
	"sort"

	"github.com/kikiluvv/framecannon/internal/clips"
	"github.com/kikiluvv/framecannon/internal/scenes"
)

var transitionTypes = map[clips.TransitionKind]scenes.TransitionType{
	clips.TransitionCrossfade: scenes.TransitionCrossfade,
	clips.TransitionFade:      scenes.TransitionFade,
	clips.TransitionWipe:      scenes.TransitionSlideLeft,
	clips.TransitionSlide:     scenes.TransitionSlideLeft,
	clips.TransitionZoom:      scenes.TransitionZoomIn,
}

// Scenes turns the visible, generated image clips into a scene list for the
// compositor, in start order. A transition clip covering an image's start
// sets that image's entry; blur and glow effect clips covering it set its
// filters. Placeholders without media are skipped.
func (s *Session) Scenes() []scenes.Scene {
	return ScenesFromClips(s.store.All())
}

// ScenesFromClips is Scenes over an arbitrary clip set.
func ScenesFromClips(all []clips.Clip) []scenes.Scene {
	var images []clips.Clip
	for _, c := range all {
		img, ok := c.Content.(clips.Image)
		if ok && c.Visible && img.Src != "" {
			images = append(images, c)
		}
	}
	sort.SliceStable(images, func(i, j int) bool { return images[i].Start < images[j].Start })

	out := make([]scenes.Scene, 0, len(images))
	for _, c := range images {
		sc := scenes.Scene{
			Image:    c.Content.(clips.Image).Src,
			Duration: c.Duration,
		}
		for _, other := range all {
			if !other.Visible || other.Start > c.Start || c.Start >= other.End() {
				continue
			}
			switch v := other.Content.(type) {
			case clips.Transition:
				if t, ok := transitionTypes[v.Kind]; ok {
					sc.Transition = &scenes.Transition{Type: t, Duration: v.Duration}
				}
			case clips.Effect:
				if sc.Effects == nil {
					sc.Effects = &scenes.Effects{}
				}
				switch v.Kind {
				case clips.EffectBlur:
					sc.Effects.Blur = v.Intensity * 10
				case clips.EffectGlow:
					sc.Effects.Brightness = 100 + v.Intensity*50
					sc.Effects.Shadow = true
				}
			}
		}
		out = append(out, sc)
	}
	return out
}
