package editor

import (
	"errors"

	"github.com/kikiluvv/framecannon/internal/waveform"
)

// peakStrip is the waveform renderer behind the audio lane. It keeps the
// sampled envelope for the timeline and is ready as soon as peaks arrive.
type peakStrip struct {
	peaks   []waveform.Peak
	onReady func(float64)
	onSeek  func(float64)
}

func (p *peakStrip) SupportsPeaks() bool { return true }

func (p *peakStrip) LoadPeaks(peaks []waveform.Peak, duration float64) error {
	p.peaks = peaks
	if p.onReady != nil {
		p.onReady(duration)
	}
	return nil
}

func (p *peakStrip) LoadURL(string) error {
	return errors.New("peak strip draws peaks only")
}

func (p *peakStrip) OnSeeking(fn func(float64)) { p.onSeek = fn }

func (p *peakStrip) OnReady(fn func(float64)) { p.onReady = fn }

// scrub forwards a seek made on the waveform itself.
func (p *peakStrip) scrub(t float64) {
	if p.onSeek != nil {
		p.onSeek(t)
	}
}
