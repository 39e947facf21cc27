package waveform

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Renderer is the waveform drawing primitive a host provides.
type Renderer interface {
	// SupportsPeaks reports whether LoadPeaks can be used instead of a URL.
	SupportsPeaks() bool
	LoadPeaks(peaks []Peak, duration float64) error
	LoadURL(url string) error
	OnSeeking(fn func(seconds float64))
	OnReady(fn func(duration float64))
}

// Binding connects a renderer to the shared playhead.
type Binding struct {
	mu       sync.RWMutex
	logger   zerolog.Logger
	ready    bool
	duration float64
	source   string
}

// Attach hands buf to r, by peaks when supported and otherwise as a WAV data
// URL, and forwards seeking events to onSeek.
func Attach(logger zerolog.Logger, r Renderer, buf Buffer, buckets int, onSeek func(float64)) (*Binding, error) {
	b := &Binding{
		logger: logger.With().Str("component", "waveform").Logger(),
	}

	r.OnReady(func(d float64) {
		b.mu.Lock()
		b.ready = true
		b.duration = d
		b.mu.Unlock()
		b.logger.Debug().Float64("duration", d).Msg("waveform ready")
	})
	r.OnSeeking(func(t float64) {
		if onSeek != nil {
			onSeek(t)
		}
	})

	if r.SupportsPeaks() {
		peaks, err := Sample(buf, buckets)
		if err != nil {
			return nil, err
		}
		if err := r.LoadPeaks(peaks, buf.Duration()); err != nil {
			return nil, fmt.Errorf("load peaks: %w", err)
		}
		b.source = "peaks"
		return b, nil
	}

	url, err := DataURL(buf)
	if err != nil {
		return nil, err
	}
	if err := r.LoadURL(url); err != nil {
		return nil, fmt.Errorf("load url: %w", err)
	}
	b.source = "url"
	return b, nil
}

// Ready reports whether the renderer finished loading, and its duration.
func (b *Binding) Ready() (bool, float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ready, b.duration
}

// Source is "peaks" or "url" depending on how the audio was handed over.
func (b *Binding) Source() string {
	return b.source
}
