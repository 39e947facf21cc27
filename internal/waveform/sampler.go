package waveform

import "errors"

// DefaultBuckets is the envelope resolution used for thumbnails and the
// full track view.
const DefaultBuckets = 2000

// ErrEmptyBuffer is returned when there are no samples to reduce.
var ErrEmptyBuffer = errors.New("audio buffer is empty")

// Buffer is decoded audio: one float slice per channel, samples in [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// Len returns the number of frames in the first channel.
func (b Buffer) Len() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Len()) / float64(b.SampleRate)
}

// Peak is the amplitude range of one bucket.
type Peak struct {
	Max float32 `json:"max"`
	Min float32 `json:"min"`
}

// Sample reduces channel 0 to n equal blocks of {max, min}. A buffer shorter
// than n yields one bucket per sample. Trailing samples that do not fill a
// whole block are dropped.
func Sample(buf Buffer, n int) ([]Peak, error) {
	size := buf.Len()
	if size == 0 {
		return nil, ErrEmptyBuffer
	}
	if n <= 0 {
		n = DefaultBuckets
	}
	if size < n {
		n = size
	}

	data := buf.Channels[0]
	block := size / n
	peaks := make([]Peak, n)
	for i := 0; i < n; i++ {
		start := i * block
		hi, lo := data[start], data[start]
		for _, s := range data[start+1 : start+block] {
			if s > hi {
				hi = s
			}
			if s < lo {
				lo = s
			}
		}
		peaks[i] = Peak{Max: hi, Min: lo}
	}
	return peaks, nil
}
