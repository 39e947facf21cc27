package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kikiluvv/framecannon/internal/waveform"
)

// DecodeAudio decodes the first audio stream of input to planar float
// samples for the waveform sampler.
func (e *Executor) DecodeAudio(ctx context.Context, input string, opts DecodeOptions) (*waveform.Buffer, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Channels <= 0 {
		opts.Channels = DefaultChannels
	}

	e.logger.Info().
		Str("input", input).
		Int("sample_rate", opts.SampleRate).
		Int("channels", opts.Channels).
		Msg("decoding audio")

	args := []string{"-i", input, "-vn"}
	if filter := NewFilterBuilder().ATrim(opts.Start, opts.Limit).Build(); filter != "" {
		args = append(args, "-af", filter)
	}
	args = append(args,
		"-ac", fmt.Sprintf("%d", opts.Channels),
		"-ar", fmt.Sprintf("%d", opts.SampleRate),
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"pipe:1",
	)

	var out bytes.Buffer
	err := e.Run(ctx, RunOptions{
		Args:   args,
		Stdout: &out,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("audio decode")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", input, err)
	}

	channels, err := deinterleave(out.Bytes(), opts.Channels)
	if err != nil {
		return nil, err
	}
	buf := &waveform.Buffer{SampleRate: opts.SampleRate, Channels: channels}

	e.logger.Info().
		Int("samples", buf.Len()).
		Float64("seconds", buf.Duration()).
		Msg("audio decoded")
	return buf, nil
}

// deinterleave splits little-endian interleaved float32 frames into one
// slice per channel. A trailing partial frame is dropped.
func deinterleave(data []byte, channels int) ([][]float32, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	frameSize := 4 * channels
	frames := len(data) / frameSize
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		base := i * frameSize
		for c := 0; c < channels; c++ {
			bits := binary.LittleEndian.Uint32(data[base+4*c:])
			out[c][i] = math.Float32frombits(bits)
		}
	}
	return out, nil
}
