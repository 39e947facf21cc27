package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/framecannon/internal/config"
	"github.com/kikiluvv/framecannon/internal/ffmpeg"
	"github.com/kikiluvv/framecannon/internal/waveform"
)

var (
	waveformOut     string
	waveformWAV     string
	waveformSVG     string
	waveformBuckets int
	waveformLimit   float64
)

var waveformCmd = &cobra.Command{
	Use:   "waveform [audio file]",
	Short: "Decode audio and write its peak envelope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg)
		if err != nil {
			return err
		}

		info, err := exec.ProbeMedia(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !info.HasAudio {
			return fmt.Errorf("%s has no audio stream", args[0])
		}
		log.Debug().
			Str("codec", info.AudioCodec).
			Int("sample_rate", info.SampleRate).
			Int("channels", info.Channels).
			Float64("seconds", info.Seconds()).
			Msg("input probed")

		limit := waveformLimit
		if limit <= 0 {
			limit = float64(cfg.FFmpeg.DecodeLimit)
		}
		buf, err := exec.DecodeAudio(cmd.Context(), args[0], ffmpeg.DecodeOptions{
			SampleRate: cfg.Waveform.DecodeRate,
			Channels:   cfg.Waveform.DecodeChannels,
			Limit:      limit,
		})
		if err != nil {
			return err
		}

		buckets := waveformBuckets
		if buckets <= 0 {
			buckets = cfg.Waveform.Buckets
		}
		peaks, err := waveform.Sample(*buf, buckets)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if waveformOut != "" && waveformOut != "-" {
			f, err := os.Create(waveformOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)
		if err := enc.Encode(struct {
			Duration float64         `json:"duration"`
			Peaks    []waveform.Peak `json:"peaks"`
		}{buf.Duration(), peaks}); err != nil {
			return err
		}

		if waveformWAV != "" {
			data, err := waveform.EncodeWAV(*buf)
			if err != nil {
				return err
			}
			if err := os.WriteFile(waveformWAV, data, 0644); err != nil {
				return err
			}
		}
		if waveformSVG != "" {
			svg := waveform.SVG(peaks, cfg.Waveform.ThumbnailWidth, cfg.Waveform.ThumbnailHeight, "")
			if err := os.WriteFile(waveformSVG, []byte(svg), 0644); err != nil {
				return err
			}
		}

		log.Info().
			Str("input", args[0]).
			Float64("seconds", buf.Duration()).
			Int("peaks", len(peaks)).
			Msg("waveform sampled")
		return nil
	},
}

func init() {
	waveformCmd.Flags().StringVarP(&waveformOut, "output", "o", "-", "peaks JSON output (- for stdout)")
	waveformCmd.Flags().StringVar(&waveformWAV, "wav", "", "also write the decoded audio as 16-bit WAV")
	waveformCmd.Flags().StringVar(&waveformSVG, "svg", "", "also write an SVG thumbnail")
	waveformCmd.Flags().IntVar(&waveformBuckets, "buckets", 0, "peak count (default from config)")
	waveformCmd.Flags().Float64Var(&waveformLimit, "limit", 0, "decode at most this many seconds")
}
