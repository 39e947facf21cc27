package ffmpeg

import (
	"context"
	"fmt"
)

// RenderCard writes a single still image with centred text over a solid
// background.
func (e *Executor) RenderCard(ctx context.Context, output string, opts CardOptions) error {
	if output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.Background == "" {
		opts.Background = "black"
	}

	e.logger.Debug().
		Str("output", output).
		Int("width", opts.Width).
		Int("height", opts.Height).
		Msg("rendering card")

	source := fmt.Sprintf("color=c=%s:s=%dx%d:d=1", opts.Background, opts.Width, opts.Height)
	args := []string{"-f", "lavfi", "-i", source}
	if filter := NewFilterBuilder().DrawText(opts.Text, opts.FontSize, opts.FontColor).Build(); filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args, "-frames:v", "1", output)

	return e.Run(ctx, RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("card render")
		},
	})
}
