package generate

import (
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/framecannon/internal/clips"
	"github.com/kikiluvv/framecannon/internal/ffmpeg"
	"github.com/kikiluvv/framecannon/pkg/util"
)

// CardRenderer draws a still image. *ffmpeg.Executor satisfies it.
type CardRenderer interface {
	RenderCard(ctx context.Context, output string, opts ffmpeg.CardOptions) error
}

var cardColors = []string{"0x1e3a8a", "0x7c2d12", "0x14532d", "0x581c87", "0x134e4a", "0x831843"}

// CardGenerator renders the prompt onto a coloured title card. It stands in
// for a remote image model and never needs the network.
type CardGenerator struct {
	logger   zerolog.Logger
	renderer CardRenderer
	outDir   string
}

// NewCardGenerator writes cards under outDir
func NewCardGenerator(logger zerolog.Logger, renderer CardRenderer, outDir string) *CardGenerator {
	return &CardGenerator{
		logger:   logger.With().Str("generator", "card").Logger(),
		renderer: renderer,
		outDir:   outDir,
	}
}

// Generate renders the card for req
func (g *CardGenerator) Generate(ctx context.Context, req Request) (clips.Image, error) {
	if err := util.EnsureDir(g.outDir); err != nil {
		return clips.Image{}, fmt.Errorf("failed to create output dir: %w", err)
	}
	out := filepath.Join(g.outDir, fmt.Sprintf("clip_%d.png", req.ClipID))

	err := g.renderer.RenderCard(ctx, out, ffmpeg.CardOptions{
		Width:      req.Width,
		Height:     req.Height,
		Background: ColorFor(req.Prompt),
		Text:       req.Prompt,
		FontSize:   36,
	})
	if err != nil {
		g.logger.Warn().Err(err).Int64("clip", req.ClipID).Msg("card render failed")
		return clips.Image{}, err
	}

	g.logger.Debug().Int64("clip", req.ClipID).Str("output", out).Msg("card generated")
	return clips.Image{Src: out, Prompt: req.Prompt}, nil
}

// Close is a no-op for card generators
func (g *CardGenerator) Close() error {
	return nil
}

// ColorFor picks a stable background colour for a prompt.
func ColorFor(prompt string) string {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	return cardColors[h.Sum32()%uint32(len(cardColors))]
}
