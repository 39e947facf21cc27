package generate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/kikiluvv/framecannon/internal/clips"
	"github.com/kikiluvv/framecannon/pkg/util"
)

// CanvasGenerator draws title cards in process. It needs neither ffmpeg nor
// the network, so it is the last link of a generator chain.
type CanvasGenerator struct {
	logger zerolog.Logger
	outDir string
}

// NewCanvasGenerator writes cards under outDir.
func NewCanvasGenerator(logger zerolog.Logger, outDir string) *CanvasGenerator {
	return &CanvasGenerator{
		logger: logger.With().Str("generator", "canvas").Logger(),
		outDir: outDir,
	}
}

// Generate draws the prompt centred on a card coloured by ColorFor.
func (g *CanvasGenerator) Generate(ctx context.Context, req Request) (clips.Image, error) {
	if err := ctx.Err(); err != nil {
		return clips.Image{}, err
	}
	if err := util.EnsureDir(g.outDir); err != nil {
		return clips.Image{}, fmt.Errorf("failed to create output dir: %w", err)
	}
	w, h := req.Width, req.Height
	if w <= 0 || h <= 0 {
		w, h = 1280, 720
	}

	dc := gg.NewContext(w, h)
	dc.SetHexColor(strings.TrimPrefix(ColorFor(req.Prompt), "0x"))
	dc.Clear()

	// basicfont is 7x13; scale it up so the prompt reads at card size
	scale := float64(h) / 240
	cx, cy := float64(w)/2, float64(h)/2
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(1, 1, 1)
	dc.Push()
	dc.ScaleAbout(scale, scale, cx, cy)
	dc.DrawStringWrapped(req.Prompt, cx, cy, 0.5, 0.5, float64(w)*0.8/scale, 1.4, gg.AlignCenter)
	dc.Pop()

	out := filepath.Join(g.outDir, fmt.Sprintf("clip_%d.png", req.ClipID))
	if err := dc.SavePNG(out); err != nil {
		g.logger.Warn().Err(err).Int64("clip", req.ClipID).Msg("card save failed")
		return clips.Image{}, err
	}
	g.logger.Debug().Int64("clip", req.ClipID).Str("output", out).Msg("card generated")
	return clips.Image{Src: out, Prompt: req.Prompt}, nil
}

func (g *CanvasGenerator) Close() error { return nil }
