package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/kikiluvv/framecannon/internal/clips"
)

// ErrNoGenerator is returned by an empty Chain.
var ErrNoGenerator = errors.New("no generator available")

// Request describes one placeholder image to produce.
type Request struct {
	ClipID int64
	Prompt string
	Width  int
	Height int
}

// Generator produces media for placeholder clips
type Generator interface {
	Generate(ctx context.Context, req Request) (clips.Image, error)
	Close() error
}

// Chain tries each generator in order until one succeeds
type Chain struct {
	generators []Generator
}

// NewChain creates a generator that falls back through generators
func NewChain(generators ...Generator) *Chain {
	return &Chain{generators: generators}
}

// Generate returns the first successful result
func (c *Chain) Generate(ctx context.Context, req Request) (clips.Image, error) {
	if len(c.generators) == 0 {
		return clips.Image{}, ErrNoGenerator
	}
	var errs []error
	for i, g := range c.generators {
		img, err := g.Generate(ctx, req)
		if err == nil {
			return img, nil
		}
		if ctx.Err() != nil {
			return clips.Image{}, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("generator %d: %w", i, err))
	}
	return clips.Image{}, errors.Join(errs...)
}

// Close closes all underlying generators
func (c *Chain) Close() error {
	var errs []error
	for _, g := range c.generators {
		if err := g.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
