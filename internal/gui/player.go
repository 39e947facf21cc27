package gui

import (
	"context"
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/framecannon/internal/compositor"
	"github.com/kikiluvv/framecannon/internal/scenes"
	"github.com/kikiluvv/framecannon/pkg/util"
)

var backgroundColor = color.NRGBA{R: 0x09, G: 0x09, B: 0x0b, A: 0xff}

// Options configure the player window.
type Options struct {
	Title    string
	Width    int
	Height   int
	FPS      int
	Autoplay bool
	Defaults scenes.Defaults
}

// Player is a window previewing one scene sequence.
type Player struct {
	logger zerolog.Logger
	stage  *Stage
	comp   *compositor.Compositor

	playButton *widget.Button
	slider     *widget.Slider
	timeLabel  *widget.Label
	sceneLabel *widget.Label
	scenes     int
}

// NewPlayer builds the compositor and controls. It must be called with a
// running fyne app, before the window is shown.
func NewPlayer(logger zerolog.Logger, list []scenes.Scene, opts Options) (*Player, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.Defaults == (scenes.Defaults{}) {
		opts.Defaults = scenes.StandardDefaults()
	}

	p := &Player{
		logger: logger.With().Str("component", "player").Logger(),
		stage:  NewStage(fyne.NewSize(float32(opts.Width), float32(opts.Height))),
		scenes: len(list),
	}
	p.comp = compositor.New(logger, p.stage, compositor.Callbacks{
		OnSceneChange: func(i int) {
			p.logger.Debug().Int("scene", i).Msg("scene change")
		},
		OnComplete: func() {
			p.logger.Debug().Msg("sequence complete")
		},
	}, compositor.WithDefaults(opts.Defaults))
	if err := p.comp.Build(list); err != nil {
		return nil, fmt.Errorf("build sequence: %w", err)
	}

	p.playButton = widget.NewButton("Play", p.togglePlay)
	p.slider = widget.NewSlider(0, 1)
	p.slider.Step = 0.001
	p.slider.OnChangeEnded = func(v float64) {
		if err := p.comp.Seek(v); err != nil {
			p.logger.Warn().Err(err).Msg("seek failed")
		}
		p.Sync()
	}
	p.timeLabel = widget.NewLabel("")
	p.sceneLabel = widget.NewLabel("")
	p.Sync()
	return p, nil
}

// Content lays out the stage above the transport controls.
func (p *Player) Content() fyne.CanvasObject {
	restart := widget.NewButton("Restart", func() {
		if err := p.comp.Restart(); err != nil {
			p.logger.Warn().Err(err).Msg("restart failed")
		}
		p.Sync()
	})
	controls := container.NewBorder(nil, nil,
		container.NewHBox(p.playButton, restart),
		container.NewHBox(p.timeLabel, p.sceneLabel),
		p.slider)
	return container.NewBorder(nil, controls, nil, nil, p.stage.Object())
}

// Compositor exposes the sequence being played.
func (p *Player) Compositor() *compositor.Compositor { return p.comp }

// Stage exposes the drawing surface.
func (p *Player) Stage() *Stage { return p.stage }

func (p *Player) togglePlay() {
	var err error
	if p.comp.State() == compositor.StatePlaying {
		err = p.comp.Pause()
	} else {
		err = p.comp.Play()
	}
	if err != nil {
		p.logger.Warn().Err(err).Msg("transport failed")
	}
	p.Sync()
}

// Sync redraws the stage and controls from the compositor. Call it on the
// fyne goroutine.
func (p *Player) Sync() {
	p.stage.Sync()
	switch p.comp.State() {
	case compositor.StatePlaying:
		p.playButton.SetText("Pause")
	case compositor.StateComplete:
		p.playButton.SetText("Replay")
	default:
		p.playButton.SetText("Play")
	}
	p.slider.Value = p.comp.Progress()
	p.slider.Refresh()
	p.timeLabel.SetText(fmt.Sprintf("%s / %s",
		util.FormatPrecise(p.comp.CurrentTime()),
		util.FormatPrecise(p.comp.TotalDuration())))
	p.sceneLabel.SetText(fmt.Sprintf("scene %d/%d", p.comp.CurrentScene()+1, p.scenes))
}

// Run opens a player window and blocks until it is closed.
func Run(logger zerolog.Logger, list []scenes.Scene, opts Options) error {
	if opts.Title == "" {
		opts.Title = "framecannon"
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}

	a := app.NewWithID("com.kikiluvv.framecannon")
	w := a.NewWindow(opts.Title)

	p, err := NewPlayer(logger, list, opts)
	if err != nil {
		return err
	}
	w.SetContent(p.Content())
	w.Resize(fyne.NewSize(float32(p.stage.size.Width), float32(p.stage.size.Height)+60))

	ctx, cancel := context.WithCancel(context.Background())
	w.SetOnClosed(func() {
		cancel()
		p.comp.Destroy()
	})
	go func() {
		err := p.comp.Run(ctx, opts.FPS, func() { fyne.Do(p.Sync) })
		if err != nil && ctx.Err() == nil {
			p.logger.Error().Err(err).Msg("frame loop stopped")
		}
	}()
	if opts.Autoplay {
		if err := p.comp.Play(); err != nil {
			return err
		}
	}

	p.logger.Info().Int("scenes", len(list)).Float64("duration", p.comp.TotalDuration()).Msg("player opened")
	w.ShowAndRun()
	return nil
}
