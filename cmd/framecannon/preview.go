package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/framecannon/internal/compositor"
	"github.com/kikiluvv/framecannon/internal/config"
	"github.com/kikiluvv/framecannon/internal/editor"
	"github.com/kikiluvv/framecannon/internal/gui"
	"github.com/kikiluvv/framecannon/internal/scenes"
	"github.com/kikiluvv/framecannon/internal/stage"
	"github.com/kikiluvv/framecannon/pkg/util"
)

var (
	previewRealtime bool
	playerProject   bool
	playerAutoplay  bool
)

var previewCmd = &cobra.Command{
	Use:   "preview [scenes.yaml]",
	Short: "Run a scene sequence headlessly and report scene changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		list, err := scenes.Read(args[0])
		if err != nil {
			return err
		}
		defaults, err := sceneDefaults(cfg)
		if err != nil {
			return err
		}

		var comp *compositor.Compositor
		done := make(chan struct{})
		comp = compositor.New(log.Logger, stage.NewMemory(1280, 720), compositor.Callbacks{
			OnSceneChange: func(i int) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  scene %d  %s\n",
					util.FormatPrecise(comp.CurrentTime()), i+1, list.Scenes[i].Image)
			},
			OnComplete: func() { close(done) },
		}, compositor.WithDefaults(defaults))

		if err := comp.Build(list.Scenes); err != nil {
			return err
		}
		defer comp.Destroy()
		if err := comp.Play(); err != nil {
			return err
		}

		fps := cfg.Playback.FPS
		if fps <= 0 {
			fps = 60
		}
		if previewRealtime {
			ctx, cancel := contextUntil(cmd, done)
			defer cancel()
			if err := comp.Run(ctx, fps, nil); err != nil && ctx.Err() == nil {
				return err
			}
		} else {
			for comp.State() == compositor.StatePlaying {
				comp.Tick(1 / float64(fps))
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s  end\n", util.FormatPrecise(comp.TotalDuration()))
		return nil
	},
}

var playerCmd = &cobra.Command{
	Use:   "player [scenes.yaml | project.yaml]",
	Short: "Open the desktop preview player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		var list []scenes.Scene
		if playerProject {
			p, err := editor.LoadProject(args[0])
			if err != nil {
				return err
			}
			list = editor.ScenesFromClips(p.Clips)
		} else {
			l, err := scenes.Read(args[0])
			if err != nil {
				return err
			}
			list = l.Scenes
		}

		defaults, err := sceneDefaults(cfg)
		if err != nil {
			return err
		}
		return gui.Run(log.Logger, list, gui.Options{
			Title:    "framecannon - " + args[0],
			FPS:      cfg.Playback.FPS,
			Autoplay: playerAutoplay,
			Defaults: defaults,
		})
	},
}

func init() {
	previewCmd.Flags().BoolVar(&previewRealtime, "realtime", false, "play at wall-clock speed instead of simulating")
	playerCmd.Flags().BoolVar(&playerProject, "project", false, "treat the argument as a project file")
	playerCmd.Flags().BoolVar(&playerAutoplay, "autoplay", false, "start playing immediately")
}
