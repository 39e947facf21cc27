package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/framecannon/internal/config"
	"github.com/kikiluvv/framecannon/internal/logging"
	"github.com/kikiluvv/framecannon/internal/scenes"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "framecannon",
	Short: "framecannon - layered timeline editor and scene compositor",
	Long:  "Edit layered music-video timelines in the terminal and preview still-image scene sequences.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./framecannon.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(waveformCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "framecannon.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// sceneDefaults turns the playback section into compositor defaults.
func sceneDefaults(cfg *config.Config) (scenes.Defaults, error) {
	d := scenes.StandardDefaults()
	if cfg.Playback.Transition != "" {
		d.Transition = scenes.TransitionType(cfg.Playback.Transition)
	}
	if cfg.Playback.TransitionDuration > 0 {
		d.Duration = cfg.Playback.TransitionDuration
	}
	if cfg.Playback.Ease != "" {
		d.Ease = cfg.Playback.Ease
	}
	if cfg.Playback.CameraIntensity > 0 {
		d.CameraIntensity = cfg.Playback.CameraIntensity
	}
	if err := d.Validate(); err != nil {
		return scenes.Defaults{}, fmt.Errorf("playback config: %w", err)
	}
	return d, nil
}

// contextUntil derives a context from the command that ends when done closes.
func contextUntil(cmd *cobra.Command, done <-chan struct{}) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(cmd.Context())
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
