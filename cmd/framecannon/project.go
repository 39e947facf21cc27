package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/framecannon/internal/config"
	"github.com/kikiluvv/framecannon/internal/editor"
	"github.com/kikiluvv/framecannon/internal/ffmpeg"
	"github.com/kikiluvv/framecannon/internal/generate"
	"github.com/kikiluvv/framecannon/internal/logging"
	"github.com/kikiluvv/framecannon/internal/tui"
	"github.com/kikiluvv/framecannon/pkg/util"
)

var (
	projectName     string
	projectDuration float64
	projectAt       float64
	editLogFile     string
	editNoGenerate  bool
	generateWorkers int
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project file commands",
}

var projectInitCmd = &cobra.Command{
	Use:   "init [project.yaml]",
	Short: "Create an empty project with the default layers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if util.FileExists(args[0]) {
			return fmt.Errorf("%s already exists", args[0])
		}
		name := projectName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		d := projectDuration
		if d <= 0 {
			d = cfg.Editor.DefaultDuration
		}
		if err := editor.SaveProject(editor.NewProject(name, d), args[0]); err != nil {
			return err
		}
		log.Info().Str("project", name).Str("path", args[0]).Msg("project created")
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project.yaml]",
	Short: "List a project's layers and clips",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := editor.LoadProject(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  (%s)\n\n", p.Name, util.FormatPrecise(p.Duration))

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LAYER\tNAME\tKIND\tFLAGS")
		for i := len(p.Layers) - 1; i >= 0; i-- {
			l := p.Layers[i]
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", l.ID, l.Name, l.Kind, flags(map[string]bool{
				"locked":      l.Locked,
				"hidden":      !l.Visible,
				"isolated":    l.Isolated,
				"placeholder": l.PlaceholderHost,
			}))
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "CLIP\tTYPE\tLAYER\tSTART\tEND\tFLAGS")
		for _, c := range p.Clips {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", c.ID, c.Type(), c.Layer,
				util.FormatPrecise(c.Start), util.FormatPrecise(c.End()), flags(map[string]bool{
					"locked":      c.Locked,
					"hidden":      !c.Visible,
					"isolated":    c.Isolated,
					"placeholder": c.Placeholder,
					"pending":     c.PendingGeneration,
				}))
		}
		return tw.Flush()
	},
}

var projectSplitCmd = &cobra.Command{
	Use:   "split [project.yaml] [clip id] [time]",
	Short: "Split a clip at a time (seconds or M:SS)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscan(args[1], &id); err != nil {
			return fmt.Errorf("invalid clip id %q", args[1])
		}
		t, err := util.ParseSeconds(args[2])
		if err != nil {
			return err
		}
		return withSession(cmd, args[0], nil, func(s *editor.Session) error {
			rest, err := s.Split(id, t)
			if err != nil {
				return err
			}
			log.Info().Int64("clip", id).Int64("remainder", rest.ID).Float64("at", t).Msg("clip split")
			return nil
		})
	},
}

var projectPlaceholderCmd = &cobra.Command{
	Use:   "placeholder [project.yaml] [prompt]",
	Short: "Insert an AI image placeholder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args[0], nil, func(s *editor.Session) error {
			c, err := s.InsertPlaceholder(args[1], projectAt)
			if err != nil {
				return err
			}
			log.Info().Int64("clip", c.ID).Float64("at", c.Start).Msg("placeholder inserted")
			return nil
		})
	},
}

var projectImportAudioCmd = &cobra.Command{
	Use:   "import-audio [project.yaml] [audio file]",
	Short: "Decode an audio file into the isolated audio lane",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg)
		if err != nil {
			return err
		}
		return withSession(cmd, args[0], []editor.Option{editor.WithDecoder(exec)}, func(s *editor.Session) error {
			c, err := s.ImportAudio(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			log.Info().Int64("clip", c.ID).Float64("seconds", c.Duration).Msg("audio imported")
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [project.yaml]",
	Short: "Open the interactive timeline editor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		p, err := editor.LoadProject(args[0])
		if errors.Is(err, os.ErrNotExist) {
			p = editor.NewProject(strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])), cfg.Editor.DefaultDuration)
		} else if err != nil {
			return err
		}

		// the terminal belongs to the editor, so logs go to a file
		f, err := os.OpenFile(editLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		logger := logging.NewLogger(zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: "15:04:05"})

		opts, closeGen := sessionTools(logger, cfg, !editNoGenerate)
		defer closeGen()

		s := editor.Open(logger, cfg, p, opts...)
		defer s.Close()
		return tui.Run(logger, s, tui.Options{Path: args[0], FPS: cfg.Playback.FPS})
	},
}

var projectGenerateCmd = &cobra.Command{
	Use:   "generate [project.yaml]",
	Short: "Generate images for every pending placeholder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		opts, closeGen := sessionTools(log.Logger, cfg, true)
		defer closeGen()

		var n int
		err := withSession(cmd, args[0], opts, func(s *editor.Session) error {
			var err error
			n, err = s.GeneratePending(cmd.Context(), generateWorkers)
			return err
		})
		if err != nil {
			return err
		}
		log.Info().Int("generated", n).Str("path", args[0]).Msg("placeholders generated")
		return nil
	},
}

func init() {
	projectInitCmd.Flags().StringVar(&projectName, "name", "", "project name (default: file name)")
	projectInitCmd.Flags().Float64Var(&projectDuration, "duration", 0, "timeline length in seconds")
	projectPlaceholderCmd.Flags().Float64Var(&projectAt, "at", 0, "placeholder start in seconds")
	editCmd.Flags().StringVar(&editLogFile, "log-file", filepath.Join(os.TempDir(), "framecannon.log"), "where editor logs are written")
	projectGenerateCmd.Flags().IntVar(&generateWorkers, "workers", 0, "concurrent generations (default: generation.workers)")
	editCmd.Flags().BoolVar(&editNoGenerate, "no-generate", false, "disable placeholder regeneration")

	projectCmd.AddCommand(projectInitCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectSplitCmd)
	projectCmd.AddCommand(projectPlaceholderCmd)
	projectCmd.AddCommand(projectImportAudioCmd)
	projectCmd.AddCommand(projectGenerateCmd)
}

// withSession opens a project, runs fn against a session and saves on success.
func withSession(cmd *cobra.Command, path string, opts []editor.Option, fn func(*editor.Session) error) error {
	cfg := config.FromContext(cmd.Context())
	p, err := editor.LoadProject(path)
	if err != nil {
		return err
	}
	s := editor.Open(log.Logger, cfg, p, opts...)
	defer s.Close()
	if err := fn(s); err != nil {
		return err
	}
	return s.Save(path)
}

// sessionTools wires the ffmpeg decoder and the image generator chain. The
// in-process canvas generator backs up the ffmpeg card so placeholders can
// still be filled when ffmpeg is missing.
func sessionTools(logger zerolog.Logger, cfg *config.Config, withGenerator bool) ([]editor.Option, func()) {
	var opts []editor.Option
	var gens []generate.Generator

	exec, err := ffmpeg.New(logger, cfg.FFmpeg)
	if err == nil {
		opts = append(opts, editor.WithDecoder(exec))
		gens = append(gens, generate.NewCardGenerator(logger, exec, cfg.Generation.OutputDir))
	} else {
		logger.Warn().Err(err).Msg("ffmpeg unavailable; audio import disabled")
	}
	if !withGenerator {
		return opts, func() {}
	}
	gens = append(gens, generate.NewCanvasGenerator(logger, cfg.Generation.OutputDir))
	gen := generate.NewChain(gens...)
	opts = append(opts, editor.WithGenerator(gen))
	return opts, func() {
		if err := gen.Close(); err != nil {
			logger.Warn().Err(err).Msg("generator close failed")
		}
	}
}

func flags(set map[string]bool) string {
	var out []string
	for _, name := range []string{"locked", "hidden", "isolated", "placeholder", "pending"} {
		if set[name] {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}
