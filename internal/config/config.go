package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	Editor     EditorConfig     `yaml:"editor"`
	Waveform   WaveformConfig   `yaml:"waveform"`
	Generation GenerationConfig `yaml:"generation"`
	Playback   PlaybackConfig   `yaml:"playback"`
	FFmpeg     FFmpegConfig     `yaml:"ffmpeg"`
}

type EditorConfig struct {
	DefaultZoom     float64 `yaml:"default_zoom"`
	MinZoom         float64 `yaml:"min_zoom"`
	MaxZoom         float64 `yaml:"max_zoom"`
	ZoomStep        float64 `yaml:"zoom_step"`
	DefaultDuration float64 `yaml:"default_duration"`
	// Fractions of the visible width.
	ScrollEdge     float64 `yaml:"scroll_edge"`
	ScrollLeadIn   float64 `yaml:"scroll_lead_in"`
	ScrollLeadOut  float64 `yaml:"scroll_lead_out"`
	ViewportWidth  float64 `yaml:"viewport_width"`
	CellPixelWidth float64 `yaml:"cell_pixel_width"`
}

type WaveformConfig struct {
	Buckets         int `yaml:"buckets"`
	DecodeRate      int `yaml:"decode_rate"`
	DecodeChannels  int `yaml:"decode_channels"`
	ThumbnailWidth  int `yaml:"thumbnail_width"`
	ThumbnailHeight int `yaml:"thumbnail_height"`
}

type GenerationConfig struct {
	MaxClipDuration float64 `yaml:"max_clip_duration"`
	PlaceholderSpan float64 `yaml:"placeholder_span"`
	// OutputDir receives generated images.
	OutputDir string `yaml:"output_dir"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Workers   int    `yaml:"workers"`
}

type PlaybackConfig struct {
	FPS                int     `yaml:"fps"`
	Transition         string  `yaml:"transition"`
	TransitionDuration float64 `yaml:"transition_duration"`
	Ease               string  `yaml:"ease"`
	CameraIntensity    float64 `yaml:"camera_intensity"`
}

type FFmpegConfig struct {
	BinaryPath  string `yaml:"binary_path"`
	ProbePath   string `yaml:"probe_path"`
	Threads     int    `yaml:"threads"`
	DecodeLimit int    `yaml:"decode_limit_seconds"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			DefaultZoom:     1.0,
			MinZoom:         0.1,
			MaxZoom:         10,
			ZoomStep:        1.5,
			DefaultDuration: 60,
			ScrollEdge:      0.2,
			ScrollLeadIn:    0.3,
			ScrollLeadOut:   0.7,
			ViewportWidth:   1200,
			CellPixelWidth:  10,
		},
		Waveform: WaveformConfig{
			Buckets:         2000,
			DecodeRate:      44100,
			DecodeChannels:  2,
			ThumbnailWidth:  240,
			ThumbnailHeight: 40,
		},
		Generation: GenerationConfig{
			MaxClipDuration: 5,
			PlaceholderSpan: 5,
			OutputDir:       "generated",
			Width:           1280,
			Height:          720,
			Workers:         2,
		},
		Playback: PlaybackConfig{
			FPS:                60,
			Transition:         "fade",
			TransitionDuration: 0.5,
			Ease:               "power2.inOut",
			CameraIntensity:    0.1,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./framecannon.yaml",
		"./framecannon.yml",
		filepath.Join(os.Getenv("HOME"), ".framecannon", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
