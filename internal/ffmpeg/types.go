package ffmpeg

import (
	"io"
	"time"
)

// MediaInfo contains metadata about an audio or video file
type MediaInfo struct {
	FilePath   string
	Duration   time.Duration
	Bitrate    int64
	HasVideo   bool
	Width      int
	Height     int
	FPS        float64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
	SampleRate int
	Channels   int
}

// Seconds returns the duration in seconds.
func (m *MediaInfo) Seconds() float64 {
	return m.Duration.Seconds()
}

// Progress represents ffmpeg progress data
type Progress struct {
	// OutTime is the output position in seconds.
	OutTime float64
	Time    string
	Speed   string
	Done    bool
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	Stdout          io.Writer
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}

// DecodeOptions controls audio decoding to raw samples.
type DecodeOptions struct {
	SampleRate int
	Channels   int
	// Start and Limit trim the input in seconds. Zero means from the
	// beginning and to the end.
	Start float64
	Limit float64
}

// Decode defaults
const (
	DefaultSampleRate = 44100
	DefaultChannels   = 2
)

// CardOptions configures a generated still image.
type CardOptions struct {
	Width      int
	Height     int
	Background string
	Text       string
	FontSize   int
	FontColor  string
}
