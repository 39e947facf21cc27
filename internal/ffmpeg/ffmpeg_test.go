package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/framecannon/internal/config"
)

// TestResults stores results from all tests for final summary
type TestResults struct {
	ExecutorPath  string
	ProbeResults  *MediaInfo
	DecodedFrames int
	CardCreated   bool
	Errors        []string
	TestDuration  time.Duration
}

var globalResults = &TestResults{
	Errors: make([]string, 0),
}

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	e, err := New(logger, config.FFmpegConfig{Threads: 2})
	if err != nil {
		globalResults.Errors = append(globalResults.Errors, fmt.Sprintf("Executor creation failed: %v", err))
		t.Fatalf("failed to create executor: %v", err)
	}
	return e
}

// makeTone renders a stereo sine wave to a wav file.
func makeTone(t *testing.T, e *Executor, seconds float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	err := e.Run(context.Background(), RunOptions{Args: []string{
		"-f", "lavfi",
		"-i", fmt.Sprintf("sine=frequency=440:sample_rate=8000:duration=%g", seconds),
		"-ac", "2",
		path,
	}})
	if err != nil {
		t.Fatalf("failed to render tone: %v", err)
	}
	return path
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	if e.ffmpegPath == "" {
		t.Error("ffmpeg path is empty")
	}
	if e.ffprobePath == "" {
		t.Error("ffprobe path is empty")
	}

	globalResults.ExecutorPath = e.ffmpegPath
	t.Logf("ffmpeg: %s", e.ffmpegPath)
	t.Logf("ffprobe: %s", e.ffprobePath)
}

func TestExecutorMissingBinary(t *testing.T) {
	_, err := New(zerolog.Nop(), config.FFmpegConfig{BinaryPath: "definitely-not-ffmpeg-xyz"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestRunWithoutArgs(t *testing.T) {
	e := &Executor{logger: zerolog.Nop()}
	if err := e.Run(context.Background(), RunOptions{}); err != ErrNoArgs {
		t.Fatalf("expected ErrNoArgs, got %v", err)
	}
}

func TestProbeMedia(t *testing.T) {
	skipIfNoFFmpeg(t)
	e := newTestExecutor(t)
	path := makeTone(t, e, 2)

	start := time.Now()
	info, err := e.ProbeMedia(context.Background(), path)
	globalResults.TestDuration = time.Since(start)
	if err != nil {
		globalResults.Errors = append(globalResults.Errors, fmt.Sprintf("Probe failed: %v", err))
		t.Fatalf("probe failed: %v", err)
	}
	globalResults.ProbeResults = info

	if !info.HasAudio {
		t.Error("expected an audio stream")
	}
	if info.HasVideo {
		t.Error("did not expect a video stream")
	}
	if info.SampleRate != 8000 {
		t.Errorf("expected 8000 Hz, got %d", info.SampleRate)
	}
	if info.Channels != 2 {
		t.Errorf("expected 2 channels, got %d", info.Channels)
	}
	if math.Abs(info.Seconds()-2) > 0.05 {
		t.Errorf("expected ~2s, got %v", info.Duration)
	}
	t.Logf("probed %s: %v %s %dHz", path, info.Duration, info.AudioCodec, info.SampleRate)
}

func TestProbeMediaInvalidFile(t *testing.T) {
	skipIfNoFFmpeg(t)
	e := newTestExecutor(t)

	if _, err := e.ProbeMedia(context.Background(), "/nonexistent/file.wav"); err == nil {
		t.Error("expected error for nonexistent file")
	}
	if _, err := e.ProbeMedia(context.Background(), ""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestDecodeAudio(t *testing.T) {
	skipIfNoFFmpeg(t)
	e := newTestExecutor(t)
	path := makeTone(t, e, 1)

	buf, err := e.DecodeAudio(context.Background(), path, DecodeOptions{SampleRate: 8000, Channels: 2})
	if err != nil {
		globalResults.Errors = append(globalResults.Errors, fmt.Sprintf("Decode failed: %v", err))
		t.Fatalf("decode failed: %v", err)
	}
	globalResults.DecodedFrames = buf.Len()

	if len(buf.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(buf.Channels))
	}
	if math.Abs(buf.Duration()-1) > 0.05 {
		t.Errorf("expected ~1s of audio, got %.3fs", buf.Duration())
	}
	var peak float32
	for _, s := range buf.Channels[0] {
		if s > peak {
			peak = s
		}
	}
	if peak <= 0.01 || peak > 1.0001 {
		t.Errorf("unexpected peak %v", peak)
	}
	t.Logf("decoded %d frames, peak %.3f", buf.Len(), peak)
}

func TestDecodeAudioLimit(t *testing.T) {
	skipIfNoFFmpeg(t)
	e := newTestExecutor(t)
	path := makeTone(t, e, 2)

	buf, err := e.DecodeAudio(context.Background(), path, DecodeOptions{SampleRate: 8000, Channels: 1, Start: 0.5, Limit: 0.5})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if math.Abs(buf.Duration()-0.5) > 0.05 {
		t.Errorf("expected ~0.5s, got %.3fs", buf.Duration())
	}
}

func TestDecodeAudioCancelled(t *testing.T) {
	skipIfNoFFmpeg(t)
	e := newTestExecutor(t)
	path := makeTone(t, e, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.DecodeAudio(ctx, path, DecodeOptions{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestRenderCard(t *testing.T) {
	skipIfNoFFmpeg(t)
	e := newTestExecutor(t)

	out := filepath.Join(t.TempDir(), "card.png")
	err := e.RenderCard(context.Background(), out, CardOptions{Width: 320, Height: 180, Background: "navy"})
	if err != nil {
		t.Fatalf("render card failed: %v", err)
	}
	stat, err := os.Stat(out)
	if err != nil {
		t.Fatalf("card was not created: %v", err)
	}
	globalResults.CardCreated = true
	t.Logf("card created: %s (%d bytes)", out, stat.Size())
}

func TestDeinterleave(t *testing.T) {
	var raw bytes.Buffer
	frames := [][2]float32{{0.5, -0.5}, {1, -1}, {0.25, 0}}
	for _, f := range frames {
		binary.Write(&raw, binary.LittleEndian, f[0])
		binary.Write(&raw, binary.LittleEndian, f[1])
	}
	raw.Write([]byte{1, 2, 3})

	out, err := deinterleave(raw.Bytes(), 2)
	if err != nil {
		t.Fatalf("deinterleave failed: %v", err)
	}
	if len(out) != 2 || len(out[0]) != 3 {
		t.Fatalf("unexpected shape %dx%d", len(out), len(out[0]))
	}
	for i, f := range frames {
		if out[0][i] != f[0] || out[1][i] != f[1] {
			t.Errorf("frame %d: got (%v, %v), want (%v, %v)", i, out[0][i], out[1][i], f[0], f[1])
		}
	}

	if _, err := deinterleave(raw.Bytes(), 0); err == nil {
		t.Error("expected error for zero channels")
	}
}

func TestParseProgressLine(t *testing.T) {
	p := &Progress{}
	lines := []string{"frame=10", "out_time_us=1500000", "out_time=00:00:01.500000", "speed=2.0x"}
	for _, l := range lines {
		if parseProgressLine(p, l) {
			t.Fatalf("line %q closed the block early", l)
		}
	}
	if !parseProgressLine(p, "progress=end") {
		t.Fatal("progress line should close the block")
	}
	if p.OutTime != 1.5 {
		t.Errorf("expected 1.5s, got %v", p.OutTime)
	}
	if p.Speed != "2.0x" || !p.Done {
		t.Errorf("unexpected progress %+v", p)
	}
}

func TestParseProbe(t *testing.T) {
	raw := []byte(`{
		"format": {"duration": "3.250000", "bit_rate": "1411200"},
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
			{"codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2}
		]
	}`)
	info, err := parseProbe(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if info.Duration != 3250*time.Millisecond {
		t.Errorf("unexpected duration %v", info.Duration)
	}
	if !info.HasVideo || info.Width != 1920 || math.Abs(info.FPS-29.97) > 0.01 {
		t.Errorf("unexpected video info %+v", info)
	}
	if !info.HasAudio || info.SampleRate != 48000 || info.Channels != 2 {
		t.Errorf("unexpected audio info %+v", info)
	}

	if _, err := parseProbe([]byte("not json")); err == nil {
		t.Error("expected error for invalid json")
	}
}

func TestFilterBuilder(t *testing.T) {
	filter := NewFilterBuilder().ATrim(1, 2).DrawText("hi", 20, "red").Build()

	expected := "atrim=start=1:duration=2,asetpts=PTS-STARTPTS,drawtext=text='hi':fontsize=20:fontcolor=red:x=(w-text_w)/2:y=(h-text_h)/2"
	if filter != expected {
		t.Errorf("expected %q, got %q", expected, filter)
	}
}

func TestFilterBuilderEmpty(t *testing.T) {
	fb := NewFilterBuilder()
	filter := fb.ATrim(0, 0).DrawText("", 0, "").Build()

	if filter != "" {
		t.Errorf("expected empty string, got %q", filter)
	}
}

func TestFilterBuilderTrim(t *testing.T) {
	tests := []struct {
		start, dur float64
		want       string
	}{
		{1.5, 0, "atrim=start=1.5,asetpts=PTS-STARTPTS"},
		{0, 2, "atrim=start=0:duration=2,asetpts=PTS-STARTPTS"},
		{0.5, 0.25, "atrim=start=0.5:duration=0.25,asetpts=PTS-STARTPTS"},
	}
	for _, tt := range tests {
		if got := NewFilterBuilder().ATrim(tt.start, tt.dur).Build(); got != tt.want {
			t.Errorf("ATrim(%v, %v) = %q, want %q", tt.start, tt.dur, got, tt.want)
		}
	}
}

func TestDrawTextEscaping(t *testing.T) {
	got := NewFilterBuilder().DrawText("it's 5:00, 100%", 24, "yellow").Build()
	for _, want := range []string{`it\'s`, `5\:00\,`, `100\%`, "fontsize=24", "fontcolor=yellow"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

// TestMain runs after all tests and prints summary
func TestMain(m *testing.M) {
	code := m.Run()
	if testing.Verbose() {
		printTestSummary()
	}
	os.Exit(code)
}

func printTestSummary() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("TEST SUMMARY - FFmpeg Layer")
	fmt.Println(strings.Repeat("=", 80))

	if globalResults.ExecutorPath != "" {
		fmt.Printf("\nFFmpeg Binary: %s\n", globalResults.ExecutorPath)
	}

	if globalResults.ProbeResults != nil {
		fmt.Println("\nPROBE RESULTS:")
		fmt.Printf("  Duration:      %v\n", globalResults.ProbeResults.Duration)
		fmt.Printf("  Audio Codec:   %s\n", globalResults.ProbeResults.AudioCodec)
		fmt.Printf("  Sample Rate:   %d Hz x %d\n", globalResults.ProbeResults.SampleRate, globalResults.ProbeResults.Channels)
		fmt.Printf("  Probe Time:    %v\n", globalResults.TestDuration)
	}

	fmt.Printf("\n  Decoded Frames: %d\n", globalResults.DecodedFrames)
	fmt.Printf("  Card Render:    %v\n", globalResults.CardCreated)

	if len(globalResults.Errors) > 0 {
		fmt.Println("\nERRORS ENCOUNTERED:")
		for i, err := range globalResults.Errors {
			fmt.Printf("  %d. %s\n", i+1, err)
		}
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}
