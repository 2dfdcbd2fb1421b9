package ffmpegsink

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
	"time"

	"github.com/user/storyreel/pkg/adapters/logger"
	"github.com/user/storyreel/pkg/adapters/mediaprobe"
	"github.com/user/storyreel/pkg/ports"
)

func testOptions() ports.CaptureOptions {
	return ports.CaptureOptions{
		Width:      64,
		Height:     48,
		FPS:        30,
		SampleRate: 24000,
		Channels:   1,
		Quality:    30,
	}
}

func TestBuildArgs_MP4(t *testing.T) {
	args, err := buildArgs(ports.CaptureMP4, testOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(args, " ")
	checks := []string{
		"-f rawvideo -pix_fmt rgba -s 64x48 -r 30 -i pipe:0",
		"-f f32le -ar 24000 -ac 1 -i pipe:3",
		"-c:v libx264",
		"-crf 30",
		"-c:a aac",
		"frag_keyframe+empty_moov",
		"-f mp4",
	}
	for _, check := range checks {
		if !strings.Contains(joined, check) {
			t.Errorf("expected args to contain %q, got %s", check, joined)
		}
	}

	if args[len(args)-1] != "pipe:1" {
		t.Errorf("expected output on stdout, got %s", args[len(args)-1])
	}
}

func TestBuildArgs_WebM(t *testing.T) {
	opts := testOptions()
	opts.Bitrate = 0

	args, err := buildArgs(ports.CaptureWebM, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(args, " ")
	for _, check := range []string{"-c:v libvpx-vp9", "-b:v 8000k", "-c:a libopus", "-f webm"} {
		if !strings.Contains(joined, check) {
			t.Errorf("expected args to contain %q, got %s", check, joined)
		}
	}
}

func TestBuildArgs_Unsupported(t *testing.T) {
	_, err := buildArgs(ports.CaptureAVI, testOptions())
	if !errors.Is(err, ports.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSink_SupportsRejectsAVI(t *testing.T) {
	s := New("", logger.NewNoop())
	if s.Supports(ports.CaptureAVI) {
		t.Error("expected ffmpeg backend to leave AVI to the pure Go backend")
	}
}

func TestSink_WriteBeforeStart(t *testing.T) {
	s := New("", logger.NewNoop())

	err := s.WriteFrame(image.NewRGBA(image.Rect(0, 0, 64, 48)), 0)
	if !errors.Is(err, ports.ErrIllegalState) {
		t.Errorf("expected ErrIllegalState, got %v", err)
	}
	if _, err := s.Finish(); !errors.Is(err, ports.ErrIllegalState) {
		t.Errorf("expected ErrIllegalState, got %v", err)
	}
	if err := s.Abort(); err != nil {
		t.Errorf("expected idle Abort to succeed, got %v", err)
	}
}

func TestSink_EncodeMP4(t *testing.T) {
	s := New("", logger.NewNoop())
	if !s.Supports(ports.CaptureMP4) {
		t.Skip("ffmpeg with libx264/aac not available")
	}

	opts := testOptions()
	opts.Formats = []ports.CaptureFormat{ports.CaptureMP4}

	format, err := s.Start(context.Background(), opts)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if format != ports.CaptureMP4 {
		t.Fatalf("expected mp4, got %s", format)
	}

	if _, err := s.Start(context.Background(), opts); !errors.Is(err, ports.ErrIllegalState) {
		t.Errorf("expected second Start to fail with ErrIllegalState, got %v", err)
	}

	frame := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	for i := 0; i < 15; i++ {
		draw.Draw(frame, frame.Bounds(), &image.Uniform{C: color.RGBA{R: uint8(i * 16), A: 255}}, image.Point{}, draw.Src)
		if err := s.WriteFrame(frame, time.Duration(i)*time.Second/30); err != nil {
			t.Fatalf("WriteFrame %d failed: %v", i, err)
		}
		if err := s.WriteAudio(make([]float32, 800)); err != nil {
			t.Fatalf("WriteAudio %d failed: %v", i, err)
		}
	}

	blob, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if blob.Frames != 15 {
		t.Errorf("expected 15 frames, got %d", blob.Frames)
	}
	if len(blob.Data) == 0 {
		t.Fatal("expected encoded output")
	}

	report, err := mediaprobe.ProbeBytes(blob.Data)
	if err != nil {
		t.Fatalf("probe output: %v", err)
	}
	if !report.HasVideo() || !report.HasAudio() {
		t.Errorf("expected audio and video tracks, got %+v", report.Tracks)
	}

	if err := s.WriteFrame(frame, time.Second); !errors.Is(err, ports.ErrIllegalState) {
		t.Errorf("expected write after Finish to fail with ErrIllegalState, got %v", err)
	}
}

func TestSink_Abort(t *testing.T) {
	s := New("", logger.NewNoop())
	if !s.Supports(ports.CaptureMP4) {
		t.Skip("ffmpeg with libx264/aac not available")
	}

	opts := testOptions()
	opts.Formats = []ports.CaptureFormat{ports.CaptureMP4}

	if _, err := s.Start(context.Background(), opts); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.WriteFrame(image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)), 0); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	if err := s.Abort(); err != nil {
		t.Fatalf("Abort failed: %v", err)
	}
	if _, err := s.Finish(); !errors.Is(err, ports.ErrIllegalState) {
		t.Errorf("expected Finish after Abort to fail with ErrIllegalState, got %v", err)
	}
}
