package timeline

import (
	"github.com/user/storyreel/pkg/audio"
	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
)

// Output defaults.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
	DefaultFPS    = 30
)

// Config contains all configuration for the timeline driver.
type Config struct {
	// Title is used for the suggested output filename.
	Title string

	// Output surface
	Width  int
	Height int
	FPS    int

	// Audio is the narration layout. The capture session uses the same.
	Audio audio.Format

	// FallbackSeconds is the scene length when neither narration nor a
	// nominal duration is available.
	FallbackSeconds float64

	// Capture
	Formats     []ports.CaptureFormat
	Quality     int // CRF for ffmpeg codecs
	Bitrate     int // kbps, 0 keeps the codec default
	JPEGQuality int

	// Realtime paces the render loop to one frame per 1/FPS seconds.
	Realtime bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		FPS:             DefaultFPS,
		Audio:           audio.DefaultFormat(),
		FallbackSeconds: pipeline.DefaultFallbackSeconds,
		Formats:         ports.DefaultCaptureFormats,
		Quality:         23,
		JPEGQuality:     85,
	}
}

// normalize fills zero fields with defaults.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = d.Audio.Channels
	}
	if c.FallbackSeconds <= 0 {
		c.FallbackSeconds = d.FallbackSeconds
	}
	if len(c.Formats) == 0 {
		c.Formats = d.Formats
	}
	return c
}

func (c Config) captureOptions() ports.CaptureOptions {
	return ports.CaptureOptions{
		Width:       c.Width,
		Height:      c.Height,
		FPS:         c.FPS,
		SampleRate:  c.Audio.SampleRate,
		Channels:    c.Audio.Channels,
		Formats:     c.Formats,
		Quality:     c.Quality,
		Bitrate:     c.Bitrate,
		JPEGQuality: c.JPEGQuality,
	}
}
