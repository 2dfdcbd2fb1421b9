// Package storyreel provides a high-level API for compiling narrated
// stories into videos.
package storyreel

import (
	"image/color"
	"time"

	"github.com/user/storyreel/pkg/audio"
	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/stages/render"
	"github.com/user/storyreel/pkg/timeline"
)

// QualityPreset represents a video quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// ParseQualityPreset parses a preset name. Unknown names are rejected.
func ParseQualityPreset(s string) (QualityPreset, bool) {
	switch QualityPreset(s) {
	case QualityLow, QualityMedium, QualityHigh:
		return QualityPreset(s), true
	default:
		return "", false
	}
}

// QualitySettings contains quality parameters for the capture encoders.
type QualitySettings struct {
	CRF         int // ffmpeg CRF (lower is better)
	Bitrate     int // Target video bitrate in kbps
	JPEGQuality int // Motion JPEG quality for the AVI fallback (1-100)
}

// GetQualitySettings returns quality settings for the given preset.
func GetQualitySettings(preset QualityPreset) QualitySettings {
	switch preset {
	case QualityLow:
		return QualitySettings{
			CRF:         30,
			Bitrate:     4000,
			JPEGQuality: 70,
		}
	case QualityHigh:
		return QualitySettings{
			CRF:         18,
			Bitrate:     12000,
			JPEGQuality: 92,
		}
	default: // medium
		return QualitySettings{
			CRF:         23,
			Bitrate:     8000,
			JPEGQuality: 85,
		}
	}
}

// Config represents the configuration of a compile.
type Config struct {
	// Video size
	Width  int // Output width (default: 1280)
	Height int // Output height (default: 720)
	FPS    int // Frame rate (default: 30)

	// Narration layout of the raw scene audio
	SampleRate int
	Channels   int

	// FallbackSeconds is the length of a scene without usable narration
	// or nominal duration.
	FallbackSeconds float64

	// Capture
	Formats     []ports.CaptureFormat // Preference order
	CRF         int
	Bitrate     int
	JPEGQuality int
	FFmpegPath  string

	// Visuals
	LoadTimeout   time.Duration
	MaxImageBytes int64

	// Style
	Style render.FrameStyle

	// Realtime paces rendering to wall-clock time.
	Realtime bool
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with 720p defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: defaults(),
	}
}

func defaults() Config {
	q := GetQualitySettings(QualityMedium)
	return Config{
		Width:  timeline.DefaultWidth,
		Height: timeline.DefaultHeight,
		FPS:    timeline.DefaultFPS,

		SampleRate: audio.DefaultSampleRate,
		Channels:   audio.DefaultChannels,

		FallbackSeconds: pipeline.DefaultFallbackSeconds,

		Formats:     ports.DefaultCaptureFormats,
		CRF:         q.CRF,
		Bitrate:     q.Bitrate,
		JPEGQuality: q.JPEGQuality,

		LoadTimeout:   15 * time.Second,
		MaxImageBytes: 64 << 20,

		Style: render.DefaultFrameStyle(),
	}
}

// Build returns the final Config, applying validation and constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	// Video encoders need even dimensions
	cfg.Width -= cfg.Width % 2
	cfg.Height -= cfg.Height % 2
	if cfg.Width < 2 {
		cfg.Width = timeline.DefaultWidth
	}
	if cfg.Height < 2 {
		cfg.Height = timeline.DefaultHeight
	}

	if cfg.FPS < 1 {
		cfg.FPS = timeline.DefaultFPS
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = GetQualitySettings(QualityMedium).JPEGQuality
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = ports.DefaultCaptureFormats
	}

	return cfg
}

// WithSize sets the output video size.
func (b *ConfigBuilder) WithSize(width, height int) *ConfigBuilder {
	b.config.Width = width
	b.config.Height = height
	return b
}

// WithFPS sets the output frame rate.
func (b *ConfigBuilder) WithFPS(fps int) *ConfigBuilder {
	b.config.FPS = fps
	return b
}

// WithNarrationFormat sets the layout of raw scene audio.
func (b *ConfigBuilder) WithNarrationFormat(sampleRate, channels int) *ConfigBuilder {
	b.config.SampleRate = sampleRate
	b.config.Channels = channels
	return b
}

// WithFallbackSeconds sets the length of scenes without narration.
func (b *ConfigBuilder) WithFallbackSeconds(seconds float64) *ConfigBuilder {
	b.config.FallbackSeconds = seconds
	return b
}

// WithFormats sets the output format preference order.
func (b *ConfigBuilder) WithFormats(formats ...ports.CaptureFormat) *ConfigBuilder {
	b.config.Formats = formats
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *ConfigBuilder) WithQualityPreset(preset QualityPreset) *ConfigBuilder {
	settings := GetQualitySettings(preset)
	b.config.CRF = settings.CRF
	b.config.Bitrate = settings.Bitrate
	b.config.JPEGQuality = settings.JPEGQuality
	return b
}

// WithCRF sets the ffmpeg CRF value (lower is better).
func (b *ConfigBuilder) WithCRF(crf int) *ConfigBuilder {
	b.config.CRF = crf
	return b
}

// WithBitrate sets the target video bitrate in kbps.
func (b *ConfigBuilder) WithBitrate(kbps int) *ConfigBuilder {
	b.config.Bitrate = kbps
	return b
}

// WithJPEGQuality sets the Motion JPEG quality of the AVI fallback.
func (b *ConfigBuilder) WithJPEGQuality(quality int) *ConfigBuilder {
	b.config.JPEGQuality = quality
	return b
}

// WithFFmpegPath sets the ffmpeg binary used for encoding and video clips.
func (b *ConfigBuilder) WithFFmpegPath(path string) *ConfigBuilder {
	b.config.FFmpegPath = path
	return b
}

// WithLoadTimeout bounds how long a scene visual may take to load.
func (b *ConfigBuilder) WithLoadTimeout(d time.Duration) *ConfigBuilder {
	b.config.LoadTimeout = d
	return b
}

// WithMaxImageBytes caps the size of a fetched image.
func (b *ConfigBuilder) WithMaxImageBytes(n int64) *ConfigBuilder {
	b.config.MaxImageBytes = n
	return b
}

// WithBackgroundColor sets the color behind the visual.
func (b *ConfigBuilder) WithBackgroundColor(c color.Color) *ConfigBuilder {
	b.config.Style.Background = c
	return b
}

// WithCaptionStyle sets the caption text and band colors and font size.
func (b *ConfigBuilder) WithCaptionStyle(text, band color.Color, fontSize float64) *ConfigBuilder {
	if text != nil {
		b.config.Style.TextColor = text
	}
	if band != nil {
		b.config.Style.BandColor = band
	}
	if fontSize > 0 {
		b.config.Style.FontSize = fontSize
	}
	return b
}

// WithFontPath sets a TrueType font for captions. Empty uses the embedded font.
func (b *ConfigBuilder) WithFontPath(path string) *ConfigBuilder {
	b.config.Style.FontPath = path
	return b
}

// WithZoom sets the image zoom range.
func (b *ConfigBuilder) WithZoom(from, to float64) *ConfigBuilder {
	b.config.Style.ZoomFrom = from
	b.config.Style.ZoomTo = to
	return b
}

// WithRealtime paces rendering to wall-clock time.
func (b *ConfigBuilder) WithRealtime(realtime bool) *ConfigBuilder {
	b.config.Realtime = realtime
	return b
}

// DriverConfig converts Config to timeline.Config for one story.
func (c Config) DriverConfig(title string) timeline.Config {
	return timeline.Config{
		Title:  title,
		Width:  c.Width,
		Height: c.Height,
		FPS:    c.FPS,
		Audio: audio.Format{
			SampleRate: c.SampleRate,
			Channels:   c.Channels,
		},
		FallbackSeconds: c.FallbackSeconds,
		Formats:         c.Formats,
		Quality:         c.CRF,
		Bitrate:         c.Bitrate,
		JPEGQuality:     c.JPEGQuality,
		Realtime:        c.Realtime,
	}
}
