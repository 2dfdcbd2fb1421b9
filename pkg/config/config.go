// Package config provides configuration loading and management.
package config

import (
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyreel"
	"github.com/user/storyreel/pkg/timeline"
)

// Config represents the full configuration for storyreel.
type Config struct {
	// Output
	OutputPath string `yaml:"output"`

	// Video
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`

	// Narration
	Audio           AudioConfig `yaml:"audio"`
	FallbackSeconds float64     `yaml:"fallback_seconds"`

	// Capture
	Capture CaptureConfig `yaml:"capture"`

	// Visuals
	Visual VisualConfig `yaml:"visual"`

	// Style
	Style StyleConfig `yaml:"style"`

	// Realtime paces rendering to wall-clock time.
	Realtime bool `yaml:"realtime"`

	// Server
	Server ServerConfig `yaml:"server"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// AudioConfig describes the layout of raw scene narration.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
}

// CaptureConfig represents output encoding settings.
type CaptureConfig struct {
	Formats     []string `yaml:"formats"`
	Quality     string   `yaml:"quality"`
	CRF         int      `yaml:"crf"`
	Bitrate     int      `yaml:"bitrate"`
	JPEGQuality int      `yaml:"jpeg_quality"`
	FFmpegPath  string   `yaml:"ffmpeg_path"`
}

// VisualConfig represents visual loading limits.
type VisualConfig struct {
	LoadTimeoutMs int   `yaml:"load_timeout_ms"`
	MaxImageBytes int64 `yaml:"max_image_bytes"`
}

// StyleConfig represents theming options.
type StyleConfig struct {
	BackgroundColor string  `yaml:"background"`
	BandColor       string  `yaml:"band_color"`
	TextColor       string  `yaml:"text_color"`
	FontSize        float64 `yaml:"font_size"`
	FontPath        string  `yaml:"font_path"`
	ZoomTo          float64 `yaml:"zoom_to"`
}

// ServerConfig represents the HTTP API settings.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Video
		Width:  timeline.DefaultWidth,
		Height: timeline.DefaultHeight,
		FPS:    timeline.DefaultFPS,

		// Narration
		Audio: AudioConfig{
			SampleRate: 24000,
			Channels:   1,
		},
		FallbackSeconds: 5,

		// Capture
		Capture: CaptureConfig{
			Formats: []string{"webm", "mp4", "avi"},
			Quality: string(storyreel.QualityMedium),
		},

		// Visuals
		Visual: VisualConfig{
			LoadTimeoutMs: 15000,
			MaxImageBytes: 64 << 20,
		},

		// Style
		Style: StyleConfig{
			BackgroundColor: "#000000",
			BandColor:       "#000000a6",
			TextColor:       "#ffffff",
			FontSize:        32,
			ZoomTo:          1.1,
		},

		// Server
		Server: ServerConfig{
			Addr: ":8080",
		},

		LogLevel: "info",

		// Debug
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ApplyEnv overrides c from the environment. A .env file in the working
// directory is loaded first if present; variables already set win.
func (c Config) ApplyEnv() Config {
	_ = godotenv.Load()

	c.OutputPath = getEnv("STORYREEL_OUTPUT", c.OutputPath)
	if formats := getEnv("STORYREEL_FORMATS", ""); formats != "" {
		c.Capture.Formats = splitList(formats)
	}
	c.Capture.Quality = getEnv("STORYREEL_QUALITY", c.Capture.Quality)
	c.Capture.FFmpegPath = getEnv("FFMPEG_PATH", c.Capture.FFmpegPath)
	c.LogLevel = getEnv("STORYREEL_LOG_LEVEL", c.LogLevel)
	c.Server.Addr = getEnv("STORYREEL_ADDR", c.Server.Addr)
	if origins := getEnv("STORYREEL_CORS_ORIGINS", ""); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}
	c.Visual.LoadTimeoutMs = getEnvAsInt("STORYREEL_LOAD_TIMEOUT_MS", c.Visual.LoadTimeoutMs)
	c.FallbackSeconds = getEnvAsFloat("STORYREEL_FALLBACK_SECONDS", c.FallbackSeconds)
	c.Realtime = getEnvAsBool("STORYREEL_REALTIME", c.Realtime)
	return c
}

// ParseColor parses a #rrggbb or #rrggbbaa hex color string to color.Color.
// Malformed values yield black.
func ParseColor(hex string) color.Color {
	if len(hex) == 0 {
		return color.Black
	}

	if hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) != 6 && len(hex) != 8 {
		return color.Black
	}

	channel := func(i int) uint8 {
		return hexValue(hex[i])<<4 | hexValue(hex[i+1])
	}

	c := color.NRGBA{R: channel(0), G: channel(2), B: channel(4), A: 255}
	if len(hex) == 8 {
		c.A = channel(6)
	}
	return c
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// Formats returns the capture preference order, dropping unknown names.
func (c Config) Formats() []ports.CaptureFormat {
	var out []ports.CaptureFormat
	for _, name := range c.Capture.Formats {
		switch f := ports.CaptureFormat(strings.ToLower(strings.TrimSpace(name))); f {
		case ports.CaptureWebM, ports.CaptureMP4, ports.CaptureAVI:
			out = append(out, f)
		}
	}
	return out
}

// ToCompilerConfig converts Config to storyreel.Config.
func (c Config) ToCompilerConfig() storyreel.Config {
	preset, ok := storyreel.ParseQualityPreset(c.Capture.Quality)
	if !ok {
		preset = storyreel.QualityMedium
	}

	b := storyreel.NewConfigBuilder().
		WithSize(c.Width, c.Height).
		WithFPS(c.FPS).
		WithNarrationFormat(c.Audio.SampleRate, c.Audio.Channels).
		WithFallbackSeconds(c.FallbackSeconds).
		WithFormats(c.Formats()...).
		WithQualityPreset(preset).
		WithFFmpegPath(c.Capture.FFmpegPath).
		WithLoadTimeout(time.Duration(c.Visual.LoadTimeoutMs) * time.Millisecond).
		WithMaxImageBytes(c.Visual.MaxImageBytes).
		WithBackgroundColor(ParseColor(c.Style.BackgroundColor)).
		WithCaptionStyle(ParseColor(c.Style.TextColor), ParseColor(c.Style.BandColor), c.Style.FontSize).
		WithFontPath(c.Style.FontPath).
		WithRealtime(c.Realtime)

	// Explicit values override the preset.
	if c.Capture.CRF > 0 {
		b.WithCRF(c.Capture.CRF)
	}
	if c.Capture.Bitrate > 0 {
		b.WithBitrate(c.Capture.Bitrate)
	}
	if c.Capture.JPEGQuality > 0 {
		b.WithJPEGQuality(c.Capture.JPEGQuality)
	}
	if c.Style.ZoomTo > 0 {
		b.WithZoom(1.0, c.Style.ZoomTo)
	}

	return b.Build()
}

// ToDriverConfig converts Config to timeline.Config for one story.
func (c Config) ToDriverConfig(title string) timeline.Config {
	return c.ToCompilerConfig().DriverConfig(title)
}

// Level returns the configured log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(strings.ToLower(c.LogLevel))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
