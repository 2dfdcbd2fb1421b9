// Package main provides the CLI entry point for storyreel.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/storyreel/pkg/adapters/ffmpeg"
	"github.com/user/storyreel/pkg/adapters/filesink"
	"github.com/user/storyreel/pkg/adapters/ggrenderer"
	"github.com/user/storyreel/pkg/adapters/logger"
	"github.com/user/storyreel/pkg/adapters/mediaprobe"
	"github.com/user/storyreel/pkg/adapters/nullsink"
	"github.com/user/storyreel/pkg/adapters/osfilesystem"
	"github.com/user/storyreel/pkg/config"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
	"github.com/user/storyreel/pkg/server"
	"github.com/user/storyreel/pkg/storyreel"
	"github.com/user/storyreel/pkg/summarizer"
	"github.com/user/storyreel/pkg/timeline"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:        "storyreel",
		Usage:       l10n.T("Compile narrated scenes into a video"),
		Description: l10n.T("storyreel renders a story of images, video clips and narration into one captioned video."),
		Version:     version,
		Commands: []*cli.Command{
			compileCommand(),
			serveCommand(),
			probeCommand(),
			formatsCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Flag categories, translated when the flags are built.
const (
	catOutput  = "Output"
	catVideo   = "Video and Quality"
	catAudio   = "Narration"
	catStyle   = "Style"
	catVisual  = "Visuals"
	catServer  = "Server"
	catDebug   = "Debug"
	catLogging = "Logging"
)

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T(catOutput)},

		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Output video width (default: 1280)"), Category: l10n.T(catVideo)},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Output video height (default: 720)"), Category: l10n.T(catVideo)},
		&cli.IntFlag{Name: "fps", Usage: l10n.T("Frames per second (default: 30)"), Category: l10n.T(catVideo)},
		&cli.StringSliceFlag{Name: "format", Aliases: []string{"f"}, Usage: l10n.T("Output format preference (webm, mp4, avi); repeatable"), Category: l10n.T(catVideo)},
		&cli.StringFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("Quality preset (low, medium, high)"), Category: l10n.T(catVideo)},
		&cli.IntFlag{Name: "crf", Usage: l10n.T("Video CRF value (lower is better, overrides quality preset)"), Category: l10n.T(catVideo)},
		&cli.IntFlag{Name: "bitrate", Usage: l10n.T("WebM video bitrate in kbps (overrides quality preset)"), Category: l10n.T(catVideo)},
		&cli.IntFlag{Name: "jpeg-quality", Usage: l10n.T("AVI Motion JPEG quality (1-100, overrides quality preset)"), Category: l10n.T(catVideo)},
		&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)"), Category: l10n.T(catVideo)},
		&cli.BoolFlag{Name: "realtime", Usage: l10n.T("Pace rendering to wall-clock time"), Category: l10n.T(catVideo)},

		&cli.IntFlag{Name: "sample-rate", Usage: l10n.T("Narration sample rate in Hz (default: 24000)"), Category: l10n.T(catAudio)},
		&cli.IntFlag{Name: "channels", Usage: l10n.T("Narration channel count (default: 1)"), Category: l10n.T(catAudio)},
		&cli.Float64Flag{Name: "fallback-seconds", Usage: l10n.T("Length of scenes without narration in seconds (default: 5)"), Category: l10n.T(catAudio)},

		&cli.StringFlag{Name: "background-color", Usage: l10n.T("Background color (hex, e.g., #000000)"), Category: l10n.T(catStyle)},
		&cli.StringFlag{Name: "text-color", Usage: l10n.T("Caption text color (hex, e.g., #ffffff)"), Category: l10n.T(catStyle)},
		&cli.StringFlag{Name: "band-color", Usage: l10n.T("Caption band color (hex with alpha, e.g., #000000a6)"), Category: l10n.T(catStyle)},
		&cli.Float64Flag{Name: "font-size", Usage: l10n.T("Caption font size in pixels (default: 32)"), Category: l10n.T(catStyle)},
		&cli.StringFlag{Name: "font-path", Usage: l10n.T("TrueType font file for captions"), Category: l10n.T(catStyle)},
		&cli.Float64Flag{Name: "zoom", Usage: l10n.T("Final image zoom factor (default: 1.1)"), Category: l10n.T(catStyle)},

		&cli.DurationFlag{Name: "load-timeout", Usage: l10n.T("Timeout for loading one scene visual (default: 15s)"), Category: l10n.T(catVisual)},

		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(catLogging)},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T(catLogging)},
	}
}

func compileCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output file path (default: derived from the story title)"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "summary", Aliases: []string{"s"}, Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T(catOutput)},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T(catDebug)},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T(catDebug)},
	}, configFlags()...)

	return &cli.Command{
		Name:        "compile",
		Usage:       l10n.T("Compile a story file into a video"),
		Description: l10n.T("Render every scene of a JSON or YAML story file with its narration and captions, and save the video."),
		ArgsUsage:   "<story-file>",
		Flags:       flags,
		Action:      runCompile,
	}
}

func serveCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: l10n.T("Listen address (default: :8080)"), Category: l10n.T(catServer)},
		&cli.StringSliceFlag{Name: "cors-origin", Usage: l10n.T("Allowed CORS origin; repeatable"), Category: l10n.T(catServer)},
		&cli.IntFlag{Name: "max-jobs", Value: 2, Usage: l10n.T("Maximum concurrently running compiles"), Category: l10n.T(catServer)},
	}, configFlags()...)

	return &cli.Command{
		Name:        "serve",
		Usage:       l10n.T("Run the compile job HTTP API"),
		Description: l10n.T("Accept stories over HTTP, compile them in the background and serve the results."),
		Flags:       flags,
		Action:      runServe,
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Show the container structure of a media file"),
		ArgsUsage: "<media-file>",
		Action:    runProbe,
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: l10n.T("List the output formats this machine can produce"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)")},
		},
		Action: runFormats,
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Println(l10n.F("storyreel version %s", version))
			return nil
		},
	}
}

// loadConfig reads the config file, the environment and the flags, in
// increasing priority.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg = cfg.ApplyEnv()

	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("fps") {
		cfg.FPS = c.Int("fps")
	}
	if c.IsSet("format") {
		cfg.Capture.Formats = c.StringSlice("format")
	}
	if c.IsSet("quality") {
		if _, ok := storyreel.ParseQualityPreset(c.String("quality")); !ok {
			return cfg, errors.New(l10n.F("Unknown quality preset %s", c.String("quality")))
		}
		cfg.Capture.Quality = c.String("quality")
	}
	if c.IsSet("crf") {
		cfg.Capture.CRF = c.Int("crf")
	}
	if c.IsSet("bitrate") {
		cfg.Capture.Bitrate = c.Int("bitrate")
	}
	if c.IsSet("jpeg-quality") {
		cfg.Capture.JPEGQuality = c.Int("jpeg-quality")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.Capture.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.IsSet("realtime") {
		cfg.Realtime = c.Bool("realtime")
	}
	if c.IsSet("sample-rate") {
		cfg.Audio.SampleRate = c.Int("sample-rate")
	}
	if c.IsSet("channels") {
		cfg.Audio.Channels = c.Int("channels")
	}
	if c.IsSet("fallback-seconds") {
		cfg.FallbackSeconds = c.Float64("fallback-seconds")
	}
	if c.IsSet("background-color") {
		cfg.Style.BackgroundColor = c.String("background-color")
	}
	if c.IsSet("text-color") {
		cfg.Style.TextColor = c.String("text-color")
	}
	if c.IsSet("band-color") {
		cfg.Style.BandColor = c.String("band-color")
	}
	if c.IsSet("font-size") {
		cfg.Style.FontSize = c.Float64("font-size")
	}
	if c.IsSet("font-path") {
		cfg.Style.FontPath = c.String("font-path")
	}
	if c.IsSet("zoom") {
		cfg.Style.ZoomTo = c.Float64("zoom")
	}
	if c.IsSet("load-timeout") {
		cfg.Visual.LoadTimeoutMs = int(c.Duration("load-timeout") / time.Millisecond)
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("output") {
		cfg.OutputPath = c.String("output")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("cors-origin") {
		cfg.Server.CORSOrigins = c.StringSlice("cors-origin")
	}

	if len(cfg.Formats()) == 0 {
		return cfg, errors.New(l10n.F("No known output format in %s", strings.Join(cfg.Capture.Formats, ",")))
	}
	return cfg, nil
}

func newLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(cfg.Level())
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext(parent context.Context, log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func runCompile(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New(l10n.T("Story file argument is required"))
	}
	storyPath := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	ctx, cancel := signalContext(c.Context, log)
	defer cancel()

	story, err := scene.LoadStory(storyPath)
	if err != nil {
		return err
	}
	if story.Title == "" {
		story.Title = strings.TrimSuffix(filepath.Base(storyPath), filepath.Ext(storyPath))
	}

	fs := osfilesystem.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, ggrenderer.New())
	} else {
		sink = nullsink.New()
	}

	compilerConfig := cfg.ToCompilerConfig()
	compiler := storyreel.NewCompiler(compilerConfig, fs, sink, log)

	log.Info(l10n.F("Compiling %s (%d scenes)...", storyPath, len(story.Scenes)))

	updates := make(chan timeline.Progress, 16)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		reportProgress(log, updates)
	}()

	result, err := compiler.Compile(ctx, story, updates)
	<-drained
	if err != nil {
		return err
	}

	output := cfg.OutputPath
	if output == "" {
		output = result.Blob.Filename
	} else if want := "." + string(result.Format); !strings.EqualFold(filepath.Ext(output), want) {
		log.Warn(l10n.F("Output extension does not match recorded format %s", result.Format))
	}
	if err := fs.WriteFile(output, result.Blob.Data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info(l10n.F("Output saved to %s", output))

	if path := c.String("summary"); path != "" {
		writeSummary(fs, path, output, story, cfg, compilerConfig, result, log)
	}
	return nil
}

// reportProgress logs each new progress message until updates is closed.
func reportProgress(log ports.Logger, updates <-chan timeline.Progress) {
	last := ""
	for p := range updates {
		if p.Message != "" && p.Message != last {
			last = p.Message
			log.Debug("%s (%d%%)", p.Message, p.Percent)
		}
	}
}

func writeSummary(fs ports.FileSystem, path, output string, story *scene.Story, cfg config.Config, cc storyreel.Config, result timeline.Result, log ports.Logger) {
	formats := make([]string, 0, len(cc.Formats))
	for _, f := range cc.Formats {
		formats = append(formats, string(f))
	}

	builder := summarizer.NewBuilder().
		WithStory(story.Title, len(story.Scenes)).
		WithSettings(summarizer.Settings{
			Quality: cfg.Capture.Quality,
			Width:   cc.Width,
			Height:  cc.Height,
			FPS:     cc.FPS,
			CRF:     cc.CRF,
			Bitrate: cc.Bitrate,
			Formats: formats,
		}).
		WithOutput(summarizer.OutputInfo{Path: output}).
		WithResult(result)

	if report, err := mediaprobe.ProbeBytes(result.Blob.Data); err == nil {
		builder.WithProbe(report)
	} else {
		log.Debug("Probe failed: %v", err)
	}

	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	)
	if err := summarizer.NewWriter(formatter, fs).Write(path, builder.Build()); err != nil {
		log.Warn(l10n.F("Failed to write summary: %s", err.Error()))
		return
	}
	log.Info(l10n.F("Summary saved to %s", path))
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	ctx, cancel := signalContext(c.Context, log)
	defer cancel()

	compiler := storyreel.NewCompiler(cfg.ToCompilerConfig(), osfilesystem.New(), nullsink.New(), log)
	srv := server.New(compiler, log, server.Options{
		CORSOrigins:   cfg.Server.CORSOrigins,
		MaxActiveJobs: c.Int("max-jobs"),
	})

	log.Info(l10n.F("Serving compile API on %s", cfg.Server.Addr))
	return srv.Run(ctx, cfg.Server.Addr)
}

func runProbe(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New(l10n.T("Media file argument is required"))
	}

	report, err := mediaprobe.ProbeFile(c.Args().First())
	if err != nil {
		return err
	}

	fmt.Println(l10n.F("Format: %s", report.Format))
	fmt.Println(l10n.F("Size: %d bytes", report.Size))
	if report.Fragmented {
		fmt.Println(l10n.F("Fragments: %d", report.Fragments))
	}
	if report.Frames > 0 {
		fmt.Println(l10n.F("Frames: %d", report.Frames))
	}
	for _, t := range report.Tracks {
		fmt.Println(l10n.F("Track %s: %s, %d samples (timescale %d)", t.Kind, t.Codec, t.Samples, t.Timescale))
	}
	return nil
}

func runFormats(c *cli.Context) error {
	path, err := ffmpeg.Find(c.String("ffmpeg-path"))
	if err != nil {
		fmt.Println(l10n.T("ffmpeg: not found (only avi is available)"))
	} else {
		fmt.Println(l10n.F("ffmpeg: %s", path))
	}

	cfg := storyreel.NewConfigBuilder().WithFFmpegPath(path).Build()
	compiler := storyreel.NewCompiler(cfg, osfilesystem.New(), nullsink.New(), logger.NewNoop())
	for _, f := range compiler.Formats() {
		fmt.Printf("  %-5s %s\n", f, f.MIMEType())
	}
	return nil
}
