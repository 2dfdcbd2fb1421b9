package storyreel

import (
	"context"

	"github.com/user/storyreel/pkg/adapters/ggrenderer"
	"github.com/user/storyreel/pkg/adapters/smartsink"
	"github.com/user/storyreel/pkg/adapters/visualloader"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
	"github.com/user/storyreel/pkg/stages/prepare"
	"github.com/user/storyreel/pkg/stages/render"
	"github.com/user/storyreel/pkg/timeline"
)

// Compiler wires the default adapters into a timeline driver. Each
// Compile gets its own capture sink and driver, so one Compiler may serve
// concurrent compiles.
type Compiler struct {
	config   Config
	renderer ports.Renderer
	loader   ports.VisualLoader
	debug    ports.DebugSink
	logger   ports.Logger
	newSink  func() ports.CaptureSink
}

// NewCompiler creates a Compiler with the gg renderer, the default visual
// loader and the ffmpeg/AVI capture chain.
func NewCompiler(config Config, fs ports.FileSystem, debug ports.DebugSink, logger ports.Logger) *Compiler {
	renderer := ggrenderer.New()
	loader := visualloader.New(renderer, fs, logger, visualloader.Options{
		Width:         config.Width,
		Height:        config.Height,
		FPS:           config.FPS,
		Timeout:       config.LoadTimeout,
		FFmpegPath:    config.FFmpegPath,
		MaxImageBytes: config.MaxImageBytes,
	})

	return &Compiler{
		config:   config,
		renderer: renderer,
		loader:   loader,
		debug:    debug,
		logger:   logger,
		newSink: func() ports.CaptureSink {
			return smartsink.NewDefault(config.FFmpegPath, logger)
		},
	}
}

// WithSinkFactory replaces the capture sink created for each compile.
func (c *Compiler) WithSinkFactory(newSink func() ports.CaptureSink) *Compiler {
	c.newSink = newSink
	return c
}

// WithVisualLoader replaces the visual loader.
func (c *Compiler) WithVisualLoader(loader ports.VisualLoader) *Compiler {
	c.loader = loader
	return c
}

// Config returns the compile configuration.
func (c *Compiler) Config() Config {
	return c.config
}

// NewDriver builds a driver with a fresh capture sink.
func (c *Compiler) NewDriver(title string) *timeline.Driver {
	sink := c.newSink()
	frames := render.NewFrameRenderer(c.config.Style)

	return timeline.New(
		c.config.DriverConfig(title),
		c.renderer,
		prepare.NewStage(c.loader, c.logger),
		render.NewStage(frames, sink, c.debug, c.logger),
		sink,
		c.debug,
		c.logger,
	)
}

// Compile renders story into one media blob. See timeline.Driver.Compile
// for the progress and error contract.
func (c *Compiler) Compile(ctx context.Context, story *scene.Story, updates chan<- timeline.Progress) (timeline.Result, error) {
	if story == nil {
		story = &scene.Story{}
	}
	for _, id := range story.Conflicts {
		c.logger.Warn("Scene %s has both an image and a video, using the video", id)
	}

	c.logger.Info("Compiling %q: %d scenes", story.Title, len(story.Scenes))
	return c.NewDriver(story.Title).Compile(ctx, story.Scenes, updates)
}

// Formats returns the configured formats the local machine can produce,
// in preference order.
func (c *Compiler) Formats() []ports.CaptureFormat {
	return smartsink.NewDefault(c.config.FFmpegPath, c.logger).Available(c.config.Formats)
}
