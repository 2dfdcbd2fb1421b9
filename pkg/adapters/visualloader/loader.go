// Package visualloader resolves scene visuals into drawable sources.
// Images are fetched, decoded and resized once; video clips are decoded
// by ffmpeg into a looping, muted stream of raw frames.
package visualloader

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
)

var (
	// ErrVisualLoad wraps every failure to produce a visual source.
	ErrVisualLoad = errors.New("visualloader: failed to load visual")

	// ErrLoadTimeout is returned when a visual is not ready within the
	// load timeout.
	ErrLoadTimeout = errors.New("visualloader: timed out waiting for visual")
)

const (
	defaultTimeout       = 15 * time.Second
	defaultMaxImageBytes = 64 << 20
)

// Options configures the loader.
type Options struct {
	// Output frame size; images and video frames are scaled to it.
	Width  int
	Height int
	FPS    int

	// Timeout bounds each Load, including the wait for the first video frame.
	Timeout time.Duration

	// FFmpegPath overrides ffmpeg discovery for video clips.
	FFmpegPath string

	// HTTPClient fetches remote images. Nil uses a client bounded by Timeout.
	HTTPClient *http.Client

	// MaxImageBytes caps the size of a fetched image.
	MaxImageBytes int64
}

// DefaultOptions returns options for 1280x720 at 30 fps.
func DefaultOptions() Options {
	return Options{
		Width:         1280,
		Height:        720,
		FPS:           30,
		Timeout:       defaultTimeout,
		MaxImageBytes: defaultMaxImageBytes,
	}
}

// Loader implements ports.VisualLoader.
type Loader struct {
	opts     Options
	renderer ports.Renderer
	fs       ports.FileSystem
	logger   ports.Logger
}

// New creates a visual loader.
func New(renderer ports.Renderer, fs ports.FileSystem, logger ports.Logger, opts Options) *Loader {
	defaults := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = defaults.Width, defaults.Height
	}
	if opts.FPS <= 0 {
		opts.FPS = defaults.FPS
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = defaults.MaxImageBytes
	}
	if opts.HTTPClient == nil {
		// The per-load context sets the real deadline.
		opts.HTTPClient = &http.Client{Timeout: 2 * opts.Timeout}
	}

	return &Loader{
		opts:     opts,
		renderer: renderer,
		fs:       fs,
		logger:   logger.WithComponent("visual"),
	}
}

// Load resolves visual into a ready source.
func (l *Loader) Load(ctx context.Context, visual scene.Visual) (ports.VisualSource, error) {
	if !visual.Present() {
		return nil, ports.ErrNoVisual
	}

	loadCtx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	var (
		src ports.VisualSource
		err error
	)
	switch visual.Kind {
	case scene.VisualImage:
		src, err = l.loadImage(loadCtx, visual.Ref)
	case scene.VisualVideo:
		// The decoder outlives Load, so it is bound to ctx rather than loadCtx.
		src, err = l.loadVideo(ctx, loadCtx, visual.Ref)
	default:
		return nil, ports.ErrNoVisual
	}

	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(loadCtx.Err(), context.DeadlineExceeded)
		if timedOut && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s: %w after %v", ErrVisualLoad, describeRef(visual.Ref), ErrLoadTimeout, l.opts.Timeout)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrVisualLoad, describeRef(visual.Ref), err)
	}
	return src, nil
}

func (l *Loader) loadImage(ctx context.Context, ref string) (ports.VisualSource, error) {
	data, _, err := l.readRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	// A fetch that finished just as the deadline hit is still a timeout.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := l.renderer.DecodeImage(data, ports.FormatAuto)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	l.logger.Debug("Loaded image %s (%dx%d)", describeRef(ref), b.Dx(), b.Dy())

	return &stillSource{img: l.renderer.ResizeImage(img, l.opts.Width, l.opts.Height)}, nil
}

// stillSource returns the same pre-scaled image for every frame.
type stillSource struct {
	img image.Image
}

func (s *stillSource) Kind() scene.VisualKind {
	return scene.VisualImage
}

func (s *stillSource) Frame(index int) (image.Image, error) {
	return s.img, nil
}

func (s *stillSource) Close() error {
	s.img = nil
	return nil
}

// Ensure Loader implements ports.VisualLoader
var _ ports.VisualLoader = (*Loader)(nil)
