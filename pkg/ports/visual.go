package ports

import (
	"context"
	"errors"
	"image"

	"github.com/user/storyreel/pkg/scene"
)

// ErrNoVisual is returned when a scene has no image or video reference.
var ErrNoVisual = errors.New("visual: scene has no visual")

// VisualLoader resolves a scene visual into a drawable source.
type VisualLoader interface {
	// Load blocks until the source is ready to draw, ctx is done or the
	// loader's own timeout elapses.
	Load(ctx context.Context, visual scene.Visual) (VisualSource, error)
}

// VisualSource yields the image to draw for each output frame.
type VisualSource interface {
	// Kind reports whether the source is a still image or a video clip.
	Kind() scene.VisualKind

	// Frame returns the image for output frame index. Indexes are
	// requested in increasing order. Video sources may block until the
	// next decoded frame arrives.
	Frame(index int) (image.Image, error)

	// Close stops playback and releases decoder resources.
	Close() error
}
