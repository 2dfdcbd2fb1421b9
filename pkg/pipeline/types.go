package pipeline

import (
	"time"

	"github.com/user/storyreel/pkg/audio"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
)

// =============================================================================
// Prepare Stage Types
// =============================================================================

// PrepareInput contains the scene to load and the parameters for its budget.
type PrepareInput struct {
	// Index is the position of the scene after sorting.
	Index int
	Scene scene.Scene

	// Audio is the narration layout assumed for the raw bytes.
	Audio audio.Format

	// FallbackSeconds is used when neither narration nor a nominal
	// duration is available (default: 5).
	FallbackSeconds float64

	FPS int
}

// PreparedScene is a scene with its visual loaded and narration decoded.
type PreparedScene struct {
	Index int
	Scene scene.Scene

	// Source is nil when the scene is skipped.
	Source     ports.VisualSource
	SkipReason error

	// Audio is nil when the scene is silent. AudioErr records why
	// narration could not be decoded, if it was present.
	Audio    *audio.Decoded
	AudioErr error

	Seconds     float64
	FrameBudget int
}

// Skipped reports whether the scene produces no frames.
func (p PreparedScene) Skipped() bool {
	return p.Source == nil
}

// Silent reports whether the scene is rendered without narration.
func (p PreparedScene) Silent() bool {
	return p.Audio == nil
}

// =============================================================================
// Render Stage Types
// =============================================================================

// RenderInput contains a prepared scene and the surface to draw it on.
type RenderInput struct {
	Prepared PreparedScene

	// Canvas is the shared render surface for the whole run.
	Canvas ports.Canvas

	// StartPTS is the presentation time of the scene's first frame.
	StartPTS time.Duration

	FPS int

	// Audio is the layout of the capture session's audio stream. Silent
	// scenes push zeros in this layout.
	Audio audio.Format

	// OnFrame is called after frame f has been pushed to the sink. A
	// non-nil error stops the scene.
	OnFrame func(f int) error
}

// RenderResult summarizes one rendered scene.
type RenderResult struct {
	Frames   int
	Samples  int
	Duration time.Duration
}
