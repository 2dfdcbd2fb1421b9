// Package pipeline holds the stage contract of the compositor and the
// frame budget arithmetic shared by the driver and its stages.
package pipeline

import (
	"context"
)

// Stage turns one scene-level input into an output. Execute returns an
// error only for cancellation or failures that must stop the compile;
// per-scene asset problems are carried in Out.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// PrepareStage loads the assets of one scene.
type PrepareStage = Stage[PrepareInput, PreparedScene]

// RenderStage draws the frames of one prepared scene into the capture sink.
type RenderStage = Stage[RenderInput, RenderResult]
