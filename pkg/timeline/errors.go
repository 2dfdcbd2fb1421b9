package timeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoScenes is returned when Compile is called with an empty list.
	ErrNoScenes = errors.New("timeline: no scenes to compile")
	// ErrNothingRendered is returned when every scene was skipped.
	ErrNothingRendered = errors.New("timeline: no scene produced any frames")
	// ErrCancelled is returned when the context ends the run. It wraps
	// the context error.
	ErrCancelled = errors.New("timeline: compile cancelled")
)

// CompileError is a fatal compile failure.
//
// A failed run normally leaves from setup ("compile", "plan", "start") or
// from finalizing ("finalize"). Op "render" is the exception: a capture
// sink that rejects a frame or audio write moves the run from
// rendering-scene straight to failed, since the partial stream cannot be
// finalized.
type CompileError struct {
	// Op names the phase that failed: "compile", "plan", "start",
	// "render" or "finalize".
	Op  string
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %v", e.Op, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
