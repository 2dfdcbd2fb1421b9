package ports

import (
	"image"
)

// DebugSink stores intermediate compile output for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveSceneFrame saves one rendered frame of a scene.
	SaveSceneFrame(sceneIndex, frame int, img image.Image) error

	// SaveTimelineJSON saves the per-scene compile report.
	SaveTimelineJSON(data []byte) error
}
