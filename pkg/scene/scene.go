// Package scene defines the narrated scene model consumed by the compositor.
package scene

import (
	"sort"
)

// VisualKind tags the visual variant of a scene.
type VisualKind int

const (
	// VisualNone means the scene has nothing to draw and is skipped.
	VisualNone VisualKind = iota
	// VisualImage is a static image animated with a slow zoom.
	VisualImage
	// VisualVideo is a looping, muted video clip.
	VisualVideo
)

// String returns the string representation of the visual kind.
func (k VisualKind) String() string {
	switch k {
	case VisualNone:
		return "none"
	case VisualImage:
		return "image"
	case VisualVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Visual is the tagged visual reference of a scene.
// Ref is empty when Kind is VisualNone.
type Visual struct {
	Kind VisualKind
	Ref  string
}

// NewVisual builds the visual variant from optional image and video references.
// When both are present the video reference wins.
func NewVisual(imageRef, videoRef string) Visual {
	switch {
	case videoRef != "":
		return Visual{Kind: VisualVideo, Ref: videoRef}
	case imageRef != "":
		return Visual{Kind: VisualImage, Ref: imageRef}
	default:
		return Visual{Kind: VisualNone}
	}
}

// Image returns an image visual.
func Image(ref string) Visual {
	return NewVisual(ref, "")
}

// Video returns a video visual.
func Video(ref string) Visual {
	return NewVisual("", ref)
}

// Present reports whether the scene has something to draw.
func (v Visual) Present() bool {
	return v.Kind != VisualNone && v.Ref != ""
}

// Scene is one narrated segment of the output video.
type Scene struct {
	ID     string
	Order  int
	Script string
	Visual Visual

	// Audio holds raw narration bytes (16-bit little-endian PCM).
	Audio []byte

	// AudioErr is set when the narration could not be read from the
	// story document. Such a scene is rendered silent.
	AudioErr error

	// Duration is the nominal length in seconds, used only when no
	// narration can be decoded. Zero selects the configured fallback.
	Duration float64
}

// HasAudio reports whether narration bytes are attached.
func (s Scene) HasAudio() bool {
	return len(s.Audio) > 0
}

// Sorted returns a copy of scenes in ascending Order.
// Scenes with equal Order keep their input order.
func Sorted(scenes []Scene) []Scene {
	out := make([]Scene, len(scenes))
	copy(out, scenes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}
