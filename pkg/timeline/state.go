package timeline

import "fmt"

// State is the phase of a compile run.
type State int

const (
	StateIdle State = iota
	StateLoadingScene
	StateRenderingScene
	StateFinalizing
	StateDone
	StateCancelled
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingScene:
		return "loading-scene"
	case StateRenderingScene:
		return "rendering-scene"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run has ended.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled || s == StateFailed
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for st := StateIdle; st <= StateFailed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("timeline: unknown state %q", text)
}

// Progress is one observable update of a compile run.
type Progress struct {
	State State `json:"state"`
	// SceneIndex is the sorted position of the current scene, or -1
	// outside the scene loop.
	SceneIndex int    `json:"sceneIndex"`
	SceneID    string `json:"sceneId,omitempty"`
	// Percent never decreases within a run and is 100 when done.
	Percent int    `json:"percent"`
	Message string `json:"message"`
}
