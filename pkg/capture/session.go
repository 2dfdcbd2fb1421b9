// Package capture holds the state shared by every capture backend: the
// session state machine, chunk accumulation and frame conversion.
package capture

import (
	"fmt"
	"sync"

	"github.com/user/storyreel/pkg/ports"
)

// State is the lifecycle state of a capture session.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateFinalizing
	StateDone
	StateFailed
	StateAborted
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// active reports whether the session is between Begin and a terminal state.
func (s State) active() bool {
	return s == StateRecording || s == StateFinalizing
}

// Session accumulates encoded chunks for one recording.
// It is safe for concurrent use by a writer and a chunk reader.
type Session struct {
	mu     sync.Mutex
	state  State
	chunks [][]byte
	size   int
	frames int
	format ports.CaptureFormat
}

// Begin opens the session. A session that is still recording or
// finalizing cannot be reopened.
func (s *Session) Begin(format ports.CaptureFormat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.active() {
		return fmt.Errorf("%w: session already %s", ports.ErrIllegalState, s.state)
	}

	s.state = StateRecording
	s.chunks = nil
	s.size = 0
	s.frames = 0
	s.format = format
	return nil
}

// CheckRecording returns ErrIllegalState unless the session accepts input.
func (s *Session) CheckRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return fmt.Errorf("%w: session is %s", ports.ErrIllegalState, s.state)
	}
	return nil
}

// Append stores an encoded chunk. Chunks arriving after the session ended
// are dropped. Ownership of chunk transfers to the session.
func (s *Session) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.active() {
		return
	}
	s.chunks = append(s.chunks, chunk)
	s.size += len(chunk)
}

// CountFrame records one accepted video frame.
func (s *Session) CountFrame() {
	s.mu.Lock()
	s.frames++
	s.mu.Unlock()
}

// Finalize moves a recording session to finalizing.
func (s *Session) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return fmt.Errorf("%w: cannot finalize %s session", ports.ErrIllegalState, s.state)
	}
	s.state = StateFinalizing
	return nil
}

// Complete concatenates the accumulated chunks and marks the session done.
// Ownership of the returned bytes transfers to the caller.
func (s *Session) Complete() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFinalizing {
		return nil, fmt.Errorf("%w: cannot complete %s session", ports.ErrIllegalState, s.state)
	}

	out := make([]byte, 0, s.size)
	for _, c := range s.chunks {
		out = append(out, c...)
	}

	s.chunks = nil
	s.size = 0
	s.state = StateDone
	return out, nil
}

// Fail marks the session failed and drops its output.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = nil
	s.size = 0
	s.state = StateFailed
}

// Abort discards partial output. It reports whether a session was active.
func (s *Session) Abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive := s.state.active()
	s.chunks = nil
	s.size = 0
	if wasActive {
		s.state = StateAborted
	}
	return wasActive
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Frames returns the number of frames counted so far.
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Size returns the number of buffered bytes.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Format returns the format chosen at Begin.
func (s *Session) Format() ports.CaptureFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}
