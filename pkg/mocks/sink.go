package mocks

import (
	"image"
	"sync"

	"github.com/user/storyreel/pkg/ports"
)

// SceneFrameKey identifies a saved scene frame.
type SceneFrameKey struct {
	Scene int
	Frame int
}

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	SceneFrames  map[SceneFrameKey]image.Image
	TimelineJSON []byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:     enabled,
		SceneFrames: make(map[SceneFrameKey]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveSceneFrame(sceneIndex, frame int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SceneFrames[SceneFrameKey{Scene: sceneIndex, Frame: frame}] = img
	return nil
}

func (m *DebugSink) SaveTimelineJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TimelineJSON = data
	return nil
}

// Timeline returns the saved timeline report.
func (m *DebugSink) Timeline() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TimelineJSON
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                              { return false }
func (m *NullSink) SaveSceneFrame(sceneIndex, frame int, img image.Image) error { return nil }
func (m *NullSink) SaveTimelineJSON(data []byte) error                          { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
