package mocks

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
)

// VisualLoader is a mock implementation of ports.VisualLoader.
type VisualLoader struct {
	mu sync.Mutex

	LoadFunc func(ctx context.Context, visual scene.Visual) (ports.VisualSource, error)

	// Recorded calls for verification
	Loads   []scene.Visual
	Sources []*VisualSource
}

func (m *VisualLoader) Load(ctx context.Context, visual scene.Visual) (ports.VisualSource, error) {
	m.mu.Lock()
	m.Loads = append(m.Loads, visual)
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, visual)
	}

	src := NewVisualSource(visual.Kind, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	m.mu.Lock()
	m.Sources = append(m.Sources, src)
	m.mu.Unlock()
	return src, nil
}

// LoadCount returns the number of Load calls.
func (m *VisualLoader) LoadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Loads)
}

var _ ports.VisualLoader = (*VisualLoader)(nil)

// VisualSource is a mock implementation of ports.VisualSource that yields
// a solid 16x9 image.
type VisualSource struct {
	mu sync.Mutex

	KindValue scene.VisualKind
	Image     image.Image
	FrameFunc func(index int) (image.Image, error)

	// Recorded calls for verification
	FrameCalls []int
	Closed     bool
}

// NewVisualSource creates a source filled with c.
func NewVisualSource(kind scene.VisualKind, c color.Color) *VisualSource {
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	return &VisualSource{KindValue: kind, Image: img}
}

func (m *VisualSource) Kind() scene.VisualKind {
	return m.KindValue
}

func (m *VisualSource) Frame(index int) (image.Image, error) {
	m.mu.Lock()
	m.FrameCalls = append(m.FrameCalls, index)
	m.mu.Unlock()

	if m.FrameFunc != nil {
		return m.FrameFunc(index)
	}
	return m.Image, nil
}

func (m *VisualSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *VisualSource) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

var _ ports.VisualSource = (*VisualSource)(nil)
