package mocks

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/user/storyreel/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	DecodeImageFunc  func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := NewCanvas(width, height)
	c.Clear(bg)
	return c
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// CanvasOp records one drawing call on a mock Canvas.
type CanvasOp struct {
	Kind   string // "clear", "image", "rect" or "text"
	X, Y   float64
	W, H   float64
	Radius float64
	Color  color.Color
	Text   string
	Style  ports.TextStyle
	Image  image.Image
}

// Canvas is a mock implementation of ports.Canvas. Clear fills the backing
// image so frames stay distinguishable; other calls are only recorded.
type Canvas struct {
	mu     sync.Mutex
	width  int
	height int
	img    *image.RGBA

	Ops []CanvasOp
}

// NewCanvas creates a mock canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

func (m *Canvas) record(op CanvasOp) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ops = append(m.Ops, op)
}

func (m *Canvas) Clear(c color.Color) {
	if c != nil {
		draw.Draw(m.img, m.img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
	m.record(CanvasOp{Kind: "clear", Color: c})
}

func (m *Canvas) DrawImageScaled(img image.Image, x, y, width, height float64) {
	m.record(CanvasOp{Kind: "image", X: x, Y: y, W: width, H: height, Image: img})
}

func (m *Canvas) DrawRoundedRect(x, y, w, h, radius float64, c color.Color) {
	m.record(CanvasOp{Kind: "rect", X: x, Y: y, W: w, H: h, Radius: radius, Color: c})
}

func (m *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	m.record(CanvasOp{Kind: "text", X: x, Y: y, Text: text, Style: style, Color: style.Color})
}

func (m *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	return float64(len(text)) * style.FontSize * 0.5, style.FontSize
}

func (m *Canvas) Size() (int, int) {
	return m.width, m.height
}

func (m *Canvas) ToImage() image.Image {
	return m.img
}

// Reset clears recorded operations.
func (m *Canvas) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ops = nil
}

// OpsOfKind returns the recorded operations of one kind.
func (m *Canvas) OpsOfKind(kind string) []CanvasOp {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ops []CanvasOp
	for _, op := range m.Ops {
		if op.Kind == kind {
			ops = append(ops, op)
		}
	}
	return ops
}

var _ ports.Canvas = (*Canvas)(nil)
