// Package render draws composited frames and pushes them, with their
// narration slices, into the capture sink.
package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
)

// ErrFrameUnavailable is returned when the visual source cannot produce a
// frame. The background and caption are still drawn.
var ErrFrameUnavailable = errors.New("render: visual frame unavailable")

// FrameStyle holds the look of a rendered frame.
type FrameStyle struct {
	Background color.Color

	// Image visuals zoom from ZoomFrom to ZoomTo over the scene.
	ZoomFrom float64
	ZoomTo   float64

	// Caption band geometry. The band spans the width minus BandInset on
	// each side and its top sits BandBottom pixels above the bottom edge.
	BandColor  color.Color
	BandInset  float64
	BandBottom float64
	BandHeight float64
	BandRadius float64

	// Caption text is centred BaselineOffset pixels above the bottom edge.
	FontSize       float64
	FontPath       string
	TextColor      color.Color
	BaselineOffset float64
}

// DefaultFrameStyle returns the standard look: black background, a 10%
// zoom and a translucent caption band near the bottom.
func DefaultFrameStyle() FrameStyle {
	return FrameStyle{
		Background:     color.RGBA{A: 255},
		ZoomFrom:       1.0,
		ZoomTo:         1.1,
		BandColor:      color.NRGBA{A: 166},
		BandInset:      100,
		BandBottom:     150,
		BandHeight:     100,
		BandRadius:     32,
		FontSize:       32,
		TextColor:      color.White,
		BaselineOffset: 90,
	}
}

// FrameRenderer draws one frame at a time onto a canvas.
type FrameRenderer struct {
	style FrameStyle
}

// NewFrameRenderer creates a renderer with the given style.
func NewFrameRenderer(style FrameStyle) *FrameRenderer {
	return &FrameRenderer{style: style}
}

// Style returns the renderer's frame style.
func (r *FrameRenderer) Style() FrameStyle {
	return r.style
}

// Render draws frame frameIndex of a scene. fraction is the elapsed part
// of the scene in [0, 1).
func (r *FrameRenderer) Render(canvas ports.Canvas, source ports.VisualSource, frameIndex int, fraction float64, caption string) error {
	canvas.Clear(r.style.Background)

	var frameErr error
	if source != nil {
		frameErr = r.drawVisual(canvas, source, frameIndex, fraction)
	}

	r.drawCaption(canvas, caption)
	return frameErr
}

// Zoom returns the image scale at fraction.
func (r *FrameRenderer) Zoom(fraction float64) float64 {
	return r.style.ZoomFrom + (r.style.ZoomTo-r.style.ZoomFrom)*fraction
}

func (r *FrameRenderer) drawVisual(canvas ports.Canvas, source ports.VisualSource, frameIndex int, fraction float64) error {
	img, err := source.Frame(frameIndex)
	if err != nil {
		return fmt.Errorf("%w: frame %d: %v", ErrFrameUnavailable, frameIndex, err)
	}
	if img == nil {
		return fmt.Errorf("%w: frame %d is empty", ErrFrameUnavailable, frameIndex)
	}

	w, h := canvas.Size()
	fw, fh := float64(w), float64(h)

	if source.Kind() == scene.VisualVideo {
		canvas.DrawImageScaled(img, 0, 0, fw, fh)
		return nil
	}

	scale := r.Zoom(fraction)
	sw, sh := fw*scale, fh*scale
	canvas.DrawImageScaled(img, (fw-sw)/2, (fh-sh)/2, sw, sh)
	return nil
}

func (r *FrameRenderer) drawCaption(canvas ports.Canvas, caption string) {
	w, h := canvas.Size()
	fw, fh := float64(w), float64(h)
	s := r.style

	bandWidth := fw - 2*s.BandInset
	canvas.DrawRoundedRect(s.BandInset, fh-s.BandBottom, bandWidth, s.BandHeight, s.BandRadius, s.BandColor)
	if caption == "" {
		return
	}

	canvas.DrawText(caption, fw/2, fh-s.BaselineOffset, ports.TextStyle{
		FontSize: s.FontSize,
		FontPath: s.FontPath,
		Bold:     true,
		Color:    s.TextColor,
		Align:    ports.AlignCenter,
		MaxWidth: bandWidth - 2*s.BandRadius,
	})
}
