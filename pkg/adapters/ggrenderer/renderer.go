// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/webp"

	"github.com/user/storyreel/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct {
	fonts *fontCache
}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{fonts: newFontCache()}
}

// CreateCanvas creates a new drawing canvas.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc, fonts: r.fonts, faces: make(map[faceKey]font.Face)}
}

// DecodeImage decodes image data into an image.Image.
func (r *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	var (
		img image.Image
		err error
	)
	switch format {
	case ports.FormatJPEG:
		img, err = jpeg.Decode(reader)
	case ports.FormatPNG:
		img, err = png.Decode(reader)
	default:
		// JPEG, PNG, GIF and WebP are registered
		img, _, err = image.Decode(reader)
	}
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		opts := &jpeg.Options{Quality: quality}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage stretches an image to exactly width x height.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc    *gg.Context
	fonts *fontCache
	faces map[faceKey]font.Face
}

// Clear fills the canvas with col.
func (c *Canvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

// DrawImageScaled draws img stretched to the rectangle at (x, y).
func (c *Canvas) DrawImageScaled(img image.Image, x, y, width, height float64) {
	b := img.Bounds()
	if b.Empty() || width <= 0 || height <= 0 {
		return
	}

	dst, ok := c.dc.Image().(*image.RGBA)
	if !ok {
		return
	}

	// Unscaled at an integer position is a plain copy.
	if width == float64(b.Dx()) && height == float64(b.Dy()) && x == float64(int(x)) && y == float64(int(y)) {
		r := image.Rect(int(x), int(y), int(x)+b.Dx(), int(y)+b.Dy())
		draw.Draw(dst, r, img, b.Min, draw.Over)
		return
	}

	sx := width / float64(b.Dx())
	sy := height / float64(b.Dy())
	s2d := f64.Aff3{
		sx, 0, x - sx*float64(b.Min.X),
		0, sy, y - sy*float64(b.Min.Y),
	}
	draw.ApproxBiLinear.Transform(dst, s2d, img, b, draw.Over, nil)
}

// DrawRoundedRect draws a filled rounded rectangle.
func (c *Canvas) DrawRoundedRect(x, y, w, h, radius float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRoundedRectangle(x, y, w, h, radius)
	c.dc.Fill()
}

// DrawText draws text anchored at (x, y). With MaxWidth set the text is
// wrapped and the whole block is anchored instead of the first line.
func (c *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	if text == "" {
		return
	}
	c.applyFont(style)

	col := style.Color
	if col == nil {
		col = color.Black
	}
	c.dc.SetColor(col)

	ax := 0.0
	align := gg.AlignLeft
	switch style.Align {
	case ports.AlignCenter:
		ax = 0.5
		align = gg.AlignCenter
	case ports.AlignRight:
		ax = 1.0
		align = gg.AlignRight
	}

	if style.MaxWidth > 0 {
		spacing := style.LineSpacing
		if spacing <= 0 {
			spacing = 1.2
		}
		c.dc.DrawStringWrapped(text, x, y, ax, 0.5, style.MaxWidth, spacing, align)
		return
	}

	c.dc.DrawStringAnchored(text, x, y, ax, 0.5)
}

// MeasureText returns the size of text on one line.
func (c *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	c.applyFont(style)
	return c.dc.MeasureString(text)
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

func (c *Canvas) applyFont(style ports.TextStyle) {
	face, err := c.face(newFaceKey(style.FontPath, style.Bold, style.FontSize))
	if err != nil && style.FontPath != "" {
		// Fall back to the embedded font
		face, err = c.face(newFaceKey("", style.Bold, style.FontSize))
	}
	if err != nil {
		return
	}
	c.dc.SetFontFace(face)
}

func (c *Canvas) face(key faceKey) (font.Face, error) {
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	f, err := c.fonts.newFace(key)
	if err != nil {
		return nil, err
	}
	c.faces[key] = f
	return f, nil
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)
