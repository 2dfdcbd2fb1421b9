package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image decoding, encoding and canvas creation.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas filled with bg.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// DecodeImage decodes image data. FormatAuto sniffs the format.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage stretches an image to exactly width x height.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas is the fixed-resolution render surface one frame is drawn into.
type Canvas interface {
	// Clear fills the whole canvas with c, discarding prior content.
	Clear(c color.Color)

	// DrawImageScaled draws img stretched to the given rectangle.
	// Coordinates are fractional so slow zooms stay smooth.
	DrawImageScaled(img image.Image, x, y, width, height float64)

	// DrawRoundedRect draws a filled rounded rectangle.
	DrawRoundedRect(x, y, w, h, radius float64, c color.Color)

	// DrawText draws text anchored at (x, y) according to style.
	DrawText(text string, x, y float64, style TextStyle)

	// MeasureText returns the width and height of a single line of text.
	MeasureText(text string, style TextStyle) (width, height float64)

	// Size returns the canvas dimensions.
	Size() (width, height int)

	// ToImage returns the current canvas content. The image is owned by
	// the canvas and is overwritten by the next frame.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	FontPath string
	Bold     bool
	Color    color.Color
	Align    TextAlign

	// MaxWidth wraps text into lines no wider than this when > 0.
	MaxWidth    float64
	LineSpacing float64
}

// TextAlign specifies text alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatAuto ImageFormat = iota
	FormatJPEG
	FormatPNG
)
