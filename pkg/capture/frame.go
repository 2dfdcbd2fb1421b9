package capture

import (
	"image"
	"image/draw"
	"strings"
	"time"
	"unicode"

	"github.com/user/storyreel/pkg/ports"
)

// ToRGBA returns img as a tightly packed width x height RGBA image.
// When img already has that layout it is returned as is; otherwise it is
// drawn into buf, which is allocated when nil or mis-sized.
func ToRGBA(img image.Image, width, height int, buf *image.RGBA) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		b := rgba.Bounds()
		if b.Min == (image.Point{}) && b.Dx() == width && b.Dy() == height && rgba.Stride == width*4 {
			return rgba
		}
	}

	if buf == nil || buf.Bounds().Dx() != width || buf.Bounds().Dy() != height {
		buf = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	draw.Draw(buf, buf.Bounds(), img, img.Bounds().Min, draw.Src)
	return buf
}

// FrameDuration returns the presentation length of one frame.
func FrameDuration(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}

// SuggestFilename derives a download name from a story title.
// Runs of whitespace become underscores; path separators are dropped.
func SuggestFilename(title string, format ports.CaptureFormat) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, title)

	name := strings.Join(strings.Fields(cleaned), "_")
	if name == "" {
		return "storyreel" + format.Extension()
	}
	return name + "_storyreel" + format.Extension()
}
