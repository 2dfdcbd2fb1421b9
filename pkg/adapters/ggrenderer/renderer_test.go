package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/user/storyreel/pkg/ports"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 80, color.White)
	if canvas == nil {
		t.Fatal("expected canvas to be created")
	}

	w, h := canvas.Size()
	if w != 100 || h != 80 {
		t.Errorf("expected 100x80, got %dx%d", w, h)
	}

	bounds := canvas.ToImage().Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Errorf("expected 100x80 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeDecodeJPEG(t *testing.T) {
	r := New()

	data, err := r.EncodeImage(solid(50, 50, color.RGBA{R: 255, A: 255}), ports.FormatJPEG, 80)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty data")
	}

	decoded, err := r.DecodeImage(data, ports.FormatJPEG)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("expected 50x50, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_DecodeAuto(t *testing.T) {
	r := New()

	pngData, err := r.EncodeImage(image.NewRGBA(image.Rect(0, 0, 30, 20)), ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	var gifBuf bytes.Buffer
	if err := gif.Encode(&gifBuf, solid(12, 8, color.Black), nil); err != nil {
		t.Fatalf("gif encode: %v", err)
	}

	tests := []struct {
		name string
		data []byte
		w, h int
	}{
		{"png", pngData, 30, 20},
		{"gif", gifBuf.Bytes(), 12, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := r.DecodeImage(tt.data, ports.FormatAuto)
			if err != nil {
				t.Fatalf("DecodeImage failed: %v", err)
			}
			if img.Bounds().Dx() != tt.w || img.Bounds().Dy() != tt.h {
				t.Errorf("expected %dx%d, got %v", tt.w, tt.h, img.Bounds())
			}
		})
	}
}

func TestRenderer_DecodeGarbage(t *testing.T) {
	r := New()

	if _, err := r.DecodeImage([]byte("not an image"), ports.FormatAuto); err == nil {
		t.Error("expected decode error")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()

	resized := r.ResizeImage(solid(100, 50, color.White), 64, 36)

	bounds := resized.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 36 {
		t.Errorf("expected 64x36, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestCanvas_Clear(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(10, 10, color.White)

	canvas.Clear(color.Black)

	red, green, blue, _ := canvas.ToImage().At(5, 5).RGBA()
	if red != 0 || green != 0 || blue != 0 {
		t.Error("expected black pixel after Clear")
	}
}

func TestCanvas_DrawRoundedRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.DrawRoundedRect(10, 10, 60, 40, 8, color.RGBA{R: 255, A: 255})

	img := canvas.ToImage()

	// Inside the rectangle
	_, g, _, _ := img.At(40, 30).RGBA()
	if g != 0 {
		t.Error("expected red pixel inside rectangle")
	}

	// The rounded corner leaves the very corner untouched
	_, g, _, _ = img.At(10, 10).RGBA()
	if g == 0 {
		t.Error("expected corner pixel outside the rounded shape")
	}
}

func TestCanvas_DrawImageScaled(t *testing.T) {
	tests := []struct {
		name       string
		x, y, w, h float64
		inside     image.Point
		outside    image.Point
	}{
		{"unscaled copy", 10, 10, 20, 20, image.Pt(15, 15), image.Pt(35, 35)},
		{"zoomed", -5, -5, 110, 110, image.Pt(50, 50), image.Pt(-1, -1)},
		{"fractional", 20.5, 20.5, 30, 30, image.Pt(35, 35), image.Pt(5, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			canvas := r.CreateCanvas(100, 100, color.White)

			canvas.DrawImageScaled(solid(20, 20, color.RGBA{R: 255, A: 255}), tt.x, tt.y, tt.w, tt.h)

			img := canvas.ToImage()
			if _, g, _, _ := img.At(tt.inside.X, tt.inside.Y).RGBA(); g != 0 {
				t.Errorf("expected red pixel at %v", tt.inside)
			}
			if tt.outside.X >= 0 {
				if _, g, _, _ := img.At(tt.outside.X, tt.outside.Y).RGBA(); g == 0 {
					t.Errorf("expected white pixel at %v", tt.outside)
				}
			}
		})
	}
}

func TestCanvas_DrawText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 60, color.Black)

	style := ports.TextStyle{
		FontSize: 24,
		Bold:     true,
		Color:    color.White,
		Align:    ports.AlignCenter,
	}

	canvas.DrawText("Hello World", 100, 30, style)

	img := canvas.ToImage()
	lit := false
	for y := 0; y < 60 && !lit; y++ {
		for x := 0; x < 200; x++ {
			if red, _, _, _ := img.At(x, y).RGBA(); red > 0 {
				lit = true
				break
			}
		}
	}
	if !lit {
		t.Error("expected text pixels on the canvas")
	}
}

func TestCanvas_DrawTextWrapped(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 200, color.Black)

	style := ports.TextStyle{
		FontSize: 20,
		Color:    color.White,
		Align:    ports.AlignCenter,
		MaxWidth: 80,
	}

	canvas.DrawText("one two three four five six", 100, 100, style)

	// Wrapped text spans several lines around the anchor
	img := canvas.ToImage()
	rows := 0
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if red, _, _, _ := img.At(x, y).RGBA(); red > 0 {
				rows++
				break
			}
		}
	}

	_, lineHeight := canvas.MeasureText("one", style)
	if float64(rows) <= lineHeight {
		t.Errorf("expected text taller than one line (%.0f px), got %d rows", lineHeight, rows)
	}
}

func TestCanvas_MeasureText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(10, 10, color.White)

	small, _ := canvas.MeasureText("caption", ports.TextStyle{FontSize: 12})
	large, _ := canvas.MeasureText("caption", ports.TextStyle{FontSize: 32})

	if small <= 0 || large <= small {
		t.Errorf("expected width to grow with font size, got %.1f and %.1f", small, large)
	}
}

func TestCanvas_MissingFontFallsBack(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(10, 10, color.White)

	w, _ := canvas.MeasureText("x", ports.TextStyle{FontSize: 16, FontPath: "/nonexistent/font.ttf"})
	if w <= 0 {
		t.Error("expected embedded font fallback to measure text")
	}
}
