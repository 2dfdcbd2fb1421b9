package render

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/user/storyreel/pkg/adapters/ggrenderer"
	"github.com/user/storyreel/pkg/mocks"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFrameRenderer_KenBurnsGeometry(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		scale    float64
	}{
		{"start", 0, 1.0},
		{"middle", 0.5, 1.05},
		{"near end", 0.9, 1.09},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := mocks.NewCanvas(1280, 720)
			r := NewFrameRenderer(DefaultFrameStyle())
			src := mocks.NewVisualSource(scene.VisualImage, color.White)

			if err := r.Render(canvas, src, 0, tt.fraction, ""); err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			images := canvas.OpsOfKind("image")
			if len(images) != 1 {
				t.Fatalf("expected one image draw, got %d", len(images))
			}
			op := images[0]

			w, h := 1280*tt.scale, 720*tt.scale
			if !near(op.W, w) || !near(op.H, h) {
				t.Errorf("expected size %.2fx%.2f, got %.2fx%.2f", w, h, op.W, op.H)
			}
			if !near(op.X, (1280-w)/2) || !near(op.Y, (720-h)/2) {
				t.Errorf("expected centred offset, got (%.2f, %.2f)", op.X, op.Y)
			}
		})
	}
}

func TestFrameRenderer_VideoFillsCanvas(t *testing.T) {
	canvas := mocks.NewCanvas(1280, 720)
	r := NewFrameRenderer(DefaultFrameStyle())
	src := mocks.NewVisualSource(scene.VisualVideo, color.White)

	if err := r.Render(canvas, src, 7, 0.75, ""); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	op := canvas.OpsOfKind("image")[0]
	if op.X != 0 || op.Y != 0 || op.W != 1280 || op.H != 720 {
		t.Errorf("expected video stretched to canvas, got %+v", op)
	}
	if len(src.FrameCalls) != 1 || src.FrameCalls[0] != 7 {
		t.Errorf("expected frame 7 requested, got %v", src.FrameCalls)
	}
}

func TestFrameRenderer_ClearsFirst(t *testing.T) {
	canvas := mocks.NewCanvas(64, 36)
	r := NewFrameRenderer(DefaultFrameStyle())
	src := mocks.NewVisualSource(scene.VisualImage, color.White)

	for f := 0; f < 3; f++ {
		canvas.Reset()
		if err := r.Render(canvas, src, f, float64(f)/3, "caption"); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if canvas.Ops[0].Kind != "clear" {
			t.Fatalf("frame %d: expected clear first, got %s", f, canvas.Ops[0].Kind)
		}
		cr, cg, cb, ca := canvas.Ops[0].Color.RGBA()
		if cr != 0 || cg != 0 || cb != 0 || ca != 0xffff {
			t.Errorf("frame %d: expected opaque black clear", f)
		}
	}
}

func TestFrameRenderer_Caption(t *testing.T) {
	canvas := mocks.NewCanvas(1280, 720)
	r := NewFrameRenderer(DefaultFrameStyle())

	if err := r.Render(canvas, nil, 0, 0, "Hello"); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	rects := canvas.OpsOfKind("rect")
	if len(rects) != 1 {
		t.Fatalf("expected one caption band, got %d", len(rects))
	}
	band := rects[0]
	if band.X != 100 || band.Y != 570 || band.W != 1080 || band.H != 100 || band.Radius != 32 {
		t.Errorf("unexpected band geometry %+v", band)
	}
	_, _, _, a := band.Color.RGBA()
	if a != 166*0x101 {
		t.Errorf("expected 65%% opaque band, got alpha %d", a>>8)
	}

	texts := canvas.OpsOfKind("text")
	if len(texts) != 1 {
		t.Fatalf("expected one caption text, got %d", len(texts))
	}
	text := texts[0]
	if text.Text != "Hello" || text.X != 640 || text.Y != 630 {
		t.Errorf("unexpected caption placement %+v", text)
	}
	if !text.Style.Bold || text.Style.FontSize != 32 || text.Style.Align != ports.AlignCenter {
		t.Errorf("unexpected caption style %+v", text.Style)
	}
	if text.Style.MaxWidth <= 0 || text.Style.MaxWidth > band.W {
		t.Errorf("expected caption to wrap inside the band, max width %.0f", text.Style.MaxWidth)
	}
}

func TestFrameRenderer_EmptyCaptionKeepsBand(t *testing.T) {
	canvas := mocks.NewCanvas(1280, 720)
	r := NewFrameRenderer(DefaultFrameStyle())

	if err := r.Render(canvas, mocks.NewVisualSource(scene.VisualImage, color.White), 0, 0, ""); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if n := len(canvas.OpsOfKind("rect")); n != 1 {
		t.Errorf("expected the band to be drawn, got %d rects", n)
	}
	if n := len(canvas.OpsOfKind("text")); n != 0 {
		t.Errorf("expected no text, got %d", n)
	}
}

func TestFrameRenderer_FrameUnavailable(t *testing.T) {
	canvas := mocks.NewCanvas(64, 36)
	r := NewFrameRenderer(DefaultFrameStyle())
	src := mocks.NewVisualSource(scene.VisualVideo, color.White)
	src.FrameFunc = func(index int) (image.Image, error) {
		return nil, errors.New("decoder stalled")
	}

	err := r.Render(canvas, src, 0, 0, "still captioned")
	if !errors.Is(err, ErrFrameUnavailable) {
		t.Fatalf("expected ErrFrameUnavailable, got %v", err)
	}
	if len(canvas.OpsOfKind("text")) != 1 {
		t.Error("expected caption to be drawn even without a visual frame")
	}
}

func TestFrameRenderer_WithGG(t *testing.T) {
	canvas := ggrenderer.New().CreateCanvas(320, 180, color.White)
	r := NewFrameRenderer(DefaultFrameStyle())
	src := mocks.NewVisualSource(scene.VisualImage, color.RGBA{R: 255, A: 255})

	if err := r.Render(canvas, src, 0, 0.5, ""); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img := canvas.ToImage()
	if red, g, _, _ := img.At(160, 40).RGBA(); red>>8 != 255 || g != 0 {
		t.Errorf("expected the zoomed image to cover the centre, got r=%d g=%d", red>>8, g>>8)
	}
}
