package visualloader

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/storyreel/pkg/adapters/avisink"
	"github.com/user/storyreel/pkg/adapters/ffmpeg"
	"github.com/user/storyreel/pkg/adapters/ggrenderer"
	"github.com/user/storyreel/pkg/adapters/logger"
	"github.com/user/storyreel/pkg/adapters/osfilesystem"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestLoader(opts Options) *Loader {
	if opts.Width == 0 {
		opts.Width, opts.Height = 64, 36
	}
	return New(ggrenderer.New(), osfilesystem.New(), logger.NewNoop(), opts)
}

func TestLoader_NoVisual(t *testing.T) {
	l := newTestLoader(Options{})

	_, err := l.Load(context.Background(), scene.Visual{})
	if !errors.Is(err, ports.ErrNoVisual) {
		t.Errorf("expected ErrNoVisual, got %v", err)
	}
}

func TestLoader_ImageDataURL(t *testing.T) {
	l := newTestLoader(Options{})

	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG(t, 20, 10))
	src, err := l.Load(context.Background(), scene.Image(ref))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer src.Close()

	if src.Kind() != scene.VisualImage {
		t.Errorf("expected image source, got %s", src.Kind())
	}

	img, err := src.Frame(0)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 36 {
		t.Errorf("expected image resized to 64x36, got %v", b)
	}

	again, _ := src.Frame(40)
	if again != img {
		t.Error("expected a still image to return the same frame")
	}
}

func TestLoader_ImageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.png")
	if err := os.WriteFile(path, testPNG(t, 8, 8), 0644); err != nil {
		t.Fatal(err)
	}

	l := newTestLoader(Options{})

	for _, ref := range []string{path, "file://" + path} {
		src, err := l.Load(context.Background(), scene.Image(ref))
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", ref, err)
		}
		src.Close()
	}
}

func TestLoader_ImageHTTP(t *testing.T) {
	data := testPNG(t, 16, 16)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scene.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	l := newTestLoader(Options{})

	src, err := l.Load(context.Background(), scene.Image(server.URL+"/scene.png"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	src.Close()

	_, err = l.Load(context.Background(), scene.Image(server.URL+"/missing.png"))
	if !errors.Is(err, ErrVisualLoad) {
		t.Errorf("expected ErrVisualLoad for 404, got %v", err)
	}
}

func TestLoader_ImageTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	l := newTestLoader(Options{Timeout: 50 * time.Millisecond})

	_, err := l.Load(context.Background(), scene.Image(server.URL+"/slow.png"))
	if !errors.Is(err, ErrVisualLoad) {
		t.Errorf("expected ErrVisualLoad, got %v", err)
	}
	if !errors.Is(err, ErrLoadTimeout) {
		t.Errorf("expected ErrLoadTimeout, got %v", err)
	}
}

func TestLoader_CancelledIsNotTimeout(t *testing.T) {
	l := newTestLoader(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx, scene.Image("https://example.invalid/scene.png"))
	if !errors.Is(err, ErrVisualLoad) {
		t.Errorf("expected ErrVisualLoad, got %v", err)
	}
	if errors.Is(err, ErrLoadTimeout) {
		t.Error("expected cancellation not to be reported as a timeout")
	}
}

func TestLoader_Errors(t *testing.T) {
	l := newTestLoader(Options{})

	tests := []struct {
		name string
		ref  string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.png")},
		{"not an image", "data:text/plain,hello"},
		{"bad base64", "data:image/png;base64,!!!"},
		{"no comma", "data:image/png;base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(context.Background(), scene.Image(tt.ref))
			if !errors.Is(err, ErrVisualLoad) {
				t.Errorf("expected ErrVisualLoad, got %v", err)
			}
		})
	}
}

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		name      string
		ref       string
		want      string
		mediaType string
	}{
		{"base64", "data:video/webm;base64,aGVsbG8=", "hello", "video/webm"},
		{"unpadded", "data:image/png;base64,aGVsbG8", "hello", "image/png"},
		{"percent encoded", "data:text/plain;charset=utf-8,a%20b", "a b", "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, mediaType, err := parseDataURL(tt.ref)
			if err != nil {
				t.Fatalf("parseDataURL failed: %v", err)
			}
			if string(data) != tt.want || mediaType != tt.mediaType {
				t.Errorf("got %q (%s), want %q (%s)", data, mediaType, tt.want, tt.mediaType)
			}
		})
	}
}

func rawFrames(w, h int, shades ...uint8) []byte {
	var out []byte
	for _, shade := range shades {
		frame := bytes.Repeat([]byte{shade, shade, shade, 255}, w*h)
		out = append(out, frame...)
	}
	return out
}

func TestStreamSource_Frames(t *testing.T) {
	closed := false
	src := newStreamSource(bytes.NewReader(rawFrames(2, 2, 10, 20, 30)), 2, 2, time.Second, func() error {
		closed = true
		return nil
	})

	if err := src.waitReady(context.Background()); err != nil {
		t.Fatalf("waitReady failed: %v", err)
	}

	want := []uint8{10, 20, 30, 30, 30}
	for i, shade := range want {
		img, err := src.Frame(i)
		if err != nil {
			t.Fatalf("Frame(%d) failed: %v", i, err)
		}
		if got := img.(*image.RGBA).Pix[0]; got != shade {
			t.Errorf("Frame(%d) shade = %d, want %d", i, got, shade)
		}
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !closed {
		t.Error("expected closer to run")
	}
	if err := src.Close(); err != nil {
		t.Errorf("expected second Close to succeed, got %v", err)
	}
}

func TestStreamSource_SkipsAhead(t *testing.T) {
	src := newStreamSource(bytes.NewReader(rawFrames(1, 1, 1, 2, 3, 4)), 1, 1, time.Second, nil)
	defer src.Close()

	if err := src.waitReady(context.Background()); err != nil {
		t.Fatalf("waitReady failed: %v", err)
	}

	img, _ := src.Frame(2)
	if got := img.(*image.RGBA).Pix[0]; got != 3 {
		t.Errorf("Frame(2) shade = %d, want 3", got)
	}
}

func TestStreamSource_StallWaitsOnce(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	src := newStreamSource(r, 1, 1, 100*time.Millisecond, func() error { return r.Close() })
	defer src.Close()

	go w.Write([]byte{7, 7, 7, 255})
	if err := src.waitReady(context.Background()); err != nil {
		t.Fatalf("waitReady failed: %v", err)
	}

	start := time.Now()
	for i := 1; i <= 5; i++ {
		img, err := src.Frame(i)
		if err != nil {
			t.Fatalf("Frame(%d) failed: %v", i, err)
		}
		if got := img.(*image.RGBA).Pix[0]; got != 7 {
			t.Errorf("Frame(%d) shade = %d, want 7", i, got)
		}
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("expected a single frame timeout, took %v", elapsed)
	}

	// A late frame is picked up without waiting again
	if _, err := w.Write([]byte{9, 9, 9, 255}); err != nil {
		t.Fatalf("write: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for i := 6; ; i++ {
		img, _ := src.Frame(i)
		if img.(*image.RGBA).Pix[0] == 9 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected the late frame to be delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamSource_NoFrames(t *testing.T) {
	// Half a frame never becomes ready
	src := newStreamSource(bytes.NewReader(make([]byte, 8)), 2, 2, time.Second, nil)
	defer src.Close()

	if err := src.waitReady(context.Background()); err == nil {
		t.Error("expected error for a stream without a complete frame")
	}
}

func TestStreamSource_WaitCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	src := newStreamSource(r, 2, 2, time.Second, func() error { return r.Close() })
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := src.waitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestLoader_Video(t *testing.T) {
	if !ffmpeg.Available("") {
		t.Skip("ffmpeg not available")
	}

	// Build a short MJPEG clip with the AVI backend.
	sink := avisink.New(logger.NewNoop())
	opts := ports.CaptureOptions{Width: 32, Height: 24, FPS: 30, SampleRate: 24000, Channels: 1, Formats: []ports.CaptureFormat{ports.CaptureAVI}}
	if _, err := sink.Start(context.Background(), opts); err != nil {
		t.Fatalf("start clip: %v", err)
	}
	frame := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for i := 0; i < 10; i++ {
		if err := sink.WriteFrame(frame, time.Duration(i)*time.Second/30); err != nil {
			t.Fatalf("write clip frame: %v", err)
		}
		if err := sink.WriteAudio(make([]float32, 800)); err != nil {
			t.Fatalf("write clip audio: %v", err)
		}
	}
	blob, err := sink.Finish()
	if err != nil {
		t.Fatalf("finish clip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "clip.avi")
	if err := os.WriteFile(path, blob.Data, 0644); err != nil {
		t.Fatal(err)
	}

	l := newTestLoader(Options{Width: 16, Height: 12})
	src, err := l.Load(context.Background(), scene.Video(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer src.Close()

	if src.Kind() != scene.VisualVideo {
		t.Errorf("expected video source, got %s", src.Kind())
	}

	// The clip loops, so frames keep coming past its own length.
	for i := 0; i < 25; i++ {
		img, err := src.Frame(i)
		if err != nil {
			t.Fatalf("Frame(%d) failed: %v", i, err)
		}
		if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
			t.Fatalf("expected 16x12 frames, got %v", b)
		}
	}
}
