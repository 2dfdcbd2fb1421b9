package smartsink

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/user/storyreel/pkg/adapters/logger"
	"github.com/user/storyreel/pkg/mocks"
	"github.com/user/storyreel/pkg/ports"
)

func backend(name string, formats ...ports.CaptureFormat) *mocks.CaptureSink {
	b := mocks.NewCaptureSink()
	b.NameValue = name
	b.Formats = formats
	return b
}

func TestSink_PrefersFirstFormat(t *testing.T) {
	ffmpeg := backend("ffmpeg", ports.CaptureWebM, ports.CaptureMP4)
	avi := backend("avi", ports.CaptureAVI)
	s := New(logger.NewNoop(), ffmpeg, avi)

	format, err := s.Start(context.Background(), ports.CaptureOptions{})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if format != ports.CaptureWebM {
		t.Errorf("expected webm, got %s", format)
	}

	info := s.Info()
	if info.Backend != "ffmpeg" || info.FallbackUsed {
		t.Errorf("unexpected info %+v", info)
	}
	if got := ffmpeg.StartCalls[0].Formats; len(got) != 1 || got[0] != ports.CaptureWebM {
		t.Errorf("expected backend to be asked for webm only, got %v", got)
	}
}

func TestSink_FallsBackToAVI(t *testing.T) {
	ffmpeg := backend("ffmpeg")
	avi := backend("avi", ports.CaptureAVI)
	s := New(logger.NewNoop(), ffmpeg, avi)

	format, err := s.Start(context.Background(), ports.CaptureOptions{})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if format != ports.CaptureAVI {
		t.Errorf("expected avi, got %s", format)
	}

	info := s.Info()
	if !info.FallbackUsed || info.RequestedFormat != ports.CaptureWebM {
		t.Errorf("expected fallback from webm, got %+v", info)
	}
	if len(ffmpeg.StartCalls) != 0 {
		t.Error("expected unsupported backend not to be started")
	}
}

func TestSink_StartUnsupportedContinues(t *testing.T) {
	flaky := backend("flaky", ports.CaptureWebM)
	flaky.StartFunc = func(ctx context.Context, opts ports.CaptureOptions) (ports.CaptureFormat, error) {
		return "", ports.ErrUnsupportedFormat
	}
	avi := backend("avi", ports.CaptureAVI)
	s := New(logger.NewNoop(), flaky, avi)

	format, err := s.Start(context.Background(), ports.CaptureOptions{})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if format != ports.CaptureAVI {
		t.Errorf("expected avi, got %s", format)
	}
}

func TestSink_StartErrorIsFatal(t *testing.T) {
	broken := backend("broken", ports.CaptureWebM)
	broken.StartFunc = func(ctx context.Context, opts ports.CaptureOptions) (ports.CaptureFormat, error) {
		return "", errors.New("spawn failed")
	}
	avi := backend("avi", ports.CaptureAVI)
	s := New(logger.NewNoop(), broken, avi)

	if _, err := s.Start(context.Background(), ports.CaptureOptions{}); err == nil {
		t.Fatal("expected start error")
	}
	if len(avi.StartCalls) != 0 {
		t.Error("expected no fallback after a hard failure")
	}
}

func TestSink_NoFormat(t *testing.T) {
	s := New(logger.NewNoop(), backend("avi", ports.CaptureAVI))

	_, err := s.Start(context.Background(), ports.CaptureOptions{
		Formats: []ports.CaptureFormat{ports.CaptureMP4},
	})
	if !errors.Is(err, ports.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSink_SessionOrder(t *testing.T) {
	avi := backend("avi", ports.CaptureAVI)
	s := New(logger.NewNoop(), avi)

	if err := s.WriteFrame(image.NewRGBA(image.Rect(0, 0, 1, 1)), 0); !errors.Is(err, ports.ErrIllegalState) {
		t.Errorf("expected ErrIllegalState before Start, got %v", err)
	}
	if err := s.WriteAudio([]float32{0}); !errors.Is(err, ports.ErrIllegalState) {
		t.Errorf("expected ErrIllegalState before Start, got %v", err)
	}
	if _, err := s.Finish(); !errors.Is(err, ports.ErrIllegalState) {
		t.Errorf("expected ErrIllegalState before Start, got %v", err)
	}

	if _, err := s.Start(context.Background(), ports.CaptureOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := s.Start(context.Background(), ports.CaptureOptions{}); !errors.Is(err, ports.ErrIllegalState) {
		t.Errorf("expected ErrIllegalState on second Start, got %v", err)
	}

	if err := s.WriteFrame(image.NewRGBA(image.Rect(0, 0, 1, 1)), 0); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if err := s.WriteAudio([]float32{0.5}); err != nil {
		t.Fatalf("WriteAudio failed: %v", err)
	}

	blob, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if blob.Frames != 1 {
		t.Errorf("expected 1 frame, got %d", blob.Frames)
	}

	if err := s.WriteFrame(image.NewRGBA(image.Rect(0, 0, 1, 1)), 0); !errors.Is(err, ports.ErrIllegalState) {
		t.Errorf("expected ErrIllegalState after Finish, got %v", err)
	}
}

func TestSink_Abort(t *testing.T) {
	avi := backend("avi", ports.CaptureAVI)
	s := New(logger.NewNoop(), avi)

	if err := s.Abort(); err != nil {
		t.Errorf("expected idle Abort to succeed, got %v", err)
	}

	if _, err := s.Start(context.Background(), ports.CaptureOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Abort(); err != nil {
		t.Fatalf("Abort failed: %v", err)
	}
	if !avi.AbortCalled {
		t.Error("expected backend Abort to be called")
	}

	if _, err := s.Start(context.Background(), ports.CaptureOptions{}); err != nil {
		t.Errorf("expected Start after Abort to succeed, got %v", err)
	}
}

func TestSink_Available(t *testing.T) {
	s := New(logger.NewNoop(),
		backend("ffmpeg", ports.CaptureMP4),
		backend("avi", ports.CaptureAVI),
	)

	got := s.Available(nil)
	if len(got) != 2 || got[0] != ports.CaptureMP4 || got[1] != ports.CaptureAVI {
		t.Errorf("expected [mp4 avi], got %v", got)
	}
}
