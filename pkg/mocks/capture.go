package mocks

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/user/storyreel/pkg/ports"
)

// CaptureSink is a mock implementation of ports.CaptureBackend. It
// enforces the session order of a real sink and records every call.
type CaptureSink struct {
	mu sync.Mutex

	// Backend identity for smart sink tests
	NameValue string
	Formats   []ports.CaptureFormat

	StartFunc      func(ctx context.Context, opts ports.CaptureOptions) (ports.CaptureFormat, error)
	WriteFrameFunc func(img image.Image, pts time.Duration) error
	WriteAudioFunc func(samples []float32) error
	FinishFunc     func() (*ports.MediaBlob, error)

	// Recorded calls for verification
	StartCalls   []ports.CaptureOptions
	Frames       []FrameCall
	AudioChunks  [][]float32
	FinishCalled bool
	AbortCalled  bool

	recording bool
	format    ports.CaptureFormat
}

// FrameCall records a call to WriteFrame.
type FrameCall struct {
	PTS time.Duration
	// Corner is the top-left pixel at the time of the call.
	Corner color.RGBA
}

// NewCaptureSink creates a mock sink that supports every format.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{
		NameValue: "mock",
		Formats:   ports.DefaultCaptureFormats,
	}
}

func (m *CaptureSink) Name() string {
	return m.NameValue
}

func (m *CaptureSink) Supports(format ports.CaptureFormat) bool {
	for _, f := range m.Formats {
		if f == format {
			return true
		}
	}
	return false
}

func (m *CaptureSink) Start(ctx context.Context, opts ports.CaptureOptions) (ports.CaptureFormat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartCalls = append(m.StartCalls, opts)
	if m.recording {
		return "", fmt.Errorf("%w: already recording", ports.ErrIllegalState)
	}

	var format ports.CaptureFormat
	if m.StartFunc != nil {
		f, err := m.StartFunc(ctx, opts)
		if err != nil {
			return "", err
		}
		format = f
	} else {
		formats := opts.Formats
		if len(formats) == 0 {
			formats = ports.DefaultCaptureFormats
		}
		for _, f := range formats {
			if m.Supports(f) {
				format = f
				break
			}
		}
		if format == "" {
			return "", ports.ErrUnsupportedFormat
		}
	}

	m.recording = true
	m.format = format
	m.Frames = nil
	m.AudioChunks = nil
	return format, nil
}

func (m *CaptureSink) WriteFrame(img image.Image, pts time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.recording {
		return fmt.Errorf("%w: not recording", ports.ErrIllegalState)
	}
	if m.WriteFrameFunc != nil {
		if err := m.WriteFrameFunc(img, pts); err != nil {
			return err
		}
	}

	b := img.Bounds()
	corner := color.RGBAModel.Convert(img.At(b.Min.X, b.Min.Y)).(color.RGBA)
	m.Frames = append(m.Frames, FrameCall{PTS: pts, Corner: corner})
	return nil
}

func (m *CaptureSink) WriteAudio(samples []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.recording {
		return fmt.Errorf("%w: not recording", ports.ErrIllegalState)
	}
	if m.WriteAudioFunc != nil {
		if err := m.WriteAudioFunc(samples); err != nil {
			return err
		}
	}
	m.AudioChunks = append(m.AudioChunks, samples)
	return nil
}

func (m *CaptureSink) Finish() (*ports.MediaBlob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FinishCalled = true
	if !m.recording {
		return nil, fmt.Errorf("%w: not recording", ports.ErrIllegalState)
	}
	m.recording = false

	if m.FinishFunc != nil {
		return m.FinishFunc()
	}
	return &ports.MediaBlob{
		Data:     []byte{0x1A, 0x45, 0xDF, 0xA3},
		MIMEType: m.format.MIMEType(),
		Format:   m.format,
		Frames:   len(m.Frames),
	}, nil
}

func (m *CaptureSink) Abort() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AbortCalled = true
	m.recording = false
	return nil
}

// FrameCount returns the number of frames written in the current session.
func (m *CaptureSink) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Frames)
}

// AudioSamples returns all written samples in order.
func (m *CaptureSink) AudioSamples() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []float32
	for _, chunk := range m.AudioChunks {
		out = append(out, chunk...)
	}
	return out
}

var _ ports.CaptureBackend = (*CaptureSink)(nil)
