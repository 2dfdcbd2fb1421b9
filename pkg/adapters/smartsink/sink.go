// Package smartsink provides a capture sink that walks the format
// preference order across several backends and falls back to the next
// format when one cannot be produced.
package smartsink

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/user/storyreel/pkg/adapters/avisink"
	"github.com/user/storyreel/pkg/adapters/ffmpegsink"
	"github.com/user/storyreel/pkg/ports"
)

// Info describes the backend chosen by the last Start.
type Info struct {
	// Format is the format being recorded.
	Format ports.CaptureFormat
	// Backend is the name of the backend recording it.
	Backend string
	// RequestedFormat is the first format in the preference order.
	RequestedFormat ports.CaptureFormat
	// FallbackUsed indicates whether a later format was chosen.
	FallbackUsed bool
}

// Sink implements ports.CaptureSink over a list of backends.
type Sink struct {
	backends []ports.CaptureBackend
	logger   ports.Logger

	mu     sync.Mutex
	active ports.CaptureBackend
	info   Info
}

// New creates a sink over backends. For each format in the preference
// order the backends are tried in the order given.
func New(logger ports.Logger, backends ...ports.CaptureBackend) *Sink {
	return &Sink{
		backends: backends,
		logger:   logger.WithComponent("capture"),
	}
}

// NewDefault creates a sink over the ffmpeg backend followed by the pure
// Go AVI backend.
func NewDefault(ffmpegPath string, logger ports.Logger) *Sink {
	return New(logger,
		ffmpegsink.New(ffmpegPath, logger),
		avisink.New(logger),
	)
}

// Start opens a session on the first backend that can produce the
// earliest possible format.
func (s *Sink) Start(ctx context.Context, opts ports.CaptureOptions) (ports.CaptureFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return "", fmt.Errorf("%w: %s session already active", ports.ErrIllegalState, s.info.Backend)
	}

	formats := opts.Formats
	if len(formats) == 0 {
		formats = ports.DefaultCaptureFormats
	}

	for i, format := range formats {
		for _, backend := range s.backends {
			if !backend.Supports(format) {
				continue
			}

			single := opts
			single.Formats = []ports.CaptureFormat{format}

			got, err := backend.Start(ctx, single)
			if errors.Is(err, ports.ErrUnsupportedFormat) {
				s.logger.Warn("Backend %s cannot record %s, trying next", backend.Name(), format)
				continue
			}
			if err != nil {
				return "", fmt.Errorf("start %s capture: %w", backend.Name(), err)
			}

			s.active = backend
			s.info = Info{
				Format:          got,
				Backend:         backend.Name(),
				RequestedFormat: formats[0],
				FallbackUsed:    i > 0,
			}
			if i > 0 {
				s.logger.Warn("Format %s not available, falling back to %s", formats[0], got)
			}
			s.logger.Debug("Recording %s with %s backend", got, backend.Name())
			return got, nil
		}
	}

	return "", fmt.Errorf("%w: tried %v", ports.ErrUnsupportedFormat, formats)
}

// WriteFrame forwards to the active backend.
func (s *Sink) WriteFrame(img image.Image, pts time.Duration) error {
	backend, err := s.current()
	if err != nil {
		return err
	}
	return backend.WriteFrame(img, pts)
}

// WriteAudio forwards to the active backend.
func (s *Sink) WriteAudio(samples []float32) error {
	backend, err := s.current()
	if err != nil {
		return err
	}
	return backend.WriteAudio(samples)
}

// Finish finalizes the active backend and ends the session.
func (s *Sink) Finish() (*ports.MediaBlob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil, fmt.Errorf("%w: no active session", ports.ErrIllegalState)
	}

	backend := s.active
	s.active = nil
	return backend.Finish()
}

// Abort stops the active backend, if any.
func (s *Sink) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil
	}

	backend := s.active
	s.active = nil
	return backend.Abort()
}

// Info returns details about the last started session.
func (s *Sink) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Available returns the formats at least one backend can produce, in
// preference order.
func (s *Sink) Available(formats []ports.CaptureFormat) []ports.CaptureFormat {
	if len(formats) == 0 {
		formats = ports.DefaultCaptureFormats
	}

	var out []ports.CaptureFormat
	for _, format := range formats {
		for _, backend := range s.backends {
			if backend.Supports(format) {
				out = append(out, format)
				break
			}
		}
	}
	return out
}

func (s *Sink) current() (ports.CaptureBackend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil, fmt.Errorf("%w: no active session", ports.ErrIllegalState)
	}
	return s.active, nil
}

// Ensure Sink implements ports.CaptureSink
var _ ports.CaptureSink = (*Sink)(nil)
