package ports

import (
	"context"
	"errors"
	"image"
	"time"
)

var (
	// ErrUnsupportedFormat is returned when no output encoding is usable.
	ErrUnsupportedFormat = errors.New("capture: no supported output format")

	// ErrIllegalState is returned when the capture session is used out of order,
	// for example a second Start while recording or a write after Finish.
	ErrIllegalState = errors.New("capture: illegal session state")
)

// CaptureFormat names an output container and codec profile.
type CaptureFormat string

const (
	// CaptureWebM is VP9 video with Opus audio in WebM.
	CaptureWebM CaptureFormat = "webm"
	// CaptureMP4 is H.264 video with AAC audio in fragmented MP4.
	CaptureMP4 CaptureFormat = "mp4"
	// CaptureAVI is Motion JPEG video with PCM audio in AVI.
	CaptureAVI CaptureFormat = "avi"
)

// DefaultCaptureFormats is the preference order used when none is configured.
var DefaultCaptureFormats = []CaptureFormat{CaptureWebM, CaptureMP4, CaptureAVI}

// MIMEType returns the media type of the format, with codecs where known.
func (f CaptureFormat) MIMEType() string {
	switch f {
	case CaptureWebM:
		return "video/webm;codecs=vp9,opus"
	case CaptureMP4:
		return "video/mp4;codecs=avc1.42E01F,mp4a.40.2"
	case CaptureAVI:
		return "video/x-msvideo"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension of the format including the dot.
func (f CaptureFormat) Extension() string {
	switch f {
	case CaptureWebM, CaptureMP4, CaptureAVI:
		return "." + string(f)
	default:
		return ".bin"
	}
}

// ParseCaptureFormat parses a format name.
func ParseCaptureFormat(s string) (CaptureFormat, bool) {
	switch CaptureFormat(s) {
	case CaptureWebM, CaptureMP4, CaptureAVI:
		return CaptureFormat(s), true
	default:
		return "", false
	}
}

// CaptureOptions configures one capture session.
type CaptureOptions struct {
	Width  int
	Height int
	FPS    int

	// Audio stream layout. Samples passed to WriteAudio are interleaved.
	SampleRate int
	Channels   int

	// Formats is the preference order. Empty selects DefaultCaptureFormats.
	Formats []CaptureFormat

	Quality     int // CRF for ffmpeg codecs (lower is better)
	Bitrate     int // Target video bitrate in kbps, 0 keeps the codec default
	JPEGQuality int // Motion JPEG quality (1-100)
}

// MediaBlob is a finished, in-memory media file.
type MediaBlob struct {
	Data     []byte
	MIMEType string
	Filename string
	Format   CaptureFormat
	Frames   int
	Duration time.Duration
}

// CaptureSink records pushed frames and audio into one encoded blob.
type CaptureSink interface {
	// Start probes the preference order and opens a session.
	Start(ctx context.Context, opts CaptureOptions) (CaptureFormat, error)

	// WriteFrame pushes one frame presented at pts. The image may be
	// reused by the caller after the call returns.
	WriteFrame(img image.Image, pts time.Duration) error

	// WriteAudio pushes interleaved samples in [-1, 1]. Ownership of the
	// slice transfers to the sink.
	WriteAudio(samples []float32) error

	// Finish flushes the encoder and returns the concatenated output.
	Finish() (*MediaBlob, error)

	// Abort stops the session and discards partial output. It is safe to
	// call when no session is active.
	Abort() error
}

// CaptureBackend is a CaptureSink that can report format support up front.
type CaptureBackend interface {
	CaptureSink

	// Name identifies the backend in logs.
	Name() string

	// Supports reports whether the backend can produce format.
	Supports(format CaptureFormat) bool
}
