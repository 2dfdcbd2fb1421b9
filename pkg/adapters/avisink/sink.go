// Package avisink provides a pure Go capture backend writing Motion JPEG
// video and PCM audio into an AVI container. It needs no external tools
// and serves as the last entry in the format preference order.
package avisink

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"time"

	"github.com/user/storyreel/pkg/audio"
	"github.com/user/storyreel/pkg/capture"
	"github.com/user/storyreel/pkg/ports"
)

const defaultJPEGQuality = 85

// Sink implements ports.CaptureBackend for ports.CaptureAVI.
type Sink struct {
	logger ports.Logger

	mu       sync.Mutex
	session  capture.Session
	opts     ports.CaptureOptions
	info     streamInfo
	index    []indexEntry
	moviSize uint32
	jpegBuf  bytes.Buffer
}

// New creates an AVI capture backend.
func New(logger ports.Logger) *Sink {
	return &Sink{
		logger: logger.WithComponent("avisink"),
	}
}

// Name identifies the backend.
func (s *Sink) Name() string {
	return "avi"
}

// Supports reports whether format is AVI.
func (s *Sink) Supports(format ports.CaptureFormat) bool {
	return format == ports.CaptureAVI
}

// Start opens a session if AVI appears in the preference order.
func (s *Sink) Start(ctx context.Context, opts ports.CaptureOptions) (ports.CaptureFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	formats := opts.Formats
	if len(formats) == 0 {
		formats = ports.DefaultCaptureFormats
	}

	supported := false
	for _, f := range formats {
		if s.Supports(f) {
			supported = true
			break
		}
	}
	if !supported {
		return "", ports.ErrUnsupportedFormat
	}

	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 || opts.SampleRate <= 0 || opts.Channels <= 0 {
		return "", fmt.Errorf("avisink: invalid capture options %dx%d@%d, %d Hz x%d",
			opts.Width, opts.Height, opts.FPS, opts.SampleRate, opts.Channels)
	}

	if err := s.session.Begin(ports.CaptureAVI); err != nil {
		return "", err
	}

	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = defaultJPEGQuality
	}

	s.opts = opts
	s.info = streamInfo{
		width:      opts.Width,
		height:     opts.Height,
		fps:        opts.FPS,
		sampleRate: opts.SampleRate,
		channels:   opts.Channels,
	}
	s.index = s.index[:0]
	s.moviSize = 0

	s.logger.Debug("Started AVI session: %dx%d@%d, JPEG quality %d", opts.Width, opts.Height, opts.FPS, opts.JPEGQuality)
	return ports.CaptureAVI, nil
}

// WriteFrame encodes img as one JPEG video chunk.
func (s *Sink) WriteFrame(img image.Image, pts time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.CheckRecording(); err != nil {
		return err
	}

	b := img.Bounds()
	if b.Dx() != s.opts.Width || b.Dy() != s.opts.Height {
		return fmt.Errorf("avisink: frame at %v is %dx%d, want %dx%d", pts, b.Dx(), b.Dy(), s.opts.Width, s.opts.Height)
	}

	s.jpegBuf.Reset()
	if err := jpeg.Encode(&s.jpegBuf, img, &jpeg.Options{Quality: s.opts.JPEGQuality}); err != nil {
		return fmt.Errorf("encode frame at %v: %w", pts, err)
	}

	size := s.append(videoChunkID, s.jpegBuf.Bytes())
	if size > s.info.maxVideoChunk {
		s.info.maxVideoChunk = size
	}
	s.info.videoFrames++
	s.session.CountFrame()
	return nil
}

// WriteAudio stores samples as one 16-bit PCM audio chunk.
func (s *Sink) WriteAudio(samples []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.CheckRecording(); err != nil {
		return err
	}
	if len(samples) == 0 {
		return nil
	}
	if len(samples)%s.opts.Channels != 0 {
		return fmt.Errorf("avisink: %d samples do not fill %d channels", len(samples), s.opts.Channels)
	}

	size := s.append(audioChunkID, audio.Encode(samples))
	if size > s.info.maxAudioChunk {
		s.info.maxAudioChunk = size
	}
	s.info.audioFrames += uint32(len(samples) / s.opts.Channels)
	return nil
}

// append adds a chunk to the movi list and indexes it.
func (s *Sink) append(id string, data []byte) uint32 {
	chunk := makeChunk(id, data)
	s.index = append(s.index, indexEntry{
		id:     id,
		offset: 4 + s.moviSize,
		size:   uint32(len(data)),
	})
	s.moviSize += uint32(len(chunk))
	s.session.Append(chunk)
	return uint32(len(data))
}

// Finish assembles headers, the movi payload and the index.
func (s *Sink) Finish() (*ports.MediaBlob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.Finalize(); err != nil {
		return nil, err
	}

	movi, err := s.session.Complete()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(movi) + 512 + len(s.index)*indexEntrySize)

	bw := &binaryWriter{w: &out}
	writeHeaders(bw, s.info, s.moviSize, len(s.index))
	bw.bytes(movi)
	writeIndex(bw, s.index)
	if bw.err != nil {
		return nil, fmt.Errorf("write AVI: %w", bw.err)
	}

	frames := int(s.info.videoFrames)
	s.logger.Debug("AVI session finished: %d frames, %d audio samples, %d bytes", frames, s.info.audioFrames, out.Len())

	return &ports.MediaBlob{
		Data:     out.Bytes(),
		MIMEType: ports.CaptureAVI.MIMEType(),
		Format:   ports.CaptureAVI,
		Frames:   frames,
		Duration: time.Duration(frames) * capture.FrameDuration(s.opts.FPS),
	}, nil
}

// Abort discards the session.
func (s *Sink) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Abort() {
		s.index = s.index[:0]
		s.moviSize = 0
		s.logger.Debug("AVI session aborted")
	}
	return nil
}

// Ensure Sink implements ports.CaptureBackend
var _ ports.CaptureBackend = (*Sink)(nil)
