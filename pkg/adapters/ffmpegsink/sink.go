// Package ffmpegsink provides a capture backend that muxes frames and
// narration through an external ffmpeg process.
package ffmpegsink

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/storyreel/pkg/adapters/ffmpeg"
	"github.com/user/storyreel/pkg/capture"
	"github.com/user/storyreel/pkg/ports"
)

const (
	audioQueueSize = 64
	readChunkSize  = 64 * 1024
	probeTimeout   = 10 * time.Second
)

// Sink implements ports.CaptureBackend with ffmpeg.
type Sink struct {
	ffmpegPath string
	logger     ports.Logger

	mu       sync.Mutex
	session  capture.Session
	opts     ports.CaptureOptions
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   *stderrBuffer
	audioCh  chan []byte
	group    *errgroup.Group
	groupCtx context.Context
	frameBuf *image.RGBA
}

// New creates an ffmpeg capture backend. An empty ffmpegPath searches
// FFMPEG_PATH, PATH and common install locations.
func New(ffmpegPath string, logger ports.Logger) *Sink {
	return &Sink{
		ffmpegPath: ffmpegPath,
		logger:     logger.WithComponent("ffmpegsink"),
	}
}

// Name identifies the backend.
func (s *Sink) Name() string {
	return "ffmpeg"
}

// Supports reports whether the local ffmpeg has the encoders format needs.
func (s *Sink) Supports(format ports.CaptureFormat) bool {
	required, ok := requiredEncoders[format]
	if !ok {
		return false
	}

	// The audio pipe is passed as an inherited descriptor.
	if runtime.GOOS == "windows" {
		return false
	}

	path, err := ffmpeg.Find(s.ffmpegPath)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	encoders, err := ffmpeg.Encoders(ctx, path)
	if err != nil {
		s.logger.Debug("Encoder probe failed: %v", err)
		return false
	}

	for _, name := range required {
		if !encoders[name] {
			return false
		}
	}
	return true
}

// Start spawns ffmpeg for the first supported format in opts.Formats.
func (s *Sink) Start(ctx context.Context, opts ports.CaptureOptions) (ports.CaptureFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	formats := opts.Formats
	if len(formats) == 0 {
		formats = ports.DefaultCaptureFormats
	}

	var format ports.CaptureFormat
	for _, f := range formats {
		if s.Supports(f) {
			format = f
			break
		}
	}
	if format == "" {
		return "", ports.ErrUnsupportedFormat
	}

	if err := s.session.Begin(format); err != nil {
		return "", err
	}

	if err := s.spawn(ctx, format, opts); err != nil {
		s.session.Fail()
		return "", err
	}

	s.logger.Debug("Started ffmpeg session: %s %dx%d@%d", format, opts.Width, opts.Height, opts.FPS)
	return format, nil
}

func (s *Sink) spawn(ctx context.Context, format ports.CaptureFormat, opts ports.CaptureOptions) error {
	path, err := ffmpeg.Find(s.ffmpegPath)
	if err != nil {
		return err
	}

	args, err := buildArgs(format, opts)
	if err != nil {
		return err
	}

	audioR, audioW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create audio pipe: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.ExtraFiles = []*os.File{audioR}
	s.stderr = &stderrBuffer{}
	cmd.Stderr = s.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		audioR.Close()
		audioW.Close()
		return fmt.Errorf("get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		audioR.Close()
		audioW.Close()
		return fmt.Errorf("get stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		audioR.Close()
		audioW.Close()
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	// The child holds its own copy of the read end.
	audioR.Close()

	group, groupCtx := errgroup.WithContext(ctx)
	audioCh := make(chan []byte, audioQueueSize)

	group.Go(func() error {
		defer audioW.Close()
		for chunk := range audioCh {
			if _, err := audioW.Write(chunk); err != nil {
				return fmt.Errorf("write audio: %w", err)
			}
		}
		return nil
	})

	group.Go(func() error {
		buf := make([]byte, readChunkSize)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				s.session.Append(chunk)
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read output: %w", err)
			}
		}
	})

	s.opts = opts
	s.cmd = cmd
	s.stdin = stdin
	s.audioCh = audioCh
	s.group = group
	s.groupCtx = groupCtx
	return nil
}

// WriteFrame writes one raw RGBA frame to ffmpeg's stdin.
// Frames are consumed at the fixed input rate, so pts only has to be
// increasing.
func (s *Sink) WriteFrame(img image.Image, pts time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.CheckRecording(); err != nil {
		return err
	}

	rgba := capture.ToRGBA(img, s.opts.Width, s.opts.Height, s.frameBuf)
	if rgba != img {
		s.frameBuf = rgba
	}

	if _, err := s.stdin.Write(rgba.Pix); err != nil {
		return fmt.Errorf("write frame at %v: %w", pts, s.cause(err))
	}

	s.session.CountFrame()
	return nil
}

// WriteAudio queues interleaved float samples for the audio pipe.
func (s *Sink) WriteAudio(samples []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.CheckRecording(); err != nil {
		return err
	}
	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}

	select {
	case s.audioCh <- buf:
		return nil
	case <-s.groupCtx.Done():
		return fmt.Errorf("write audio: %w", s.cause(context.Cause(s.groupCtx)))
	}
}

// Finish closes both inputs, waits for ffmpeg and returns the muxed output.
func (s *Sink) Finish() (*ports.MediaBlob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.Finalize(); err != nil {
		return nil, err
	}

	format := s.session.Format()

	close(s.audioCh)
	s.stdin.Close()

	groupErr := s.group.Wait()
	waitErr := s.cmd.Wait()
	if err := errors.Join(groupErr, waitErr); err != nil {
		s.session.Fail()
		return nil, fmt.Errorf("ffmpeg %s encoding failed: %w\nstderr: %s", format, err, s.stderr.String())
	}

	data, err := s.session.Complete()
	if err != nil {
		return nil, err
	}

	frames := s.session.Frames()
	s.logger.Debug("ffmpeg session finished: %d frames, %d bytes", frames, len(data))

	return &ports.MediaBlob{
		Data:     data,
		MIMEType: format.MIMEType(),
		Format:   format,
		Frames:   frames,
		Duration: time.Duration(frames) * capture.FrameDuration(s.opts.FPS),
	}, nil
}

// Abort kills ffmpeg and discards buffered output.
func (s *Sink) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Abort() {
		return nil
	}

	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	if s.audioCh != nil {
		close(s.audioCh)
		s.audioCh = nil
	}
	if s.stdin != nil {
		s.stdin.Close()
	}
	if s.group != nil {
		_ = s.group.Wait()
	}
	if s.cmd != nil {
		_ = s.cmd.Wait()
	}

	s.logger.Debug("ffmpeg session aborted")
	return nil
}

// cause prefers ffmpeg's own error output over a bare broken pipe.
func (s *Sink) cause(err error) error {
	if msg := s.stderr.String(); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

// stderrBuffer collects ffmpeg diagnostics written from exec's copy goroutine.
type stderrBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *stderrBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *stderrBuffer) String() string {
	if b == nil {
		return ""
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(bytes.TrimSpace(b.buf.Bytes()))
}

// Ensure Sink implements ports.CaptureBackend
var _ ports.CaptureBackend = (*Sink)(nil)
