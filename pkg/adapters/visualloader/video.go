package visualloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/user/storyreel/pkg/adapters/ffmpeg"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
)

// frameQueue is how many decoded frames may wait ahead of the renderer.
const frameQueue = 2

// videoArgs returns the ffmpeg command line that loops src forever without
// audio, scaled and resampled to the output format.
func videoArgs(src string, width, height, fps int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-stream_loop", "-1",
		"-i", src,
		"-an",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-r", strconv.Itoa(fps),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}
}

func (l *Loader) loadVideo(procCtx, loadCtx context.Context, ref string) (ports.VisualSource, error) {
	path, err := ffmpeg.Find(l.opts.FFmpegPath)
	if err != nil {
		return nil, err
	}

	src := localPath(ref)
	var cleanup func()
	if strings.HasPrefix(ref, "data:") {
		data, mediaType, err := parseDataURL(ref)
		if err != nil {
			return nil, err
		}
		tmp, err := l.fs.CreateTemp("storyreel-clip-*"+extensionFor(mediaType), data)
		if err != nil {
			return nil, err
		}
		src = tmp
		cleanup = func() { _ = l.fs.Remove(tmp) }
	}

	ctx, cancel := context.WithCancel(procCtx)
	cmd := exec.CommandContext(ctx, path, videoArgs(src, l.opts.Width, l.opts.Height, l.opts.FPS)...)
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		if cleanup != nil {
			cleanup()
		}
		return nil, fmt.Errorf("get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		if cleanup != nil {
			cleanup()
		}
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	source := newStreamSource(stdout, l.opts.Width, l.opts.Height, l.opts.Timeout, func() error {
		cancel()
		_ = cmd.Wait()
		if cleanup != nil {
			cleanup()
		}
		return nil
	})

	if err := source.waitReady(loadCtx); err != nil {
		source.Close()
		if msg := stderr.String(); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}

	l.logger.Debug("Video %s ready", describeRef(ref))
	return source, nil
}

// streamSource reads fixed-size RGBA frames from r. Frame buffers are
// recycled through a small ring, so an image returned by Frame stays valid
// until the next call.
type streamSource struct {
	width, height int
	frameTimeout  time.Duration

	frames chan *image.RGBA
	done   chan struct{}
	closer func() error

	mu      sync.Mutex
	readErr error

	current   *image.RGBA
	lastIndex int
	stalled   bool
	closeOnce sync.Once
}

func newStreamSource(r io.Reader, width, height int, frameTimeout time.Duration, closer func() error) *streamSource {
	s := &streamSource{
		width:        width,
		height:       height,
		frameTimeout: frameTimeout,
		frames:       make(chan *image.RGBA, frameQueue),
		done:         make(chan struct{}),
		closer:       closer,
		lastIndex:    -1,
	}
	go s.read(r)
	return s
}

func (s *streamSource) read(r io.Reader) {
	defer close(s.frames)

	// One buffer being filled, frameQueue queued and one held by the renderer.
	ring := make([]*image.RGBA, frameQueue+2)
	for i := range ring {
		ring[i] = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	}

	for n := 0; ; n++ {
		buf := ring[n%len(ring)]
		if _, err := io.ReadFull(r, buf.Pix); err != nil {
			if !errors.Is(err, io.EOF) {
				s.mu.Lock()
				s.readErr = err
				s.mu.Unlock()
			}
			return
		}

		select {
		case s.frames <- buf:
		case <-s.done:
			return
		}
	}
}

// waitReady blocks until the first complete frame has been decoded.
func (s *streamSource) waitReady(ctx context.Context) error {
	select {
	case frame, ok := <-s.frames:
		if !ok {
			if err := s.err(); err != nil {
				return fmt.Errorf("decode first frame: %w", err)
			}
			return errors.New("video produced no frames")
		}
		s.current = frame
		s.lastIndex = 0
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *streamSource) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readErr
}

func (s *streamSource) Kind() scene.VisualKind {
	return scene.VisualVideo
}

// Frame advances the stream to index. Once the stream ends or stalls past
// the frame timeout, the last decoded frame is repeated. After a stall,
// Frame only takes frames that are already queued and never waits.
func (s *streamSource) Frame(index int) (image.Image, error) {
	if s.current == nil {
		return nil, errors.New("video source not ready")
	}

	for s.lastIndex < index {
		if !s.next() {
			s.lastIndex = index
			break
		}
		s.lastIndex++
	}
	return s.current, nil
}

func (s *streamSource) next() bool {
	if s.stalled {
		select {
		case frame, ok := <-s.frames:
			if !ok {
				return false
			}
			s.current = frame
			s.stalled = false
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(s.frameTimeout)
	defer timer.Stop()

	select {
	case frame, ok := <-s.frames:
		if !ok {
			return false
		}
		s.current = frame
		return true
	case <-timer.C:
		s.stalled = true
		return false
	}
}

// Close stops the decoder and waits for it to exit.
func (s *streamSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.closer != nil {
			err = s.closer()
		}
	})
	return err
}

// lockedBuffer collects ffmpeg diagnostics written from exec's copy goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}

// Ensure streamSource implements ports.VisualSource
var _ ports.VisualSource = (*streamSource)(nil)
