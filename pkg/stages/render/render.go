package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/user/storyreel/pkg/audio"
	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
)

// Stage renders every frame of a prepared scene and pushes it to the
// capture sink together with the matching narration slice.
type Stage struct {
	frames *FrameRenderer
	sink   ports.CaptureSink
	debug  ports.DebugSink
	logger ports.Logger
}

// NewStage creates a new render stage.
func NewStage(frames *FrameRenderer, sink ports.CaptureSink, debug ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		frames: frames,
		sink:   sink,
		debug:  debug,
		logger: logger.WithComponent("render"),
	}
}

// Execute renders the scene. The context is checked before every frame.
func (s *Stage) Execute(ctx context.Context, input pipeline.RenderInput) (pipeline.RenderResult, error) {
	p := input.Prepared
	var result pipeline.RenderResult
	if p.Skipped() {
		return result, nil
	}

	fps := input.FPS
	if fps <= 0 {
		return result, fmt.Errorf("render: invalid frame rate %d", fps)
	}

	narration := newCursor(p.Audio, input.Audio, fps)
	budget := p.FrameBudget
	warned := false

	s.logger.Debug("Rendering scene %d: %d frames", p.Index, budget)

	for f := 0; f < budget; f++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fraction := float64(f) / float64(budget)
		if err := s.frames.Render(input.Canvas, p.Source, f, fraction, p.Scene.Script); err != nil {
			if !errors.Is(err, ErrFrameUnavailable) {
				return result, err
			}
			if !warned {
				s.logger.Warn("Scene %d: %v", p.Index, err)
				warned = true
			}
		}

		img := input.Canvas.ToImage()
		pts := input.StartPTS + frameOffset(f, fps)
		if err := s.sink.WriteFrame(img, pts); err != nil {
			return result, fmt.Errorf("write frame %d: %w", f, err)
		}

		samples := narration.slice(f)
		if err := s.sink.WriteAudio(samples); err != nil {
			return result, fmt.Errorf("write audio %d: %w", f, err)
		}

		if f == 0 && s.debug.Enabled() {
			if err := s.debug.SaveSceneFrame(p.Index, f, cloneImage(img)); err != nil {
				s.logger.Debug("Failed to save scene frame: %v", err)
			}
		}

		result.Frames++
		result.Samples += len(samples) / narration.channels

		if input.OnFrame != nil {
			if err := input.OnFrame(f); err != nil {
				return result, err
			}
		}
	}

	result.Duration = frameOffset(result.Frames, fps)
	return result, nil
}

// frameOffset is the presentation offset of frame f, without accumulating
// the rounding of a per-frame duration.
func frameOffset(f, fps int) time.Duration {
	return time.Duration(f) * time.Second / time.Duration(fps)
}

// cursor hands out one frame's worth of narration at a time. It never
// seeks backwards and pads with silence past the end of the narration.
type cursor struct {
	samples  []float32
	channels int
	rate     int
	fps      int
}

func newCursor(decoded *audio.Decoded, format audio.Format, fps int) *cursor {
	c := &cursor{
		channels: format.Channels,
		rate:     format.SampleRate,
		fps:      fps,
	}
	if decoded != nil {
		c.samples = decoded.Samples
		c.channels = decoded.Channels
		c.rate = decoded.SampleRate
	}
	if c.channels <= 0 {
		c.channels = audio.DefaultChannels
	}
	if c.rate <= 0 {
		c.rate = audio.DefaultSampleRate
	}
	return c
}

// slice returns the interleaved samples that play during frame f. The
// slice is freshly allocated because ownership passes to the sink.
func (c *cursor) slice(f int) []float32 {
	start, end := pipeline.SampleRange(f, c.rate, c.fps)
	out := make([]float32, (end-start)*c.channels)

	lo := start * c.channels
	if lo < len(c.samples) {
		copy(out, c.samples[lo:])
	}
	return out
}

func cloneImage(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Ensure Stage implements pipeline.Stage
var _ pipeline.RenderStage = (*Stage)(nil)
