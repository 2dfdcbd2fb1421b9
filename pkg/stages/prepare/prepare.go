// Package prepare implements the scene preparation stage: it loads the
// visual and decodes the narration of one scene.
package prepare

import (
	"context"

	"github.com/user/storyreel/pkg/audio"
	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
)

// Stage loads scene assets.
type Stage struct {
	loader ports.VisualLoader
	logger ports.Logger
}

// NewStage creates a new prepare stage.
func NewStage(loader ports.VisualLoader, logger ports.Logger) *Stage {
	return &Stage{
		loader: loader,
		logger: logger.WithComponent("prepare"),
	}
}

// Execute loads the visual of the scene and decodes its narration.
// Asset failures mark the scene skipped or silent; only cancellation is
// returned as an error.
func (s *Stage) Execute(ctx context.Context, input pipeline.PrepareInput) (pipeline.PreparedScene, error) {
	out := pipeline.PreparedScene{
		Index: input.Index,
		Scene: input.Scene,
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	visual := input.Scene.Visual
	if !visual.Present() {
		out.SkipReason = ports.ErrNoVisual
		s.logger.Debug("Scene %d has no visual", input.Index)
		return out, nil
	}

	source, err := s.loader.Load(ctx, visual)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		out.SkipReason = err
		s.logger.Debug("Scene %d visual failed: %v", input.Index, err)
		return out, nil
	}
	out.Source = source

	s.decodeAudio(&out, input)
	return out, nil
}

func (s *Stage) decodeAudio(out *pipeline.PreparedScene, input pipeline.PrepareInput) {
	sc := input.Scene
	if sc.AudioErr != nil {
		out.AudioErr = sc.AudioErr
	} else if sc.HasAudio() {
		decoded, err := audio.Decode(sc.Audio, input.Audio)
		if err == nil {
			out.Audio = decoded
			out.Seconds = decoded.Seconds()
			out.FrameBudget = pipeline.FramesForPCM(decoded.Frames, decoded.SampleRate, input.FPS)
			s.logger.Debug("Scene %d narration: %.2fs, %d frames", input.Index, out.Seconds, out.FrameBudget)
			return
		}
		out.AudioErr = err
	}

	out.Seconds = pipeline.FallbackSeconds(sc, input.FallbackSeconds)
	out.FrameBudget = pipeline.FramesForSeconds(out.Seconds, input.FPS)
	s.logger.Debug("Scene %d is silent: %.2fs, %d frames", input.Index, out.Seconds, out.FrameBudget)
}

// Ensure Stage implements pipeline.Stage
var _ pipeline.PrepareStage = (*Stage)(nil)
