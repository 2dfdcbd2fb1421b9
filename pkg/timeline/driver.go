// Package timeline drives a compile run: it sequences scenes, renders their
// frames into the capture sink and reports progress.
package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/storyreel/pkg/capture"
	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
)

// Driver runs compiles. A Driver runs at most one compile at a time.
type Driver struct {
	config   Config
	renderer ports.Renderer
	prepare  pipeline.PrepareStage
	render   pipeline.RenderStage
	sink     ports.CaptureSink
	debug    ports.DebugSink
	logger   ports.Logger

	newPacer func(fps int) Pacer

	running atomic.Bool
	state   atomic.Int32
}

// New creates a new Driver. The render stage must push into sink.
func New(
	config Config,
	renderer ports.Renderer,
	prepare pipeline.PrepareStage,
	render pipeline.RenderStage,
	sink ports.CaptureSink,
	debug ports.DebugSink,
	logger ports.Logger,
) *Driver {
	config = config.normalize()
	d := &Driver{
		config:   config,
		renderer: renderer,
		prepare:  prepare,
		render:   render,
		sink:     sink,
		debug:    debug,
		logger:   logger,
		newPacer: func(fps int) Pacer { return freePacer{} },
	}
	if config.Realtime {
		d.newPacer = NewRealtimePacer
	}
	return d
}

// WithPacer replaces the frame pacer. It must not be called during a compile.
func (d *Driver) WithPacer(newPacer func(fps int) Pacer) *Driver {
	d.newPacer = newPacer
	return d
}

// Config returns the normalized configuration.
func (d *Driver) Config() Config {
	return d.config
}

// State returns the state of the current or last compile.
func (d *Driver) State() State {
	return State(d.state.Load())
}

// Compile renders scenes into one media blob.
//
// If updates is non-nil it receives every progress change in order and is
// closed when Compile returns. The caller must keep receiving until then.
//
// Scene-level asset problems degrade the scene and never fail the run.
// Cancelling ctx aborts the capture session and returns ErrCancelled with
// no blob. Other fatal errors are returned as *CompileError.
func (d *Driver) Compile(ctx context.Context, scenes []scene.Scene, updates chan<- Progress) (Result, error) {
	if updates != nil {
		defer close(updates)
	}

	if !d.running.CompareAndSwap(false, true) {
		return Result{State: StateFailed}, &CompileError{
			Op:  "compile",
			Err: fmt.Errorf("%w: a compile is already running", ports.ErrIllegalState),
		}
	}
	defer d.running.Store(false)

	r := &run{
		Driver:     d,
		ctx:        ctx,
		updates:    updates,
		sceneIndex: -1,
	}
	return r.execute(scenes)
}

// run holds the state of one compile.
type run struct {
	*Driver

	ctx     context.Context
	updates chan<- Progress

	started     bool
	phase       State
	sceneIndex  int
	sceneID     string
	lastMessage string

	total     int
	completed int
	percent   int

	result Result
}

func (r *run) execute(scenes []scene.Scene) (Result, error) {
	cfg := r.config
	r.emit(StateIdle, l10n.T("Starting compile"))

	if len(scenes) == 0 {
		return r.fail("plan", ErrNoScenes)
	}
	if err := r.ctx.Err(); err != nil {
		return r.cancel(err)
	}

	// The session starts before any asset is touched so that a missing
	// encoder fails fast.
	format, err := r.sink.Start(r.ctx, cfg.captureOptions())
	if err != nil {
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			return r.cancel(ctxErr)
		}
		return r.fail("start", err)
	}
	r.started = true
	r.result.Format = format
	r.logger.Info("Recording %s at %dx%d, %d fps", format, cfg.Width, cfg.Height, cfg.FPS)

	ordered := scene.Sorted(scenes)
	plan := make([]int, len(ordered))
	for i, sc := range ordered {
		if !sc.Visual.Present() {
			continue
		}
		plan[i] = pipeline.PlanScene(sc, cfg.Audio, cfg.FallbackSeconds, cfg.FPS).Frames
		r.total += plan[i]
	}
	r.logger.Info("Planned %d scenes, %d frames", len(ordered), r.total)

	canvas := r.renderer.CreateCanvas(cfg.Width, cfg.Height, color.Black)
	pacer := r.newPacer(cfg.FPS)
	defer pacer.Stop()

	for i, sc := range ordered {
		if err := r.ctx.Err(); err != nil {
			return r.cancel(err)
		}
		if err := r.playScene(i, len(ordered), sc, plan[i], canvas, pacer); err != nil {
			if ctxErr := r.ctx.Err(); ctxErr != nil {
				return r.cancel(ctxErr)
			}
			return r.fail("render", err)
		}
	}

	return r.finish()
}

// playScene prepares and renders one scene. A nil error covers skipped
// scenes as well as rendered ones.
func (r *run) playScene(i, count int, sc scene.Scene, planned int, canvas ports.Canvas, pacer Pacer) error {
	cfg := r.config
	r.sceneIndex, r.sceneID = i, sc.ID

	r.emit(StateLoadingScene, l10n.F("Loading scene %d of %d", i+1, count))
	prepared, err := r.prepare.Execute(r.ctx, pipeline.PrepareInput{
		Index:           i,
		Scene:           sc,
		Audio:           cfg.Audio,
		FallbackSeconds: cfg.FallbackSeconds,
		FPS:             cfg.FPS,
	})
	if err != nil {
		if prepared.Source != nil {
			prepared.Source.Close()
		}
		return err
	}

	report := newSceneReport(prepared)
	if prepared.Skipped() {
		r.logger.Warn("Skipping scene %d (%s): %v", i, sc.ID, prepared.SkipReason)
		r.total -= planned
		r.result.Scenes = append(r.result.Scenes, report)
		r.advance(r.completed)
		return nil
	}
	defer func() {
		if err := prepared.Source.Close(); err != nil {
			r.logger.Debug("Failed to close visual of scene %d: %v", i, err)
		}
	}()

	if prepared.AudioErr != nil {
		r.logger.Warn("Scene %d narration unusable, using %.1fs of silence: %v", i, prepared.Seconds, prepared.AudioErr)
	}
	r.total += prepared.FrameBudget - planned

	start := r.completed
	report.StartMs = frameTime(start, cfg.FPS).Milliseconds()

	r.emit(StateRenderingScene, l10n.F("Rendering scene %d of %d", i+1, count))
	res, err := r.render.Execute(r.ctx, pipeline.RenderInput{
		Prepared: prepared,
		Canvas:   canvas,
		StartPTS: frameTime(start, cfg.FPS),
		FPS:      cfg.FPS,
		Audio:    cfg.Audio,
		OnFrame: func(f int) error {
			r.advance(start + f + 1)
			return pacer.Wait(r.ctx)
		},
	})
	r.completed += res.Frames
	report.Frames = res.Frames
	r.result.Scenes = append(r.result.Scenes, report)
	if err != nil {
		return err
	}

	r.logger.Info("Scene %d rendered: %d frames (%.2fs)", i, res.Frames, prepared.Seconds)
	return nil
}

func (r *run) finish() (Result, error) {
	if r.completed == 0 {
		return r.fail("finalize", ErrNothingRendered)
	}

	r.sceneIndex, r.sceneID = -1, ""
	r.emit(StateFinalizing, l10n.T("Finalizing output"))

	blob, err := r.sink.Finish()
	if err != nil {
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			return r.cancel(ctxErr)
		}
		return r.fail("finalize", err)
	}
	r.started = false
	if blob.Filename == "" {
		blob.Filename = capture.SuggestFilename(r.config.Title, blob.Format)
	}

	r.result.Blob = blob
	r.result.Format = blob.Format
	r.result.Frames = r.completed
	r.result.Duration = frameTime(r.completed, r.config.FPS)
	r.result.State = StateDone
	r.saveTimeline()

	r.percent = 100
	r.emit(StateDone, l10n.F("Compiled %d frames (%s)", r.completed, blob.Format))
	r.logger.Info("Compile finished: %d frames, %d bytes", r.completed, len(blob.Data))
	return r.result, nil
}

// cancel aborts the session and ends the run without a blob.
func (r *run) cancel(cause error) (Result, error) {
	r.abort()
	r.result.State = StateCancelled
	r.result.Blob = nil
	r.emit(StateCancelled, l10n.T("Compile cancelled"))
	r.logger.Info("Compile cancelled")
	return r.result, fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// fail aborts the session and ends the run with a CompileError.
func (r *run) fail(op string, err error) (Result, error) {
	r.abort()
	r.result.State = StateFailed
	r.result.Blob = nil
	r.emit(StateFailed, err.Error())
	r.logger.Error("Compile failed: %v", err)
	return r.result, &CompileError{Op: op, Err: err}
}

func (r *run) abort() {
	if !r.started {
		return
	}
	r.started = false
	if err := r.sink.Abort(); err != nil {
		r.logger.Debug("Failed to abort capture: %v", err)
	}
}

// advance records that done frames have been pushed and emits a progress
// update when the percentage grows.
func (r *run) advance(done int) {
	if r.total <= 0 {
		return
	}
	pct := done * 100 / r.total
	if pct > 100 {
		pct = 100
	}
	if pct <= r.percent {
		return
	}
	r.percent = pct
	r.emit(r.phase, "")
}

// emit publishes the current progress. An empty message keeps the last one.
func (r *run) emit(state State, message string) {
	r.phase = state
	r.Driver.state.Store(int32(state))
	if r.updates == nil {
		return
	}
	if message == "" {
		message = r.lastMessage
	}
	r.lastMessage = message
	r.updates <- Progress{
		State:      state,
		SceneIndex: r.sceneIndex,
		SceneID:    r.sceneID,
		Percent:    r.percent,
		Message:    message,
	}
}

func (r *run) saveTimeline() {
	if !r.debug.Enabled() {
		return
	}
	data, err := json.MarshalIndent(r.result, "", "  ")
	if err != nil {
		r.logger.Debug("Failed to encode timeline: %v", err)
		return
	}
	if err := r.debug.SaveTimelineJSON(data); err != nil {
		r.logger.Debug("Failed to save timeline: %v", err)
	}
}

// frameTime is the presentation time of frame f.
func frameTime(f, fps int) time.Duration {
	return time.Duration(f) * time.Second / time.Duration(fps)
}
