package timeline

import (
	"encoding/json"
	"time"

	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
)

// SceneReport describes what happened to one scene.
type SceneReport struct {
	Index      int     `json:"index"`
	ID         string  `json:"id"`
	Order      int     `json:"order"`
	Visual     string  `json:"visual"`
	Skipped    bool    `json:"skipped"`
	SkipReason string  `json:"skipReason,omitempty"`
	Silent     bool    `json:"silent"`
	AudioError string  `json:"audioError,omitempty"`
	Seconds    float64 `json:"seconds"`
	Frames     int     `json:"frames"`
	StartMs    int64   `json:"startMs"`
}

func newSceneReport(p pipeline.PreparedScene) SceneReport {
	report := SceneReport{
		Index:   p.Index,
		ID:      p.Scene.ID,
		Order:   p.Scene.Order,
		Visual:  p.Scene.Visual.Kind.String(),
		Skipped: p.Skipped(),
		Silent:  p.Silent(),
	}
	if p.SkipReason != nil {
		report.SkipReason = p.SkipReason.Error()
	}
	if p.AudioErr != nil {
		report.AudioError = p.AudioErr.Error()
	}
	if !p.Skipped() {
		report.Seconds = p.Seconds
	}
	return report
}

// Result is the outcome of a compile run.
type Result struct {
	// Blob is set only when State is StateDone.
	Blob     *ports.MediaBlob
	State    State
	Format   ports.CaptureFormat
	Frames   int
	Duration time.Duration
	Scenes   []SceneReport
}

// Rendered returns the number of scenes that produced frames.
func (r Result) Rendered() int {
	n := 0
	for _, s := range r.Scenes {
		if s.Frames > 0 {
			n++
		}
	}
	return n
}

type timelineDocument struct {
	State      State               `json:"state"`
	Format     ports.CaptureFormat `json:"format"`
	Frames     int                 `json:"frames"`
	DurationMs int64               `json:"durationMs"`
	Scenes     []SceneReport       `json:"scenes"`
}

// MarshalJSON encodes the result without the media bytes.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(timelineDocument{
		State:      r.State,
		Format:     r.Format,
		Frames:     r.Frames,
		DurationMs: r.Duration.Milliseconds(),
		Scenes:     r.Scenes,
	})
}
