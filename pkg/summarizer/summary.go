// Package summarizer provides summary generation for compile results.
package summarizer

import (
	"time"

	"github.com/user/storyreel/pkg/adapters/mediaprobe"
	"github.com/user/storyreel/pkg/timeline"
)

// Summary contains all data collected during a compile.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Story information
	Story StoryInfo

	// Compile settings
	Settings Settings

	// Output file details
	Output OutputInfo

	// Per-scene outcome, in playback order
	Scenes []SceneInfo
}

// StoryInfo contains information about the compiled story.
type StoryInfo struct {
	Title      string
	SceneCount int
}

// Settings contains the compile configuration.
type Settings struct {
	Quality string
	Width   int
	Height  int
	FPS     int
	CRF     int
	Bitrate int // kbps

	// Formats is the requested preference order.
	Formats []string
}

// OutputInfo contains information about the output file.
type OutputInfo struct {
	Path       string
	Format     string
	MIMEType   string
	FrameCount int
	DurationMs int64
	FileSize   int64

	// Tracks found by probing the file. Empty when it was not probed.
	Tracks []TrackInfo
}

// TrackInfo describes one media track of the output.
type TrackInfo struct {
	Kind    string
	Codec   string
	Samples int
}

// SceneInfo contains what happened to one scene.
type SceneInfo struct {
	Index      int
	ID         string
	Visual     string
	StartMs    int64
	Frames     int
	Seconds    float64
	Skipped    bool
	SkipReason string
	Silent     bool
	AudioError string
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithStory sets story information.
func (b *Builder) WithStory(title string, sceneCount int) *Builder {
	b.summary.Story = StoryInfo{
		Title:      title,
		SceneCount: sceneCount,
	}
	return b
}

// WithSettings sets compile settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithResult fills output and scene details from a compile result.
func (b *Builder) WithResult(result timeline.Result) *Builder {
	out := &b.summary.Output
	out.Format = string(result.Format)
	out.FrameCount = result.Frames
	out.DurationMs = result.Duration.Milliseconds()
	if result.Blob != nil {
		out.MIMEType = result.Blob.MIMEType
		out.FileSize = int64(len(result.Blob.Data))
		if out.Path == "" {
			out.Path = result.Blob.Filename
		}
	}

	b.summary.Scenes = make([]SceneInfo, 0, len(result.Scenes))
	for _, s := range result.Scenes {
		b.summary.Scenes = append(b.summary.Scenes, SceneInfo{
			Index:      s.Index,
			ID:         s.ID,
			Visual:     s.Visual,
			StartMs:    s.StartMs,
			Frames:     s.Frames,
			Seconds:    s.Seconds,
			Skipped:    s.Skipped,
			SkipReason: s.SkipReason,
			Silent:     s.Silent,
			AudioError: s.AudioError,
		})
	}
	return b
}

// WithProbe records the tracks found in the output file.
func (b *Builder) WithProbe(report *mediaprobe.Report) *Builder {
	if report == nil {
		return b
	}
	b.summary.Output.Tracks = nil
	for _, t := range report.Tracks {
		b.summary.Output.Tracks = append(b.summary.Output.Tracks, TrackInfo{
			Kind:    t.Kind,
			Codec:   t.Codec,
			Samples: t.Samples,
		})
	}
	if report.Frames > 0 && len(report.Tracks) == 0 {
		b.summary.Output.Tracks = append(b.summary.Output.Tracks, TrackInfo{
			Kind:    "vide",
			Codec:   "MJPG",
			Samples: report.Frames,
		})
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
