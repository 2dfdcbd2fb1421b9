package summarizer

import (
	"testing"
	"time"

	"github.com/user/storyreel/pkg/adapters/mediaprobe"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/timeline"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithStory(t *testing.T) {
	summary := NewBuilder().
		WithStory("Test Story", 4).
		Build()

	if summary.Story.Title != "Test Story" {
		t.Errorf("expected title 'Test Story', got '%s'", summary.Story.Title)
	}
	if summary.Story.SceneCount != 4 {
		t.Errorf("expected 4 scenes, got %d", summary.Story.SceneCount)
	}
}

func TestBuilder_WithResult(t *testing.T) {
	result := timeline.Result{
		Blob: &ports.MediaBlob{
			Data:     make([]byte, 2048),
			MIMEType: "video/x-msvideo",
			Filename: "Test_storyreel.avi",
			Format:   ports.CaptureAVI,
		},
		State:    timeline.StateDone,
		Format:   ports.CaptureAVI,
		Frames:   60,
		Duration: 2 * time.Second,
		Scenes: []timeline.SceneReport{
			{Index: 0, ID: "a", Visual: "image", Frames: 30, Seconds: 1},
			{Index: 1, ID: "b", Visual: "none", Skipped: true, SkipReason: "no visual", Silent: true},
			{Index: 2, ID: "c", Visual: "video", Frames: 30, Seconds: 1, StartMs: 1000, Silent: true, AudioError: "odd length"},
		},
	}

	summary := NewBuilder().WithResult(result).Build()

	if summary.Output.Path != "Test_storyreel.avi" {
		t.Errorf("expected filename as path, got %q", summary.Output.Path)
	}
	if summary.Output.FileSize != 2048 {
		t.Errorf("expected FileSize 2048, got %d", summary.Output.FileSize)
	}
	if summary.Output.DurationMs != 2000 {
		t.Errorf("expected DurationMs 2000, got %d", summary.Output.DurationMs)
	}
	if len(summary.Scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(summary.Scenes))
	}
	if !summary.Scenes[1].Skipped || summary.Scenes[2].StartMs != 1000 {
		t.Errorf("unexpected scenes %+v", summary.Scenes)
	}
}

func TestBuilder_WithResult_KeepsExplicitPath(t *testing.T) {
	summary := NewBuilder().
		WithOutput(OutputInfo{Path: "out/story.webm"}).
		WithResult(timeline.Result{Blob: &ports.MediaBlob{Filename: "x.webm"}}).
		Build()

	if summary.Output.Path != "out/story.webm" {
		t.Errorf("expected explicit path kept, got %q", summary.Output.Path)
	}
}

func TestBuilder_WithProbe(t *testing.T) {
	summary := NewBuilder().
		WithProbe(&mediaprobe.Report{
			Tracks: []mediaprobe.Track{
				{Kind: "vide", Codec: "avc1", Samples: 90},
				{Kind: "soun", Codec: "mp4a", Samples: 141},
			},
		}).
		Build()

	if len(summary.Output.Tracks) != 2 || summary.Output.Tracks[1].Codec != "mp4a" {
		t.Errorf("unexpected tracks %+v", summary.Output.Tracks)
	}

	avi := NewBuilder().WithProbe(&mediaprobe.Report{Frames: 45}).Build()
	if len(avi.Output.Tracks) != 1 || avi.Output.Tracks[0].Samples != 45 {
		t.Errorf("expected AVI frame track, got %+v", avi.Output.Tracks)
	}

	none := NewBuilder().WithProbe(nil).Build()
	if len(none.Output.Tracks) != 0 {
		t.Error("expected no tracks for a nil report")
	}
}

func TestBuilder_FullChain(t *testing.T) {
	summary := NewBuilder().
		WithStory("Test Story", 2).
		WithSettings(Settings{
			Quality: "medium",
			Width:   1280,
			Height:  720,
		}).
		WithOutput(OutputInfo{Path: "story.mp4"}).
		Build()

	if summary.Story.Title != "Test Story" {
		t.Error("Story.Title not set correctly")
	}
	if summary.Settings.Quality != "medium" {
		t.Error("Settings.Quality not set correctly")
	}
	if summary.Output.Path != "story.mp4" {
		t.Error("Output.Path not set correctly")
	}
}
