package summarizer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/storyreel/pkg/mocks"
)

func testSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Story: StoryInfo{
			Title:      "Test | Story",
			SceneCount: 3,
		},
		Settings: Settings{
			Quality: "medium",
			Width:   1280,
			Height:  720,
			FPS:     30,
			CRF:     23,
			Bitrate: 8000,
			Formats: []string{"webm", "mp4", "avi"},
		},
		Output: OutputInfo{
			Path:       "Test_Story_storyreel.webm",
			Format:     "webm",
			FrameCount: 90,
			DurationMs: 3000,
			FileSize:   1024 * 1024,
			Tracks: []TrackInfo{
				{Kind: "vide", Codec: "vp09", Samples: 90},
			},
		},
		Scenes: []SceneInfo{
			{Index: 0, ID: "intro", Visual: "image", Frames: 60, Seconds: 2},
			{Index: 1, ID: "gap", Visual: "none", Skipped: true, SkipReason: "scene has no visual", Silent: true},
			{Index: 2, ID: "outro", Visual: "video", StartMs: 2000, Frames: 30, Seconds: 1, Silent: true},
		},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(testSummary())

	checks := []string{
		"# Compile Summary",
		"Test \\| Story",
		"| Rendered Scenes | 2 |",
		"Test_Story_storyreel.webm",
		"| Frames | 90 |",
		"3.00 s",
		"1.00 MB",
		"Video vp09 (90 samples)",
		"1280x720",
		"8000 kbps",
		"webm, mp4, avi",
		"| 2 | gap | none | - | 0 | Silent | Skipped: scene has no visual |",
		"| 3 | outro | video | 2.00 s | 30 | Silent |  |",
		"2024-01-15 10:30:00 UTC",
	}

	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}
}

func TestMarkdownFormatter_NoScenes(t *testing.T) {
	summary := testSummary()
	summary.Scenes = nil

	result := NewMarkdownFormatter().Format(summary)

	if strings.Contains(result, "## Scenes") {
		t.Error("expected no scene table without scenes")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Compile Summary": "コンパイルサマリー",
			"Title":           "タイトル",
			"Skipped":         "スキップ",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(testSummary())

	for _, want := range []string{"コンパイルサマリー", "タイトル", "スキップ"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(testSummary())

	if !strings.Contains(result, "storyreel v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()

	w := NewWriter(FormatFunc(func(s *Summary) string { return "# " + s.Story.Title }), fs)
	if err := w.Write("out/nested/summary.md", &Summary{Story: StoryInfo{Title: "Hello"}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, ok := fs.GetFile("out/nested/summary.md")
	if !ok {
		t.Fatal("expected summary file to be written")
	}
	if string(data) != "# Hello" {
		t.Errorf("unexpected content %q", data)
	}
	if exists, _ := fs.Exists("out/nested"); !exists {
		t.Error("expected parent directory to be created")
	}
}

func TestWriter_Write_CurrentDir(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.MkdirAllFunc = func(path string) error {
		t.Errorf("unexpected MkdirAll(%q)", path)
		return nil
	}

	w := NewWriter(FormatFunc(func(*Summary) string { return "x" }), fs)
	if err := w.Write("summary.md", &Summary{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
}

func TestWriter_Write_Errors(t *testing.T) {
	diskFull := errors.New("disk full")

	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(string, []byte) error { return diskFull }
	w := NewWriter(FormatFunc(func(*Summary) string { return "x" }), fs)
	if err := w.Write("a/summary.md", &Summary{}); !errors.Is(err, diskFull) {
		t.Errorf("expected write error, got %v", err)
	}

	fs = mocks.NewFileSystem()
	fs.MkdirAllFunc = func(string) error { return diskFull }
	w = NewWriter(FormatFunc(func(*Summary) string { return "x" }), fs)
	if err := w.Write("a/summary.md", &Summary{}); !errors.Is(err, diskFull) {
		t.Errorf("expected mkdir error, got %v", err)
	}
}
