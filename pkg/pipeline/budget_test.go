package pipeline

import (
	"testing"

	"github.com/user/storyreel/pkg/audio"
	"github.com/user/storyreel/pkg/scene"
)

func TestFramesForPCM(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		rate    int
		want    int
	}{
		{"one second", 24000, 24000, 30},
		{"one sample over", 24001, 24000, 31},
		{"partial frame", 100, 24000, 1},
		{"empty", 0, 24000, 1},
		{"48k two seconds", 96000, 48000, 60},
		{"one frame exactly", 800, 24000, 1},
		{"one frame plus one", 801, 24000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FramesForPCM(tt.samples, tt.rate, 30); got != tt.want {
				t.Errorf("FramesForPCM(%d, %d, 30) = %d, want %d", tt.samples, tt.rate, got, tt.want)
			}
		})
	}
}

func TestFramesForSeconds(t *testing.T) {
	tests := []struct {
		seconds float64
		want    int
	}{
		{5, 150},
		{1, 30},
		{0.1, 3},
		{0.7, 21},
		{1.01, 31},
		{0, 1},
		{-2, 1},
	}

	for _, tt := range tests {
		if got := FramesForSeconds(tt.seconds, 30); got != tt.want {
			t.Errorf("FramesForSeconds(%v) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}

func TestPlanScene(t *testing.T) {
	format := audio.DefaultFormat()

	tests := []struct {
		name       string
		scene      scene.Scene
		wantFrames int
		wantSilent bool
	}{
		{"narrated", scene.Scene{Audio: make([]byte, 48000)}, 30, false},
		{"no audio uses fallback", scene.Scene{}, 150, true},
		{"no audio uses nominal duration", scene.Scene{Duration: 2}, 60, true},
		{"odd length falls back", scene.Scene{Audio: make([]byte, 4801)}, 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanScene(tt.scene, format, 5, 30)
			if got.Frames != tt.wantFrames || got.Silent != tt.wantSilent {
				t.Errorf("PlanScene() = %+v, want %d frames silent=%v", got, tt.wantFrames, tt.wantSilent)
			}
		})
	}
}

func TestSampleRange_CoversEverySample(t *testing.T) {
	rates := []int{24000, 44100, 48000, 22050}

	for _, rate := range rates {
		prevEnd := 0
		for f := 0; f < 90; f++ {
			start, end := SampleRange(f, rate, 30)
			if start != prevEnd {
				t.Fatalf("rate %d frame %d: gap or overlap, start %d after end %d", rate, f, start, prevEnd)
			}
			if end <= start {
				t.Fatalf("rate %d frame %d: empty range", rate, f)
			}
			prevEnd = end
		}
		if prevEnd != rate*3 {
			t.Errorf("rate %d: 90 frames cover %d samples, want %d", rate, prevEnd, rate*3)
		}
	}
}

func TestSampleRange_24k(t *testing.T) {
	start, end := SampleRange(3, 24000, 30)
	if start != 2400 || end != 3200 {
		t.Errorf("SampleRange(3) = [%d, %d), want [2400, 3200)", start, end)
	}
}
