package pipeline

import (
	"math"

	"github.com/user/storyreel/pkg/audio"
	"github.com/user/storyreel/pkg/scene"
)

// DefaultFallbackSeconds is the scene length used when nothing else is known.
const DefaultFallbackSeconds = 5.0

// budgetEpsilon absorbs float error so that 5.0*30 stays 150 frames.
const budgetEpsilon = 1e-9

// FramesForPCM returns ceil(sampleFrames*fps/sampleRate) using integer
// arithmetic. The result is at least 1.
func FramesForPCM(sampleFrames, sampleRate, fps int) int {
	if sampleRate <= 0 || fps <= 0 {
		return 1
	}
	n := (int64(sampleFrames)*int64(fps) + int64(sampleRate) - 1) / int64(sampleRate)
	if n < 1 {
		return 1
	}
	return int(n)
}

// FramesForSeconds returns ceil(seconds*fps). The result is at least 1.
func FramesForSeconds(seconds float64, fps int) int {
	if fps <= 0 || !(seconds > 0) {
		return 1
	}
	n := int(math.Ceil(seconds*float64(fps) - budgetEpsilon))
	if n < 1 {
		return 1
	}
	return n
}

// FallbackSeconds returns the nominal duration of s, or fallback when the
// scene declares none.
func FallbackSeconds(s scene.Scene, fallback float64) float64 {
	if s.Duration > 0 {
		return s.Duration
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultFallbackSeconds
}

// Budget is the planned length of one scene.
type Budget struct {
	Frames  int
	Seconds float64
	// Silent is true when the narration is absent or undecodable.
	Silent bool
}

// PlanScene computes the frame budget of s without decoding its narration.
// It agrees with the budget of the prepared scene.
func PlanScene(s scene.Scene, format audio.Format, fallback float64, fps int) Budget {
	if s.AudioErr == nil && s.HasAudio() {
		if frames, err := audio.Probe(s.Audio, format); err == nil {
			rate := format.SampleRate
			if rate <= 0 {
				rate = audio.DefaultSampleRate
			}
			return Budget{
				Frames:  FramesForPCM(frames, rate, fps),
				Seconds: float64(frames) / float64(rate),
			}
		}
	}
	seconds := FallbackSeconds(s, fallback)
	return Budget{
		Frames:  FramesForSeconds(seconds, fps),
		Seconds: seconds,
		Silent:  true,
	}
}

// SampleRange returns the half-open range of sample frames that plays
// during output frame f: [round(f*rate/fps), round((f+1)*rate/fps)).
func SampleRange(f, sampleRate, fps int) (start, end int) {
	if fps <= 0 {
		return 0, 0
	}
	at := func(i int) int {
		return int((2*int64(i)*int64(sampleRate) + int64(fps)) / (2 * int64(fps)))
	}
	return at(f), at(f + 1)
}
