package ffmpegsink

import (
	"fmt"
	"strconv"

	"github.com/user/storyreel/pkg/ports"
)

// requiredEncoders lists the ffmpeg encoders each format needs.
var requiredEncoders = map[ports.CaptureFormat][]string{
	ports.CaptureWebM: {"libvpx-vp9", "libopus"},
	ports.CaptureMP4:  {"libx264", "aac"},
}

// audioFD is the child file descriptor the audio pipe is mapped to.
// ExtraFiles[0] becomes fd 3.
const audioFD = 3

// buildArgs returns the ffmpeg command line for one session. Raw RGBA
// frames arrive on stdin, float PCM on fd 3, and the muxed stream is
// written to stdout.
func buildArgs(format ports.CaptureFormat, opts ports.CaptureOptions) ([]string, error) {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		// Video input
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.Itoa(opts.FPS),
		"-i", "pipe:0",
		// Audio input
		"-f", "f32le",
		"-ar", strconv.Itoa(opts.SampleRate),
		"-ac", strconv.Itoa(opts.Channels),
		"-i", fmt.Sprintf("pipe:%d", audioFD),
		"-map", "0:v",
		"-map", "1:a",
	}

	switch format {
	case ports.CaptureWebM:
		bitrate := opts.Bitrate
		if bitrate <= 0 {
			bitrate = 8000
		}
		args = append(args,
			"-c:v", "libvpx-vp9",
			"-b:v", fmt.Sprintf("%dk", bitrate),
			"-deadline", "realtime",
			"-cpu-used", "8",
			"-row-mt", "1",
			"-pix_fmt", "yuv420p",
			"-c:a", "libopus",
			"-b:a", "96k",
			"-f", "webm",
		)
	case ports.CaptureMP4:
		crf := opts.Quality
		if crf <= 0 || crf > 51 {
			crf = 23
		}
		args = append(args,
			"-c:v", "libx264",
			"-preset", "fast",
			"-pix_fmt", "yuv420p",
			"-crf", strconv.Itoa(crf),
		)
		if opts.Bitrate > 0 {
			args = append(args, "-maxrate", fmt.Sprintf("%dk", opts.Bitrate), "-bufsize", fmt.Sprintf("%dk", opts.Bitrate*2))
		}
		args = append(args,
			"-profile:v", "baseline",
			"-level", "3.1",
			"-c:a", "aac",
			"-b:a", "128k",
			"-movflags", "frag_keyframe+empty_moov+default_base_moof",
			"-f", "mp4",
		)
	default:
		return nil, fmt.Errorf("%w: %s", ports.ErrUnsupportedFormat, format)
	}

	return append(args, "pipe:1"), nil
}
