// Package audio decodes raw narration bytes into normalized sample buffers.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrDecode is returned for empty or misaligned narration bytes.
var ErrDecode = errors.New("audio: cannot decode narration")

const (
	// DefaultSampleRate is the narration sample rate assumed when none is configured.
	DefaultSampleRate = 24000
	// DefaultChannels is the narration channel count assumed when none is configured.
	DefaultChannels = 1

	bytesPerSample = 2
	pcmScale       = 32768.0
)

// Format describes a raw signed 16-bit little-endian PCM stream.
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat returns 24 kHz mono.
func DefaultFormat() Format {
	return Format{SampleRate: DefaultSampleRate, Channels: DefaultChannels}
}

// normalize fills zero fields with defaults.
func (f Format) normalize() Format {
	if f.SampleRate <= 0 {
		f.SampleRate = DefaultSampleRate
	}
	if f.Channels <= 0 {
		f.Channels = DefaultChannels
	}
	return f
}

// Decoded is a normalized sample buffer.
type Decoded struct {
	// Samples are interleaved by channel, each in [-1, 1).
	Samples    []float32
	Channels   int
	SampleRate int
	// Frames is the number of samples per channel.
	Frames int
}

// Seconds returns the playback length in seconds.
func (d *Decoded) Seconds() float64 {
	return float64(d.Frames) / float64(d.SampleRate)
}

// Duration returns the playback length.
func (d *Decoded) Duration() time.Duration {
	return time.Duration(d.Frames) * time.Second / time.Duration(d.SampleRate)
}

// Probe validates data and returns its frame count without decoding.
func Probe(data []byte, format Format) (int, error) {
	format = format.normalize()

	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty input", ErrDecode)
	}

	frameSize := bytesPerSample * format.Channels
	if len(data)%frameSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrDecode, len(data), frameSize)
	}

	return len(data) / frameSize, nil
}

// Decode converts little-endian signed 16-bit PCM into float samples.
// Decoding the same bytes always yields an identical buffer.
func Decode(data []byte, format Format) (*Decoded, error) {
	format = format.normalize()

	frames, err := Probe(data, format)
	if err != nil {
		return nil, err
	}

	samples := make([]float32, frames*format.Channels)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*bytesPerSample:]))
		samples[i] = float32(float64(v) / pcmScale)
	}

	return &Decoded{
		Samples:    samples,
		Channels:   format.Channels,
		SampleRate: format.SampleRate,
		Frames:     frames,
	}, nil
}

// Encode converts float samples back to little-endian signed 16-bit PCM,
// clamping to the representable range.
func Encode(samples []float32) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		v := float64(s) * pcmScale
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*bytesPerSample:], uint16(int16(v)))
	}
	return out
}
