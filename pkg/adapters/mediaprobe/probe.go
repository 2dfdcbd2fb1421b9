// Package mediaprobe inspects compiled story videos. MP4 output is parsed
// with mp4ff to list its tracks; WebM and AVI are identified by signature.
package mediaprobe

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/storyreel/pkg/ports"
)

// Track describes one track of an MP4 file.
type Track struct {
	ID        uint32
	Kind      string // handler type: "vide", "soun", ...
	Codec     string // sample entry type: "avc1", "mp4a", ...
	Timescale uint32
	Samples   int
}

// Report summarizes a media file.
type Report struct {
	Format     ports.CaptureFormat
	Size       int
	Fragmented bool
	Fragments  int
	Tracks     []Track

	// AVI only
	Frames int
}

// HasVideo reports whether a video track is present.
func (r *Report) HasVideo() bool {
	return r.hasKind("vide")
}

// HasAudio reports whether an audio track is present.
func (r *Report) HasAudio() bool {
	return r.hasKind("soun")
}

func (r *Report) hasKind(kind string) bool {
	for _, t := range r.Tracks {
		if t.Kind == kind {
			return true
		}
	}
	return false
}

// Sniff identifies the container from its leading bytes.
func Sniff(data []byte) (ports.CaptureFormat, bool) {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "AVI ":
		return ports.CaptureAVI, true
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return ports.CaptureWebM, true
	case len(data) >= 8 && string(data[4:8]) == "ftyp":
		return ports.CaptureMP4, true
	}
	return "", false
}

// ProbeFile reads and probes a file.
func ProbeFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ProbeBytes(data)
}

// ProbeBytes probes in-memory media data.
func ProbeBytes(data []byte) (*Report, error) {
	format, ok := Sniff(data)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized container", ports.ErrUnsupportedFormat)
	}

	report := &Report{Format: format, Size: len(data)}

	switch format {
	case ports.CaptureMP4:
		if err := probeMP4(bytes.NewReader(data), report); err != nil {
			return nil, err
		}
	case ports.CaptureAVI:
		report.Frames = aviFrameCount(data)
		report.Tracks = []Track{{ID: 0, Kind: "vide", Codec: "MJPG"}, {ID: 1, Kind: "soun", Codec: "PCM"}}
	case ports.CaptureWebM:
		// Track listing needs an EBML parser; the signature is enough for
		// validating compiler output.
	}

	return report, nil
}

func probeMP4(reader io.ReadSeeker, report *Report) error {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return fmt.Errorf("decode mp4: %w", err)
	}

	report.Fragmented = mp4File.IsFragmented()

	moov := mp4File.Moov
	if mp4File.Init != nil && mp4File.Init.Moov != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return fmt.Errorf("decode mp4: no moov box")
	}

	samples := make(map[uint32]int)
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			report.Fragments++
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd == nil {
					continue
				}
				for _, trun := range traf.Truns {
					samples[traf.Tfhd.TrackID] += int(trun.SampleCount())
				}
			}
		}
	}

	for _, trak := range moov.Traks {
		report.Tracks = append(report.Tracks, describeTrack(trak, samples))
	}
	return nil
}

func describeTrack(trak *mp4.TrakBox, samples map[uint32]int) Track {
	var t Track
	if trak.Tkhd != nil {
		t.ID = trak.Tkhd.TrackID
	}
	t.Samples = samples[t.ID]

	if trak.Mdia == nil {
		return t
	}
	if trak.Mdia.Hdlr != nil {
		t.Kind = trak.Mdia.Hdlr.HandlerType
	}
	if trak.Mdia.Mdhd != nil {
		t.Timescale = trak.Mdia.Mdhd.Timescale
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return t
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		t.Codec = child.Type()
		break
	}
	return t
}

// aviFrameCount reads dwTotalFrames from the main AVI header.
func aviFrameCount(data []byte) int {
	idx := bytes.Index(data, []byte("avih"))
	// fourCC, size, then four dwords before dwTotalFrames
	off := idx + 8 + 16
	if idx < 0 || off+4 > len(data) {
		return 0
	}
	return int(binary.LittleEndian.Uint32(data[off : off+4]))
}
