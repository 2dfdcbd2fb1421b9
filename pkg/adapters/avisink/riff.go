package avisink

import (
	"encoding/binary"
	"io"
)

const (
	avihSize       = 56
	strhSize       = 56
	bitmapInfoSize = 40
	waveFormatSize = 16

	videoStrlSize = 4 + (8 + strhSize) + (8 + bitmapInfoSize)
	audioStrlSize = 4 + (8 + strhSize) + (8 + waveFormatSize)
	hdrlSize      = 4 + (8 + avihSize) + (8 + videoStrlSize) + (8 + audioStrlSize)

	indexEntrySize = 16

	avifHasIndex      = 0x10
	avifIsInterleaved = 0x100
	aviifKeyframe     = 0x10

	videoChunkID = "00dc"
	audioChunkID = "01wb"
)

// binaryWriter accumulates the first write error so header assembly can
// be written without checking every call.
type binaryWriter struct {
	w   io.Writer
	err error
}

func (bw *binaryWriter) fourCC(s string) {
	if bw.err != nil {
		return
	}
	_, bw.err = io.WriteString(bw.w, s)
}

func (bw *binaryWriter) u32(v uint32) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *binaryWriter) u16(v uint16) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *binaryWriter) bytes(data []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(data)
}

// indexEntry is one idx1 record. Offsets are relative to the "movi" fourCC.
type indexEntry struct {
	id     string
	offset uint32
	size   uint32
}

// makeChunk frames data as a RIFF chunk padded to an even length.
func makeChunk(id string, data []byte) []byte {
	size := len(data)
	padded := size + size%2

	chunk := make([]byte, 8+padded)
	copy(chunk[0:4], id)
	binary.LittleEndian.PutUint32(chunk[4:8], uint32(size))
	copy(chunk[8:], data)
	return chunk
}

// streamInfo carries the totals the headers need once recording ends.
type streamInfo struct {
	width, height int
	fps           int

	videoFrames   uint32
	maxVideoChunk uint32

	sampleRate    int
	channels      int
	audioFrames   uint32
	maxAudioChunk uint32
}

func (si streamInfo) blockAlign() uint32 {
	return uint32(si.channels * 2)
}

// writeHeaders writes the RIFF header and the hdrl list.
func writeHeaders(bw *binaryWriter, si streamInfo, moviSize uint32, entries int) {
	moviListSize := 4 + moviSize
	idx1Size := uint32(entries * indexEntrySize)
	riffSize := 4 + (8 + hdrlSize) + (8 + moviListSize) + (8 + idx1Size)

	bytesPerSec := uint32(si.sampleRate) * si.blockAlign()
	maxChunk := si.maxVideoChunk
	if si.maxAudioChunk > maxChunk {
		maxChunk = si.maxAudioChunk
	}

	bw.fourCC("RIFF")
	bw.u32(riffSize)
	bw.fourCC("AVI ")

	bw.fourCC("LIST")
	bw.u32(hdrlSize)
	bw.fourCC("hdrl")

	// avih
	bw.fourCC("avih")
	bw.u32(avihSize)
	bw.u32(uint32(1_000_000 / si.fps))
	bw.u32(si.maxVideoChunk*uint32(si.fps) + bytesPerSec)
	bw.u32(0) // padding granularity
	bw.u32(avifHasIndex | avifIsInterleaved)
	bw.u32(si.videoFrames)
	bw.u32(0) // initial frames
	bw.u32(2) // streams
	bw.u32(maxChunk)
	bw.u32(uint32(si.width))
	bw.u32(uint32(si.height))
	bw.u32(0) // reserved x4
	bw.u32(0)
	bw.u32(0)
	bw.u32(0)

	// Video stream
	bw.fourCC("LIST")
	bw.u32(videoStrlSize)
	bw.fourCC("strl")

	bw.fourCC("strh")
	bw.u32(strhSize)
	bw.fourCC("vids")
	bw.fourCC("MJPG")
	bw.u32(0) // flags
	bw.u16(0) // priority
	bw.u16(0) // language
	bw.u32(0) // initial frames
	bw.u32(1) // scale
	bw.u32(uint32(si.fps))
	bw.u32(0) // start
	bw.u32(si.videoFrames)
	bw.u32(si.maxVideoChunk)
	bw.u32(0) // quality
	bw.u32(0) // sample size
	bw.u16(0)
	bw.u16(0)
	bw.u16(uint16(si.width))
	bw.u16(uint16(si.height))

	bw.fourCC("strf")
	bw.u32(bitmapInfoSize)
	bw.u32(bitmapInfoSize)
	bw.u32(uint32(si.width))
	bw.u32(uint32(si.height))
	bw.u16(1)  // planes
	bw.u16(24) // bit count
	bw.fourCC("MJPG")
	bw.u32(uint32(si.width * si.height * 3))
	bw.u32(0)
	bw.u32(0)
	bw.u32(0)
	bw.u32(0)

	// Audio stream
	bw.fourCC("LIST")
	bw.u32(audioStrlSize)
	bw.fourCC("strl")

	bw.fourCC("strh")
	bw.u32(strhSize)
	bw.fourCC("auds")
	bw.u32(0) // handler
	bw.u32(0) // flags
	bw.u16(0) // priority
	bw.u16(0) // language
	bw.u32(0) // initial frames
	bw.u32(si.blockAlign())
	bw.u32(bytesPerSec)
	bw.u32(0) // start
	bw.u32(si.audioFrames)
	bw.u32(si.maxAudioChunk)
	bw.u32(0) // quality
	bw.u32(si.blockAlign())
	bw.u16(0)
	bw.u16(0)
	bw.u16(0)
	bw.u16(0)

	// PCMWAVEFORMAT
	bw.fourCC("strf")
	bw.u32(waveFormatSize)
	bw.u16(1) // WAVE_FORMAT_PCM
	bw.u16(uint16(si.channels))
	bw.u32(uint32(si.sampleRate))
	bw.u32(bytesPerSec)
	bw.u16(uint16(si.blockAlign()))
	bw.u16(16)

	bw.fourCC("LIST")
	bw.u32(moviListSize)
	bw.fourCC("movi")
}

// writeIndex writes the idx1 chunk.
func writeIndex(bw *binaryWriter, entries []indexEntry) {
	bw.fourCC("idx1")
	bw.u32(uint32(len(entries) * indexEntrySize))
	for _, e := range entries {
		bw.fourCC(e.id)
		bw.u32(aviifKeyframe)
		bw.u32(e.offset)
		bw.u32(e.size)
	}
}
