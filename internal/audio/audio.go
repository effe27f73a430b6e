// Package audio provides audio file I/O for trackcutter: container
// detection, frame-accurate readers that decode to interleaved float64
// samples, and writers for the extractable containers.
package audio

import (
	"errors"
	"fmt"
	"strings"
)

// MaxChannels is the largest channel count the processing pipeline accepts.
const MaxChannels = 8

// ErrUnknownFormat is returned when a file extension does not match any
// known container.
var ErrUnknownFormat = errors.New("unrecognised audio container")

// Info describes a decoded audio stream.
type Info struct {
	SampleRate  int
	Channels    int
	BitDepth    int    // bits per sample in the source encoding
	Float       bool   // samples are floating point in the source encoding
	Unsigned    bool   // 8-bit unsigned words (WAV convention, or raw --unsigned)
	BigEndian   bool   // raw PCM only; WAV/FLAC define their own byte order
	Container   string // container extension, e.g. "wav"
	TotalFrames int64  // 0 when unknown (e.g. streamed raw input)
}

// Container describes one supported audio container.
type Container struct {
	Ext      string
	Desc     string
	CanWrite bool
}

// Containers is the major-format table, in help-output order.
var Containers = []Container{
	{Ext: "wav", Desc: "Microsoft WAV (RIFF PCM)", CanWrite: true},
	{Ext: "flac", Desc: "Free Lossless Audio Codec", CanWrite: true},
	{Ext: "mp3", Desc: "MPEG audio layer 3 (read only)", CanWrite: false},
	{Ext: "raw", Desc: "Raw PCM data (no header)", CanWrite: true},
}

// ContainerByExt looks up a container by extension, case-insensitively and
// with or without a leading dot.
func ContainerByExt(ext string) (Container, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, c := range Containers {
		if c.Ext == ext {
			return c, true
		}
	}
	return Container{}, false
}

// WritableContainer validates an --output-format argument.
func WritableContainer(ext string) (Container, error) {
	c, ok := ContainerByExt(ext)
	if !ok {
		return Container{}, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if !c.CanWrite {
		return Container{}, fmt.Errorf("container %q is read-only", c.Ext)
	}
	return c, nil
}

// sampleScale returns the divisor mapping an integer sample of the given
// bit depth onto [-1.0, +1.0).
func sampleScale(bits int) float64 {
	return float64(int64(1) << (bits - 1))
}

// clampInt converts a normalised sample back to an integer of the given bit
// depth, rounding to nearest and saturating at full scale. The rounding is
// the exact inverse of sampleScale for values that originated as integers,
// which keeps the no-filter extraction path bit-transparent.
func clampInt(x float64, bits int) int {
	scale := sampleScale(bits)
	v := x * scale
	if v >= 0 {
		v += 0.5
	} else {
		v -= 0.5
	}
	n := int(v)
	max := int(scale) - 1
	min := -int(scale)
	if n > max {
		n = max
	}
	if n < min {
		n = min
	}
	return n
}
