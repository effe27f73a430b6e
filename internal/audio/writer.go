package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// Writer encodes interleaved float64 frames into an audio file.
type Writer interface {
	// WriteFrames appends samples, whose length must be a multiple of the
	// channel count.
	WriteFrames(samples []float64) error
	Close() error
}

// NewWriter creates an audio file at path in the given container, carrying
// the sample rate, channel count and (as closely as the container allows)
// the sample width of info.
func NewWriter(path, container string, info Info) (Writer, error) {
	switch container {
	case "wav":
		return newWAVWriter(path, info)
	case "flac":
		return newFLACWriter(path, info)
	case "raw":
		return newRawWriter(path, info)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, container)
}

// --- WAV writer ---

type wavWriter struct {
	f        *os.File
	enc      *wav.Encoder
	buf      *gaudio.IntBuffer
	bits     int
	unsigned bool
}

func newWAVWriter(path string, info Info) (*wavWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	// The encoder emits integer PCM; float sources are written as 32-bit
	// words.
	bits := info.BitDepth
	if info.Float {
		bits = 32
	}
	enc := wav.NewEncoder(f, info.SampleRate, bits, info.Channels, 1)
	return &wavWriter{
		f:   f,
		enc: enc,
		buf: &gaudio.IntBuffer{
			Format: &gaudio.Format{
				NumChannels: info.Channels,
				SampleRate:  info.SampleRate,
			},
			SourceBitDepth: bits,
		},
		bits:     bits,
		unsigned: bits == 8,
	}, nil
}

func (w *wavWriter) WriteFrames(samples []float64) error {
	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, s := range samples {
		v := clampInt(s, w.bits)
		if w.unsigned {
			v += 128
		}
		w.buf.Data[i] = v
	}
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write to output file: %w", err)
	}
	return nil
}

func (w *wavWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("failed to finalise output file: %w", err)
	}
	return w.f.Close()
}

// --- FLAC writer ---

// flacBlockFrames is the number of inter-channel samples per encoded FLAC
// frame.
const flacBlockFrames = 4096

type flacWriter struct {
	f       *os.File
	enc     *flac.Encoder
	info    Info
	bits    int
	pending []int32 // interleaved, up to flacBlockFrames*channels
}

func newFLACWriter(path string, info Info) (*flacWriter, error) {
	// FLAC carries up to 24-bit integer samples here; wider or float
	// sources are narrowed.
	bits := info.BitDepth
	if info.Float || bits > 24 {
		bits = 24
	}
	if _, err := flacChannels(info.Channels); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	enc, err := flac.NewEncoder(f, &meta.StreamInfo{
		BlockSizeMin:  16,    // adjusted by encoder
		BlockSizeMax:  65535, // adjusted by encoder
		SampleRate:    uint32(info.SampleRate),
		NChannels:     uint8(info.Channels),
		BitsPerSample: uint8(bits),
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create FLAC encoder: %w", err)
	}
	return &flacWriter{
		f:       f,
		enc:     enc,
		info:    info,
		bits:    bits,
		pending: make([]int32, 0, flacBlockFrames*info.Channels),
	}, nil
}

func (w *flacWriter) WriteFrames(samples []float64) error {
	for _, s := range samples {
		w.pending = append(w.pending, int32(clampInt(s, w.bits)))
		if len(w.pending) == cap(w.pending) {
			if err := w.flushBlock(); err != nil {
				return err
			}
		}
	}
	return nil
}

// flushBlock encodes the pending samples as one verbatim FLAC frame.
func (w *flacWriter) flushBlock() error {
	c := w.info.Channels
	n := len(w.pending) / c
	if n == 0 {
		return nil
	}
	subframes := make([]*frame.Subframe, c)
	for ch := range subframes {
		sf := &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			NSamples:  n,
			Samples:   make([]int32, n),
		}
		for i := 0; i < n; i++ {
			sf.Samples[i] = w.pending[i*c+ch]
		}
		// A run of identical samples encodes smaller as constant.
		constant := true
		for _, s := range sf.Samples[1:] {
			if s != sf.Samples[0] {
				constant = false
				break
			}
		}
		if constant {
			sf.SubHeader.Pred = frame.PredConstant
		}
		subframes[ch] = sf
	}
	channels, err := flacChannels(c)
	if err != nil {
		return err
	}
	fr := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(n),
			SampleRate:    uint32(w.info.SampleRate),
			Channels:      channels,
			BitsPerSample: uint8(w.bits),
		},
		Subframes: subframes,
	}
	if err := w.enc.WriteFrame(fr); err != nil {
		return fmt.Errorf("failed to write FLAC frame: %w", err)
	}
	w.pending = w.pending[:0]
	return nil
}

func (w *flacWriter) Close() error {
	if err := w.flushBlock(); err != nil {
		w.enc.Close()
		w.f.Close()
		return err
	}
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("failed to finalise FLAC stream: %w", err)
	}
	return w.f.Close()
}

// flacChannels maps a channel count onto the FLAC channel assignment.
func flacChannels(n int) (frame.Channels, error) {
	switch n {
	case 1:
		return frame.ChannelsMono, nil
	case 2:
		return frame.ChannelsLR, nil
	case 3:
		return frame.ChannelsLRC, nil
	case 4:
		return frame.ChannelsLRLsRs, nil
	case 5:
		return frame.ChannelsLRCLsRs, nil
	case 6:
		return frame.ChannelsLRCLfeLsRs, nil
	case 7:
		return frame.ChannelsLRCLfeCsSlSr, nil
	case 8:
		return frame.ChannelsLRCLfeLsRsSlSr, nil
	}
	return 0, fmt.Errorf("unsupported channel count %d for FLAC output", n)
}

// encodePCM converts normalised float64 samples into packed PCM bytes.
func encodePCM(samples []float64, bits int, isFloat, bigEndian, unsigned8 bool) []byte {
	var order binary.ByteOrder = binary.LittleEndian
	if bigEndian {
		order = binary.BigEndian
	}
	raw := make([]byte, len(samples)*bits/8)
	for i, s := range samples {
		off := i * bits / 8
		switch {
		case isFloat && bits == 32:
			order.PutUint32(raw[off:], math.Float32bits(float32(s)))
		case isFloat && bits == 64:
			order.PutUint64(raw[off:], math.Float64bits(s))
		case bits == 8 && unsigned8:
			raw[off] = byte(clampInt(s, 8) + 128)
		case bits == 8:
			raw[off] = byte(int8(clampInt(s, 8)))
		case bits == 16:
			order.PutUint16(raw[off:], uint16(int16(clampInt(s, 16))))
		case bits == 24:
			v := clampInt(s, 24)
			if bigEndian {
				raw[off] = byte(v >> 16)
				raw[off+1] = byte(v >> 8)
				raw[off+2] = byte(v)
			} else {
				raw[off] = byte(v)
				raw[off+1] = byte(v >> 8)
				raw[off+2] = byte(v >> 16)
			}
		case bits == 32:
			order.PutUint32(raw[off:], uint32(int32(clampInt(s, 32))))
		}
	}
	return raw
}
