package audio

import (
	"fmt"
	"io"
	"os"
)

// RawParams describes a headerless PCM stream. All fields must be supplied
// by the caller; there are no defaults.
type RawParams struct {
	Rate      int
	Channels  int
	Bits      int
	Signed    bool
	Float     bool
	BigEndian bool
}

// Validate checks the parameter combination against the supported matrix:
// 8-bit unsigned integer, 8/16/24/32-bit signed integer, or 32/64-bit
// floating point.
func (p *RawParams) Validate() error {
	if p.Rate <= 0 {
		return fmt.Errorf("raw audio sampling rate must be positive")
	}
	if p.Channels < 1 || p.Channels > MaxChannels {
		return fmt.Errorf("raw audio supports at most %d channels", MaxChannels)
	}
	switch p.Bits {
	case 8, 16, 24, 32, 64:
	default:
		return fmt.Errorf("raw audio supports 8, 16, 24, 32 or 64-bit samples only")
	}
	switch {
	case !p.Float && p.Signed && p.Bits == 64:
		return fmt.Errorf("raw audio only allows 8, 16, 24 or 32-bit signed integer samples")
	case !p.Float && !p.Signed && p.Bits != 8:
		return fmt.Errorf("raw audio only allows 8-bit unsigned integer samples")
	case p.Float && p.Bits < 32:
		return fmt.Errorf("raw audio only supports 32 and 64-bit floating point samples")
	}
	return nil
}

// Info derives the stream description implied by the parameters.
func (p *RawParams) Info() Info {
	return Info{
		SampleRate: p.Rate,
		Channels:   p.Channels,
		BitDepth:   p.Bits,
		Float:      p.Float,
		Unsigned:   !p.Signed && !p.Float,
		BigEndian:  p.BigEndian,
		Container:  "raw",
	}
}

// rawReader decodes headerless PCM. When the source is a plain stream
// (standard input), SeekFrame degrades to decode-and-discard.
type rawReader struct {
	r         io.Reader
	closer    io.Closer
	info      Info
	unsigned8 bool
	frameSize int
	pos       int64
	scratch   []byte
}

func openRaw(path string, p *RawParams) (Reader, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var (
		r      io.Reader
		closer io.Closer
	)
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		r = f
		closer = f
	}
	info := p.Info()
	frameSize := p.Channels * p.Bits / 8
	if f, ok := r.(*os.File); ok && closer != nil {
		if st, err := f.Stat(); err == nil && st.Mode().IsRegular() {
			info.TotalFrames = st.Size() / int64(frameSize)
		}
	}
	return &rawReader{
		r:         r,
		closer:    closer,
		info:      info,
		unsigned8: info.Unsigned,
		frameSize: frameSize,
	}, nil
}

func (r *rawReader) Info() Info { return r.info }

func (r *rawReader) ReadFrames(dst []float64) (int, error) {
	want := len(dst) / r.info.Channels
	if cap(r.scratch) < want*r.frameSize {
		r.scratch = make([]byte, want*r.frameSize)
	}
	raw := r.scratch[:want*r.frameSize]
	n, err := io.ReadFull(r.r, raw)
	frames := n / r.frameSize
	if frames == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	decodePCM(dst, raw[:frames*r.frameSize], r.info.BitDepth, r.info.Float, r.info.BigEndian, r.unsigned8)
	r.pos += int64(frames)
	return frames, nil
}

func (r *rawReader) SeekFrame(idx int64) error {
	if rs, ok := r.r.(io.ReadSeeker); ok && r.closer != nil {
		if _, err := rs.Seek(idx*int64(r.frameSize), io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to frame %d: %w", idx, err)
		}
		r.pos = idx
		return nil
	}
	// Pipes cannot seek backwards; skipping forward is the only move.
	if idx < r.pos {
		return fmt.Errorf("cannot seek backwards to frame %d on a stream", idx)
	}
	if _, err := io.CopyN(io.Discard, r.r, (idx-r.pos)*int64(r.frameSize)); err != nil {
		return fmt.Errorf("failed to skip to frame %d: %w", idx, err)
	}
	r.pos = idx
	return nil
}

func (r *rawReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// rawWriter emits headerless PCM with the same parameters as the source.
type rawWriter struct {
	f         *os.File
	info      Info
	unsigned8 bool
}

func newRawWriter(path string, info Info) (*rawWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &rawWriter{
		f:         f,
		info:      info,
		unsigned8: info.Unsigned,
	}, nil
}

func (w *rawWriter) WriteFrames(samples []float64) error {
	raw := encodePCM(samples, w.info.BitDepth, w.info.Float, w.info.BigEndian, w.unsigned8)
	if _, err := w.f.Write(raw); err != nil {
		return fmt.Errorf("failed to write to output file: %w", err)
	}
	return nil
}

func (w *rawWriter) Close() error {
	return w.f.Close()
}
