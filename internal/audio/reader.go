package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// Reader decodes an audio stream into interleaved float64 frames in
// [-1.0, +1.0). Implementations exist for WAV, FLAC, MP3 and raw PCM.
type Reader interface {
	Info() Info
	// ReadFrames fills dst (whose length must be a multiple of the channel
	// count) and returns the number of whole frames decoded. io.EOF is
	// returned once the stream is exhausted.
	ReadFrames(dst []float64) (int, error)
	// SeekFrame repositions the stream so the next ReadFrames call decodes
	// from the given frame index.
	SeekFrame(idx int64) error
	Close() error
}

// Open opens path for reading and detects its container from the leading
// header bytes. A path of "-" reads standard input; container input from a
// pipe is buffered in memory since none of the decoders can parse a
// non-seekable stream. When raw is non-nil the input is treated as
// headerless PCM with the given parameters and no detection is performed.
func Open(path string, raw *RawParams) (Reader, error) {
	if raw != nil {
		return openRaw(path, raw)
	}

	var (
		rs     io.ReadSeeker
		closer io.Closer
	)
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read audio from standard input: %w", err)
		}
		rs = bytes.NewReader(data)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		rs = f
		closer = f
	}

	container, err := sniffContainer(rs)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("%s: %w", displayName(path), err)
	}

	var r Reader
	switch container {
	case "wav":
		r, err = newWAVReader(rs, closer)
	case "flac":
		r, err = newFLACReader(rs, closer)
	case "mp3":
		r, err = newMP3Reader(rs, closer)
	}
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("%s: %w", displayName(path), err)
	}
	return r, nil
}

// displayName renders a path for diagnostics, naming standard input
// explicitly.
func displayName(path string) string {
	if path == "-" {
		return "<standard input>"
	}
	return path
}

// sniffContainer identifies the container from the first bytes of the
// stream and rewinds to the start.
func sniffContainer(rs io.ReadSeeker) (string, error) {
	var magic [12]byte
	n, err := io.ReadFull(rs, magic[:])
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file header: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind input: %w", err)
	}
	hdr := magic[:n]
	switch {
	case len(hdr) >= 12 && bytes.Equal(hdr[0:4], []byte("RIFF")) && bytes.Equal(hdr[8:12], []byte("WAVE")):
		return "wav", nil
	case len(hdr) >= 4 && bytes.Equal(hdr[0:4], []byte("fLaC")):
		return "flac", nil
	case len(hdr) >= 3 && bytes.Equal(hdr[0:3], []byte("ID3")):
		return "mp3", nil
	case len(hdr) >= 2 && hdr[0] == 0xFF && hdr[1]&0xE0 == 0xE0:
		return "mp3", nil
	}
	return "", fmt.Errorf("%w (unable to identify file structure)", ErrUnknownFormat)
}

// --- WAV reader ---

// wavReader parses the RIFF structure with go-audio/wav and then reads the
// PCM payload directly from the underlying stream, which keeps seeking
// frame-accurate and cheap.
type wavReader struct {
	rs        io.ReadSeeker
	closer    io.Closer
	info      Info
	pcmStart  int64
	frameSize int
	pos       int64  // frames
	scratch   []byte // reused read buffer
}

func newWAVReader(rs io.ReadSeeker, closer io.Closer) (*wavReader, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("failed to locate WAV PCM data: %w", err)
	}

	info := Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Float:      dec.WavAudioFormat == 3, // IEEE float
		Unsigned:   dec.BitDepth == 8,       // 8-bit WAV is unsigned
		Container:  "wav",
	}
	if info.Channels < 1 || info.Channels > MaxChannels {
		return nil, fmt.Errorf("unsupported channel count %d (max %d)", info.Channels, MaxChannels)
	}
	frameSize := info.Channels * info.BitDepth / 8
	info.TotalFrames = dec.PCMLen() / int64(frameSize)

	// FwdToPCM leaves the underlying stream at the first payload byte.
	pcmStart, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to record WAV data offset: %w", err)
	}

	return &wavReader{
		rs:        rs,
		closer:    closer,
		info:      info,
		pcmStart:  pcmStart,
		frameSize: frameSize,
	}, nil
}

func (r *wavReader) Info() Info { return r.info }

func (r *wavReader) ReadFrames(dst []float64) (int, error) {
	want := len(dst) / r.info.Channels
	if remaining := r.info.TotalFrames - r.pos; int64(want) > remaining {
		want = int(remaining)
	}
	if want <= 0 {
		return 0, io.EOF
	}
	if cap(r.scratch) < want*r.frameSize {
		r.scratch = make([]byte, want*r.frameSize)
	}
	raw := r.scratch[:want*r.frameSize]
	n, err := io.ReadFull(r.rs, raw)
	frames := n / r.frameSize
	if frames == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	decodePCM(dst, raw[:frames*r.frameSize], r.info.BitDepth, r.info.Float, false, r.info.Unsigned)
	r.pos += int64(frames)
	return frames, nil
}

func (r *wavReader) SeekFrame(idx int64) error {
	if idx > r.info.TotalFrames {
		idx = r.info.TotalFrames
	}
	if _, err := r.rs.Seek(r.pcmStart+idx*int64(r.frameSize), io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to frame %d: %w", idx, err)
	}
	r.pos = idx
	return nil
}

func (r *wavReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// --- FLAC reader ---

type flacReader struct {
	stream   *flac.Stream
	closer   io.Closer
	info     Info
	scale    float64
	leftover []float64 // interleaved samples from the last parsed frame
	eof      bool
}

func newFLACReader(rs io.ReadSeeker, closer io.Closer) (*flacReader, error) {
	stream, err := flac.NewSeek(rs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC stream: %w", err)
	}
	si := stream.Info
	info := Info{
		SampleRate:  int(si.SampleRate),
		Channels:    int(si.NChannels),
		BitDepth:    int(si.BitsPerSample),
		Container:   "flac",
		TotalFrames: int64(si.NSamples),
	}
	if info.Channels < 1 || info.Channels > MaxChannels {
		return nil, fmt.Errorf("unsupported channel count %d (max %d)", info.Channels, MaxChannels)
	}
	return &flacReader{
		stream: stream,
		closer: closer,
		info:   info,
		scale:  sampleScale(info.BitDepth),
	}, nil
}

func (r *flacReader) Info() Info { return r.info }

func (r *flacReader) ReadFrames(dst []float64) (int, error) {
	c := r.info.Channels
	filled := 0
	for filled < len(dst)/c {
		if len(r.leftover) == 0 {
			if r.eof {
				break
			}
			f, err := r.stream.ParseNext()
			if err == io.EOF {
				r.eof = true
				break
			}
			if err != nil {
				return filled, fmt.Errorf("failed to decode FLAC frame: %w", err)
			}
			n := int(f.Subframes[0].NSamples)
			r.leftover = make([]float64, n*c)
			for i := 0; i < n; i++ {
				for ch := 0; ch < c; ch++ {
					r.leftover[i*c+ch] = float64(f.Subframes[ch].Samples[i]) / r.scale
				}
			}
		}
		n := copy(dst[filled*c:], r.leftover)
		r.leftover = r.leftover[n:]
		filled += n / c
	}
	if filled == 0 {
		return 0, io.EOF
	}
	return filled, nil
}

func (r *flacReader) SeekFrame(idx int64) error {
	r.leftover = nil
	r.eof = false
	if idx >= r.info.TotalFrames {
		r.eof = true
		return nil
	}
	// Stream.Seek lands on the first sample of the FLAC frame containing
	// idx; decode-and-discard covers the remainder.
	actual, err := r.stream.Seek(uint64(idx))
	if err != nil {
		return fmt.Errorf("failed to seek to frame %d: %w", idx, err)
	}
	skip := idx - int64(actual)
	scratch := make([]float64, 512*r.info.Channels)
	for skip > 0 {
		want := int64(len(scratch) / r.info.Channels)
		if want > skip {
			want = skip
		}
		n, err := r.ReadFrames(scratch[:want*int64(r.info.Channels)])
		if err != nil {
			return fmt.Errorf("failed to skip to frame %d: %w", idx, err)
		}
		skip -= int64(n)
	}
	return nil
}

func (r *flacReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// --- MP3 reader ---

// mp3Reader wraps go-mp3, which always emits 16-bit little-endian stereo.
type mp3Reader struct {
	dec     *mp3.Decoder
	closer  io.Closer
	info    Info
	scratch []byte
}

func newMP3Reader(rs io.ReadSeeker, closer io.Closer) (*mp3Reader, error) {
	dec, err := mp3.NewDecoder(rs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3 stream: %w", err)
	}
	info := Info{
		SampleRate: dec.SampleRate(),
		Channels:   2,
		BitDepth:   16,
		Container:  "mp3",
	}
	if l := dec.Length(); l > 0 {
		info.TotalFrames = l / 4
	}
	return &mp3Reader{dec: dec, closer: closer, info: info}, nil
}

func (r *mp3Reader) Info() Info { return r.info }

func (r *mp3Reader) ReadFrames(dst []float64) (int, error) {
	want := len(dst) / 2
	if cap(r.scratch) < want*4 {
		r.scratch = make([]byte, want*4)
	}
	raw := r.scratch[:want*4]
	n, err := io.ReadFull(r.dec, raw)
	frames := n / 4
	if frames == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	decodePCM(dst, raw[:frames*4], 16, false, false, true)
	return frames, nil
}

func (r *mp3Reader) SeekFrame(idx int64) error {
	if _, err := r.dec.Seek(idx*4, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to frame %d: %w", idx, err)
	}
	return nil
}

func (r *mp3Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// decodePCM converts packed PCM bytes into normalised float64 samples.
// Sample widths follow the validated parameter matrix: unsigned is 8-bit
// only, floating point is 32/64-bit only. unsigned8 selects the WAV-style
// unsigned interpretation for 8-bit words.
func decodePCM(dst []float64, raw []byte, bits int, isFloat, bigEndian, unsigned8 bool) {
	var order binary.ByteOrder = binary.LittleEndian
	if bigEndian {
		order = binary.BigEndian
	}
	n := len(raw) / (bits / 8)
	for i := 0; i < n; i++ {
		off := i * bits / 8
		switch {
		case isFloat && bits == 32:
			dst[i] = float64(math.Float32frombits(order.Uint32(raw[off:])))
		case isFloat && bits == 64:
			dst[i] = math.Float64frombits(order.Uint64(raw[off:]))
		case bits == 8 && unsigned8:
			dst[i] = float64(int(raw[off])-128) / 128.0
		case bits == 8:
			dst[i] = float64(int8(raw[off])) / 128.0
		case bits == 16:
			dst[i] = float64(int16(order.Uint16(raw[off:]))) / 32768.0
		case bits == 24:
			var v int32
			if bigEndian {
				v = int32(raw[off])<<16 | int32(raw[off+1])<<8 | int32(raw[off+2])
			} else {
				v = int32(raw[off]) | int32(raw[off+1])<<8 | int32(raw[off+2])<<16
			}
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF) // sign extend
			}
			dst[i] = float64(v) / 8388608.0
		case bits == 32:
			dst[i] = float64(int32(order.Uint32(raw[off:]))) / 2147483648.0
		}
	}
}
