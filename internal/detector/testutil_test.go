package detector

import (
	"io"
	"testing"

	"github.com/linuxmatters/trackcutter/internal/audio"
)

// memReader is an in-memory audio.Reader over interleaved samples, so the
// pipeline can run on synthetic streams without touching the filesystem.
type memReader struct {
	data []float64
	c    int
	rate int
	pos  int64
}

func newMemReader(rate, channels int, data []float64) *memReader {
	return &memReader{data: data, c: channels, rate: rate}
}

func (m *memReader) Info() audio.Info {
	return audio.Info{
		SampleRate:  m.rate,
		Channels:    m.c,
		BitDepth:    16,
		Container:   "wav",
		TotalFrames: int64(len(m.data) / m.c),
	}
}

func (m *memReader) ReadFrames(dst []float64) (int, error) {
	avail := int64(len(m.data)/m.c) - m.pos
	if avail <= 0 {
		return 0, io.EOF
	}
	want := int64(len(dst) / m.c)
	if want > avail {
		want = avail
	}
	copy(dst, m.data[m.pos*int64(m.c):(m.pos+want)*int64(m.c)])
	m.pos += want
	return int(want), nil
}

func (m *memReader) SeekFrame(idx int64) error {
	m.pos = idx
	return nil
}

func (m *memReader) Close() error { return nil }

// recTrack is one track as seen by the recording sink.
type recTrack struct {
	num        int
	start, end int64
	name       string
	samples    []float64
	done       bool
}

// recSink records every sink callback for assertions.
type recSink struct {
	audio  bool
	tracks []recTrack
}

func (s *recSink) BeginTrack(num int, start int64, name string, leadIn []float64) error {
	tr := recTrack{num: num, start: start, name: name}
	tr.samples = append(tr.samples, leadIn...)
	s.tracks = append(s.tracks, tr)
	return nil
}

func (s *recSink) WriteFrame(frame []float64) error {
	tr := &s.tracks[len(s.tracks)-1]
	tr.samples = append(tr.samples, frame...)
	return nil
}

func (s *recSink) EndTrack(end int64) error {
	tr := &s.tracks[len(s.tracks)-1]
	tr.end = end
	tr.done = true
	return nil
}

func (s *recSink) NeedsAudio() bool { return s.audio }

// block describes a constant-level stretch of mono signal.
type block struct {
	frames int
	level  float64
}

// buildSignal concatenates constant-level blocks into a mono stream.
// Constant levels make the windowed-energy timeline exact: the signal
// verdict flips the moment the window stops (or starts) covering a
// non-zero frame.
func buildSignal(blocks ...block) []float64 {
	var out []float64
	for _, b := range blocks {
		for i := 0; i < b.frames; i++ {
			out = append(out, b.level)
		}
	}
	return out
}

// testParams derives parameters for the synthetic streams: 1 kHz mono,
// W=50, read-ahead 25, min signal 100 frames, min silence 100 frames,
// min track 1000 frames.
func testParams(t *testing.T) Params {
	t.Helper()
	p, err := NewParams(1000, 1, Config{
		MinSilencePeriod: 100,
		MinSignalPeriod:  100,
		MinTrackLength:   1,
		NoiseFloor:       -48,
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}
