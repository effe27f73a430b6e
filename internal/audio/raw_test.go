package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestRawParamsValidate(t *testing.T) {
	base := RawParams{Rate: 44100, Channels: 2, Bits: 16, Signed: true}

	tests := []struct {
		name   string
		mutate func(*RawParams)
		ok     bool
	}{
		{"signed 16-bit", func(p *RawParams) {}, true},
		{"signed 8-bit", func(p *RawParams) { p.Bits = 8 }, true},
		{"signed 24-bit", func(p *RawParams) { p.Bits = 24 }, true},
		{"signed 32-bit", func(p *RawParams) { p.Bits = 32 }, true},
		{"signed 64-bit", func(p *RawParams) { p.Bits = 64 }, false},
		{"unsigned 8-bit", func(p *RawParams) { p.Bits = 8; p.Signed = false }, true},
		{"unsigned 16-bit", func(p *RawParams) { p.Signed = false }, false},
		{"float 32-bit", func(p *RawParams) { p.Bits = 32; p.Float = true }, true},
		{"float 64-bit", func(p *RawParams) { p.Bits = 64; p.Float = true }, true},
		{"float 16-bit", func(p *RawParams) { p.Float = true }, false},
		{"odd width", func(p *RawParams) { p.Bits = 12 }, false},
		{"zero rate", func(p *RawParams) { p.Rate = 0 }, false},
		{"nine channels", func(p *RawParams) { p.Channels = 9 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestRawRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		p    RawParams
	}{
		{"s16le stereo", RawParams{Rate: 8000, Channels: 2, Bits: 16, Signed: true}},
		{"u8 mono", RawParams{Rate: 8000, Channels: 1, Bits: 8}},
		{"f64be mono", RawParams{Rate: 8000, Channels: 1, Bits: 64, Float: true, BigEndian: true}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "clip.raw")
			info := tt.p.Info()

			// Samples on exact quantisation steps survive both directions.
			frames := 32
			in := make([]float64, frames*tt.p.Channels)
			scale := sampleScale(tt.p.Bits)
			if tt.p.Float {
				scale = 1024
			}
			for i := range in {
				in[i] = float64(i-len(in)/2) / scale
			}

			w, err := newRawWriter(path, info)
			if err != nil {
				t.Fatal(err)
			}
			if err := w.WriteFrames(in); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}

			r, err := Open(path, &tt.p)
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()

			if got := r.Info().TotalFrames; got != int64(frames) {
				t.Errorf("TotalFrames = %d, want %d", got, frames)
			}

			out := make([]float64, len(in))
			n, err := r.ReadFrames(out)
			if err != nil {
				t.Fatal(err)
			}
			if n != frames {
				t.Fatalf("read %d frames, want %d", n, frames)
			}
			for i := range in {
				if out[i] != in[i] {
					t.Fatalf("sample %d: got %v, want %v", i, out[i], in[i])
				}
			}

			if _, err := r.ReadFrames(out); err != io.EOF {
				t.Errorf("expected io.EOF after the last frame, got %v", err)
			}
		})
	}
}

func TestRawSeekFrame(t *testing.T) {
	p := RawParams{Rate: 8000, Channels: 1, Bits: 16, Signed: true}
	path := filepath.Join(t.TempDir(), "clip.raw")

	in := make([]float64, 100)
	for i := range in {
		in[i] = float64(i) / 32768.0
	}
	w, err := newRawWriter(path, p.Info())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrames(in); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path, &p)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.SeekFrame(40); err != nil {
		t.Fatal(err)
	}
	out := make([]float64, 1)
	if _, err := r.ReadFrames(out); err != nil {
		t.Fatal(err)
	}
	if out[0] != in[40] {
		t.Errorf("after seek got %v, want %v", out[0], in[40])
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.wav"), nil)
	if err == nil {
		t.Fatal("opening a missing file should fail")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cause should remain visible through the wrap, got %v", err)
	}
}
