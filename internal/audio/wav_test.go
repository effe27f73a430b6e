package audio

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// writeWAV writes frames through the WAV writer and returns the path.
func writeWAV(t *testing.T, info Info, samples []float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	w, err := NewWriter(path, "wav", info)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrames(samples); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWAVRoundTrip(t *testing.T) {
	info := Info{SampleRate: 8000, Channels: 2, BitDepth: 16}

	frames := 256
	in := make([]float64, frames*info.Channels)
	for i := range in {
		in[i] = float64(i-len(in)/2) / 32768.0
	}
	path := writeWAV(t, info, in)

	r, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got := r.Info()
	if got.SampleRate != 8000 || got.Channels != 2 || got.BitDepth != 16 {
		t.Fatalf("round-trip info = %+v", got)
	}
	if got.TotalFrames != int64(frames) {
		t.Errorf("TotalFrames = %d, want %d", got.TotalFrames, frames)
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
		t.Errorf("expected io.EOF at end, got %v", err)
	}
}

func TestWAVSeekFrame(t *testing.T) {
	info := Info{SampleRate: 8000, Channels: 1, BitDepth: 16}
	in := make([]float64, 500)
	for i := range in {
		in[i] = float64(i) / 32768.0
	}
	path := writeWAV(t, info, in)

	r, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.SeekFrame(123); err != nil {
		t.Fatal(err)
	}
	out := make([]float64, 4)
	if _, err := r.ReadFrames(out); err != nil {
		t.Fatal(err)
	}
	for i := range out {
		if out[i] != in[123+i] {
			t.Fatalf("after seek sample %d: got %v, want %v", i, out[i], in[123+i])
		}
	}

	// Seeking past the end yields an immediate EOF, not an error.
	if err := r.SeekFrame(10_000); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadFrames(out); err != io.EOF {
		t.Errorf("expected io.EOF past the end, got %v", err)
	}
}

func TestSniffContainerRejectsJunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.bin")
	if err := writeFile(path, []byte("this is not audio at all")); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, nil); err == nil {
		t.Error("unidentifiable input should be rejected")
	}
}
