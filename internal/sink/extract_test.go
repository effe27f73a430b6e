package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/trackcutter/internal/audio"
)

func extractInfo() audio.Info {
	return audio.Info{SampleRate: 8000, Channels: 1, BitDepth: 16, Container: "wav"}
}

func TestExtractNamedTrack(t *testing.T) {
	dir := t.TempDir()
	ex, err := NewExtract(dir, "", extractInfo())
	if err != nil {
		t.Fatal(err)
	}

	lead := []float64{0.25, -0.25}
	if err := ex.BeginTrack(1, 0, "Opening Theme", lead); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := ex.WriteFrame([]float64{0.5}); err != nil {
			t.Fatal(err)
		}
	}
	if err := ex.EndTrack(12); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "Opening Theme.wav")
	r, err := audio.Open(path, nil)
	if err != nil {
		t.Fatalf("extracted file should be readable: %v", err)
	}
	defer r.Close()

	if got := r.Info().TotalFrames; got != 12 {
		t.Errorf("extracted %d frames, want 12 (lead-in + commits)", got)
	}
	out := make([]float64, 12)
	if _, err := r.ReadFrames(out); err != nil {
		t.Fatal(err)
	}
	if out[0] != 0.25 || out[1] != -0.25 {
		t.Errorf("lead-in frames not first: %v", out[:2])
	}
	if out[2] != 0.5 {
		t.Errorf("committed frame = %v, want 0.5", out[2])
	}
}

func TestExtractNumberedTrack(t *testing.T) {
	dir := t.TempDir()
	ex, err := NewExtract(dir, "", extractInfo())
	if err != nil {
		t.Fatal(err)
	}

	if err := ex.BeginTrack(3, 0, "", nil); err != nil {
		t.Fatal(err)
	}
	if err := ex.WriteFrame([]float64{0.5}); err != nil {
		t.Fatal(err)
	}
	if err := ex.EndTrack(1); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "00000003.wav")); err != nil {
		t.Errorf("unnamed track should be zero-padded from its number: %v", err)
	}
}

func TestExtractSanitisesNames(t *testing.T) {
	dir := t.TempDir()
	ex, err := NewExtract(dir, "", extractInfo())
	if err != nil {
		t.Fatal(err)
	}

	if err := ex.BeginTrack(1, 0, "../escape/attempt", nil); err != nil {
		t.Fatal(err)
	}
	if err := ex.WriteFrame([]float64{0.5}); err != nil {
		t.Fatal(err)
	}
	if err := ex.EndTrack(1); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".._escape_attempt.wav")); err != nil {
		t.Errorf("separators in names should be flattened: %v", err)
	}
}

func TestExtractContainerFallback(t *testing.T) {
	// MP3 input cannot be written back; extraction falls back to WAV.
	info := extractInfo()
	info.Container = "mp3"
	ex, err := NewExtract(t.TempDir(), "", info)
	if err != nil {
		t.Fatal(err)
	}
	if ex.container != "wav" {
		t.Errorf("container = %q, want wav fallback", ex.container)
	}
}

func TestExtractRejectsBadDirectory(t *testing.T) {
	if _, err := NewExtract(filepath.Join(t.TempDir(), "absent"), "", extractInfo()); err == nil {
		t.Error("missing directory should be rejected")
	}
}

func TestExtractRejectsReadOnlyFormat(t *testing.T) {
	if _, err := NewExtract(t.TempDir(), "mp3", extractInfo()); err == nil {
		t.Error("mp3 output should be rejected")
	}
}
