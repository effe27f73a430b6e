package sink

import (
	"testing"

	"github.com/linuxmatters/trackcutter/internal/config"
)

func TestTimecode(t *testing.T) {
	tests := []struct {
		idx  int64
		rate int
		want string
	}{
		{0, 48000, "0:00:00.00000"},
		{24000, 48000, "0:00:00.50000"},
		{48000, 48000, "0:00:01.00000"},
		{48000 * 61, 48000, "0:01:01.00000"},
		{48000 * 3661, 48000, "1:01:01.00000"},
		{48000*3661 + 24000, 48000, "1:01:01.50000"},
		{44100 * 90, 44100, "0:01:30.00000"},
	}
	for _, tt := range tests {
		if got := Timecode(tt.idx, tt.rate); got != tt.want {
			t.Errorf("Timecode(%d, %d) = %q, want %q", tt.idx, tt.rate, got, tt.want)
		}
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(72000, 48000); got != "1.50000" {
		t.Errorf("Seconds = %q, want 1.50000", got)
	}
	if got := Seconds(0, 48000); got != "0.00000" {
		t.Errorf("Seconds = %q, want 0.00000", got)
	}
}

func TestFormatIndex(t *testing.T) {
	if got := FormatIndex(12345, 48000, config.FormatFrame); got != "12345" {
		t.Errorf("frame format = %q", got)
	}
	if got := FormatIndex(24000, 48000, config.FormatSec); got != "0.50000" {
		t.Errorf("sec format = %q", got)
	}
	if got := FormatIndex(24000, 48000, config.FormatTime); got != "0:00:00.50000" {
		t.Errorf("time format = %q", got)
	}
}
