package audio

import (
	"testing"
)

func TestContainerByExt(t *testing.T) {
	tests := []struct {
		ext  string
		want string
		ok   bool
	}{
		{"wav", "wav", true},
		{".wav", "wav", true},
		{"FLAC", "flac", true},
		{"mp3", "mp3", true},
		{"raw", "raw", true},
		{"ogg", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		c, ok := ContainerByExt(tt.ext)
		if ok != tt.ok {
			t.Errorf("ContainerByExt(%q) ok = %v, want %v", tt.ext, ok, tt.ok)
			continue
		}
		if ok && c.Ext != tt.want {
			t.Errorf("ContainerByExt(%q) = %q, want %q", tt.ext, c.Ext, tt.want)
		}
	}
}

func TestWritableContainer(t *testing.T) {
	if _, err := WritableContainer("wav"); err != nil {
		t.Errorf("wav should be writable: %v", err)
	}
	if _, err := WritableContainer("flac"); err != nil {
		t.Errorf("flac should be writable: %v", err)
	}
	if _, err := WritableContainer("mp3"); err == nil {
		t.Error("mp3 is read-only and should be rejected")
	}
	if _, err := WritableContainer("xyz"); err == nil {
		t.Error("unknown extension should be rejected")
	}
}

// TestPCMRoundTrip checks that decode followed by encode reproduces the
// original words for every integer width, which is what keeps the
// filter-off extraction path bit-transparent.
func TestPCMRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		bits      int
		isFloat   bool
		bigEndian bool
		unsigned8 bool
		raw       []byte
	}{
		{"u8", 8, false, false, true, []byte{0, 1, 127, 128, 129, 255}},
		{"s8", 8, false, false, false, []byte{0x80, 0xFF, 0x00, 0x01, 0x7F}},
		{"s16le", 16, false, false, false, []byte{0x00, 0x80, 0xFF, 0x7F, 0x01, 0x00, 0xFF, 0xFF}},
		{"s16be", 16, false, true, false, []byte{0x80, 0x00, 0x7F, 0xFF, 0x00, 0x01}},
		{"s24le", 24, false, false, false, []byte{0x00, 0x00, 0x80, 0xFF, 0xFF, 0x7F, 0x01, 0x00, 0x00}},
		{"s24be", 24, false, true, false, []byte{0x80, 0x00, 0x00, 0x7F, 0xFF, 0xFF, 0x00, 0x00, 0x01}},
		{"s32le", 32, false, false, false, []byte{0x00, 0x00, 0x00, 0x80, 0xFF, 0xFF, 0xFF, 0x7F}},
		{"f32le", 32, true, false, false, []byte{0x00, 0x00, 0x80, 0x3F, 0x00, 0x00, 0x80, 0xBF}},
		{"f64be", 64, true, true, false, []byte{0x3F, 0xE0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.raw) / (tt.bits / 8)
			samples := make([]float64, n)
			decodePCM(samples, tt.raw, tt.bits, tt.isFloat, tt.bigEndian, tt.unsigned8)
			for _, s := range samples {
				if s < -1.0 || s >= 1.0000001 {
					t.Errorf("decoded sample %v outside [-1, 1]", s)
				}
			}
			back := encodePCM(samples, tt.bits, tt.isFloat, tt.bigEndian, tt.unsigned8)
			if len(back) != len(tt.raw) {
				t.Fatalf("encoded length %d, want %d", len(back), len(tt.raw))
			}
			for i := range back {
				if back[i] != tt.raw[i] {
					t.Fatalf("byte %d: got %#02x, want %#02x (samples %v)", i, back[i], tt.raw[i], samples)
				}
			}
		})
	}
}

func TestClampIntSaturates(t *testing.T) {
	if got := clampInt(1.5, 16); got != 32767 {
		t.Errorf("positive overflow: got %d, want 32767", got)
	}
	if got := clampInt(-1.5, 16); got != -32768 {
		t.Errorf("negative overflow: got %d, want -32768", got)
	}
	if got := clampInt(0.5, 16); got != 16384 {
		t.Errorf("half scale: got %d, want 16384", got)
	}
}
