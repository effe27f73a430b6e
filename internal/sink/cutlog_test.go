package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linuxmatters/trackcutter/internal/config"
)

// writeLog runs a fixed two-track session through a CutLog and returns
// the file contents.
func writeLog(t *testing.T, format config.CutFormat, withNames, noHeader bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cuts.txt")

	l, err := NewCutLog(path, 1000, format, withNames, noHeader)
	if err != nil {
		t.Fatal(err)
	}
	name1, name2 := "", ""
	if withNames {
		name1, name2 = "Opening Theme", "Second Song"
	}
	if err := l.BeginTrack(1, 0, name1, nil); err != nil {
		t.Fatal(err)
	}
	if err := l.EndTrack(2500); err != nil {
		t.Fatal(err)
	}
	if err := l.BeginTrack(2, 4000, name2, nil); err != nil {
		t.Fatal(err)
	}
	if err := l.EndTrack(9000); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCutLogFrameFormat(t *testing.T) {
	got := writeLog(t, config.FormatFrame, false, false)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), got)
	}
	if !strings.HasPrefix(lines[0], "track_num   start_frame") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[0], "duration_frames") {
		t.Errorf("header lacks duration column: %q", lines[0])
	}
	want1 := "         1               0            2500                2500  "
	if lines[1] != want1 {
		t.Errorf("row 1 = %q, want %q", lines[1], want1)
	}
	want2 := "         2            4000            9000                5000  "
	if lines[2] != want2 {
		t.Errorf("row 2 = %q, want %q", lines[2], want2)
	}
}

func TestCutLogTimeFormatWithNames(t *testing.T) {
	got := writeLog(t, config.FormatTime, true, false)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), got)
	}
	if !strings.HasPrefix(lines[0], "track_num   start_time") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasSuffix(lines[0], "name") {
		t.Errorf("header should end with the name column: %q", lines[0])
	}
	if !strings.Contains(lines[1], "0:00:02.50000") {
		t.Errorf("row 1 lacks the end timecode: %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], "Opening Theme") {
		t.Errorf("row 1 should carry the track name: %q", lines[1])
	}
}

func TestCutLogSecFormat(t *testing.T) {
	got := writeLog(t, config.FormatSec, false, false)
	if !strings.Contains(got, "start_sec") {
		t.Errorf("header should use the seconds captions:\n%s", got)
	}
	if !strings.Contains(got, "2.50000") {
		t.Errorf("rows should render seconds:\n%s", got)
	}
}

func TestCutLogNoHeader(t *testing.T) {
	got := writeLog(t, config.FormatFrame, false, true)
	if strings.Contains(got, "track_num") {
		t.Errorf("header should be suppressed:\n%s", got)
	}
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("got %d lines, want 2 rows only", len(lines))
	}
}

func TestCutLogCreateFailure(t *testing.T) {
	if _, err := NewCutLog(filepath.Join(t.TempDir(), "no", "such", "dir", "cuts.txt"), 1000, config.FormatTime, false, false); err == nil {
		t.Error("creating the log in a missing directory should fail")
	}
}
