package sink

import (
	"fmt"
	"io"
	"os"

	"github.com/linuxmatters/trackcutter/internal/config"
)

// CutLog writes one row per confirmed track: track number, start, end,
// duration and optional name, rendered in the configured cut format. Rows
// are written whole, so output stays line-buffered in effect.
type CutLog struct {
	w       io.Writer
	f       *os.File // nil when writing to standard output
	display string

	format    config.CutFormat
	rate      int
	withNames bool

	num   int
	start int64
	name  string
}

// NewCutLog opens the cut log destination ("-" means standard output) and
// writes the header row unless suppressed.
func NewCutLog(path string, rate int, format config.CutFormat, withNames, noHeader bool) (*CutLog, error) {
	l := &CutLog{
		w:         os.Stdout,
		display:   "<standard output>",
		format:    format,
		rate:      rate,
		withNames: withNames,
	}
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("unable to create cuts file %q: %w", path, err)
		}
		l.f = f
		l.w = f
		l.display = path
	}
	if !noHeader {
		if err := l.writeHeader(); err != nil {
			l.Close()
			return nil, err
		}
	}
	return l, nil
}

func (l *CutLog) writeHeader() error {
	var start, end, duration string
	switch l.format {
	case config.FormatFrame:
		start, end, duration = "start_frame", "end_frame", "duration_frames"
	case config.FormatSec:
		start, end, duration = "start_sec", "end_sec", "duration_secs"
	default:
		start, end, duration = "start_time", "end_time", "duration_time"
	}
	name := ""
	if l.withNames {
		name = "name"
	}
	if _, err := fmt.Fprintf(l.w, "track_num   %-16s%-16s%-20s%s\n", start, end, duration, name); err != nil {
		return fmt.Errorf("unable to write header to cuts file %q: %w", l.display, err)
	}
	return nil
}

// BeginTrack records the confirmed track; the row is emitted once the end
// boundary is known.
func (l *CutLog) BeginTrack(num int, start int64, name string, _ []float64) error {
	l.num = num
	l.start = start
	l.name = name
	return nil
}

// WriteFrame is a no-op; the cut log carries no audio.
func (l *CutLog) WriteFrame(_ []float64) error { return nil }

// EndTrack emits the row for the track opened by BeginTrack.
func (l *CutLog) EndTrack(end int64) error {
	duration := end - l.start
	_, err := fmt.Fprintf(l.w, "%10d  %14s  %14s  %18s  %s\n",
		l.num,
		FormatIndex(l.start, l.rate, l.format),
		FormatIndex(end, l.rate, l.format),
		FormatIndex(duration, l.rate, l.format),
		l.name)
	if err != nil {
		return fmt.Errorf("unable to write entry to cuts file %q: %w", l.display, err)
	}
	return nil
}

// NeedsAudio reports that the cut log consumes no sample data.
func (l *CutLog) NeedsAudio() bool { return false }

// Close closes the destination file; standard output is left alone.
func (l *CutLog) Close() error {
	if l.f != nil {
		return l.f.Close()
	}
	return nil
}
