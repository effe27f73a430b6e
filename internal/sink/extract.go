package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/linuxmatters/trackcutter/internal/audio"
)

// Extract writes each confirmed track to its own audio file in the target
// directory, named after the track-names side channel when an entry is
// available and zero-padded from the track number otherwise.
type Extract struct {
	dir       string
	container string
	info      audio.Info

	w    audio.Writer
	path string
}

// NewExtract validates the target directory and fixes the output
// container: the configured one, or the input's when none was given, with
// read-only input containers falling back to WAV.
func NewExtract(dir, container string, info audio.Info) (*Extract, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to use track directory %q: %w", dir, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("track directory %q is not a directory", dir)
	}
	if container == "" {
		container = info.Container
		if c, ok := audio.ContainerByExt(container); !ok || !c.CanWrite {
			container = "wav"
		}
	}
	if _, err := audio.WritableContainer(container); err != nil {
		return nil, err
	}
	return &Extract{dir: dir, container: container, info: info}, nil
}

// BeginTrack opens the per-track writer and flushes the lead-in.
func (e *Extract) BeginTrack(num int, start int64, name string, leadIn []float64) error {
	e.path = filepath.Join(e.dir, trackFileName(name, num, e.container))
	w, err := audio.NewWriter(e.path, e.container, e.info)
	if err != nil {
		return fmt.Errorf("unable to create new track file %q: %w", e.path, err)
	}
	e.w = w
	log.Debug("creating track file", "path", e.path, "start", start, "timecode", Timecode(start, e.info.SampleRate))
	if len(leadIn) > 0 {
		if err := e.w.WriteFrames(leadIn); err != nil {
			return fmt.Errorf("unable to write to track file %q: %w", e.path, err)
		}
	}
	return nil
}

// WriteFrame appends one committed centre frame to the open track file.
func (e *Extract) WriteFrame(frame []float64) error {
	if err := e.w.WriteFrames(frame); err != nil {
		return fmt.Errorf("unable to write to track file %q: %w", e.path, err)
	}
	return nil
}

// EndTrack closes the current track file.
func (e *Extract) EndTrack(end int64) error {
	log.Debug("completed track file", "path", e.path, "end", end, "timecode", Timecode(end, e.info.SampleRate))
	err := e.w.Close()
	e.w = nil
	if err != nil {
		return fmt.Errorf("unable to finalise track file %q: %w", e.path, err)
	}
	return nil
}

// NeedsAudio reports that extraction consumes sample data.
func (e *Extract) NeedsAudio() bool { return true }

// Close releases a writer left open by an aborted run.
func (e *Extract) Close() error {
	if e.w != nil {
		err := e.w.Close()
		e.w = nil
		return err
	}
	return nil
}

// trackFileName derives the output file name. Path separators in supplied
// names are flattened so a names file cannot escape the track directory.
func trackFileName(name string, num int, ext string) string {
	if name != "" {
		name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
		name = strings.ReplaceAll(name, "/", "_")
		return name + "." + ext
	}
	return fmt.Sprintf("%08d.%s", num, ext)
}
