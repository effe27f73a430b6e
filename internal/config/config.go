// Package config holds the immutable run configuration assembled from the
// tuning defaults, an optional TOML config file, and the command line.
package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/linuxmatters/trackcutter/internal/audio"
)

// Mode selects the main task.
type Mode int

const (
	ModeCut Mode = iota
	ModeAnalyse
)

// Action selects what happens at each confirmed track in cut mode.
type Action int

const (
	ActionCutLog Action = iota
	ActionExtract
)

// CutFormat selects how cut points are rendered in the cuts file.
type CutFormat int

const (
	FormatTime CutFormat = iota // h:mm:ss.sssss (default)
	FormatFrame                 // absolute frame index
	FormatSec                   // absolute seconds
)

// Options is the full run configuration. It is immutable after startup;
// the detector and sinks receive values from it, never the struct itself
// mutably.
type Options struct {
	Mode      Mode
	Action    Action
	CutFormat CutFormat

	InputPath  string // "-" reads audio from standard input
	CutsPath   string // "-" writes the cut log to standard output
	ExtractDir string
	NamesPath  string // "" means no track-names side channel

	OutputFormat string // container extension; "" reuses the input container

	MinSilencePeriod int     // ms
	MinSignalPeriod  int     // ms
	MinTrackLength   int     // s
	NoiseFloor       float64 // dBFS, negative

	TimeRangeGiven       bool
	StartTime, EndTime   float64 // s; EndTime may be +Inf
	StartFrame, EndFrame int64   // EndFrame may be math.MaxInt64

	TrackNumStart, TrackNumEnd int

	Raw      *audio.RawParams // non-nil for headerless input
	DCOffset []float64        // len audio.MaxChannels
	HighPass bool

	NoHeader bool
	Verbose  bool
	NoUI     bool
}

// Validate checks the cross-field constraints that the flag parsers cannot
// see on their own.
func (o *Options) Validate() error {
	if o.InputPath == "" {
		return fmt.Errorf("no input file was specified")
	}
	if o.InputPath == "-" && o.NamesPath == "-" {
		return fmt.Errorf("can't read both audio data and track names from standard input")
	}
	if o.NoiseFloor >= 0 {
		return fmt.Errorf("noise floor must be a negative real number")
	}
	if o.MinSilencePeriod <= 0 || o.MinSignalPeriod <= 0 || o.MinTrackLength <= 0 {
		return fmt.Errorf("detector periods must be positive")
	}
	if o.TrackNumStart < 1 || o.TrackNumEnd < o.TrackNumStart {
		return fmt.Errorf("track range %d-%d is not ascending from 1", o.TrackNumStart, o.TrackNumEnd)
	}
	if o.OutputFormat != "" {
		if _, err := audio.WritableContainer(o.OutputFormat); err != nil {
			return err
		}
	}
	if o.Raw != nil {
		if err := o.Raw.Validate(); err != nil {
			return err
		}
	}
	for c, v := range o.DCOffset {
		if v < -1.0 || v > 1.0 {
			return fmt.Errorf("DC offset %f for channel %d is outside [-1.0, +1.0]", v, c)
		}
	}
	return nil
}

// FrameRange resolves the requested processing window to frame indices,
// converting a time range now that the sample rate is known.
func (o *Options) FrameRange(sampleRate int) (start, end int64) {
	if !o.TimeRangeGiven {
		return o.StartFrame, o.EndFrame
	}
	start = int64(o.StartTime * float64(sampleRate))
	end = maxFrame
	if !isInf(o.EndTime) {
		end = int64(o.EndTime * float64(sampleRate))
	}
	return start, end
}

// Tuning carries the detector parameters that may come from the config
// file. CLI flags override each field individually.
type Tuning struct {
	MinSilencePeriod int     `koanf:"min_silence_period"`
	MinSignalPeriod  int     `koanf:"min_signal_period"`
	MinTrackLength   int     `koanf:"min_track_length"`
	NoiseFloor       float64 `koanf:"noise_floor"`
	HighPass         bool    `koanf:"high_pass"`
}

// defaultTuning mirrors the built-in defaults: 2 s silence, 100 ms signal,
// 40 s minimum track, -48 dBFS noise floor.
var defaultTuning = []byte(`
min_silence_period = 2000
min_signal_period = 100
min_track_length = 40
noise_floor = -48.0
high_pass = false
`)

// LoadTuning layers the optional config file over the built-in defaults.
func LoadTuning(path string) (Tuning, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaultTuning), toml.Parser()); err != nil {
		return Tuning{}, fmt.Errorf("failed to load built-in defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Tuning{}, fmt.Errorf("failed to load config file %q: %w", path, err)
		}
	}
	var t Tuning
	if err := k.Unmarshal("", &t); err != nil {
		return Tuning{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return t, nil
}
