package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/linuxmatters/trackcutter/internal/audio"
)

// maxFrame stands in for "end of recording" when no end bound was given.
const maxFrame = math.MaxInt64

func isInf(v float64) bool { return math.IsInf(v, 1) }

// ParseTimecode parses a timecode of the form SS.SSS, MM:SS.SSS or
// HH:MM:SS.SSS into absolute seconds. Minutes and seconds may exceed 59 and
// carry over. An empty or all-whitespace string yields dfl.
func ParseTimecode(s string, dfl float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return dfl, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("timecode %q is malformed", s)
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64)
	if err != nil {
		return 0, fmt.Errorf("timecode %q is malformed", s)
	}
	scale := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0, fmt.Errorf("timecode %q is malformed", s)
		}
		sec += float64(n) * scale
		scale *= 60.0
	}
	return sec, nil
}

// ParseTimeRange parses "START-END" where either timecode may be omitted;
// a missing start means the beginning of the recording and a missing end
// means its end (+Inf).
func ParseTimeRange(arg string) (start, end float64, err error) {
	lo, hi, err := splitRange(arg, "time range")
	if err != nil {
		return 0, 0, err
	}
	if start, err = ParseTimecode(lo, 0); err != nil {
		return 0, 0, err
	}
	if end, err = ParseTimecode(hi, math.Inf(1)); err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("time range %q has end point before start", arg)
	}
	return start, end, nil
}

// ParseFrameRange parses "START-END" as frame indices with the same
// omission rules as ParseTimeRange.
func ParseFrameRange(arg string) (start, end int64, err error) {
	lo, hi, err := splitRange(arg, "frame range")
	if err != nil {
		return 0, 0, err
	}
	if start, err = parseBoundary(lo, 0); err != nil {
		return 0, 0, err
	}
	if end, err = parseBoundary(hi, maxFrame); err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("frame range %q has end point before start", arg)
	}
	return start, end, nil
}

// ParseTrackRange parses "A-B"; a missing A means track 1 and a missing B
// means processing continues until end of input.
func ParseTrackRange(arg string) (first, last int, err error) {
	lo, hi, err := splitRange(arg, "track range")
	if err != nil {
		return 0, 0, err
	}
	a, err := parseBoundary(lo, 1)
	if err != nil {
		return 0, 0, err
	}
	b, err := parseBoundary(hi, math.MaxInt32)
	if err != nil {
		return 0, 0, err
	}
	if a < 1 || b < a {
		return 0, 0, fmt.Errorf("track range %q is not ascending from 1", arg)
	}
	return int(a), int(b), nil
}

// ParseDCOffsets parses a comma-separated per-channel offset list into a
// slice of audio.MaxChannels entries; unspecified channels stay zero.
func ParseDCOffsets(arg string) ([]float64, error) {
	offsets := make([]float64, audio.MaxChannels)
	if strings.TrimSpace(arg) == "" {
		return offsets, nil
	}
	fields := strings.Split(arg, ",")
	if len(fields) > audio.MaxChannels {
		return nil, fmt.Errorf("at most %d DC offsets may be given", audio.MaxChannels)
	}
	for c, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("DC offset value %q is non-numeric", f)
		}
		if v < -1.0 || v > 1.0 {
			return nil, fmt.Errorf("DC offset value %f is outside [-1.0, +1.0]", v)
		}
		offsets[c] = v
	}
	return offsets, nil
}

// splitRange splits a "LO-HI" argument on its single hyphen.
func splitRange(arg, what string) (lo, hi string, err error) {
	i := strings.Index(arg, "-")
	if i < 0 || i != strings.LastIndex(arg, "-") {
		return "", "", fmt.Errorf("%s %q must be two bounds separated by a hyphen", what, arg)
	}
	return arg[:i], arg[i+1:], nil
}

// parseBoundary parses a non-negative integer bound, defaulting when the
// string is empty or whitespace.
func parseBoundary(s string, dfl int64) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return dfl, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("boundary %q is malformed", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("boundary %q must not be negative", s)
	}
	return n, nil
}
