// Package detector implements the streaming track-boundary detector: a
// fixed-latency filter chain (DC correction, one-pole high-pass, windowed
// sum of squares) over a pair of circular frame queues, a thresholded
// signal test, and the four-state segmentation machine that turns the
// per-frame verdicts into track boundaries.
//
// The package is deliberately free of file I/O; it consumes frames from an
// audio.Reader through Source and reports boundaries through the Sink
// interface, which keeps the whole pipeline runnable on synthetic streams.
package detector

import (
	"fmt"
	"math"

	"github.com/linuxmatters/trackcutter/internal/audio"
)

const (
	// rmsWindowMS is the RMS window length in milliseconds.
	rmsWindowMS = 50
	// highPassCornerHz is the -3 dB corner of the one-pole high-pass filter.
	highPassCornerHz = 20.0
)

// Config carries the user-tunable detector settings.
type Config struct {
	MinSilencePeriod int     // ms of silence that delimits tracks
	MinSignalPeriod  int     // ms of signal that starts a track
	MinTrackLength   int     // s below which a track cannot end
	NoiseFloor       float64 // dBFS, negative
	DCOffset         []float64
	HighPass         bool
}

// Params holds the windows and thresholds derived from the stream
// description once the sample rate is known. Immutable after derivation.
type Params struct {
	SampleRate int
	Channels   int

	Window    int // W, the RMS window in frames
	ReadAhead int // W/2, the look-ahead the centre cursor realises

	MinSignalLen  int
	MinSilenceLen int
	MinTrackLen   int64

	Alpha     float64 // one-pole HPF coefficient
	Threshold float64 // x_nf² · W, compared against Σx²

	DCOffset []float64 // per channel, length Channels
	HighPass bool
}

// NewParams derives the runtime parameters for a stream.
func NewParams(sampleRate, channels int, cfg Config) (Params, error) {
	if sampleRate <= 0 {
		return Params{}, fmt.Errorf("sample rate %d is not positive", sampleRate)
	}
	if channels < 1 || channels > audio.MaxChannels {
		return Params{}, fmt.Errorf("channel count %d is outside 1-%d", channels, audio.MaxChannels)
	}
	w := sampleRate * rmsWindowMS / 1000
	if w < 2 {
		return Params{}, fmt.Errorf("sample rate %d is too low for a %dms RMS window", sampleRate, rmsWindowMS)
	}

	tau := 1.0 / (2.0 * math.Pi * highPassCornerHz)
	dt := 1.0 / float64(sampleRate)

	xnf := math.Pow(10, cfg.NoiseFloor/20.0)

	dc := make([]float64, channels)
	copy(dc, cfg.DCOffset)

	return Params{
		SampleRate:    sampleRate,
		Channels:      channels,
		Window:        w,
		ReadAhead:     w / 2,
		MinSignalLen:  sampleRate * cfg.MinSignalPeriod / 1000,
		MinSilenceLen: sampleRate * cfg.MinSilencePeriod / 1000,
		MinTrackLen:   int64(sampleRate) * int64(cfg.MinTrackLength),
		Alpha:         tau / (tau + dt),
		Threshold:     xnf * xnf * float64(w),
		DCOffset:      dc,
		HighPass:      cfg.HighPass,
	}, nil
}

// Detector owns the rings, the filter memory and the running Σx²
// accumulators. All buffers are sized once at construction; the hot path
// allocates nothing.
type Detector struct {
	p Params
	r *rings

	sumSq    []float64 // running Σx² per channel over the window
	prevRej  []float64 // previous HPF rejection residual per channel
	rejTotal []float64 // cumulative rejection, for offline DC estimation

	framesProc int64 // frames pushed through the filter, padding included
}

// New allocates a detector for the given parameters.
func New(p Params) *Detector {
	return &Detector{
		p:        p,
		r:        newRings(p.Window, p.Channels),
		sumSq:    make([]float64, p.Channels),
		prevRej:  make([]float64, p.Channels),
		rejTotal: make([]float64, p.Channels),
	}
}

// Params returns the derived parameters.
func (d *Detector) Params() Params { return d.p }

// PrimeRegion exposes the flat upper half of the main ring,
// [centre, edge), for the startup read. No wrap can occur yet, so the ring
// is treated as a plain array.
func (d *Detector) PrimeRegion() []float64 {
	return d.r.main[d.r.cen:]
}

// Prime filters the frames placed in the prime region (any unread tail of
// it is zero) and positions the cursors for steady state: head on the last
// primed frame, tail at the base, centre W/2 ahead of tail (W-1-W/2
// frames behind head, so it lags the next read position by W/2).
func (d *Detector) Prime() {
	c := d.p.Channels
	for slot := d.r.cen; slot < len(d.r.main); slot += c {
		d.r.head = slot
		d.FilterHead()
	}
	d.r.head = len(d.r.main) - c
	d.r.tail = 0
}

// TailFrame returns the slot holding the oldest frame, which the next
// incoming frame overwrites before Advance turns it into the head.
func (d *Detector) TailFrame() []float64 {
	return d.r.main[d.r.tail : d.r.tail+d.p.Channels]
}

// CentreFrame returns the frame currently under decision.
func (d *Detector) CentreFrame() []float64 {
	return d.r.main[d.r.cen : d.r.cen+d.p.Channels]
}

// Advance steps all three cursors by one frame.
func (d *Detector) Advance() { d.r.advance() }

// FilterHead runs the per-frame filter on the newly admitted head frame:
// evict the outgoing square from Σx², apply the DC offset, update the
// high-pass state (the output replaces the sample only when the filter is
// enabled; otherwise the rejection accumulates for DC estimation), then
// square the result into the sq ring and onto Σx².
func (d *Detector) FilterHead() {
	head := d.r.head
	for ch := 0; ch < d.p.Channels; ch++ {
		d.sumSq[ch] -= d.r.sq[head+ch]
		x := d.r.main[head+ch] + d.p.DCOffset[ch]
		out := d.p.Alpha * (x - d.prevRej[ch])
		rej := x - out
		d.prevRej[ch] = rej
		if d.p.HighPass {
			x = out
		} else {
			d.rejTotal[ch] += rej
		}
		d.r.main[head+ch] = x
		sq := x * x
		d.r.sq[head+ch] = sq
		d.sumSq[ch] += sq
	}
	d.framesProc++
}

// Signal reports whether at least one channel's windowed energy exceeds
// the noise-floor threshold. The comparison works on Σx² directly; the
// square root and division that would form the RMS itself are never
// needed.
func (d *Detector) Signal() bool {
	for ch := 0; ch < d.p.Channels; ch++ {
		if d.sumSq[ch] > d.p.Threshold {
			return true
		}
	}
	return false
}

// RMS returns the current windowed RMS level for one channel.
func (d *Detector) RMS(ch int) float64 {
	return math.Sqrt(d.sumSq[ch] / float64(d.p.Window))
}

// LevelDB returns the loudest channel's RMS in dBFS, clamped to the
// [-60, 0] display range of the level meter.
func (d *Detector) LevelDB() float64 {
	level := math.Inf(-1)
	for ch := 0; ch < d.p.Channels; ch++ {
		if v := LevelDBFS(d.RMS(ch)); v > level {
			level = v
		}
	}
	if level < -60.0 {
		return -60.0
	}
	if level > 0.0 {
		return 0.0
	}
	return level
}

// FramesProcessed returns the number of frames pushed through the filter,
// including priming and EOF padding.
func (d *Detector) FramesProcessed() int64 { return d.framesProc }

// LevelDBFS converts a sample or RMS level to decibels full scale.
// Negative infinity is returned for zero.
func LevelDBFS(x float64) float64 {
	if x == 0 {
		return math.Inf(-1)
	}
	return 20.0 * math.Log10(math.Abs(x))
}
