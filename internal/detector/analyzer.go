package detector

import "math"

// Analyzer accumulates the whole-stream statistics reported by analysis
// mode: per-channel peaks, windowed-RMS extrema and averages, and the DC
// offset estimated from the high-pass rejection residual.
type Analyzer struct {
	p Params

	minRMS   []float64
	maxRMS   []float64
	rmsTotal []float64
	posPeak  []float64
	negPeak  []float64
}

// NewAnalyzer allocates the accumulators.
func NewAnalyzer(p Params) *Analyzer {
	a := &Analyzer{
		p:        p,
		minRMS:   make([]float64, p.Channels),
		maxRMS:   make([]float64, p.Channels),
		rmsTotal: make([]float64, p.Channels),
		posPeak:  make([]float64, p.Channels),
		negPeak:  make([]float64, p.Channels),
	}
	for c := 0; c < p.Channels; c++ {
		a.minRMS[c] = math.Inf(1)
		a.posPeak[c] = math.Inf(-1)
		a.negPeak[c] = math.Inf(1)
	}
	return a
}

// Observe samples the detector state for the current centre frame.
func (a *Analyzer) Observe(d *Detector) {
	centre := d.CentreFrame()
	for c := 0; c < a.p.Channels; c++ {
		rms := d.RMS(c)
		a.rmsTotal[c] += rms
		a.minRMS[c] = math.Min(a.minRMS[c], rms)
		a.maxRMS[c] = math.Max(a.maxRMS[c], rms)
		a.posPeak[c] = math.Max(a.posPeak[c], centre[c])
		a.negPeak[c] = math.Min(a.negPeak[c], centre[c])
	}
}

// Stats is the finished analysis, one value per channel in each slice.
type Stats struct {
	Channels int

	PosPeak  []float64
	NegPeak  []float64
	PeakDBFS []float64

	MinRMS     []float64
	MaxRMS     []float64
	AvgRMS     []float64
	MinRMSDBFS []float64
	MaxRMSDBFS []float64
	AvgRMSDBFS []float64

	DCOffset     []float64
	DCOffsetDBFS []float64
}

// Results finalises the statistics. framesRead is the count of real frames
// decoded (the DC estimate divides by it); the RMS average divides by the
// number of frames filtered, padding included.
func (a *Analyzer) Results(d *Detector, framesRead int64) Stats {
	n := a.p.Channels
	s := Stats{
		Channels:     n,
		PosPeak:      a.posPeak,
		NegPeak:      a.negPeak,
		PeakDBFS:     make([]float64, n),
		MinRMS:       a.minRMS,
		MaxRMS:       a.maxRMS,
		AvgRMS:       make([]float64, n),
		MinRMSDBFS:   make([]float64, n),
		MaxRMSDBFS:   make([]float64, n),
		AvgRMSDBFS:   make([]float64, n),
		DCOffset:     make([]float64, n),
		DCOffsetDBFS: make([]float64, n),
	}
	for c := 0; c < n; c++ {
		s.AvgRMS[c] = a.rmsTotal[c] / float64(d.FramesProcessed())
		s.PeakDBFS[c] = math.Max(LevelDBFS(a.posPeak[c]), LevelDBFS(a.negPeak[c]))
		s.MinRMSDBFS[c] = LevelDBFS(a.minRMS[c])
		s.MaxRMSDBFS[c] = LevelDBFS(a.maxRMS[c])
		s.AvgRMSDBFS[c] = LevelDBFS(s.AvgRMS[c])
		if framesRead > 0 {
			s.DCOffset[c] = d.rejTotal[c] / float64(framesRead)
		}
		s.DCOffsetDBFS[c] = LevelDBFS(s.DCOffset[c])
	}
	return s
}
