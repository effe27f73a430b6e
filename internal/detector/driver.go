package detector

import (
	"context"

	"github.com/charmbracelet/log"
)

// progressInterval is how many frames pass between progress callbacks.
const progressInterval = 4096

// Progress is a periodic position report for the UI.
type Progress struct {
	Frame   int64
	LevelDB float64
}

// Driver runs the outer loop: admit a frame at the head, filter it, decide
// the centre frame, and hand boundaries to the sink. Exactly one of seg
// (cut mode) or ana (analysis mode) is set.
type Driver struct {
	Src *Source
	Det *Detector
	Seg *Segmenter
	Ana *Analyzer

	// TrackNumEnd stops the run once the current track number exceeds it.
	TrackNumEnd int

	// OnProgress, when set, receives a position report every
	// progressInterval frames.
	OnProgress func(Progress)
}

// Run executes the pipeline until end of input, the end of the requested
// track range, or cancellation. Cancellation and EOF both force a clean
// end-of-track so every begun track is ended.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Src.Prime(d.Det.PrimeRegion()); err != nil {
		return err
	}
	d.Det.Prime()
	log.Debug("primed pipeline",
		"window", d.Det.Params().Window,
		"read_ahead", d.Det.Params().ReadAhead,
		"alpha", d.Det.Params().Alpha,
		"threshold", d.Det.Params().Threshold)

	pos := d.Src.StartFrame()
	drained := false
	for {
		if d.Seg != nil {
			if err := d.Seg.Tick(d.Det.Signal(), d.Det.CentreFrame(), pos); err != nil {
				return err
			}
		}
		if d.Ana != nil {
			d.Ana.Observe(d.Det)
		}

		st, err := d.Src.Next(d.Det.TailFrame())
		if err != nil {
			return err
		}
		pos++
		d.Det.Advance()
		d.Det.FilterHead()

		if st == ReadEnd {
			drained = true
			log.Debug("end of input reached", "frame", pos)
			break
		}
		if d.Seg != nil && d.Seg.TrackNum() > d.TrackNumEnd {
			log.Debug("no more tracks remaining")
			break
		}
		if err := ctx.Err(); err != nil {
			drained = true
			log.Debug("cancelled", "frame", pos)
			break
		}

		if d.OnProgress != nil && pos%progressInterval == 0 {
			d.OnProgress(Progress{Frame: pos, LevelDB: d.Det.LevelDB()})
		}
	}

	if drained && d.Seg != nil {
		if err := d.Seg.Finish(pos); err != nil {
			return err
		}
	}
	return ctx.Err()
}
