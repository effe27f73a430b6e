package detector

import (
	"github.com/charmbracelet/log"
)

// State is the segmentation machine's position between tracks.
type State int

const (
	// StateSilence: inside a passage of prolonged silence between tracks.
	StateSilence State = iota
	// StateTrackStarting: signal appeared; deciding whether it is a track.
	StateTrackStarting
	// StateTrack: inside a track.
	StateTrack
	// StateTrackEnding: silence appeared; deciding whether the track ended.
	StateTrackEnding
)

// Sink consumes confirmed track boundaries. Sinks that carry audio (the
// extraction path) additionally receive the lead-in flush and every
// committed centre frame; the cut-log sink reports false from NeedsAudio
// and never sees sample data.
type Sink interface {
	// BeginTrack opens a track. leadIn holds the interleaved frames
	// captured while the onset was tentative; it is nil when NeedsAudio
	// is false.
	BeginTrack(num int, start int64, name string, leadIn []float64) error
	// WriteFrame delivers one committed centre frame while in a track.
	WriteFrame(frame []float64) error
	// EndTrack closes the track at the given end frame.
	EndTrack(end int64) error
	// NeedsAudio reports whether the sink consumes sample data.
	NeedsAudio() bool
}

// TrackEvent notifies an observer (the progress UI) of boundary decisions.
type TrackEvent struct {
	Num        int
	Start, End int64
	Name       string
	Done       bool
}

// Segmenter is the four-state detector consuming the centre-frame verdict
// each tick and driving the sink with hysteresis on both edges.
type Segmenter struct {
	p    Params
	sink Sink

	// nextName pulls the next entry from the track-names side channel;
	// it returns "" once the channel is exhausted.
	nextName func() (string, error)
	notify   func(TrackEvent)

	state      State
	ttl        int
	trackNum   int
	trackStart int64
	name       string

	leadin []float64 // nil when the sink does not consume audio
}

// NewSegmenter builds a segmenter starting at the given track number.
// names may be nil when no side channel is configured.
func NewSegmenter(p Params, sink Sink, startNum int, names func() (string, error)) *Segmenter {
	g := &Segmenter{
		p:        p,
		sink:     sink,
		nextName: names,
		state:    StateSilence,
		trackNum: startNum,
	}
	if sink.NeedsAudio() {
		g.leadin = make([]float64, 0, p.MinSignalLen*p.Channels)
	}
	return g
}

// SetNotify installs an observer for track boundary events.
func (g *Segmenter) SetNotify(fn func(TrackEvent)) { g.notify = fn }

// State returns the current segmentation state.
func (g *Segmenter) State() State { return g.state }

// TrackNum returns the number the next confirmed track will carry (or the
// current track's number while inside one).
func (g *Segmenter) TrackNum() int { return g.trackNum }

// Tick evaluates the centre frame at absolute index pos with signal
// verdict sig.
func (g *Segmenter) Tick(sig bool, centre []float64, pos int64) error {
	switch g.state {
	case StateSilence:
		if sig {
			g.state = StateTrackStarting
			g.ttl = g.p.MinSignalLen - 1
			g.trackStart = pos
			g.leadinAdd(centre)
		}

	case StateTrackStarting:
		switch {
		case !sig:
			// A transient, not a track.
			g.leadin = g.leadin[:0]
			g.state = StateSilence
			log.Debug("false positive",
				"frames", pos-g.trackStart,
				"ms", (pos-g.trackStart)*1000/int64(g.p.SampleRate),
				"start", g.trackStart, "end", pos)
		case g.ttl > 0:
			g.leadinAdd(centre)
			g.ttl--
		default:
			// The track is confirmed.
			g.state = StateTrack
			if g.nextName != nil {
				name, err := g.nextName()
				if err != nil {
					return err
				}
				g.name = name
			}
			var lead []float64
			if g.leadin != nil {
				lead = g.leadin
			}
			if err := g.sink.BeginTrack(g.trackNum, g.trackStart, g.name, lead); err != nil {
				return err
			}
			if g.leadin != nil {
				g.leadin = g.leadin[:0]
			}
			g.event(TrackEvent{Num: g.trackNum, Start: g.trackStart, Name: g.name})
			return g.commit(centre)
		}

	case StateTrack:
		if err := g.commit(centre); err != nil {
			return err
		}
		if !sig && pos >= g.trackStart+g.p.MinTrackLen {
			g.state = StateTrackEnding
			g.ttl = g.p.MinSilenceLen
		}

	case StateTrackEnding:
		if err := g.commit(centre); err != nil {
			return err
		}
		switch {
		case sig:
			// The silence was interior; the track continues.
			g.state = StateTrack
		case g.ttl > 0:
			g.ttl--
		default:
			if err := g.endTrack(pos); err != nil {
				return err
			}
			g.state = StateSilence
		}
	}
	return nil
}

// Finish forces the conclusion of an in-flight track, preserving the
// begin/end pairing when input ends mid-track.
func (g *Segmenter) Finish(pos int64) error {
	if g.state == StateTrack || g.state == StateTrackEnding {
		if err := g.endTrack(pos); err != nil {
			return err
		}
		g.state = StateSilence
	}
	return nil
}

func (g *Segmenter) endTrack(pos int64) error {
	if err := g.sink.EndTrack(pos); err != nil {
		return err
	}
	g.event(TrackEvent{Num: g.trackNum, Start: g.trackStart, End: pos, Name: g.name, Done: true})
	g.trackNum++
	g.name = ""
	return nil
}

func (g *Segmenter) commit(frame []float64) error {
	if !g.sink.NeedsAudio() {
		return nil
	}
	return g.sink.WriteFrame(frame)
}

func (g *Segmenter) leadinAdd(frame []float64) {
	if g.leadin == nil {
		return
	}
	if len(g.leadin)+len(frame) > cap(g.leadin) {
		log.Warn("lead-in buffer is overflowing; dropping frames")
		return
	}
	g.leadin = append(g.leadin, frame...)
}

func (g *Segmenter) event(ev TrackEvent) {
	if g.notify != nil {
		g.notify(ev)
	}
}
