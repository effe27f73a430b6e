package detector

import (
	"fmt"
	"io"

	"github.com/linuxmatters/trackcutter/internal/audio"
)

// ReadStatus reports what a Source delivered for one tick.
type ReadStatus int

const (
	// ReadOK means a decoded frame was delivered.
	ReadOK ReadStatus = iota
	// ReadPad means a zero frame was delivered to drain the look-ahead
	// past end of input.
	ReadPad
	// ReadEnd means the stream and its padding are exhausted; the frame
	// delivered is zero and no further frames follow.
	ReadEnd
)

// Source pulls decoded frames from the codec reader one at a time,
// honouring the requested frame range and zero-padding past EOF for as
// long as the look-ahead window demands.
type Source struct {
	r        audio.Reader
	channels int

	start           int64
	framesRemaining int64
	readAhead       int64
	inEOF           bool

	framesRead int64 // real frames decoded, priming included
}

// NewSource seeks the reader to the start of the requested range. The end
// bound is exclusive; readAhead is the W/2 drain the ring needs past EOF.
func NewSource(r audio.Reader, startFrame, endFrame int64, readAhead int) (*Source, error) {
	if startFrame > 0 {
		if err := r.SeekFrame(startFrame); err != nil {
			return nil, fmt.Errorf("unable to reposition input to frame %d: %w", startFrame, err)
		}
	}
	return &Source{
		r:               r,
		channels:        r.Info().Channels,
		start:           startFrame,
		framesRemaining: endFrame - startFrame,
		readAhead:       int64(readAhead),
	}, nil
}

// StartFrame returns the absolute frame index of the first decision.
func (s *Source) StartFrame() int64 { return s.start }

// FramesRead returns the number of real frames decoded so far.
func (s *Source) FramesRead() int64 { return s.framesRead }

// Prime fills dst with leading frames for the ring's upper half. Frames
// beyond EOF stay zero. framesRemaining is not decremented here; it counts
// decisions, and the primed frames are decided by later ticks.
func (s *Source) Prime(dst []float64) error {
	filled := 0
	for filled < len(dst) {
		n, err := s.r.ReadFrames(dst[filled:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error while reading input: %w", err)
		}
		filled += n * s.channels
		s.framesRead += int64(n)
	}
	return nil
}

// Next delivers the next frame into dst. Past the end of input it keeps
// delivering zero frames until the look-ahead is drained, then reports
// ReadEnd (with dst zeroed) on every subsequent call.
func (s *Source) Next(dst []float64) (ReadStatus, error) {
	if !s.inEOF && s.framesRemaining > 0 {
		s.framesRemaining--
		n, err := s.r.ReadFrames(dst)
		if err != nil && err != io.EOF {
			return ReadEnd, fmt.Errorf("error while reading input: %w", err)
		}
		if n == 0 {
			// End of input: clamp the remaining count to the look-ahead
			// drain and start padding.
			s.inEOF = true
			if s.readAhead < s.framesRemaining {
				s.framesRemaining = s.readAhead
			}
			zero(dst)
			return ReadPad, nil
		}
		s.framesRead++
		return ReadOK, nil
	}

	zero(dst)
	if s.framesRemaining > 0 {
		s.framesRemaining--
		return ReadPad, nil
	}
	return ReadEnd, nil
}

func zero(dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
}
