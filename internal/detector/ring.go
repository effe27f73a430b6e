package detector

// rings holds the two parallel circular queues: main carries the filtered
// sample frames and sq their element-wise squares. One set of cursors
// serves both since the buffers share geometry. Cursors are sample offsets
// (always multiples of the channel count) into a flat buffer of
// window*channels samples; advancing wraps them modulo the buffer length,
// per the index-based layout.
type rings struct {
	main []float64
	sq   []float64

	head int // newest admitted frame
	tail int // oldest frame, about to be evicted
	cen  int // frame under decision, window/2 ahead of tail

	channels int
}

func newRings(window, channels int) *rings {
	n := window * channels
	return &rings{
		main:     make([]float64, n),
		sq:       make([]float64, n),
		cen:      (window / 2) * channels,
		channels: channels,
	}
}

// advance steps the cursors by one frame: the slot just written at the old
// tail becomes the head, and tail and centre move forward, wrapping at the
// edge.
func (r *rings) advance() {
	r.head = r.tail
	r.tail += r.channels
	r.cen += r.channels
	if r.tail >= len(r.main) {
		r.tail = 0
	}
	if r.cen >= len(r.main) {
		r.cen = 0
	}
}
