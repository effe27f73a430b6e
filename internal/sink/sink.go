// Package sink implements the two destinations for confirmed tracks: a
// plain-text cut log and per-track audio extraction. Both satisfy the
// detector's Sink interface; the driver is generic over which one is
// wired in. The track-names side channel lives here too.
package sink
