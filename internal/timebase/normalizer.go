// Package timebase re-bases raw source timestamps against a stream origin.
//
// The origin is fixed from the first timestamp observed. A raw timestamp
// lower than the previously observed one signals a counter reset in the
// source log; the origin is re-fixed at the offending timestamp and elapsed
// time restarts at zero. With multiple resets in one stream the output
// therefore restarts at zero more than once. That matches the source corpus
// and downstream tooling depends on it; consumers that need monotonic time
// must handle the restarts.
package timebase

// Normalizer holds the per-run time origin state. One Normalizer serves
// exactly one adapter run and is discarded afterward.
type Normalizer struct {
	origin  int64
	lastRaw int64
	started bool
	resets  int
}

// Normalize converts a raw (already scaled) timestamp into elapsed time
// since the origin.
//
// The first call fixes the origin and returns 0. A raw value below the
// previously observed one resets the origin and returns 0. Every call
// records the raw value as the new high-water mark for backward-jump
// detection.
func (n *Normalizer) Normalize(raw int64) int64 {
	if !n.started {
		n.started = true
		n.origin = raw
		n.lastRaw = raw
		return 0
	}

	if raw < n.lastRaw {
		n.resets++
		n.origin = raw
		n.lastRaw = raw
		return 0
	}

	n.lastRaw = raw
	return raw - n.origin
}

// Started reports whether the origin has been fixed.
func (n *Normalizer) Started() bool {
	return n.started
}

// Resets returns how many backward jumps re-fixed the origin.
func (n *Normalizer) Resets() int {
	return n.resets
}
