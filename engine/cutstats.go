package engine

import (
	"time"

	"github.com/rs/zerolog"
)

// Stats collects per-call search counters. They are diagnostics only and never
// influence the chosen move.
type Stats struct {
	// Nodes counts every call of the recursive search, leaves included and the
	// root excluded.
	Nodes uint64
	// Cutoffs counts sibling lists abandoned because beta <= alpha.
	Cutoffs uint64
	Elapsed time.Duration
}

// MarshalZerologObject lets a Stats value be logged with Object().
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("nodes", s.Nodes).
		Uint64("cutoffs", s.Cutoffs).
		Dur("elapsed", s.Elapsed)
}

// NodesPerSecond reports the search speed, or zero when no time was measured.
func (s Stats) NodesPerSecond() uint64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return uint64(float64(s.Nodes) / s.Elapsed.Seconds())
}
