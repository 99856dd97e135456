package engine

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Option configures a Searcher.
type Option func(*settings)

type settings struct {
	depth  int
	logger zerolog.Logger
}

// WithDepth sets the depth used by BestMove. Values <= 0 are ignored.
func WithDepth(depth int) Option {
	return func(s *settings) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

// WithLogger replaces the global zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// Searcher wraps FindBestMove with a configured depth, logging and an accessor
// for the counters of the most recent call. Searches never share state, so a
// Searcher may be used from several goroutines as long as each one owns its
// position; LastStats then reports whichever call finished last.
type Searcher[M comparable] struct {
	settings

	nodes   atomic.Uint64
	cutoffs atomic.Uint64
	elapsed atomic.Int64
}

func NewSearcher[M comparable](options ...Option) *Searcher[M] {
	s := &Searcher[M]{
		settings: settings{ // Default values
			depth:  DefaultDepth,
			logger: log.Logger,
		},
	}
	for _, option := range options {
		option(&s.settings)
	}
	return s
}

// Depth returns the configured search depth.
func (s *Searcher[M]) Depth() int { return s.depth }

// BestMove searches pos to the configured depth.
func (s *Searcher[M]) BestMove(pos Position[M]) (M, bool) {
	res := s.Search(pos, s.depth)
	return res.Move, res.Found
}

// Search searches pos to the given depth and records the call's counters.
func (s *Searcher[M]) Search(pos Position[M], depth int) Result[M] {
	res := FindBestMove(pos, depth)

	s.nodes.Store(res.Stats.Nodes)
	s.cutoffs.Store(res.Stats.Cutoffs)
	s.elapsed.Store(int64(res.Stats.Elapsed))

	s.logger.Debug().
		Int("depth", depth).
		Bool("found", res.Found).
		Int32("score", int32(res.Score)).
		Object("stats", res.Stats).
		Msg("fallback search finished")
	return res
}

// Nodes returns the evaluation counter of the most recent search.
func (s *Searcher[M]) Nodes() uint64 { return s.nodes.Load() }

// LastStats returns all counters of the most recent search.
func (s *Searcher[M]) LastStats() Stats {
	return Stats{
		Nodes:   s.nodes.Load(),
		Cutoffs: s.cutoffs.Load(),
		Elapsed: time.Duration(s.elapsed.Load()),
	}
}
