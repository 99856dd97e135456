// Package player picks moves for the computer side of a game. A primary
// engine (normally an external UCI process) is used when one is attached;
// otherwise, or when it fails, the built-in fallback search plays instead.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"chess-tutor/engine"
	"chess-tutor/rules"
)

// easyCaptureChance is how often Easy prefers a random capture when one is
// available.
const easyCaptureChance = 0.3

// Engine is a strong move source, typically an external UCI process.
type Engine[M comparable] interface {
	BestMove(ctx context.Context, b rules.Board[M], limits Limits) (M, error)
}

// Option configures an Opponent.
type Option func(*settings)

type settings struct {
	depth  int
	seed   uint64
	logger zerolog.Logger
}

// WithDepth sets the fallback search depth.
func WithDepth(depth int) Option {
	return func(s *settings) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

// WithSeed makes Easy mode reproducible.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// Opponent plays one side of a game. It is safe for concurrent use, but each
// call must own the board it is given.
type Opponent[M comparable] struct {
	mu         sync.Mutex
	difficulty Difficulty
	primary    Engine[M]
	search     *engine.Searcher[M]
	rng        *rand.Rand
	logger     zerolog.Logger
}

// NewOpponent returns an opponent at difficulty d. primary may be nil, in
// which case every non-Easy move comes from the fallback search.
func NewOpponent[M comparable](d Difficulty, primary Engine[M], options ...Option) *Opponent[M] {
	s := settings{
		depth:  engine.DefaultDepth,
		seed:   uint64(time.Now().UnixNano()),
		logger: log.Logger,
	}
	for _, option := range options {
		option(&s)
	}
	return &Opponent[M]{
		difficulty: d,
		primary:    primary,
		search:     engine.NewSearcher[M](engine.WithDepth(s.depth), engine.WithLogger(s.logger)),
		rng:        rand.New(rand.NewSource(s.seed)),
		logger:     s.logger,
	}
}

func (o *Opponent[M]) Difficulty() Difficulty {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.difficulty
}

func (o *Opponent[M]) SetDifficulty(d Difficulty) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.difficulty = d
}

// HasEngine reports whether a primary engine is attached.
func (o *Opponent[M]) HasEngine() bool { return o.primary != nil }

// Searcher exposes the fallback search, mainly for its node counters.
func (o *Opponent[M]) Searcher() *engine.Searcher[M] { return o.search }

// Move picks a move for the side to move on b. It returns false only when b
// has no legal moves. b is left as it was found.
func (o *Opponent[M]) Move(ctx context.Context, b rules.Board[M]) (M, bool) {
	var none M
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return none, false
	}

	d := o.Difficulty()
	if d == Easy {
		return o.easyMove(b, moves), true
	}

	if o.primary != nil {
		m, err := o.primary.BestMove(ctx, b, d.Limits())
		if err == nil && !contains(moves, m) {
			err = fmt.Errorf("%w: %s", rules.ErrIllegalMove, b.UCI(m))
		}
		if err == nil {
			return m, true
		}
		o.logger.Warn().
			Err(err).
			Stringer("difficulty", d).
			Str("fen", b.FEN()).
			Msg("primary engine failed, using fallback search")
	}

	return o.search.BestMove(b)
}

func (o *Opponent[M]) easyMove(b rules.Board[M], moves []M) M {
	var captures []M
	for _, m := range moves {
		if b.IsCapture(m) {
			captures = append(captures, m)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if len(captures) > 0 && o.rng.Float64() < easyCaptureChance {
		return captures[o.rng.Intn(len(captures))]
	}
	return moves[o.rng.Intn(len(moves))]
}

func contains[M comparable](moves []M, m M) bool {
	for _, x := range moves {
		if x == m {
			return true
		}
	}
	return false
}
