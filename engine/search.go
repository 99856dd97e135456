package engine

import (
	"time"
)

// DefaultDepth is the ply depth used when the fallback engine plays on its
// own. It is deliberately shallow: the search is a stand-in for a real engine.
const DefaultDepth = 3

// Result is the outcome of one top-level search call.
type Result[M comparable] struct {
	Move M
	// Found is false when no move was selected: the root had no legal moves
	// or the depth was <= 0.
	Found bool
	// Score is the minimax value of the root, or its static evaluation when
	// no search was performed.
	Score Score
	Stats Stats
}

// search holds the state of one call. Nothing outlives the call, so separate
// positions can be searched from separate goroutines.
type search[M comparable] struct {
	pos   Position[M]
	stats Stats
}

// FindBestMove runs a fixed-depth alpha-beta minimax from pos and returns the
// move with the best value for the side to move. pos is mutated during the
// search and restored before FindBestMove returns.
func FindBestMove[M comparable](pos Position[M], depth int) Result[M] {
	start := time.Now()
	s := &search[M]{pos: pos}
	res := s.root(depth)
	res.Stats = s.stats
	res.Stats.Elapsed = time.Since(start)
	return res
}

func (s *search[M]) root(depth int) Result[M] {
	var res Result[M]
	if depth <= 0 {
		res.Score = Evaluate(s.pos)
		return res
	}

	moves := s.pos.LegalMoves()
	if len(moves) == 0 {
		res.Score = Evaluate(s.pos)
		return res
	}
	moves = orderRootMoves(s.pos, moves)

	maximizing := s.pos.Turn() == White
	best := Infinity
	if maximizing {
		best = -Infinity
	}

	// Seed with the first move so a lost position still returns a move.
	res.Move, res.Found = moves[0], true
	for _, m := range moves {
		value := play(s.pos, m, func() Score {
			return s.alphabeta(depth-1, -Infinity, Infinity)
		})
		if (maximizing && value > best) || (!maximizing && value < best) {
			best = value
			res.Move = m
		}
	}
	res.Score = best
	return res
}

// alphabeta is plain minimax with alpha-beta cutoffs. White maximizes and
// Black minimizes; the side is read from the position so it can never drift
// from the board.
func (s *search[M]) alphabeta(depth int, alpha, beta Score) Score {
	s.stats.Nodes++

	if depth <= 0 || IsTerminal(s.pos) {
		return Evaluate(s.pos)
	}

	moves := s.pos.LegalMoves()
	if s.pos.Turn() == White {
		value := -Infinity
		for _, m := range moves {
			score := play(s.pos, m, func() Score {
				return s.alphabeta(depth-1, alpha, beta)
			})
			value = maxScore(value, score)
			alpha = maxScore(alpha, score)
			if beta <= alpha {
				s.stats.Cutoffs++
				break
			}
		}
		return value
	}

	value := Infinity
	for _, m := range moves {
		score := play(s.pos, m, func() Score {
			return s.alphabeta(depth-1, alpha, beta)
		})
		value = minScore(value, score)
		beta = minScore(beta, score)
		if beta <= alpha {
			s.stats.Cutoffs++
			break
		}
	}
	return value
}
