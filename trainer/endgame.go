package trainer

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"chess-tutor/engine"
	"chess-tutor/rules"
)

// DefenderDepth is how far the engine looks when defending an endgame. It is
// kept shallow so the lessons stay winnable.
const DefenderDepth = 2

const (
	msgNoMoreHints = "No more hints. Keep trying!"
	msgIllegal     = "Illegal move"
	msgStalemate   = "Stalemate! Be careful not to trap the King."
	msgPromoted    = "Pawn promoted! Now finish the checkmate."
	msgGoodMove    = "Good move! Keep going."
	msgLost        = "Checkmated! Try again."
)

// EndgameSession is a practice game from an endgame position. The learner
// plays the side to move; the fallback engine answers for the other side.
type EndgameSession[M comparable] struct {
	endgame Endgame
	board   rules.Board[M]
	learner engine.Side
	depth   int
	hint    int
	moves   int
}

func StartEndgame[M comparable](newBoard rules.Factory[M], e Endgame) (*EndgameSession[M], error) {
	b, err := newBoard(e.FEN)
	if err != nil {
		return nil, fmt.Errorf("endgame %s: %w", e.Name, err)
	}
	if engine.IsTerminal[M](b) {
		return nil, fmt.Errorf("%w: endgame %s is already over", ErrBadLesson, e.Name)
	}
	return &EndgameSession[M]{
		endgame: e,
		board:   b,
		learner: b.Turn(),
		depth:   DefenderDepth,
	}, nil
}

func (s *EndgameSession[M]) Endgame() Endgame { return s.endgame }

func (s *EndgameSession[M]) Board() rules.Board[M] { return s.board }

func (s *EndgameSession[M]) Learner() engine.Side { return s.learner }

// MovesMade counts the learner's moves.
func (s *EndgameSession[M]) MovesMade() int { return s.moves }

// Hint returns the lesson's hints one at a time.
func (s *EndgameSession[M]) Hint() string {
	if s.hint < len(s.endgame.Hints) {
		h := s.endgame.Hints[s.hint]
		s.hint++
		return h
	}
	return msgNoMoreHints
}

// Move plays the learner's move and, unless that ends the lesson, the
// defender's answer. The bool reports whether the lesson is still on track.
func (s *EndgameSession[M]) Move(m M) (bool, string) {
	if s.board.Turn() != s.learner || engine.IsTerminal[M](s.board) {
		return false, s.Progress()
	}
	if !legal(s.board, m) {
		return false, msgIllegal
	}

	promoted := s.board.Promotion(m) != engine.NoPieceType
	s.board.Push(m)
	s.moves++

	if s.board.IsCheckmate() {
		return true, fmt.Sprintf("Checkmate! Completed in %d moves!", s.moves)
	}
	if s.board.IsStalemate() {
		return false, msgStalemate
	}

	s.defend()

	switch {
	case s.board.IsCheckmate():
		return false, msgLost
	case s.board.IsStalemate():
		return false, s.Progress()
	case promoted:
		return true, msgPromoted
	}
	return true, msgGoodMove
}

// Progress describes the state of the lesson.
func (s *EndgameSession[M]) Progress() string {
	switch {
	case s.board.IsCheckmate():
		return "Checkmate!"
	case s.board.IsStalemate():
		return "Stalemate - try again"
	case s.board.IsInsufficientMaterial():
		return "Draw - insufficient material"
	}
	return fmt.Sprintf("Moves: %d | %s", s.moves, s.endgame.Goal)
}

func (s *EndgameSession[M]) defend() {
	res := engine.FindBestMove[M](s.board, s.depth)
	if !res.Found {
		return
	}
	log.Debug().
		Str("endgame", s.endgame.Name).
		Str("move", s.board.UCI(res.Move)).
		Object("stats", res.Stats).
		Msg("defender move")
	s.board.Push(res.Move)
}

func legal[M comparable](b rules.Board[M], m M) bool {
	for _, x := range b.LegalMoves() {
		if x == m {
			return true
		}
	}
	return false
}
