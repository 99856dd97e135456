package trainer

import (
	"fmt"

	"chess-tutor/engine"
	"chess-tutor/rules"
)

const (
	msgOpeningOver = "Opening complete! You can continue playing freely."
	msgOpeningNext = "Correct! Keep going..."
)

// detectPlies is how much of a game Detect looks at.
const detectPlies = 20

// OpeningSession drills one opening line with the learner playing one side.
type OpeningSession[M comparable] struct {
	opening Opening
	side    engine.Side
	board   rules.Board[M]
	next    int
}

// StartOpening sets up the initial position. When the learner plays Black,
// White's first move of the line is made for them.
func StartOpening[M comparable](newBoard rules.Factory[M], o Opening, side engine.Side) (*OpeningSession[M], error) {
	if len(o.Moves) == 0 {
		return nil, fmt.Errorf("%w: opening %s has no moves", ErrBadLesson, o.Name)
	}
	b, err := newBoard(rules.StartFEN)
	if err != nil {
		return nil, err
	}
	if err := replays(b, o.Moves); err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrBadLesson, o.Name, err)
	}
	s := &OpeningSession[M]{opening: o, side: side, board: b}
	if side == engine.Black {
		s.playScripted()
	}
	return s, nil
}

func (s *OpeningSession[M]) Opening() Opening { return s.opening }

func (s *OpeningSession[M]) Board() rules.Board[M] { return s.board }

func (s *OpeningSession[M]) Complete() bool { return s.next >= len(s.opening.Moves) }

// Check plays m if it follows the line, then the opponent's reply.
func (s *OpeningSession[M]) Check(m M) (bool, string) {
	if s.Complete() {
		return true, msgOpeningOver
	}
	expected, _ := s.board.ParseUCI(s.opening.Moves[s.next])
	if m != expected {
		return false, fmt.Sprintf("The opening move is %s, not %s",
			rules.MoveText(s.board, expected), rules.MoveText(s.board, m))
	}

	s.board.Push(m)
	s.next++
	if !s.Complete() {
		s.playScripted()
	}
	if s.Complete() {
		return true, fmt.Sprintf("Well done! You've completed the %s!", s.opening.Name)
	}
	return true, msgOpeningNext
}

// NextMove describes the move the line expects now.
func (s *OpeningSession[M]) NextMove() (string, bool) {
	if s.Complete() {
		return "", false
	}
	m, _ := s.board.ParseUCI(s.opening.Moves[s.next])
	return "Next move: " + rules.MoveText(s.board, m), true
}

// Idea picks the key idea that fits how far the line has got.
func (s *OpeningSession[M]) Idea() (string, bool) {
	ideas := s.opening.KeyIdeas
	if len(ideas) == 0 {
		return "", false
	}
	i := s.next / 2
	if i >= len(ideas) {
		i = len(ideas) - 1
	}
	return ideas[i], true
}

func (s *OpeningSession[M]) playScripted() {
	m, _ := s.board.ParseUCI(s.opening.Moves[s.next])
	s.board.Push(m)
	s.next++
}

// Detect names the opening a game started with, given its moves in UCI. The
// longest matching line of at least two moves wins; earlier catalog entries
// win ties.
func (c *Catalog) Detect(played []string) (Opening, bool) {
	if len(played) > detectPlies {
		played = played[:detectPlies]
	}
	var best Opening
	bestLen := 0
	for _, o := range c.Openings {
		n := 0
		for n < len(o.Moves) && n < len(played) && o.Moves[n] == played[n] {
			n++
		}
		if n >= 2 && n > bestLen {
			best, bestLen = o, n
		}
	}
	return best, bestLen > 0
}
