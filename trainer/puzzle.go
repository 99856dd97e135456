package trainer

import (
	"errors"
	"fmt"

	"chess-tutor/rules"
)

var ErrBadLesson = errors.New("lesson does not replay")

const (
	msgPuzzleSolved = "Correct! Puzzle solved!"
	msgPuzzleNext   = "Correct! Find the next move..."
	msgPuzzleWrong  = "Not the best move. Try again!"
	msgPuzzleDone   = "Puzzle already solved"
)

// PuzzleSession tracks one attempt at a puzzle.
type PuzzleSession[M comparable] struct {
	puzzle Puzzle
	board  rules.Board[M]
	next   int // index into puzzle.Solution
}

// StartPuzzle sets up p on a board from newBoard. The whole solution is
// replayed once up front so a broken lesson fails here and not halfway.
func StartPuzzle[M comparable](newBoard rules.Factory[M], p Puzzle) (*PuzzleSession[M], error) {
	if len(p.Solution) == 0 {
		return nil, fmt.Errorf("%w: puzzle %s has no solution", ErrBadLesson, p.ID)
	}
	b, err := newBoard(p.FEN)
	if err != nil {
		return nil, fmt.Errorf("puzzle %s: %w", p.ID, err)
	}
	if err := replays(b, p.Solution); err != nil {
		return nil, fmt.Errorf("%w: puzzle %s: %v", ErrBadLesson, p.ID, err)
	}
	return &PuzzleSession[M]{puzzle: p, board: b}, nil
}

func (s *PuzzleSession[M]) Puzzle() Puzzle { return s.puzzle }

// Board is the practice position. Moves must go through Check.
func (s *PuzzleSession[M]) Board() rules.Board[M] { return s.board }

func (s *PuzzleSession[M]) Solved() bool { return s.next >= len(s.puzzle.Solution) }

// Check plays m if it is the expected move and answers with the scripted
// reply. A wrong move leaves the position unchanged.
func (s *PuzzleSession[M]) Check(m M) (bool, string) {
	if s.Solved() {
		return false, msgPuzzleDone
	}
	if s.board.UCI(m) != s.puzzle.Solution[s.next] {
		return false, msgPuzzleWrong
	}
	s.board.Push(m)
	s.next++
	if s.Solved() {
		return true, msgPuzzleSolved
	}

	// StartPuzzle already proved the reply legal.
	reply, _ := s.board.ParseUCI(s.puzzle.Solution[s.next])
	s.board.Push(reply)
	s.next++
	if s.Solved() {
		return true, msgPuzzleSolved
	}
	return true, msgPuzzleNext
}

// Hint names the square the next move starts from.
func (s *PuzzleSession[M]) Hint() (string, bool) {
	if s.Solved() {
		return "", false
	}
	return "Hint: Move your piece from " + s.puzzle.Solution[s.next][:2], true
}

// replays checks that line is legal from b's position and leaves b as it was.
func replays[M comparable](b rules.Board[M], line []string) error {
	pushed := 0
	defer func() {
		for ; pushed > 0; pushed-- {
			b.Pop()
		}
	}()
	for _, s := range line {
		m, err := b.ParseUCI(s)
		if err != nil {
			return err
		}
		b.Push(m)
		pushed++
	}
	return nil
}
