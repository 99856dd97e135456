package review

import (
	"fmt"
	"strconv"
	"strings"

	"chess-tutor/engine"
)

const (
	maxCritical  = 5
	openingMoves = 10
)

// Summary counts the weak moves of each side.
type Summary struct {
	TotalMoves        int   `yaml:"total_moves"`
	WhiteMistakes     int   `yaml:"white_mistakes"` // mistakes and blunders
	BlackMistakes     int   `yaml:"black_mistakes"`
	WhiteInaccuracies int   `yaml:"white_inaccuracies"`
	BlackInaccuracies int   `yaml:"black_inaccuracies"`
	CriticalMoments   []int `yaml:"critical_moments"` // indexes into Report.Moves
}

func (r Report) Summary() Summary {
	s := Summary{TotalMoves: len(r.Moves)}
	for i, a := range r.Moves {
		white := a.Side == engine.White
		switch a.Class {
		case Mistake, Blunder:
			if white {
				s.WhiteMistakes++
			} else {
				s.BlackMistakes++
			}
			if len(s.CriticalMoments) < maxCritical {
				s.CriticalMoments = append(s.CriticalMoments, i)
			}
		case Inaccuracy:
			if white {
				s.WhiteInaccuracies++
			} else {
				s.BlackInaccuracies++
			}
		}
	}
	return s
}

// LearningPoints turns the report into a few sentences of advice.
func (r Report) LearningPoints() []string {
	var blunders, mistakes int
	for _, a := range r.Moves {
		switch a.Class {
		case Blunder:
			blunders++
		case Mistake:
			mistakes++
		}
	}

	var points []string
	if blunders > 0 {
		points = append(points, fmt.Sprintf("You had %d serious blunder(s). Take more time to check for threats!", blunders))
	}
	if mistakes > 2 {
		points = append(points, "Several mistakes occurred. Consider checking if your pieces are safe before moving.")
	}

	opening := r.Moves
	if len(opening) > openingMoves {
		opening = opening[:openingMoves]
	}
	offBook := 0
	for _, a := range opening {
		if a.Class != Best {
			offBook++
		}
	}
	if offBook > 3 {
		points = append(points, "Opening could be improved. Study common opening principles.")
	}

	if len(points) == 0 {
		points = append(points, "Good game! Keep practicing to improve further.")
	}
	return points
}

// Cursor steps through the positions of a report.
type Cursor struct {
	report *Report
	index  int
}

func (r *Report) Cursor() *Cursor { return &Cursor{report: r} }

// Index is the number of moves played in the current position.
func (c *Cursor) Index() int { return c.index }

func (c *Cursor) FEN() string { return c.report.Positions[c.index] }

// Analysis returns the verdict on the move that led to the current position.
func (c *Cursor) Analysis() (MoveAnalysis, bool) {
	if c.index == 0 || c.index > len(c.report.Moves) {
		return MoveAnalysis{}, false
	}
	return c.report.Moves[c.index-1], true
}

func (c *Cursor) Next() bool {
	if c.index >= len(c.report.Positions)-1 {
		return false
	}
	c.index++
	return true
}

func (c *Cursor) Prev() bool {
	if c.index == 0 {
		return false
	}
	c.index--
	return true
}

func (c *Cursor) First() { c.index = 0 }

func (c *Cursor) Last() { c.index = len(c.report.Positions) - 1 }

// Seek moves to position i and reports whether it exists.
func (c *Cursor) Seek(i int) bool {
	if i < 0 || i >= len(c.report.Positions) {
		return false
	}
	c.index = i
	return true
}

func startingMoveNumber(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return 1
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
