// Package review grades every move of a finished game against the fallback
// engine's choice in the same position.
package review

import (
	"fmt"

	"github.com/rs/zerolog"

	"chess-tutor/engine"
	"chess-tutor/rules"
)

// MateCP is the centipawn value a checkmate score is clamped to before any
// arithmetic is done on it.
const MateCP engine.Score = 32000

// Classification grades a single move.
type Classification int

const (
	Best Classification = iota
	Good
	Inaccuracy
	Mistake
	Blunder
)

var classNames = [...]string{"best", "good", "inaccuracy", "mistake", "blunder"}

func (c Classification) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return fmt.Sprintf("Classification(%d)", int(c))
	}
	return classNames[c]
}

func (c Classification) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Classify maps a centipawn loss onto a Classification.
func Classify(loss engine.Score) Classification {
	switch {
	case loss < 20:
		return Best
	case loss < 50:
		return Good
	case loss < 100:
		return Inaccuracy
	case loss < 300:
		return Mistake
	}
	return Blunder
}

var explanations = [...]string{
	Best:       "Best move in the position.",
	Good:       "A good move, close to the best.",
	Inaccuracy: "Slight inaccuracy - there was a better option.",
	Mistake:    "A mistake - this move loses some advantage.",
	Blunder:    "A serious mistake - significant material or positional loss.",
}

// MoveAnalysis is the verdict on one played move.
type MoveAnalysis struct {
	Number int         `yaml:"number"` // full-move number
	Side   engine.Side `yaml:"-"`
	Move   string      `yaml:"move"`
	UCI    string      `yaml:"uci"`
	// Best is the engine's choice, empty when it matches the played move.
	Best        string         `yaml:"best,omitempty"`
	Eval        engine.Score   `yaml:"eval"` // after the move, White's view
	Loss        engine.Score   `yaml:"loss"` // mover's view, never negative
	Class       Classification `yaml:"class"`
	Explanation string         `yaml:"explanation"`
}

func (a MoveAnalysis) MarshalZerologObject(e *zerolog.Event) {
	e.Int("number", a.Number).
		Stringer("side", a.Side).
		Str("move", a.Move).
		Str("best", a.Best).
		Int32("loss", int32(a.Loss)).
		Stringer("class", a.Class)
}

// Report holds the analysis of a whole game. Positions[i] is the FEN before
// Moves[i]; the last entry is the final position.
type Report struct {
	Moves     []MoveAnalysis `yaml:"moves"`
	Positions []string       `yaml:"positions"`
}

// Analyze replays moves from b's current position. At each ply the fallback
// search picks its move at depth, and the static evaluations after that move
// and after the played one are compared from the mover's side. b is returned
// to its starting position, also when a move turns out to be illegal.
func Analyze[M comparable](b rules.Board[M], moves []M, depth int) (Report, error) {
	report := Report{
		Moves:     make([]MoveAnalysis, 0, len(moves)),
		Positions: []string{b.FEN()},
	}
	pushed := 0
	defer func() {
		for ; pushed > 0; pushed-- {
			b.Pop()
		}
	}()

	fullMove := startingMoveNumber(b.FEN())
	for i, m := range moves {
		if !legal(b, m) {
			return Report{}, fmt.Errorf("move %d: %w: %s", i+1, rules.ErrIllegalMove, b.UCI(m))
		}
		mover := b.Turn()
		a := MoveAnalysis{
			Number: fullMove,
			Side:   mover,
			Move:   rules.MoveText(b, m),
			UCI:    b.UCI(m),
		}

		res := engine.FindBestMove[M](b, depth)
		var bestEval engine.Score
		if res.Found {
			b.Push(res.Move)
			bestEval = engine.Evaluate[M](b)
			b.Pop()
			if res.Move != m {
				a.Best = rules.MoveText(b, res.Move)
			}
		}

		b.Push(m)
		pushed++
		a.Eval = engine.ClampScore(engine.Evaluate[M](b), MateCP)
		report.Positions = append(report.Positions, b.FEN())

		if res.Found {
			loss := forSide(bestEval, mover) - forSide(a.Eval, mover)
			if loss > 0 {
				a.Loss = loss
			}
		}

		switch {
		case b.IsCheckmate():
			a.Class, a.Explanation = Best, "Checkmate!"
		case res.Found && res.Move == m:
			a.Class, a.Explanation = Best, explanations[Best]
		default:
			a.Class = Classify(a.Loss)
			a.Explanation = explanations[a.Class]
		}

		report.Moves = append(report.Moves, a)
		if mover == engine.Black {
			fullMove++
		}
	}
	return report, nil
}

// forSide clamps s and turns it to side's point of view.
func forSide(s engine.Score, side engine.Side) engine.Score {
	s = engine.ClampScore(s, MateCP)
	if side == engine.Black {
		return -s
	}
	return s
}

func legal[M comparable](b rules.Board[M], m M) bool {
	for _, x := range b.LegalMoves() {
		if x == m {
			return true
		}
	}
	return false
}
