// Package rules binds the fallback engine's Position contract to real chess
// rules libraries. Move generation, legality and terminal detection all come
// from the wrapped library; the adapters only translate types and keep an undo
// stack so Push/Pop restore positions exactly.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"chess-tutor/engine"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidFEN  = errors.New("invalid FEN")
	ErrIllegalMove = errors.New("illegal move")
)

// Board is a Position that can also describe and parse its moves.
type Board[M comparable] interface {
	engine.Position[M]

	FEN() string
	UCI(m M) string
	ParseUCI(s string) (M, error)

	From(m M) engine.Square
	To(m M) engine.Square
	Promotion(m M) engine.PieceType
	IsCastle(m M) bool
	// GivesCheck reports whether m leaves the opponent in check.
	GivesCheck(m M) bool
	// InCheck reports whether the side to move is in check.
	InCheck() bool
	// Attackers lists the squares of by's pieces attacking sq, in square
	// order. Pinned pieces are included.
	Attackers(sq engine.Square, by engine.Side) []engine.Square

	PieceAt(sq engine.Square) (engine.Piece, bool)
	// Ply is the number of moves pushed since the board was created.
	Ply() int
}

// Factory builds a board from a FEN string.
type Factory[M comparable] func(fen string) (Board[M], error)

// Notation is implemented by boards that can encode standard algebraic
// notation.
type Notation[M comparable] interface {
	SAN(m M) string
}

// MoveText renders m in SAN when the board supports it and UCI otherwise.
func MoveText[M comparable](b Board[M], m M) string {
	if n, ok := b.(Notation[M]); ok {
		return n.SAN(m)
	}
	return b.UCI(m)
}

// Backends lists the names accepted by the command line tools.
var Backends = []string{"dragon", "goose", "notnil"}

// sideFromFEN reads the side-to-move field of a FEN string.
func sideFromFEN(fen string) (engine.Side, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return engine.White, fmt.Errorf("%w: %q: missing side to move", ErrInvalidFEN, fen)
	}
	switch fields[1] {
	case "w":
		return engine.White, nil
	case "b":
		return engine.Black, nil
	default:
		return engine.White, fmt.Errorf("%w: %q: bad side to move %q", ErrInvalidFEN, fen, fields[1])
	}
}

// checkFEN rejects strings that would make the libraries panic: they expect
// at least a placement of eight ranks and a side to move.
func checkFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return fmt.Errorf("%w: %q", ErrInvalidFEN, fen)
	}
	if strings.Count(fields[0], "/") != 7 {
		return fmt.Errorf("%w: %q: expected 8 ranks", ErrInvalidFEN, fen)
	}
	_, err := sideFromFEN(fen)
	return err
}

// findUCI returns the legal move whose UCI text equals s.
func findUCI[M comparable](moves []M, uci func(M) string, s string) (M, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range moves {
		if uci(m) == s {
			return m, nil
		}
	}
	var none M
	return none, fmt.Errorf("%w: %s", ErrIllegalMove, s)
}

// InsufficientMaterial reports whether neither side can possibly mate: no
// pawns, rooks or queens remain and there is at most one minor piece, or all
// minor pieces are bishops standing on squares of one colour.
func InsufficientMaterial(pieces func(fn func(engine.Square, engine.Piece))) bool {
	var minors, knights int
	var light, dark, heavy bool
	pieces(func(sq engine.Square, p engine.Piece) {
		switch p.Type {
		case engine.Pawn, engine.Rook, engine.Queen:
			heavy = true
		case engine.Knight:
			minors++
			knights++
		case engine.Bishop:
			minors++
			if sq.IsLight() {
				light = true
			} else {
				dark = true
			}
		}
	})
	if heavy {
		return false
	}
	if minors <= 1 {
		return true
	}
	return knights == 0 && !(light && dark)
}
