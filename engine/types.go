package engine

import "math"

// Side identifies one of the two players. White always moves first.
type Side uint8

const (
	White Side = iota
	Black
)

// Other returns the opposing side.
func (s Side) Other() Side { return s ^ 1 }

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

// PieceType is a colorless piece kind. The numbering matches the usual
// movegen layout (pawn = 1 .. king = 6) so adapters can convert by cast.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceNames = [...]string{"none", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (pt PieceType) String() string {
	if int(pt) < len(pieceNames) {
		return pieceNames[pt]
	}
	return "unknown"
}

// Piece is a piece type owned by a side.
type Piece struct {
	Type PieceType
	Side Side
}

// Square indexes the board from a1 = 0 to h8 = 63.
type Square int8

const NoSquare Square = -1

// File returns 0 for the a-file through 7 for the h-file.
func (sq Square) File() int { return int(sq) % 8 }

// Rank returns 0 for the first rank through 7 for the eighth.
func (sq Square) Rank() int { return int(sq) / 8 }

// IsLight reports whether the square is a light square (h1 is light).
func (sq Square) IsLight() bool { return (sq.File()+sq.Rank())%2 == 1 }

func (sq Square) String() string {
	if sq < 0 || sq > 63 {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// ParseSquare converts algebraic coordinates such as "e4" into a Square.
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, false
	}
	return Square(int(s[0]-'a') + int(s[1]-'1')*8), true
}

// Score is a material evaluation in centipawns, positive when White is ahead.
type Score int32

// Infinity is the score of a checkmate. -Infinity fits in an int32 as well.
const Infinity Score = math.MaxInt32

// IsMate reports whether s is one of the two checkmate scores.
func (s Score) IsMate() bool { return s == Infinity || s == -Infinity }
