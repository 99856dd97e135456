package rules

import (
	"fmt"
	"math/bits"

	"github.com/dylhunn/dragontoothmg"

	"chess-tutor/engine"
)

// Dragon adapts a dragontoothmg board. Apply hands back an undo closure, which
// is kept on a stack so Pop restores the exact previous state.
type Dragon struct {
	board dragontoothmg.Board
	undo  []func()
}

var _ Board[dragontoothmg.Move] = (*Dragon)(nil)

// NewDragon parses fen (the initial position when empty).
func NewDragon(fen string) (d *Dragon, err error) {
	if fen == "" {
		fen = StartFEN
	}
	if err := checkFEN(fen); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, fmt.Errorf("%w: %q: %v", ErrInvalidFEN, fen, r)
		}
	}()
	return &Dragon{board: dragontoothmg.ParseFen(fen)}, nil
}

func (d *Dragon) LegalMoves() []dragontoothmg.Move { return d.board.GenerateLegalMoves() }

func (d *Dragon) HasLegalMoves() bool { return len(d.board.GenerateLegalMoves()) > 0 }

func (d *Dragon) IsCapture(m dragontoothmg.Move) bool {
	if dragontoothmg.IsCapture(m, &d.board) {
		return true
	}
	// En passant lands on an empty square; a pawn changing file is enough.
	p, ok := d.PieceAt(engine.Square(m.From()))
	return ok && p.Type == engine.Pawn && m.From()%8 != m.To()%8
}

func (d *Dragon) Turn() engine.Side {
	if d.board.Wtomove {
		return engine.White
	}
	return engine.Black
}

func (d *Dragon) Push(m dragontoothmg.Move) {
	d.undo = append(d.undo, d.board.Apply(m))
}

func (d *Dragon) Pop() {
	if len(d.undo) == 0 {
		panic("rules: Pop without a matching Push")
	}
	last := len(d.undo) - 1
	d.undo[last]()
	d.undo[last] = nil
	d.undo = d.undo[:last]
}

func (d *Dragon) IsCheckmate() bool { return d.board.OurKingInCheck() && !d.HasLegalMoves() }

func (d *Dragon) IsStalemate() bool { return !d.board.OurKingInCheck() && !d.HasLegalMoves() }

func (d *Dragon) IsInsufficientMaterial() bool { return InsufficientMaterial(d.Pieces) }

func (d *Dragon) Pieces(fn func(engine.Square, engine.Piece)) {
	eachBitboard(&d.board.White, engine.White, fn)
	eachBitboard(&d.board.Black, engine.Black, fn)
}

func eachBitboard(bb *dragontoothmg.Bitboards, side engine.Side, fn func(engine.Square, engine.Piece)) {
	sets := [...]struct {
		bits uint64
		pt   engine.PieceType
	}{
		{bb.Pawns, engine.Pawn},
		{bb.Knights, engine.Knight},
		{bb.Bishops, engine.Bishop},
		{bb.Rooks, engine.Rook},
		{bb.Queens, engine.Queen},
		{bb.Kings, engine.King},
	}
	for _, set := range sets {
		for x := set.bits; x != 0; x &= x - 1 {
			sq := engine.Square(bits.TrailingZeros64(x))
			fn(sq, engine.Piece{Type: set.pt, Side: side})
		}
	}
}

func (d *Dragon) FEN() string { return d.board.ToFen() }

func (d *Dragon) UCI(m dragontoothmg.Move) string { return m.String() }

func (d *Dragon) ParseUCI(s string) (dragontoothmg.Move, error) {
	return findUCI(d.LegalMoves(), d.UCI, s)
}

func (d *Dragon) From(m dragontoothmg.Move) engine.Square { return engine.Square(m.From()) }

func (d *Dragon) To(m dragontoothmg.Move) engine.Square { return engine.Square(m.To()) }

func (d *Dragon) Promotion(m dragontoothmg.Move) engine.PieceType {
	return engine.PieceType(m.Promote())
}

// IsCastle reports a king move of two files, which is how dragontoothmg
// encodes castling.
func (d *Dragon) IsCastle(m dragontoothmg.Move) bool {
	from := engine.Square(m.From())
	p, ok := d.PieceAt(from)
	if !ok || p.Type != engine.King {
		return false
	}
	diff := engine.Square(m.To()).File() - from.File()
	return diff == 2 || diff == -2
}

func (d *Dragon) GivesCheck(m dragontoothmg.Move) bool {
	undo := d.board.Apply(m)
	defer undo()
	return d.board.OurKingInCheck()
}

func (d *Dragon) InCheck() bool { return d.board.OurKingInCheck() }

func (d *Dragon) Attackers(sq engine.Square, by engine.Side) []engine.Square {
	bb := &d.board.White
	if by == engine.Black {
		bb = &d.board.Black
	}
	set := pieceSets{
		pawns: bb.Pawns, knights: bb.Knights, bishops: bb.Bishops,
		rooks: bb.Rooks, queens: bb.Queens, kings: bb.Kings,
	}
	return attackers(sq, by, set, d.board.White.All|d.board.Black.All,
		dragontoothmg.CalculateRookMoveBitboard, dragontoothmg.CalculateBishopMoveBitboard)
}

func (d *Dragon) PieceAt(sq engine.Square) (engine.Piece, bool) {
	if sq < 0 || sq > 63 {
		return engine.Piece{}, false
	}
	mask := uint64(1) << uint(sq)
	for _, side := range [...]engine.Side{engine.White, engine.Black} {
		bb := &d.board.White
		if side == engine.Black {
			bb = &d.board.Black
		}
		if bb.All&mask == 0 {
			continue
		}
		switch {
		case bb.Pawns&mask != 0:
			return engine.Piece{Type: engine.Pawn, Side: side}, true
		case bb.Knights&mask != 0:
			return engine.Piece{Type: engine.Knight, Side: side}, true
		case bb.Bishops&mask != 0:
			return engine.Piece{Type: engine.Bishop, Side: side}, true
		case bb.Rooks&mask != 0:
			return engine.Piece{Type: engine.Rook, Side: side}, true
		case bb.Queens&mask != 0:
			return engine.Piece{Type: engine.Queen, Side: side}, true
		case bb.Kings&mask != 0:
			return engine.Piece{Type: engine.King, Side: side}, true
		}
	}
	return engine.Piece{}, false
}

func (d *Dragon) Ply() int { return len(d.undo) }

// DragonBoard is NewDragon as a Factory.
func DragonBoard(fen string) (Board[dragontoothmg.Move], error) {
	b, err := NewDragon(fen)
	if err != nil {
		return nil, err
	}
	return b, nil
}
