package rules

import (
	"fmt"

	"github.com/Oliverans/GooseEngineMG/goosemg"

	"chess-tutor/engine"
)

type gooseUndo struct {
	move  goosemg.Move
	state goosemg.MoveState
}

// Goose adapts a goosemg board. MakeMove returns the MoveState needed by
// UnmakeMove; each pair is kept on a stack.
type Goose struct {
	board *goosemg.Board
	stack []gooseUndo
}

var _ Board[goosemg.Move] = (*Goose)(nil)

// NewGoose parses fen (the initial position when empty).
func NewGoose(fen string) (*Goose, error) {
	if fen == "" {
		fen = goosemg.FENStartPos
	}
	if err := checkFEN(fen); err != nil {
		return nil, err
	}
	b, err := goosemg.ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidFEN, fen, err)
	}
	return &Goose{board: b}, nil
}

func (g *Goose) LegalMoves() []goosemg.Move { return g.board.GenerateMoves() }

func (g *Goose) HasLegalMoves() bool { return g.board.HasLegalMoves() }

func (g *Goose) IsCapture(m goosemg.Move) bool {
	return m.CapturedPiece() != goosemg.NoPiece || m.Flags() == goosemg.FlagEnPassant
}

func (g *Goose) Turn() engine.Side {
	if g.board.SideToMove() == goosemg.White {
		return engine.White
	}
	return engine.Black
}

func (g *Goose) Push(m goosemg.Move) {
	ok, st := g.board.MakeMove(m)
	if !ok {
		panic(fmt.Sprintf("rules: %v: %s", ErrIllegalMove, m))
	}
	g.stack = append(g.stack, gooseUndo{move: m, state: st})
}

func (g *Goose) Pop() {
	if len(g.stack) == 0 {
		panic("rules: Pop without a matching Push")
	}
	last := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	g.board.UnmakeMove(last.move, last.state)
}

func (g *Goose) IsCheckmate() bool { return g.board.InCheckmate() }

func (g *Goose) IsStalemate() bool { return g.board.InStalemate() }

func (g *Goose) IsInsufficientMaterial() bool { return InsufficientMaterial(g.Pieces) }

func (g *Goose) Pieces(fn func(engine.Square, engine.Piece)) {
	for sq := engine.Square(0); sq < 64; sq++ {
		if p, ok := g.PieceAt(sq); ok {
			fn(sq, p)
		}
	}
}

func (g *Goose) FEN() string { return g.board.ToFEN() }

func (g *Goose) UCI(m goosemg.Move) string { return m.String() }

func (g *Goose) ParseUCI(s string) (goosemg.Move, error) {
	return findUCI(g.LegalMoves(), g.UCI, s)
}

func (g *Goose) From(m goosemg.Move) engine.Square { return engine.Square(m.From()) }

func (g *Goose) To(m goosemg.Move) engine.Square { return engine.Square(m.To()) }

func (g *Goose) Promotion(m goosemg.Move) engine.PieceType {
	return goosePiece(m.PromotionPiece()).Type
}

func (g *Goose) IsCastle(m goosemg.Move) bool { return m.Flags() == goosemg.FlagCastle }

func (g *Goose) GivesCheck(m goosemg.Move) bool { return g.board.GivesCheck(m) }

func (g *Goose) InCheck() bool { return g.board.InCheck(g.board.SideToMove()) }

func (g *Goose) Attackers(sq engine.Square, by engine.Side) []engine.Square {
	bb := g.board.Bitboards(gooseColor(by))
	set := pieceSets{
		pawns: bb.Pawns, knights: bb.Knights, bishops: bb.Bishops,
		rooks: bb.Rooks, queens: bb.Queens, kings: bb.Kings,
	}
	return attackers(sq, by, set, g.board.AllOccupancy(),
		goosemg.CalculateRookMoveBitboard, goosemg.CalculateBishopMoveBitboard)
}

func (g *Goose) PieceAt(sq engine.Square) (engine.Piece, bool) {
	if sq < 0 || sq > 63 {
		return engine.Piece{}, false
	}
	p := g.board.PieceAt(goosemg.Square(sq))
	if p == goosemg.NoPiece {
		return engine.Piece{}, false
	}
	return goosePiece(p), true
}

func (g *Goose) Ply() int { return len(g.stack) }

// goosePiece decodes the goosemg layout: the low three bits hold the type
// (pawn = 1 .. king = 6) and bit 3 marks Black.
func goosePiece(p goosemg.Piece) engine.Piece {
	piece := engine.Piece{Type: engine.PieceType(p & 7), Side: engine.White}
	if p&8 != 0 {
		piece.Side = engine.Black
	}
	return piece
}

func gooseColor(s engine.Side) goosemg.Color {
	if s == engine.White {
		return goosemg.White
	}
	return goosemg.Black
}

// GooseBoard is NewGoose as a Factory.
func GooseBoard(fen string) (Board[goosemg.Move], error) {
	b, err := NewGoose(fen)
	if err != nil {
		return nil, err
	}
	return b, nil
}
