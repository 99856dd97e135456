package rules

import (
	"fmt"
	"io"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"

	"chess-tutor/engine"
)

// Notnil adapts notnil/chess. Its positions are immutable, so Push stores the
// updated position on a stack and Pop simply drops it.
type Notnil struct {
	stack []*chess.Position
}

var (
	_ Board[chess.Move]    = (*Notnil)(nil)
	_ Notation[chess.Move] = (*Notnil)(nil)
)

// NewNotnil parses fen (the initial position when empty).
func NewNotnil(fen string) (*Notnil, error) {
	if fen == "" {
		fen = StartFEN
	}
	if err := checkFEN(fen); err != nil {
		return nil, err
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidFEN, fen, err)
	}
	game := chess.NewGame(opt)
	return &Notnil{stack: []*chess.Position{game.Position()}}, nil
}

// ParsePGN reads a single game and returns a board at its starting position
// together with the moves that were played.
func ParsePGN(r io.Reader) (*Notnil, []chess.Move, error) {
	opt, err := chess.PGN(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse pgn: %w", err)
	}
	game := chess.NewGame(opt)
	positions := game.Positions()
	if len(positions) == 0 {
		return nil, nil, fmt.Errorf("parse pgn: no positions")
	}
	played := game.Moves()
	moves := make([]chess.Move, len(played))
	for i, m := range played {
		moves[i] = *m
	}
	return &Notnil{stack: []*chess.Position{positions[0]}}, moves, nil
}

func (n *Notnil) pos() *chess.Position { return n.stack[len(n.stack)-1] }

func (n *Notnil) LegalMoves() []chess.Move {
	valid := n.pos().ValidMoves()
	moves := make([]chess.Move, len(valid))
	for i, m := range valid {
		moves[i] = *m
	}
	return moves
}

func (n *Notnil) HasLegalMoves() bool { return len(n.pos().ValidMoves()) > 0 }

func (n *Notnil) IsCapture(m chess.Move) bool {
	return m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)
}

func (n *Notnil) Turn() engine.Side {
	if n.pos().Turn() == chess.White {
		return engine.White
	}
	return engine.Black
}

func (n *Notnil) Push(m chess.Move) {
	n.stack = append(n.stack, n.pos().Update(&m))
}

func (n *Notnil) Pop() {
	if len(n.stack) <= 1 {
		panic("rules: Pop without a matching Push")
	}
	n.stack[len(n.stack)-1] = nil
	n.stack = n.stack[:len(n.stack)-1]
}

func (n *Notnil) IsCheckmate() bool { return n.pos().Status() == chess.Checkmate }

func (n *Notnil) IsStalemate() bool { return n.pos().Status() == chess.Stalemate }

func (n *Notnil) IsInsufficientMaterial() bool { return InsufficientMaterial(n.Pieces) }

func (n *Notnil) Pieces(fn func(engine.Square, engine.Piece)) {
	board := n.pos().Board()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := board.Piece(sq)
		if p == chess.NoPiece {
			continue
		}
		fn(engine.Square(sq), notnilPiece(p))
	}
}

func (n *Notnil) FEN() string { return n.pos().String() }

func (n *Notnil) UCI(m chess.Move) string { return m.String() }

func (n *Notnil) ParseUCI(s string) (chess.Move, error) {
	return findUCI(n.LegalMoves(), n.UCI, s)
}

func (n *Notnil) SAN(m chess.Move) string {
	return chess.AlgebraicNotation{}.Encode(n.pos(), &m)
}

func (n *Notnil) From(m chess.Move) engine.Square { return engine.Square(m.S1()) }

func (n *Notnil) To(m chess.Move) engine.Square { return engine.Square(m.S2()) }

func (n *Notnil) Promotion(m chess.Move) engine.PieceType { return notnilType(m.Promo()) }

func (n *Notnil) IsCastle(m chess.Move) bool {
	return m.HasTag(chess.KingSideCastle) || m.HasTag(chess.QueenSideCastle)
}

func (n *Notnil) GivesCheck(m chess.Move) bool { return m.HasTag(chess.Check) }

// InCheck looks for attackers of the king; notnil only tags checks on the
// move that gives them.
func (n *Notnil) InCheck() bool {
	side := n.Turn()
	king := engine.NoSquare
	n.Pieces(func(sq engine.Square, p engine.Piece) {
		if p.Type == engine.King && p.Side == side {
			king = sq
		}
	})
	return king != engine.NoSquare && len(n.Attackers(king, side.Other())) > 0
}

// Attackers borrows dragontoothmg's slider tables; notnil keeps its own
// unexported.
func (n *Notnil) Attackers(sq engine.Square, by engine.Side) []engine.Square {
	set, occupancy := collectSets(n.Pieces, by)
	return attackers(sq, by, set, occupancy,
		dragontoothmg.CalculateRookMoveBitboard, dragontoothmg.CalculateBishopMoveBitboard)
}

func (n *Notnil) PieceAt(sq engine.Square) (engine.Piece, bool) {
	if sq < 0 || sq > 63 {
		return engine.Piece{}, false
	}
	p := n.pos().Board().Piece(chess.Square(sq))
	if p == chess.NoPiece {
		return engine.Piece{}, false
	}
	return notnilPiece(p), true
}

func (n *Notnil) Ply() int { return len(n.stack) - 1 }

func notnilPiece(p chess.Piece) engine.Piece {
	piece := engine.Piece{Type: notnilType(p.Type()), Side: engine.White}
	if p.Color() == chess.Black {
		piece.Side = engine.Black
	}
	return piece
}

// notnilType maps notnil's king-first numbering onto engine.PieceType.
func notnilType(pt chess.PieceType) engine.PieceType {
	switch pt {
	case chess.Pawn:
		return engine.Pawn
	case chess.Knight:
		return engine.Knight
	case chess.Bishop:
		return engine.Bishop
	case chess.Rook:
		return engine.Rook
	case chess.Queen:
		return engine.Queen
	case chess.King:
		return engine.King
	}
	return engine.NoPieceType
}

// NotnilBoard is NewNotnil as a Factory.
func NotnilBoard(fen string) (Board[chess.Move], error) {
	b, err := NewNotnil(fen)
	if err != nil {
		return nil, err
	}
	return b, nil
}
