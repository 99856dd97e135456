// Package coach turns engine output into short explanations for a learner.
package coach

import (
	"fmt"
	"strings"

	"chess-tutor/engine"
	"chess-tutor/rules"
)

// NoMoves is the hint text when the side to move has no legal moves.
const NoMoves = "No moves available"

// centre squares: d4 e4 d5 e5
var centre = map[engine.Square]bool{27: true, 28: true, 35: true, 36: true}

// Explain gives the reasons a move is worth playing, joined with "; ".
// b must be the position before m; it is unchanged on return.
func Explain[M comparable](b rules.Board[M], m M) string {
	var parts []string

	if b.IsCapture(m) {
		if p, ok := b.PieceAt(b.To(m)); ok {
			parts = append(parts, "Captures "+p.Type.String())
		}
	}

	if b.GivesCheck(m) {
		if mates(b, m) {
			parts = append(parts, "Checkmate!")
		} else {
			parts = append(parts, "Check")
		}
	}

	if b.IsCastle(m) {
		parts = append(parts, "Castles for king safety")
	}

	if promo := b.Promotion(m); promo != engine.NoPieceType {
		parts = append(parts, "Promotes to "+promo.String())
	}

	if centre[b.To(m)] {
		parts = append(parts, "Controls the center")
	}

	if len(parts) == 0 {
		parts = append(parts, "Develops piece")
	}
	return strings.Join(parts, "; ")
}

// Describe spells a move out in full, e.g. "Knight moves from g1 to f3" or
// "Pawn captures knight on d5 | Check!".
func Describe[M comparable](b rules.Board[M], m M) string {
	from, to := b.From(m), b.To(m)
	mover, _ := b.PieceAt(from)
	name := capitalize(mover.Type.String())

	var parts []string
	switch captured, ok := b.PieceAt(to); {
	case b.IsCapture(m) && ok:
		parts = append(parts, fmt.Sprintf("%s captures %s on %s", name, captured.Type, to))
	case b.IsCapture(m):
		parts = append(parts, fmt.Sprintf("%s captures en passant on %s", name, to))
	default:
		parts = append(parts, fmt.Sprintf("%s moves from %s to %s", name, from, to))
	}

	if b.IsCastle(m) {
		if to.File() > from.File() {
			parts = append(parts, "Kingside castle (short castle)")
		} else {
			parts = append(parts, "Queenside castle (long castle)")
		}
	}
	if promo := b.Promotion(m); promo != engine.NoPieceType {
		parts = append(parts, "Pawn promotes to "+promo.String())
	}
	if b.GivesCheck(m) {
		if mates(b, m) {
			parts = append(parts, "CHECKMATE!")
		} else {
			parts = append(parts, "Check!")
		}
	}
	return strings.Join(parts, " | ")
}

// Hint searches b with the fallback engine and explains the move it finds.
func Hint[M comparable](b rules.Board[M], depth int) (M, string, bool) {
	res := engine.FindBestMove[M](b, depth)
	if !res.Found {
		var none M
		return none, NoMoves, false
	}
	return res.Move, Explain(b, res.Move), true
}

// pawnUnits are the textbook piece values learners count with.
var pawnUnits = map[engine.PieceType]int{
	engine.Pawn: 1, engine.Knight: 3, engine.Bishop: 3, engine.Rook: 5, engine.Queen: 9,
}

// MaterialBalance counts material in pawns (1/3/3/5/9), positive when White
// is ahead. The search evaluates in centipawns instead.
func MaterialBalance[M comparable](b rules.Board[M]) int {
	balance := 0
	b.Pieces(func(_ engine.Square, p engine.Piece) {
		if p.Side == engine.White {
			balance += pawnUnits[p.Type]
		} else {
			balance -= pawnUnits[p.Type]
		}
	})
	return balance
}

// maxWarnings caps the Threats and Hanging lists.
const maxWarnings = 3

// Threats lists opponent pieces that attack the side to move's queens and
// rooks, e.g. "Bishop threatens queen". A king only counts when the square is
// undefended, since it could not legally take otherwise.
func Threats[M comparable](b rules.Board[M]) []string {
	side := b.Turn()
	var out []string
	b.Pieces(func(sq engine.Square, p engine.Piece) {
		if p.Side != side || (p.Type != engine.Queen && p.Type != engine.Rook) {
			return
		}
		defended := len(b.Attackers(sq, side)) > 0
		for _, from := range b.Attackers(sq, side.Other()) {
			attacker, _ := b.PieceAt(from)
			if attacker.Type == engine.King && defended {
				continue
			}
			out = append(out, fmt.Sprintf("%s threatens %s", capitalize(attacker.Type.String()), p.Type))
		}
	})
	return capped(out)
}

// Hanging lists the side to move's pieces that are attacked more often than
// they are defended, e.g. "Knight on d1 is hanging!".
func Hanging[M comparable](b rules.Board[M]) []string {
	side := b.Turn()
	var out []string
	b.Pieces(func(sq engine.Square, p engine.Piece) {
		if p.Side != side {
			return
		}
		if len(b.Attackers(sq, side.Other())) > len(b.Attackers(sq, side)) {
			out = append(out, fmt.Sprintf("%s on %s is hanging!", capitalize(p.Type.String()), sq))
		}
	})
	return capped(out)
}

func capped(s []string) []string {
	if len(s) > maxWarnings {
		return s[:maxWarnings]
	}
	return s
}

// Targets lists the squares the piece on from can legally move to.
func Targets[M comparable](b rules.Board[M], from engine.Square) []engine.Square {
	var out []engine.Square
	seen := map[engine.Square]bool{}
	for _, m := range b.LegalMoves() {
		if b.From(m) != from || seen[b.To(m)] {
			continue
		}
		seen[b.To(m)] = true
		out = append(out, b.To(m))
	}
	return out
}

// Checks returns the legal moves that give check.
func Checks[M comparable](b rules.Board[M]) []M {
	var out []M
	for _, m := range b.LegalMoves() {
		if b.GivesCheck(m) {
			out = append(out, m)
		}
	}
	return out
}

// openingPlies is how long the opening principles are checked for.
const openingPlies = 10

// Tips returns general advice for the side to move: opening principles
// during the first few moves, and a warning when in check.
func Tips[M comparable](b rules.Board[M]) []string {
	tips := openingTips(b)
	if b.InCheck() {
		tips = append(tips, fmt.Sprintf("%s is in check! Must respond to the check.", capitalize(b.Turn().String())))
	}
	return tips
}

func openingTips[M comparable](b rules.Board[M]) []string {
	if b.Ply() >= openingPlies || fullMove(b.FEN()) > openingPlies/2 {
		return nil
	}
	var tips []string

	centralPawns := 0
	for sq := range centre {
		if p, ok := b.PieceAt(sq); ok && p.Type == engine.Pawn {
			centralPawns++
		}
	}
	if centralPawns < 2 {
		tips = append(tips, "Consider controlling the center with pawns (e4, d4)")
	}

	side := b.Turn()
	backRank := 0
	if side == engine.Black {
		backRank = 7
	}
	undeveloped := 0
	for file := 0; file < 8; file++ {
		p, ok := b.PieceAt(engine.Square(backRank*8 + file))
		if ok && p.Side == side && (p.Type == engine.Knight || p.Type == engine.Bishop) {
			undeveloped++
		}
	}
	if undeveloped > 2 {
		tips = append(tips, "Develop your knights and bishops!")
	}

	// Castling out of check is illegal.
	if canCastle(b.FEN(), side) && !b.InCheck() {
		tips = append(tips, "Consider castling to protect your king")
	}
	return tips
}

func mates[M comparable](b rules.Board[M], m M) bool {
	b.Push(m)
	defer b.Pop()
	return b.IsCheckmate()
}

func canCastle(fen string, side engine.Side) bool {
	fields := strings.Fields(fen)
	if len(fields) < 3 {
		return false
	}
	rights := "kq"
	if side == engine.White {
		rights = "KQ"
	}
	return strings.ContainsAny(fields[2], rights)
}

func fullMove(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return 1
	}
	var n int
	if _, err := fmt.Sscanf(fields[5], "%d", &n); err != nil {
		return 1
	}
	return n
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
