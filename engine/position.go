package engine

// Position is the board capability the search needs from a chess-rules
// library. Implementations are mutable: Push applies a move in place and Pop
// reverses the most recent Push exactly, including side to move, castling and
// en passant rights and any history used by the terminal queries.
//
// A Position is owned by one goroutine at a time. The search borrows it for
// the duration of a call and hands it back unchanged.
type Position[M comparable] interface {
	LegalMoves() []M
	HasLegalMoves() bool
	IsCapture(m M) bool
	Turn() Side

	Push(m M)
	Pop()

	IsCheckmate() bool
	IsStalemate() bool
	IsInsufficientMaterial() bool

	// Pieces calls fn once for every occupied square.
	Pieces(fn func(sq Square, p Piece))
}

// IsTerminal reports whether the game is over at pos: checkmate, stalemate or
// insufficient material.
func IsTerminal[M comparable](pos Position[M]) bool {
	return pos.IsCheckmate() || pos.IsStalemate() || pos.IsInsufficientMaterial()
}

// play applies m, runs fn and always undoes m before returning, so a move can
// never be left half-applied on any exit path.
func play[M comparable, T any](pos Position[M], m M, fn func() T) T {
	pos.Push(m)
	defer pos.Pop()
	return fn()
}
