package rules

import (
	"sort"

	"chess-tutor/engine"
)

// Perft counts the leaf nodes of the legal move tree to depth. It exercises
// Push/Pop on every edge, so a mismatch against known counts points at either
// the rules library or the adapter's undo stack.
func Perft[M comparable](pos engine.Position[M], depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := pos.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		pos.Push(m)
		nodes += Perft(pos, depth-1)
		pos.Pop()
	}
	return nodes
}

// DivideEntry is the subtree size under one root move.
type DivideEntry struct {
	Move  string
	Nodes uint64
}

// PerftDivide returns the perft count below each root move, sorted by UCI text
// for stable output.
func PerftDivide[M comparable](b Board[M], depth int) []DivideEntry {
	moves := b.LegalMoves()
	out := make([]DivideEntry, 0, len(moves))
	for _, m := range moves {
		name := b.UCI(m)
		b.Push(m)
		out = append(out, DivideEntry{Move: name, Nodes: Perft[M](b, depth-1)})
		b.Pop()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Move < out[j].Move })
	return out
}
