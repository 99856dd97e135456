package rules

import (
	"math/bits"

	"chess-tutor/engine"
)

// pieceSets holds one side's pieces as bitboards, a1 = bit 0.
type pieceSets struct {
	pawns, knights, bishops, rooks, queens, kings uint64
}

// slider returns the attack bitboard of a rook or bishop standing on sq,
// blockers included. Both rules libraries export magic-table versions.
type slider func(sq uint8, occupancy uint64) uint64

var (
	knightSteps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
)

// attackers lists the squares of the pieces in set that attack sq. Pins are
// ignored, so a pinned piece still counts as defending.
func attackers(sq engine.Square, by engine.Side, set pieceSets, occupancy uint64, rook, bishop slider) []engine.Square {
	if sq < 0 || sq > 63 {
		return nil
	}
	// A white pawn attacks upwards, so it stands one rank below its target.
	pawnRank := -1
	if by == engine.Black {
		pawnRank = 1
	}
	bb := steps(sq, [][2]int{{-1, pawnRank}, {1, pawnRank}})&set.pawns |
		steps(sq, knightSteps)&set.knights |
		steps(sq, kingSteps)&set.kings |
		rook(uint8(sq), occupancy)&(set.rooks|set.queens) |
		bishop(uint8(sq), occupancy)&(set.bishops|set.queens)

	var out []engine.Square
	for ; bb != 0; bb &= bb - 1 {
		out = append(out, engine.Square(bits.TrailingZeros64(bb)))
	}
	return out
}

func steps(sq engine.Square, deltas [][2]int) uint64 {
	var bb uint64
	for _, d := range deltas {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		if f >= 0 && f < 8 && r >= 0 && r < 8 {
			bb |= 1 << uint(r*8+f)
		}
	}
	return bb
}

// collectSets builds the bitboards of by's pieces, and the occupancy of both
// sides, from a piece walk.
func collectSets(pieces func(fn func(engine.Square, engine.Piece)), by engine.Side) (pieceSets, uint64) {
	var set pieceSets
	var occupancy uint64
	pieces(func(sq engine.Square, p engine.Piece) {
		bit := uint64(1) << uint(sq)
		occupancy |= bit
		if p.Side != by {
			return
		}
		switch p.Type {
		case engine.Pawn:
			set.pawns |= bit
		case engine.Knight:
			set.knights |= bit
		case engine.Bishop:
			set.bishops |= bit
		case engine.Rook:
			set.rooks |= bit
		case engine.Queen:
			set.queens |= bit
		case engine.King:
			set.kings |= bit
		}
	})
	return set, occupancy
}
