package engine

// =============================================================================
// PIECE VALUES
// =============================================================================
// Material only. The king carries a large value so that it dominates any
// ordering by value; it is never actually captured.
var pieceValue = [7]Score{
	NoPieceType: 0,
	Pawn:        100,
	Knight:      320,
	Bishop:      330,
	Rook:        500,
	Queen:       900,
	King:        20000,
}

// PieceValue returns the material value of a piece type in centipawns.
func PieceValue(pt PieceType) Score {
	if int(pt) >= len(pieceValue) {
		return 0
	}
	return pieceValue[pt]
}

// Evaluate returns the static score of pos from White's point of view.
//
// Checkmate is -Infinity when the side to move is mated as White and
// +Infinity when Black is mated. Stalemate and insufficient material are
// exactly zero. Everything else is the material sum.
func Evaluate[M comparable](pos Position[M]) Score {
	if pos.IsCheckmate() {
		if pos.Turn() == White {
			return -Infinity
		}
		return Infinity
	}
	if pos.IsStalemate() || pos.IsInsufficientMaterial() {
		return 0
	}
	return Material(pos)
}

// Material sums piece values over the board, White positive and Black
// negative, ignoring game status.
func Material[M comparable](pos Position[M]) Score {
	var score Score
	pos.Pieces(func(_ Square, p Piece) {
		if p.Side == White {
			score += PieceValue(p.Type)
		} else {
			score -= PieceValue(p.Type)
		}
	})
	return score
}
