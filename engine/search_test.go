package engine_test

import (
	"sync"
	"testing"

	"github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
	"github.com/stretchr/testify/require"

	"chess-tutor/engine"
	"chess-tutor/rules"
)

const (
	// White pawn on d4 can take an undefended queen on e5.
	queenGrabFEN = "4k3/8/8/4q3/3P4/8/8/K7 w - - 0 1"
	// Back rank mate: Ra8#.
	mateInOneFEN = "6k1/5ppp/8/8/8/8/8/R3K3 w Q - 0 1"
	// Black to move mates with Qh4# (fool's mate, one ply earlier).
	blackMatesFEN = "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2"
	middlegameFEN = "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"
	foolsMateFEN  = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
	stalemateFEN  = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
	kingsOnlyFEN  = "8/8/4k3/8/8/3K4/8/8 w - - 0 1"
)

func dragon(t *testing.T, fen string) *rules.Dragon {
	t.Helper()
	b, err := rules.NewDragon(fen)
	require.NoError(t, err)
	return b
}

// snapshot captures everything a search could disturb.
type snapshot struct {
	fen      string
	moves    []string
	turn     engine.Side
	terminal bool
	ply      int
}

func snap[M comparable](b rules.Board[M]) snapshot {
	s := snapshot{fen: b.FEN(), turn: b.Turn(), terminal: engine.IsTerminal[M](b), ply: b.Ply()}
	for _, m := range b.LegalMoves() {
		s.moves = append(s.moves, b.UCI(m))
	}
	return s
}

// minimax is an exhaustive search with the same root rules as FindBestMove:
// same root order, first move seeds the result, strict improvement only.
func minimax[M comparable](pos engine.Position[M], depth int) engine.Score {
	if depth <= 0 || engine.IsTerminal(pos) {
		return engine.Evaluate(pos)
	}
	white := pos.Turn() == engine.White
	best := engine.Infinity
	if white {
		best = -engine.Infinity
	}
	for _, m := range pos.LegalMoves() {
		pos.Push(m)
		v := minimax(pos, depth-1)
		pos.Pop()
		if (white && v > best) || (!white && v < best) {
			best = v
		}
	}
	return best
}

func exhaustiveRoot[M comparable](pos engine.Position[M], depth int) (M, engine.Score) {
	moves := pos.LegalMoves()
	// Captures first, stable, as the engine orders its root.
	var ordered []M
	for _, m := range moves {
		if pos.IsCapture(m) {
			ordered = append(ordered, m)
		}
	}
	for _, m := range moves {
		if !pos.IsCapture(m) {
			ordered = append(ordered, m)
		}
	}
	white := pos.Turn() == engine.White
	best := engine.Infinity
	if white {
		best = -engine.Infinity
	}
	bestMove := ordered[0]
	for _, m := range ordered {
		pos.Push(m)
		v := minimax(pos, depth-1)
		pos.Pop()
		if (white && v > best) || (!white && v < best) {
			best, bestMove = v, m
		}
	}
	return bestMove, best
}

func TestFindBestMove_CapturesHangingQueen(t *testing.T) {
	b := dragon(t, queenGrabFEN)
	res := engine.FindBestMove[dragontoothmg.Move](b, 1)
	require.True(t, res.Found)
	require.Equal(t, "d4e5", b.UCI(res.Move))
	require.Equal(t, engine.Score(100), res.Score)
}

func TestFindBestMove_MateInOne(t *testing.T) {
	t.Run("white mates", func(t *testing.T) {
		b := dragon(t, mateInOneFEN)
		res := engine.FindBestMove[dragontoothmg.Move](b, 2)
		require.True(t, res.Found)
		require.Equal(t, "a1a8", b.UCI(res.Move))
		require.Equal(t, engine.Infinity, res.Score)

		b.Push(res.Move)
		require.Equal(t, engine.Infinity, engine.Evaluate[dragontoothmg.Move](b))
		b.Pop()
	})

	t.Run("black mates", func(t *testing.T) {
		b := dragon(t, blackMatesFEN)
		res := engine.FindBestMove[dragontoothmg.Move](b, 2)
		require.True(t, res.Found)
		require.Equal(t, "d8h4", b.UCI(res.Move))
		require.Equal(t, -engine.Infinity, res.Score)
	})
}

func TestFindBestMove_StartPosition(t *testing.T) {
	b := dragon(t, rules.StartFEN)
	before := snap[dragontoothmg.Move](b)

	res := engine.FindBestMove[dragontoothmg.Move](b, engine.DefaultDepth)
	require.True(t, res.Found)
	require.Contains(t, before.moves, b.UCI(res.Move))
	require.Greater(t, res.Stats.Nodes, uint64(0))
	require.Equal(t, before, snap[dragontoothmg.Move](b))
}

func TestFindBestMove_NoLegalMoves(t *testing.T) {
	for _, fen := range []string{foolsMateFEN, stalemateFEN} {
		for depth := 0; depth <= 3; depth++ {
			b := dragon(t, fen)
			res := engine.FindBestMove[dragontoothmg.Move](b, depth)
			require.False(t, res.Found, "%s depth %d", fen, depth)
			require.Equal(t, engine.Evaluate[dragontoothmg.Move](b), res.Score)
		}
	}
}

func TestFindBestMove_NonPositiveDepth(t *testing.T) {
	for _, depth := range []int{0, -1, -5} {
		b := dragon(t, queenGrabFEN)
		res := engine.FindBestMove[dragontoothmg.Move](b, depth)
		require.False(t, res.Found)
		require.Equal(t, engine.Score(-800), res.Score)
		require.Zero(t, res.Stats.Nodes)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want engine.Score
	}{
		{"start position is level", rules.StartFEN, 0},
		{"white is mated", foolsMateFEN, -engine.Infinity},
		{"black is mated", "R5k1/5ppp/8/8/8/8/8/4K3 b - - 1 1", engine.Infinity},
		{"stalemate", stalemateFEN, 0},
		{"kings only", kingsOnlyFEN, 0},
		{"queen against pawn", queenGrabFEN, -800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, engine.Evaluate[dragontoothmg.Move](dragon(t, tt.fen)))
		})
	}
}

func TestCheckmateScoreIgnoresDepth(t *testing.T) {
	for depth := 0; depth <= 4; depth++ {
		b := dragon(t, foolsMateFEN)
		require.Equal(t, -engine.Infinity, engine.FindBestMove[dragontoothmg.Move](b, depth).Score)
	}
}

func TestKingsOnlyIsDrawAtDepthZero(t *testing.T) {
	res := engine.FindBestMove[dragontoothmg.Move](dragon(t, kingsOnlyFEN), 0)
	require.False(t, res.Found)
	require.Equal(t, engine.Score(0), res.Score)
}

func TestFindBestMove_Deterministic(t *testing.T) {
	b := dragon(t, middlegameFEN)
	first := engine.FindBestMove[dragontoothmg.Move](b, 3)
	for i := 0; i < 3; i++ {
		again := engine.FindBestMove[dragontoothmg.Move](b, 3)
		require.Equal(t, first.Move, again.Move)
		require.Equal(t, first.Score, again.Score)
		require.Equal(t, first.Stats.Nodes, again.Stats.Nodes)
		require.Equal(t, first.Stats.Cutoffs, again.Stats.Cutoffs)
	}
}

const (
	kiwipeteFEN  = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	enPassantFEN = "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2"
	promotionFEN = "8/1P4k1/8/8/8/8/6p1/K7 w - - 0 1"
)

// eachBackend runs a generic check against every rules library.
func eachBackend(t *testing.T,
	dragon func(*testing.T, rules.Factory[dragontoothmg.Move]),
	goose func(*testing.T, rules.Factory[goosemg.Move]),
	notnil func(*testing.T, rules.Factory[chess.Move]),
) {
	t.Run("dragon", func(t *testing.T) { dragon(t, rules.DragonBoard) })
	t.Run("goose", func(t *testing.T) { goose(t, rules.GooseBoard) })
	t.Run("notnil", func(t *testing.T) { notnil(t, rules.NotnilBoard) })
}

func checkRestores[M comparable](t *testing.T, newBoard rules.Factory[M]) {
	fens := []string{rules.StartFEN, middlegameFEN, queenGrabFEN, mateInOneFEN, blackMatesFEN,
		kiwipeteFEN, enPassantFEN, promotionFEN}
	for _, fen := range fens {
		for depth := 0; depth <= 3; depth++ {
			b, err := newBoard(fen)
			require.NoError(t, err)
			before := snap(b)
			engine.FindBestMove[M](b, depth)
			require.Equal(t, before, snap(b), "%s depth %d", fen, depth)
		}
	}
}

func TestFindBestMove_RestoresPosition(t *testing.T) {
	eachBackend(t,
		checkRestores[dragontoothmg.Move],
		checkRestores[goosemg.Move],
		checkRestores[chess.Move])
}

func checkMatchesMinimax[M comparable](t *testing.T, newBoard rules.Factory[M]) {
	fens := []string{rules.StartFEN, middlegameFEN, queenGrabFEN, mateInOneFEN, blackMatesFEN,
		"8/2k5/8/3q4/8/2N5/1K6/8 w - - 0 1",
		"r1b1k2r/ppppqppp/2n2n2/2b1p3/2B1P3/2NP1N2/PPP2PPP/R1BQK2R b KQkq - 0 6",
		enPassantFEN, promotionFEN}
	for _, fen := range fens {
		for depth := 1; depth <= 3; depth++ {
			b, err := newBoard(fen)
			require.NoError(t, err)
			res := engine.FindBestMove[M](b, depth)
			wantMove, wantScore := exhaustiveRoot[M](b, depth)
			require.Equal(t, wantScore, res.Score, "%s depth %d", fen, depth)
			require.Equal(t, b.UCI(wantMove), b.UCI(res.Move), "%s depth %d", fen, depth)
		}
	}
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	eachBackend(t,
		checkMatchesMinimax[dragontoothmg.Move],
		checkMatchesMinimax[goosemg.Move],
		checkMatchesMinimax[chess.Move])
}

func TestAlphaBetaPrunes(t *testing.T) {
	b := dragon(t, middlegameFEN)
	res := engine.FindBestMove[dragontoothmg.Move](b, 3)
	require.Greater(t, res.Stats.Cutoffs, uint64(0))
}

// Move generation order differs between libraries, so only the root value is
// compared.
func TestBackendsAgree(t *testing.T) {
	for _, fen := range []string{queenGrabFEN, mateInOneFEN, middlegameFEN} {
		d := dragon(t, fen)
		g, err := rules.NewGoose(fen)
		require.NoError(t, err)
		n, err := rules.NewNotnil(fen)
		require.NoError(t, err)

		rd := engine.FindBestMove[dragontoothmg.Move](d, 2)
		rg := engine.FindBestMove[goosemg.Move](g, 2)
		rn := engine.FindBestMove[chess.Move](n, 2)

		require.Equal(t, rd.Score, rg.Score, fen)
		require.Equal(t, rd.Score, rn.Score, fen)
		require.True(t, rg.Found && rn.Found, fen)
	}
}

func TestConcurrentSearchesOnSeparatePositions(t *testing.T) {
	want := engine.FindBestMove[dragontoothmg.Move](dragon(t, middlegameFEN), 3)

	var wg sync.WaitGroup
	results := make([]engine.Result[dragontoothmg.Move], 8)
	for i := range results {
		b := dragon(t, middlegameFEN)
		wg.Add(1)
		go func(i int, b *rules.Dragon) {
			defer wg.Done()
			results[i] = engine.FindBestMove[dragontoothmg.Move](b, 3)
		}(i, b)
	}
	wg.Wait()
	for _, res := range results {
		require.Equal(t, want.Move, res.Move)
		require.Equal(t, want.Stats.Nodes, res.Stats.Nodes)
	}
}
