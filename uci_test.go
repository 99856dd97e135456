package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chess-tutor/config"
	"chess-tutor/rules"
)

const (
	backRankFEN  = "6k1/5ppp/8/8/8/8/8/R3K3 w Q - 0 1"
	stalemateFEN = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
)

func session(t *testing.T, script ...string) []string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	require.NoError(t, uciLoop(in, &out, rules.DragonBoard, config.Default().Depth))
	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

func TestUCIHandshake(t *testing.T) {
	lines := session(t, "uci", "", "isready", "quit", "isready")
	require.Equal(t, []string{
		"id name chess-tutor",
		"id author chess-tutor",
		"option name Depth type spin default 3 min 1 max 8",
		"uciok",
		"readyok",
	}, lines)
}

func TestUCIGo(t *testing.T) {
	tests := []struct {
		name   string
		script []string
		info   string
		best   string
	}{
		{
			name:   "white mates in one",
			script: []string{"position fen " + backRankFEN, "go depth 1"},
			info:   "info depth 1 score cp 32000 ",
			best:   "bestmove a1a8",
		},
		{
			name:   "black mates in one",
			script: []string{"position startpos moves f2f3 e7e5 g2g4", "go depth 1"},
			info:   "info depth 1 score cp 32000 ",
			best:   "bestmove d8h4",
		},
		{
			name:   "no legal moves",
			script: []string{"position fen " + stalemateFEN, "go"},
			info:   "info depth 3 score cp 0 nodes 0 ",
			best:   "bestmove 0000",
		},
		{
			name:   "clock options are ignored",
			script: []string{"position fen " + backRankFEN, "go wtime 1000 btime 1000 winc 10 binc 10 depth 2"},
			info:   "info depth 2 score cp 32000 ",
			best:   "bestmove a1a8",
		},
		{
			name:   "setoption changes the default depth",
			script: []string{"setoption name Depth value 1", "position fen " + backRankFEN, "go"},
			info:   "info depth 1 ",
			best:   "bestmove a1a8",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := session(t, tt.script...)
			require.GreaterOrEqual(t, len(lines), 2)
			require.True(t, strings.HasPrefix(lines[len(lines)-2], tt.info), lines[len(lines)-2])
			require.Equal(t, tt.best, lines[len(lines)-1])
		})
	}
}

func TestUCIDefaultDepth(t *testing.T) {
	lines := session(t, "position startpos", "go")
	require.True(t, strings.HasPrefix(lines[0], "info depth 3 score cp 0 nodes "), lines[0])
	require.True(t, strings.HasPrefix(lines[1], "bestmove "))
}

func TestUCIEval(t *testing.T) {
	lines := session(t,
		"eval",
		"position fen 4k3/8/8/4q3/3P4/8/8/K7 w - - 0 1",
		"eval",
		"position fen 7k/8/6K1/8/8/8/8/5Q2 w - - 0 1 moves f1f7",
		"eval",
	)
	require.Equal(t, []string{
		"info string eval cp 0",
		"info string eval cp -800",
		"info string eval cp 0",
	}, lines)
}

func TestUCIErrors(t *testing.T) {
	lines := session(t,
		"foo bar",
		"position",
		"position somewhere",
		"position fen not-a-fen",
		"position startpos moves e2e4 e2e5 d7d5",
		"setoption name Depth value 99",
		"setoption name Hash value 16",
		"go depth",
	)
	require.Equal(t, "info string Unknown command: foo bar", lines[0])
	require.Equal(t, "info string Malformed position command", lines[1])
	require.Equal(t, "info string Invalid position subcommand", lines[2])
	require.True(t, strings.HasPrefix(lines[3], "info string Invalid fen position"), lines[3])
	require.True(t, strings.HasPrefix(lines[4], "info string Move e2e5 not found for position "), lines[4])
	require.Equal(t, "info string Depth must be between 1 and 8", lines[5])
	require.Equal(t, "info string Unknown option Hash", lines[6])
	require.Equal(t, "info string Malformed go command option depth", lines[7])
	require.Len(t, lines, 8)
}

// A bad move keeps the moves before it, so black is to move after e2e4.
func TestUCIPartialMoveList(t *testing.T) {
	lines := session(t, "position startpos moves e2e4 e2e5", "go depth 1")
	require.Len(t, lines, 3)
	best := strings.TrimPrefix(lines[2], "bestmove ")
	b, err := rules.DragonBoard(rules.StartFEN)
	require.NoError(t, err)
	b.Push(must(b.ParseUCI("e2e4")))
	_, err = b.ParseUCI(best)
	require.NoError(t, err, "bestmove %s should be legal for black", best)
}

func TestRunBackends(t *testing.T) {
	for _, backend := range rules.Backends {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Backend = backend
			var out bytes.Buffer
			in := strings.NewReader("position fen " + backRankFEN + "\ngo depth 2\nquit\n")
			require.NoError(t, run(cfg, in, &out))
			require.True(t, strings.HasSuffix(out.String(), "bestmove a1a8\n"), out.String())
		})
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
