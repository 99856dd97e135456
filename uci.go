package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"chess-tutor/config"
	"chess-tutor/engine"
	"chess-tutor/rules"
)

// uciMateScore is what a mate is reported as. UCI has "score mate N", but the
// fallback search does not know the distance, so mates are sent as a large
// centipawn value instead.
const uciMateScore engine.Score = 32000

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	// stdout belongs to the protocol.
	if err := cfg.SetupLogging(os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := run(cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("uci loop stopped")
	}
}

func run(cfg config.Config, in io.Reader, out io.Writer) error {
	switch cfg.Backend {
	case "goose":
		return uciLoop(in, out, rules.GooseBoard, cfg.Depth)
	case "notnil":
		return uciLoop(in, out, rules.NotnilBoard, cfg.Depth)
	default:
		return uciLoop(in, out, rules.DragonBoard, cfg.Depth)
	}
}

type uciSession[M comparable] struct {
	out      *bufio.Writer
	newBoard rules.Factory[M]
	board    rules.Board[M]
	searcher *engine.Searcher[M]
	depth    int
}

// uciLoop answers UCI commands from in until "quit" or end of input. Searches
// run to completion before the next command is read, so "stop" has nothing
// to interrupt.
func uciLoop[M comparable](in io.Reader, out io.Writer, newBoard rules.Factory[M], depth int) error {
	board, err := newBoard(rules.StartFEN)
	if err != nil {
		return err
	}
	s := &uciSession[M]{
		out:      bufio.NewWriter(out),
		newBoard: newBoard,
		board:    board,
		searcher: engine.NewSearcher[M](engine.WithDepth(depth)),
		depth:    depth,
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			s.println("id name chess-tutor")
			s.println("id author chess-tutor")
			s.printf("option name Depth type spin default %d min 1 max %d\n", s.depth, config.MaxDepth)
			s.println("uciok")
		case "isready":
			s.println("readyok")
		case "ucinewgame":
			s.board, _ = s.newBoard(rules.StartFEN)
		case "setoption":
			s.setOption(tokens[1:])
		case "position":
			s.position(tokens[1:])
		case "go":
			s.goSearch(tokens[1:])
		case "eval":
			s.printf("info string eval cp %d\n", engine.ClampScore(engine.Evaluate[M](s.board), uciMateScore))
		case "stop":
		case "quit":
			return s.out.Flush()
		default:
			s.printf("info string Unknown command: %s\n", strings.Join(tokens, " "))
		}
		if err := s.out.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *uciSession[M]) println(line string) { fmt.Fprintln(s.out, line) }

func (s *uciSession[M]) printf(format string, args ...any) { fmt.Fprintf(s.out, format, args...) }

// setOption handles "setoption name Depth value N".
func (s *uciSession[M]) setOption(args []string) {
	if len(args) != 4 || !strings.EqualFold(args[0], "name") || !strings.EqualFold(args[2], "value") {
		s.println("info string Malformed setoption command")
		return
	}
	if !strings.EqualFold(args[1], "depth") {
		s.printf("info string Unknown option %s\n", args[1])
		return
	}
	depth, err := strconv.Atoi(args[3])
	if err != nil || depth < 1 || depth > config.MaxDepth {
		s.printf("info string Depth must be between 1 and %d\n", config.MaxDepth)
		return
	}
	s.depth = depth
}

// position handles "position startpos|fen <fen> [moves ...]". On a bad move
// the moves before it stay applied.
func (s *uciSession[M]) position(args []string) {
	if len(args) == 0 {
		s.println("info string Malformed position command")
		return
	}
	var fen string
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "startpos":
		fen = rules.StartFEN
	case "fen":
		i := 0
		for i < len(rest) && strings.ToLower(rest[i]) != "moves" {
			i++
		}
		fen, rest = strings.Join(rest[:i], " "), rest[i:]
	default:
		s.println("info string Invalid position subcommand")
		return
	}

	board, err := s.newBoard(fen)
	if err != nil {
		s.printf("info string Invalid fen position: %v\n", err)
		return
	}
	s.board = board
	if len(rest) == 0 || strings.ToLower(rest[0]) != "moves" {
		return
	}
	for _, text := range rest[1:] {
		m, err := s.board.ParseUCI(text)
		if err != nil {
			s.printf("info string Move %s not found for position %s\n", text, s.board.FEN())
			return
		}
		s.board.Push(m)
	}
}

// goSearch handles "go". Only depth is honoured; clock options are accepted
// and ignored because the search has a fixed depth.
func (s *uciSession[M]) goSearch(args []string) {
	depth := s.depth
	for i := 0; i < len(args); i++ {
		switch strings.ToLower(args[i]) {
		case "infinite", "ponder":
		case "depth":
			i++
			if i >= len(args) {
				s.println("info string Malformed go command option depth")
				return
			}
			d, err := strconv.Atoi(args[i])
			if err != nil || d < 1 {
				s.println("info string Malformed go command option; could not convert depth")
				return
			}
			depth = d
		case "wtime", "btime", "winc", "binc", "movetime", "movestogo", "nodes", "mate":
			i++
		default:
			s.printf("info string Unknown go subcommand %s\n", args[i])
		}
	}

	res := s.searcher.Search(s.board, depth)
	score := res.Score
	if s.board.Turn() == engine.Black {
		score = -score
	}
	s.printf("info depth %d score cp %d nodes %d time %d\n",
		depth, engine.ClampScore(score, uciMateScore), res.Stats.Nodes, res.Stats.Elapsed.Milliseconds())
	if !res.Found {
		s.println("bestmove 0000")
		return
	}
	s.printf("bestmove %s\n", s.board.UCI(res.Move))
}
