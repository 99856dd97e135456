// Command play is a terminal game against the computer opponent. Moves are
// typed in UCI notation; the coach explains both sides' moves.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog/log"

	"chess-tutor/coach"
	"chess-tutor/config"
	"chess-tutor/engine"
	"chess-tutor/player"
	"chess-tutor/rules"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	side := flag.String("side", "white", "side you play: white or black")
	fen := flag.String("fen", rules.StartFEN, "starting position")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := cfg.SetupLogging(os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	learner := engine.White
	if strings.EqualFold(*side, "black") {
		learner = engine.Black
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cfg.Backend {
	case "goose":
		err = start(ctx, cfg, rules.GooseBoard, *fen, learner)
	case "notnil":
		err = start(ctx, cfg, rules.NotnilBoard, *fen, learner)
	default:
		err = start(ctx, cfg, rules.DragonBoard, *fen, learner)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("game aborted")
	}
}

func start[M comparable](ctx context.Context, cfg config.Config, newBoard rules.Factory[M], fen string, learner engine.Side) error {
	board, err := newBoard(fen)
	if err != nil {
		return err
	}

	var primary player.Engine[M]
	if cfg.EnginePath != "" && cfg.Difficulty != player.Easy {
		eng, err := startEngine[M](cfg)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.EnginePath).Msg("engine unavailable, using fallback search")
		} else {
			defer eng.Close()
			primary = eng
		}
	}
	opp := player.NewOpponent[M](cfg.Difficulty, primary, player.WithDepth(cfg.Depth))
	return play(ctx, os.Stdin, os.Stdout, board, opp, learner)
}

type closingEngine[M comparable] interface {
	player.Engine[M]
	Close() error
}

func startEngine[M comparable](cfg config.Config) (closingEngine[M], error) {
	if cfg.EngineClient == config.ClientNotnil {
		return player.StartNotnilEngine[M](cfg.EnginePath)
	}
	return player.StartUCIEngine[M](cfg.EnginePath)
}

func play[M comparable](ctx context.Context, in io.Reader, out io.Writer, b rules.Board[M], opp *player.Opponent[M], learner engine.Side) error {
	fmt.Fprintf(out, "You play %s against the %s computer. Enter moves like e2e4, or hint, tips, fen, quit.\n",
		learner, opp.Difficulty())
	if gameOver(out, b, learner) {
		return nil
	}
	if b.Turn() != learner && !computerMove(ctx, out, b, opp, learner) {
		return nil
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch cmd {
		case "":
		case "quit":
			return nil
		case "fen":
			fmt.Fprintln(out, b.FEN())
		case "hint":
			if m, why, ok := coach.Hint(b, opp.Searcher().Depth()); ok {
				fmt.Fprintf(out, "Try %s: %s\n", rules.MoveText(b, m), why)
			} else {
				fmt.Fprintln(out, why)
			}
		case "tips":
			fmt.Fprintf(out, "Material: %+d\n", coach.MaterialBalance(b))
			for _, w := range coach.Threats(b) {
				fmt.Fprintln(out, "Threat:", w)
			}
			for _, w := range coach.Hanging(b) {
				fmt.Fprintln(out, "Warning:", w)
			}
			for _, tip := range coach.Tips(b) {
				fmt.Fprintln(out, "Tip:", tip)
			}
		default:
			m, err := b.ParseUCI(cmd)
			if err != nil {
				fmt.Fprintf(out, "Illegal move: %s\n", cmd)
				continue
			}
			fmt.Fprintf(out, "You: %s (%s)\n", rules.MoveText(b, m), coach.Explain(b, m))
			b.Push(m)
			if !computerMove(ctx, out, b, opp, learner) {
				return nil
			}
		}
	}
	return scanner.Err()
}

// computerMove answers for the computer. It returns false once the game is
// over.
func computerMove[M comparable](ctx context.Context, out io.Writer, b rules.Board[M], opp *player.Opponent[M], learner engine.Side) bool {
	if gameOver(out, b, learner) {
		return false
	}
	m, ok := opp.Move(ctx, b)
	if !ok {
		return false
	}
	fmt.Fprintf(out, "Computer: %s (%s)\n", rules.MoveText(b, m), coach.Explain(b, m))
	b.Push(m)
	return !gameOver(out, b, learner)
}

func gameOver[M comparable](out io.Writer, b rules.Board[M], learner engine.Side) bool {
	switch {
	case b.IsCheckmate() && b.Turn() == learner:
		fmt.Fprintln(out, "Checkmate. The computer wins.")
	case b.IsCheckmate():
		fmt.Fprintln(out, "Checkmate! You win.")
	case b.IsStalemate():
		fmt.Fprintln(out, "Stalemate. The game is a draw.")
	case b.IsInsufficientMaterial():
		fmt.Fprintln(out, "Draw by insufficient material.")
	default:
		return false
	}
	return true
}
