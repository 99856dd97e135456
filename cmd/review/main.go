// Command review analyses a PGN game with the fallback engine and prints the
// verdict on every move, a summary and a few learning points.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"chess-tutor/config"
	"chess-tutor/engine"
	"chess-tutor/review"
	"chess-tutor/rules"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	pgnPath := flag.String("pgn", "", "PGN file to review (default stdin)")
	depth := flag.Int("depth", 0, "search depth (default from config)")
	format := flag.String("format", "text", "output format: text or yaml")
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
	if *depth > 0 {
		cfg.Depth = *depth
	}

	in := io.Reader(os.Stdin)
	if *pgnPath != "" {
		f, err := os.Open(*pgnPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open pgn")
		}
		defer f.Close()
		in = f
	}

	if err := reviewGame(in, os.Stdout, cfg.Depth, *format); err != nil {
		log.Fatal().Err(err).Str("pgn", *pgnPath).Msg("review failed")
	}
}

type output struct {
	Moves          []review.MoveAnalysis `yaml:"moves"`
	Summary        review.Summary        `yaml:"summary"`
	LearningPoints []string              `yaml:"learning_points"`
}

func reviewGame(r io.Reader, w io.Writer, depth int, format string) error {
	board, moves, err := rules.ParsePGN(r)
	if err != nil {
		return err
	}
	report, err := review.Analyze[chess.Move](board, moves, depth)
	if err != nil {
		return err
	}
	log.Info().Int("moves", len(report.Moves)).Int("depth", depth).Msg("game reviewed")

	out := output{
		Moves:          report.Moves,
		Summary:        report.Summary(),
		LearningPoints: report.LearningPoints(),
	}
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return writeText(w, out)
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeText(w io.Writer, out output) error {
	var b strings.Builder
	for _, a := range out.Moves {
		dots := "."
		if a.Side == engine.Black {
			dots = "..."
		}
		fmt.Fprintf(&b, "%d%s %-8s %-10s loss %4d", a.Number, dots, a.Move, a.Class, a.Loss)
		if a.Best != "" {
			fmt.Fprintf(&b, "  best %s", a.Best)
		}
		b.WriteString("\n")
	}

	s := out.Summary
	fmt.Fprintf(&b, "\nMoves: %d\n", s.TotalMoves)
	fmt.Fprintf(&b, "White: %d mistakes, %d inaccuracies\n", s.WhiteMistakes, s.WhiteInaccuracies)
	fmt.Fprintf(&b, "Black: %d mistakes, %d inaccuracies\n", s.BlackMistakes, s.BlackInaccuracies)
	if len(out.LearningPoints) > 0 {
		b.WriteString("\nLearning points:\n")
		for _, p := range out.LearningPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
