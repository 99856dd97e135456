package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"chess-tutor/rules"
)

type options struct {
	fen    string
	depth  int
	divide bool
	repeat int
	label  string
}

func main() {
	var opts options
	flag.StringVar(&opts.fen, "fen", rules.StartFEN, "FEN string (defaults to initial position)")
	flag.IntVar(&opts.depth, "depth", 0, "Perft depth (required)")
	flag.BoolVar(&opts.divide, "divide", false, "Print per-move node counts at root")
	flag.IntVar(&opts.repeat, "repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	flag.StringVar(&opts.label, "label", "", "Optional label prefix for one-line output")
	lib := flag.String("lib", "dragon", "Rules backend: dragon, goose or notnil")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	memProf := flag.String("memprofile", "", "Write heap profile to file after run")
	flag.Parse()

	if opts.depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating cpuprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "start cpu profile: %v\n", err)
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	var err error
	switch *lib {
	case "dragon":
		err = run(rules.DragonBoard, opts)
	case "goose":
		err = run(rules.GooseBoard, opts)
	case "notnil":
		err = run(rules.NotnilBoard, opts)
	default:
		err = fmt.Errorf("unknown -lib %q", *lib)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *memProf != "" {
		f, err := os.Create(*memProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating memprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "write heap profile: %v\n", err)
			os.Exit(2)
		}
		_ = f.Close()
	}
}

func run[M comparable](newBoard rules.Factory[M], opts options) error {
	board, err := newBoard(opts.fen)
	if err != nil {
		return err
	}

	if opts.divide {
		var sum uint64
		for _, e := range rules.PerftDivide(board, opts.depth) {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
			sum += e.Nodes
		}
		fmt.Printf("Total: %d\n", sum)
		return nil
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < opts.repeat; i++ {
		totalNodes += rules.Perft[M](board, opts.depth)
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Single line: Label Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", opts.label, opts.depth, totalNodes, elapsed, nps)
	return nil
}
