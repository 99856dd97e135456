package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-tutor/engine"
	"chess-tutor/rules"
)

func main() {
	// --- Flags ---
	depthFlag := flag.Int("depth", engine.DefaultDepth, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", rules.StartFEN, "FEN to search")
	libFlag := flag.String("lib", "dragon", "rules backend: dragon, goose or notnil")
	verbose := flag.Bool("v", false, "log every search at debug level")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *depthFlag <= 0 {
		log.Fatal().Int("depth", *depthFlag).Msg("depth must be positive")
	}

	// --- Optional CPU profiling setup ---
	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fmt.Printf("searchbench: lib=%s fen=%q depth=%d repeat=%d\n", *libFlag, *fenFlag, *depthFlag, *repeatFlag)

	var err error
	switch *libFlag {
	case "dragon":
		err = bench(rules.DragonBoard, *fenFlag, *depthFlag, *repeatFlag)
	case "goose":
		err = bench(rules.GooseBoard, *fenFlag, *depthFlag, *repeatFlag)
	case "notnil":
		err = bench(rules.NotnilBoard, *fenFlag, *depthFlag, *repeatFlag)
	default:
		err = fmt.Errorf("unknown -lib %q", *libFlag)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("searchbench failed")
	}

	// --- Optional heap profile at the end ---
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}

func bench[M comparable](newBoard rules.Factory[M], fen string, depth, repeat int) error {
	searcher := engine.NewSearcher[M](engine.WithDepth(depth))
	var total engine.Stats

	startAll := time.Now()
	for i := 0; i < repeat; i++ {
		// Fresh position for each run
		board, err := newBoard(fen)
		if err != nil {
			return err
		}
		res := searcher.Search(board, depth)
		best := "(none)"
		if res.Found {
			best = board.UCI(res.Move)
		}
		fmt.Printf("iteration %d: bestmove %s score %d nodes %d cutoffs %d time=%v nps=%d\n",
			i+1, best, res.Score, res.Stats.Nodes, res.Stats.Cutoffs, res.Stats.Elapsed, res.Stats.NodesPerSecond())

		total.Nodes += res.Stats.Nodes
		total.Cutoffs += res.Stats.Cutoffs
		total.Elapsed += res.Stats.Elapsed
	}
	fmt.Printf("total time: %v nodes %d nps %d\n", time.Since(startAll), total.Nodes, total.NodesPerSecond())
	return nil
}
