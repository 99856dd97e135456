package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"chess-tutor/rules"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

// run executes a command and prints its combined output. Returns exit code.
func run(name string, args ...string) int {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	fmt.Print(out.String())
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "error running %s: %v\n", name, err)
	return 1
}

// Runs the benchmarks in bench/ with benchmem, then one-line perft timings
// for every rules backend.
// Usage: go run ./cmd/benchrun [-bench regexp] [-maxdepth N]
func main() {
	pattern := flag.String("bench", ".", "benchmark regexp passed to go test")
	maxDepth := flag.Int("maxdepth", 5, "deepest perft run from the initial position")
	flag.Parse()

	// Format: BenchmarkName  Iterations  ns/op  B/op  allocs/op
	fmt.Println("Columns: BENCHMARK  N  ns/op  B/op  allocs/op")
	code := run("go", "test", "./bench", "-run", "^$", "-bench", *pattern, "-benchmem", "-benchtime=1s")
	if code != 0 {
		os.Exit(code)
	}

	fmt.Println("\nPerft Performance:")
	fmt.Println("TEST \t\tDepth \t\tNodes \t\tTime \tNPS")
	for _, lib := range rules.Backends {
		for depth := 3; depth <= *maxDepth; depth++ {
			run("go", "run", "./cmd/perft", "-lib", lib, "-depth", strconv.Itoa(depth), "-label", "Initial/"+lib)
		}
		_ = run("go", "run", "./cmd/perft", "-lib", lib, "-fen", kiwipete, "-depth", "3", "-label", "Kiwipete/"+lib)
	}
	os.Exit(0)
}
