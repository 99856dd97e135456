package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-tutor/rules"
)

var (
	ErrEngineNotReady = errors.New("engine not ready")
	ErrNoBestMove     = errors.New("engine returned no move")
)

// stopGrace is how long a cancelled search may take to report its bestmove
// after "stop" before the engine is given up on.
const stopGrace = 500 * time.Millisecond

const defaultMoveTime = 100 * time.Millisecond

func moveTime(l Limits) time.Duration {
	if l.MoveTime <= 0 {
		return defaultMoveTime
	}
	return l.MoveTime
}

// UCIEngine speaks UCI to an external engine over its stdin and stdout.
type UCIEngine[M comparable] struct {
	cmd    *exec.Cmd
	w      io.Writer
	in     *bufio.Writer
	out    *bufio.Scanner
	mu     sync.Mutex
	ready  bool
	closed bool

	logger zerolog.Logger
}

// StartUCIEngine launches the engine binary at path and completes the UCI
// handshake.
func StartUCIEngine[M comparable](path string) (*UCIEngine[M], error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine %s: %w", path, err)
	}
	e, err := NewUCIEngine[M](stdout, stdin)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	e.cmd = cmd
	e.logger = log.With().Str("engine", path).Logger()
	return e, nil
}

// NewUCIEngine runs the handshake over an already connected engine.
func NewUCIEngine[M comparable](r io.Reader, w io.Writer) (*UCIEngine[M], error) {
	e := &UCIEngine[M]{
		w:      w,
		in:     bufio.NewWriter(w),
		out:    bufio.NewScanner(r),
		logger: log.Logger,
	}
	// Handshake: "uci" -> "uciok", then "isready" -> "readyok".
	if err := e.send("uci"); err != nil {
		return nil, err
	}
	if err := e.waitFor("uciok"); err != nil {
		return nil, err
	}
	if err := e.send("isready"); err != nil {
		return nil, err
	}
	if err := e.waitFor("readyok"); err != nil {
		return nil, err
	}
	e.ready = true
	return e, nil
}

func (e *UCIEngine[M]) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdown(false)
}

// shutdown sends quit and releases the process or pipe, which also ends any
// reader still scanning its output. kill is for an engine that has stopped
// answering. The caller holds mu.
func (e *UCIEngine[M]) shutdown(kill bool) error {
	if e.closed {
		return nil
	}
	e.closed, e.ready = true, false
	_ = e.send("quit")
	if e.cmd != nil {
		if kill {
			_ = e.cmd.Process.Kill()
		}
		return e.cmd.Wait()
	}
	if c, ok := e.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (e *UCIEngine[M]) NewGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return ErrEngineNotReady
	}
	if err := e.send("ucinewgame"); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok")
}

// BestMove asks the engine for a move in b's position under limits. When ctx
// ends first the search is stopped; an engine that then stays silent for
// stopGrace is shut down and every later call fails with ErrEngineNotReady.
func (e *UCIEngine[M]) BestMove(ctx context.Context, b rules.Board[M], limits Limits) (M, error) {
	var none M
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return none, ErrEngineNotReady
	}

	if err := e.send(fmt.Sprintf("setoption name Skill Level value %d", limits.SkillLevel)); err != nil {
		return none, err
	}
	if err := e.send("position fen " + b.FEN()); err != nil {
		return none, err
	}
	if err := e.send(fmt.Sprintf("go movetime %d", moveTime(limits).Milliseconds())); err != nil {
		return none, err
	}

	var (
		best   string
		lastCP *int
	)
	// Read until "bestmove ..." or the context ends.
	readDone := make(chan error, 1)
	go func() {
		for e.out.Scan() {
			line := e.out.Text()
			if strings.HasPrefix(line, "info ") {
				if i := strings.Index(line, " score cp "); i != -1 {
					var cp int
					if _, err := fmt.Sscanf(line[i+1:], "score cp %d", &cp); err == nil {
						lastCP = &cp
					}
				}
				continue
			}
			if strings.HasPrefix(line, "bestmove") {
				if fields := strings.Fields(line); len(fields) >= 2 {
					best = fields[1]
				}
				readDone <- nil
				return
			}
		}
		if err := e.out.Err(); err != nil {
			readDone <- err
			return
		}
		readDone <- io.ErrUnexpectedEOF
	}()

	var err error
	select {
	case <-ctx.Done():
		_ = e.send("stop")
		select {
		case err = <-readDone:
		case <-time.After(stopGrace):
			e.logger.Warn().Msg("engine ignored stop, shutting it down")
			_ = e.shutdown(true)
			err = ctx.Err()
		}
	case err = <-readDone:
	}
	if err != nil {
		return none, fmt.Errorf("engine search: %w", err)
	}

	ev := e.logger.Debug().Str("bestmove", best)
	if lastCP != nil {
		ev = ev.Int("cp", *lastCP)
	}
	ev.Msg("engine search finished")

	if best == "" || best == "(none)" || best == "0000" {
		return none, ErrNoBestMove
	}
	return b.ParseUCI(best)
}

func (e *UCIEngine[M]) send(cmd string) error {
	if _, err := fmt.Fprintln(e.in, cmd); err != nil {
		return err
	}
	return e.in.Flush()
}

func (e *UCIEngine[M]) waitFor(token string) error {
	for e.out.Scan() {
		if strings.TrimSpace(e.out.Text()) == token {
			return nil
		}
	}
	if err := e.out.Err(); err != nil {
		return err
	}
	return fmt.Errorf("waiting for %s: %w", token, io.ErrUnexpectedEOF)
}
