package player

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-tutor/rules"
)

// NotnilEngine drives an external engine through the notnil/chess uci
// package. Unlike UCIEngine it cannot interrupt a search, so a cancelled
// context only stops the caller from waiting; the engine is then closed.
type NotnilEngine[M comparable] struct {
	mu     sync.Mutex
	eng    *uci.Engine
	broken bool
	logger zerolog.Logger
}

func StartNotnilEngine[M comparable](path string) (*NotnilEngine[M], error) {
	eng, err := uci.New(path)
	if err != nil {
		return nil, fmt.Errorf("start engine %s: %w", path, err)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		eng.Close()
		return nil, fmt.Errorf("engine handshake: %w", err)
	}
	return &NotnilEngine[M]{eng: eng, logger: log.Logger}, nil
}

func (e *NotnilEngine[M]) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.broken = true
	return e.eng.Close()
}

func (e *NotnilEngine[M]) BestMove(ctx context.Context, b rules.Board[M], limits Limits) (M, error) {
	var none M
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.broken {
		return none, ErrEngineNotReady
	}

	pos, err := notnilPosition(b.FEN())
	if err != nil {
		return none, err
	}
	cmds := []uci.Cmd{
		uci.CmdSetOption{Name: "Skill Level", Value: strconv.Itoa(limits.SkillLevel)},
		uci.CmdPosition{Position: pos},
		uci.CmdGo{MoveTime: moveTime(limits)},
	}

	done := make(chan error, 1)
	go func() { done <- e.eng.Run(cmds...) }()
	select {
	case err := <-done:
		if err != nil {
			return none, err
		}
	case <-ctx.Done():
		e.broken = true
		go e.eng.Close()
		return none, ctx.Err()
	}

	res := e.eng.SearchResults()
	if res.BestMove == nil {
		return none, ErrNoBestMove
	}
	e.logger.Debug().
		Str("bestmove", res.BestMove.String()).
		Int("cp", res.Info.Score.CP).
		Msg("engine search finished")
	return b.ParseUCI(res.BestMove.String())
}

// notnilPosition converts a FEN into the position type the uci package
// sends to the engine.
func notnilPosition(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rules.ErrInvalidFEN, err)
	}
	return chess.NewGame(opt).Position(), nil
}
