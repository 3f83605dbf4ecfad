package engine

import (
	"fmt"
	"strings"

	"github.com/freeeve/uci"
)

// Line is one principal variation of a search.
type Line struct {
	Depth int
	Score int // centipawns, or moves to mate when Mate is set; White's view
	Mate  bool
	PV    []string // UCI moves
}

// Searcher runs fixed-depth searches.
type Searcher interface {
	Search(fen string, depth int) ([]Line, error)
	Close()
}

// uciSearcher drives a UCI engine process.
type uciSearcher struct {
	eng *uci.Engine
}

func newUCISearcher(cfg Config) (Searcher, error) {
	if cfg.Path == "" {
		return nil, ErrNoEngine
	}
	eng, err := uci.NewEngine(cfg.Path, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("start engine %s: %w", cfg.Path, err)
	}
	opts := uci.Options{
		Hash:    cfg.Hash,
		Threads: cfg.Threads,
		MultiPV: cfg.MultiPV,
		Ponder:  false,
		OwnBook: false,
	}
	if err := eng.SetOptions(opts); err != nil {
		eng.Close()
		return nil, fmt.Errorf("set engine options: %w", err)
	}
	return &uciSearcher{eng: eng}, nil
}

func (s *uciSearcher) Search(fen string, depth int) ([]Line, error) {
	if err := s.eng.SetFEN(fen); err != nil {
		return nil, fmt.Errorf("set FEN: %w", err)
	}
	results, err := s.eng.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return nil, fmt.Errorf("search depth %d: %w", depth, err)
	}

	// Normalize to white's perspective
	blackToMove := strings.Contains(fen, " b ")
	lines := make([]Line, 0, len(results.Results))
	for _, r := range results.Results {
		score := r.Score
		if blackToMove {
			score = -score
		}
		lines = append(lines, Line{Depth: r.Depth, Score: score, Mate: r.Mate, PV: r.BestMoves})
	}
	return lines, nil
}

func (s *uciSearcher) Close() {
	s.eng.Close()
}
