// Package session drives interactive training over a repertoire: moves are
// played against the rules engine, matched against the repertoire through
// its transpositions, and added to it when they are new.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"github.com/freeeve/repertoire/internal/engine"
	"github.com/freeeve/repertoire/internal/poskey"
	"github.com/freeeve/repertoire/internal/rules"
	"github.com/freeeve/repertoire/internal/transpose"
	"github.com/freeeve/repertoire/internal/tree"
)

var (
	// ErrNoRepertoire is returned by operations that need a loaded
	// repertoire before ChooseColor succeeded.
	ErrNoRepertoire = errors.New("no repertoire loaded")
	// ErrAtStart is returned when there is no move to act on.
	ErrAtStart = errors.New("no move played")
	// ErrNoContinuation is returned when the repertoire has no move in the
	// current position.
	ErrNoContinuation = errors.New("no repertoire move in this position")
	// ErrUnknownGlyph is returned for evaluation symbols outside the glyph
	// table.
	ErrUnknownGlyph = errors.New("unknown evaluation symbol")
	// ErrNoColor is returned when a color other than white or black is
	// chosen.
	ErrNoColor = errors.New("color must be white or black")
)

// Repository loads and saves whole repertoires.
type Repository interface {
	Load(color tree.Color) (*tree.Node, error)
	Save(color tree.Color, root *tree.Node) error
}

// Config configures a Session.
type Config struct {
	Repertoires Repository
	Rules       rules.Engine
	Analyzer    *engine.Analyzer // optional
	Logger      zerolog.Logger

	// Intn picks the random reply, frand.Intn when nil.
	Intn func(n int) int
}

// Session is one training session. All methods are safe for concurrent use.
type Session struct {
	cfg Config
	log zerolog.Logger

	mu      sync.Mutex
	tracker *transpose.Tracker
	moves   []*tree.Node // loaded line, moves[0] is the root
	fens    []string     // board after each entry of moves
	color   tree.Color
	random  bool
	flipped bool
}

// New returns a session with no repertoire loaded.
func New(cfg Config) *Session {
	if cfg.Rules == nil {
		cfg.Rules = rules.Standard{}
	}
	if cfg.Intn == nil {
		cfg.Intn = frand.Intn
	}
	s := &Session{
		cfg: cfg,
		log: cfg.Logger.With().Str("component", "session").Logger(),
	}
	s.reset()
	return s
}

// ChooseColor resets the board and loads the repertoire of color.
func (s *Session) ChooseColor(color tree.Color) (State, error) {
	if color != tree.White && color != tree.Black {
		return State{}, fmt.Errorf("choose color: %w", ErrNoColor)
	}
	if s.cfg.Repertoires == nil {
		return State{}, fmt.Errorf("choose %s: %w", color, ErrNoRepertoire)
	}
	root, err := s.cfg.Repertoires.Load(color)
	if err != nil {
		return State{}, fmt.Errorf("choose %s: %w", color, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAnalysis()
	s.reset()
	s.tracker = transpose.NewTracker(root)
	s.moves = []*tree.Node{root}
	s.color = color
	s.flipped = color == tree.Black

	s.log.Info().Str("color", color.String()).Int("nodes", root.Count()).Msg("repertoire loaded")
	return s.state(), nil
}

// Reset clears the board and unloads the repertoire.
func (s *Session) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAnalysis()
	s.reset()
	return s.state()
}

func (s *Session) reset() {
	s.tracker = nil
	s.moves = nil
	s.fens = []string{poskey.StartFEN}
	s.color = tree.White
	s.random = false
	s.flipped = false
}

// Save writes the repertoire back to the repository.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return ErrNoRepertoire
	}
	var err error
	s.tracker.Read(func(root *tree.Node, _ *transpose.Snapshot) {
		err = s.cfg.Repertoires.Save(s.color, root)
	})
	return err
}

// ToggleRandom switches random mode. In random mode the session answers
// with a random acceptable repertoire move whenever the player's color is to
// move.
func (s *Session) ToggleRandom() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.random = !s.random
	return s.state()
}

// FlipBoard switches the board orientation.
func (s *Session) FlipBoard() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flipped = !s.flipped
	return s.state()
}

// State returns the current view of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Inspect runs fn over the loaded repertoire under the tracker's read lock.
func (s *Session) Inspect(fn func(root *tree.Node, color tree.Color)) error {
	s.mu.Lock()
	tracker, color := s.tracker, s.color
	s.mu.Unlock()
	if tracker == nil {
		return ErrNoRepertoire
	}
	tracker.Read(func(root *tree.Node, _ *transpose.Snapshot) {
		fn(root, color)
	})
	return nil
}

// StartAnalysis analyzes the current position in the background. Moves
// played while it runs restart it on the new position.
func (s *Session) StartAnalysis() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.Analyzer == nil {
		return engine.ErrNoEngine
	}
	return s.cfg.Analyzer.Start(context.Background(), s.fen())
}

// StopAnalysis stops the background analysis.
func (s *Session) StopAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAnalysis()
}

// AnalysisStatus returns the latest analysis state.
func (s *Session) AnalysisStatus() (engine.Status, error) {
	if s.cfg.Analyzer == nil {
		return engine.Status{}, engine.ErrNoEngine
	}
	return s.cfg.Analyzer.Status(), nil
}

func (s *Session) stopAnalysis() {
	if s.cfg.Analyzer != nil {
		s.cfg.Analyzer.Stop()
	}
}

// followAnalysis moves a running analysis to the current position.
func (s *Session) followAnalysis() {
	if s.cfg.Analyzer == nil || !s.cfg.Analyzer.Running() {
		return
	}
	if err := s.cfg.Analyzer.Start(context.Background(), s.fen()); err != nil {
		s.log.Warn().Err(err).Msg("restart analysis failed")
	}
}

func (s *Session) fen() string {
	return s.fens[len(s.fens)-1]
}

func (s *Session) last() *tree.Node {
	if len(s.moves) == 0 {
		return nil
	}
	return s.moves[len(s.moves)-1]
}

// nextPly returns the ply of the move about to be played from fen, read from
// its side to move and full move number.
func nextPly(fen string, fallback int) int {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return fallback
	}
	number, err := strconv.Atoi(fields[5])
	if err != nil || number < 1 {
		return fallback
	}
	return tree.PlyOf(number, fields[1] == "b")
}
