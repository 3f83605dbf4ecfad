// Package engine runs background engine analysis of a single position.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/rules"
	"github.com/freeeve/repertoire/internal/tree"
)

// ErrNoEngine is returned when no engine binary is configured.
var ErrNoEngine = errors.New("no engine configured")

// Config configures an Analyzer.
type Config struct {
	Path       string   // UCI engine binary
	Args       []string // engine arguments
	Depth      int      // deepest search (default 30)
	MultiPV    int      // lines per search (default 4)
	Hash       int      // MB (default 512)
	Threads    int      // default 4
	StatusFile string   // rewritten after every depth when set
	Rules      rules.Engine
	Logger     zerolog.Logger

	// NewSearcher replaces the UCI process, mainly for tests.
	NewSearcher func(Config) (Searcher, error)
}

// Status is the latest analysis state.
type Status struct {
	FEN       string    `json:"fen"`
	Depth     int       `json:"depth"`
	Lines     []string  `json:"lines"` // "<score> / <SAN line>"
	Running   bool      `json:"running"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Analyzer runs at most one analysis at a time.
type Analyzer struct {
	cfg Config
	log zerolog.Logger

	// lifecycle serializes Start and Stop so at most one search runs.
	lifecycle sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	status Status
}

// NewAnalyzer returns an idle analyzer.
func NewAnalyzer(cfg Config) *Analyzer {
	if cfg.Depth == 0 {
		cfg.Depth = 30
	}
	if cfg.MultiPV == 0 {
		cfg.MultiPV = 4
	}
	if cfg.Hash == 0 {
		cfg.Hash = 512
	}
	if cfg.Threads == 0 {
		cfg.Threads = 4
	}
	if cfg.Rules == nil {
		cfg.Rules = rules.Standard{}
	}
	if cfg.NewSearcher == nil {
		cfg.NewSearcher = newUCISearcher
	}
	return &Analyzer{
		cfg: cfg,
		log: cfg.Logger.With().Str("component", "engine").Logger(),
	}
}

// Start stops any running analysis and analyzes fen in the background,
// deepening one ply at a time until the configured depth or ctx is done.
func (a *Analyzer) Start(ctx context.Context, fen string) error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()
	a.stop()

	s, err := a.cfg.NewSearcher(a.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	a.mu.Lock()
	a.cancel = cancel
	a.done = done
	a.status = Status{FEN: fen, Running: true, UpdatedAt: time.Now()}
	a.mu.Unlock()

	a.log.Info().Str("fen", fen).Int("depth", a.cfg.Depth).Int("multipv", a.cfg.MultiPV).Msg("analysis started")
	go a.run(ctx, s, fen, done)
	return nil
}

// Stop cancels the running analysis and waits for it to end.
func (a *Analyzer) Stop() {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()
	a.stop()
}

func (a *Analyzer) stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Status returns the latest published state.
func (a *Analyzer) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.status
	st.Lines = append([]string(nil), a.status.Lines...)
	return st
}

// Running reports whether an analysis is in progress.
func (a *Analyzer) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status.Running
}

func (a *Analyzer) run(ctx context.Context, s Searcher, fen string, done chan struct{}) {
	defer close(done)
	defer s.Close()

	for depth := 1; depth <= a.cfg.Depth; depth++ {
		if ctx.Err() != nil {
			break
		}
		lines, err := s.Search(fen, depth)
		if err != nil {
			a.log.Error().Err(err).Str("fen", fen).Int("depth", depth).Msg("analysis failed")
			a.finish(err)
			return
		}
		a.publish(depth, a.formatLines(fen, lines))
	}
	a.finish(nil)
}

func (a *Analyzer) publish(depth int, lines []string) {
	a.mu.Lock()
	a.status.Depth = depth
	a.status.Lines = lines
	a.status.UpdatedAt = time.Now()
	st := a.status
	a.mu.Unlock()

	if a.cfg.StatusFile != "" {
		if err := os.WriteFile(a.cfg.StatusFile, []byte(st.Text()), 0o644); err != nil {
			a.log.Warn().Err(err).Str("file", a.cfg.StatusFile).Msg("write status file failed")
		}
	}
}

func (a *Analyzer) finish(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Running = false
	if err != nil {
		a.status.Error = err.Error()
	}
	a.log.Info().Str("fen", a.status.FEN).Int("depth", a.status.Depth).Msg("analysis ended")
}

// Text renders the status file contents.
func (st Status) Text() string {
	return fmt.Sprintf("depth: %d\n%s\n", st.Depth, strings.Join(st.Lines, "\n"))
}

func (a *Analyzer) formatLines(fen string, lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, formatScore(l)+" / "+a.sanLine(fen, l.PV))
	}
	return out
}

func formatScore(l Line) string {
	if l.Mate {
		return fmt.Sprintf("#%d", l.Score)
	}
	return fmt.Sprintf("%.2f", float64(l.Score)/100)
}

// sanLine converts a UCI principal variation to numbered SAN. Conversion
// stops at the first move the rules engine rejects.
func (a *Analyzer) sanLine(fen string, pv []string) string {
	ply := startPly(fen)
	var parts []string
	for i, mv := range pv {
		san, err := a.cfg.Rules.SAN(fen, mv)
		if err != nil {
			break
		}
		next, err := a.cfg.Rules.Play(fen, san)
		if err != nil {
			break
		}
		switch {
		case ply%2 == 1:
			parts = append(parts, tree.FormatNotation(ply, san))
		case i == 0:
			parts = append(parts, tree.FormatNotation(ply, san))
		default:
			parts = append(parts, san)
		}
		fen = next
		ply++
	}
	return strings.Join(parts, " ")
}

// startPly returns the ply of the next move in fen, from its side to move and
// full move number.
func startPly(fen string) int {
	fields := strings.Fields(fen)
	number := 1
	if len(fields) >= 6 {
		fmt.Sscanf(fields[5], "%d", &number)
	}
	return tree.PlyOf(number, len(fields) > 1 && fields[1] == "b")
}
