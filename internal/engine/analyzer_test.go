package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/repertoire/internal/poskey"
)

type fakeSearcher struct {
	mu     sync.Mutex
	depths []int
	delay  time.Duration
	fail   int // depth that fails, 0 for none
	closed bool
}

func (f *fakeSearcher) Search(fen string, depth int) ([]Line, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depths = append(f.depths, depth)
	if depth == f.fail {
		return nil, errors.New("engine crashed")
	}
	return []Line{
		{Depth: depth, Score: 35, PV: []string{"e2e4", "e7e5", "g1f3"}},
		{Depth: depth, Score: 3, Mate: true, PV: []string{"d2d4"}},
	}, nil
}

func (f *fakeSearcher) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func newTestAnalyzer(t *testing.T, f *fakeSearcher, depth int) (*Analyzer, string) {
	status := filepath.Join(t.TempDir(), "status.txt")
	a := NewAnalyzer(Config{
		Depth:       depth,
		StatusFile:  status,
		Logger:      zerolog.Nop(),
		NewSearcher: func(Config) (Searcher, error) { return f, nil },
	})
	return a, status
}

func TestAnalyzerRunsToDepth(t *testing.T) {
	f := &fakeSearcher{}
	a, statusFile := newTestAnalyzer(t, f, 3)

	require.NoError(t, a.Start(context.Background(), poskey.StartFEN))
	require.Eventually(t, func() bool { return !a.Running() }, 2*time.Second, 5*time.Millisecond)
	a.Stop()

	st := a.Status()
	assert.Equal(t, 3, st.Depth)
	assert.Equal(t, []string{"0.35 / 1. e4 e5 2. Nf3", "#3 / 1. d4"}, st.Lines)
	assert.Empty(t, st.Error)
	assert.Equal(t, []int{1, 2, 3}, f.depths)
	assert.True(t, f.closed)

	data, err := os.ReadFile(statusFile)
	require.NoError(t, err)
	assert.Equal(t, "depth: 3\n0.35 / 1. e4 e5 2. Nf3\n#3 / 1. d4\n", string(data))
}

func TestAnalyzerRestartStopsPrevious(t *testing.T) {
	first := &fakeSearcher{delay: 5 * time.Millisecond}
	second := &fakeSearcher{}
	searchers := []*fakeSearcher{first, second}
	a := NewAnalyzer(Config{
		Depth:  50,
		Logger: zerolog.Nop(),
		NewSearcher: func(Config) (Searcher, error) {
			s := searchers[0]
			searchers = searchers[1:]
			return s, nil
		},
	})

	require.NoError(t, a.Start(context.Background(), poskey.StartFEN))
	afterE4 := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	require.NoError(t, a.Start(context.Background(), afterE4))

	first.mu.Lock()
	assert.True(t, first.closed)
	assert.Less(t, len(first.depths), 50)
	first.mu.Unlock()

	a.Stop()
	assert.False(t, a.Running())
	assert.Equal(t, afterE4, a.Status().FEN)
}

func TestAnalyzerConcurrentStartsKeepOneSearch(t *testing.T) {
	var mu sync.Mutex
	var created []*fakeSearcher
	a := NewAnalyzer(Config{
		Depth:  1000,
		Logger: zerolog.Nop(),
		NewSearcher: func(Config) (Searcher, error) {
			f := &fakeSearcher{delay: time.Millisecond}
			mu.Lock()
			created = append(created, f)
			mu.Unlock()
			return f, nil
		},
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Start(context.Background(), poskey.StartFEN))
		}()
	}
	wg.Wait()

	open := 0
	mu.Lock()
	require.Len(t, created, 8)
	for _, f := range created {
		f.mu.Lock()
		if !f.closed {
			open++
		}
		f.mu.Unlock()
	}
	mu.Unlock()
	assert.Equal(t, 1, open)

	a.Stop()
	for _, f := range created {
		f.mu.Lock()
		assert.True(t, f.closed)
		f.mu.Unlock()
	}
}

func TestAnalyzerReportsFailure(t *testing.T) {
	f := &fakeSearcher{fail: 2}
	a, _ := newTestAnalyzer(t, f, 5)
	require.NoError(t, a.Start(context.Background(), poskey.StartFEN))
	require.Eventually(t, func() bool { return !a.Running() }, 2*time.Second, 5*time.Millisecond)

	st := a.Status()
	assert.Equal(t, 1, st.Depth)
	assert.Equal(t, "engine crashed", st.Error)
}

func TestAnalyzerNeedsEngine(t *testing.T) {
	a := NewAnalyzer(Config{Logger: zerolog.Nop()})
	err := a.Start(context.Background(), poskey.StartFEN)
	assert.ErrorIs(t, err, ErrNoEngine)
	assert.False(t, a.Running())
}

func TestSANLineFromBlack(t *testing.T) {
	a := NewAnalyzer(Config{Logger: zerolog.Nop()})
	afterE4 := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	assert.Equal(t, "1... c5 2. Nf3", a.sanLine(afterE4, []string{"c7c5", "g1f3", "zzzz"}))
}
