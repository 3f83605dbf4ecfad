package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/freeeve/repertoire/internal/cli"
	"github.com/freeeve/repertoire/internal/engine"
	"github.com/freeeve/repertoire/internal/httpapi"
	"github.com/freeeve/repertoire/internal/rules"
	"github.com/freeeve/repertoire/internal/session"
	"github.com/freeeve/repertoire/internal/store"
)

func main() {
	flags := cli.Register()
	var (
		// Server
		addr = flag.String("addr", "", "listen address (overrides server.addr)")

		// Stockfish
		stockfishPath = flag.String("stockfish", "", "path to a UCI engine (overrides engine.path)")
		evalDepth     = flag.Int("eval-depth", 0, "analysis depth (overrides engine.depth)")
		evalThreads   = flag.Int("eval-threads", 0, "engine threads (overrides engine.threads)")
		evalHash      = flag.Int("eval-hash", 0, "engine hash MB (overrides engine.hash)")

		// Session
		colorArg = flag.String("color", "", "load the repertoire of this color at startup (w or b)")
	)
	flag.Parse()

	cfg, logger := flags.Setup()
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *stockfishPath != "" {
		cfg.Engine.Path = *stockfishPath
	}
	if *evalDepth > 0 {
		cfg.Engine.Depth = *evalDepth
	}
	if *evalThreads > 0 {
		cfg.Engine.Threads = *evalThreads
	}
	if *evalHash > 0 {
		cfg.Engine.Hash = *evalHash
	}

	std := rules.Standard{}
	var analyzer *engine.Analyzer
	if cfg.Engine.Path != "" {
		analyzer = engine.NewAnalyzer(engine.Config{
			Path:       cfg.Engine.Path,
			Args:       cfg.Engine.Args,
			Depth:      cfg.Engine.Depth,
			MultiPV:    cfg.Engine.MultiPV,
			Hash:       cfg.Engine.Hash,
			Threads:    cfg.Engine.Threads,
			StatusFile: cfg.Paths.Status,
			Rules:      std,
			Logger:     logger,
		})
	} else {
		logger.Info().Msg("analysis disabled - set engine.path or STOCKFISH_PATH to enable")
	}

	s := session.New(session.Config{
		Repertoires: store.New(store.Config{Dir: cfg.Paths.Repertoire, Logger: logger}),
		Rules:       std,
		Analyzer:    analyzer,
		Logger:      logger,
	})
	if *colorArg != "" {
		if _, err := s.ChooseColor(cli.Color(*colorArg)); err != nil {
			logger.Fatal().Err(err).Msg("load repertoire")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpapi.NewRouter(logger, s),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("api server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}
	s.StopAnalysis()

	logger.Info().Msg("shutdown complete")
}
