// Package main runs the TruthBot fact-check API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"truthbot/internal/agent"
	_ "truthbot/internal/agent/providers"
	"truthbot/internal/cache"
	"truthbot/internal/checker"
	"truthbot/internal/config"
	"truthbot/internal/history"
	"truthbot/internal/logger"
	"truthbot/internal/search"
	"truthbot/internal/server"
	"truthbot/internal/validator"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	envFile := flag.String("env", ".env", "Path to .env file (ignored when missing)")

	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to load %s: %v\n", *envFile, err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(fmt.Sprintf("❌ %v", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info("⚙️  Configuration loaded", "config", cfg.String())

	analyzer, err := agent.New(agent.FromConfig(cfg.Agent, log.With("component", "agent")))
	if err != nil {
		return fmt.Errorf("agent: %w", err)
	}

	if c, ok := analyzer.(io.Closer); ok {
		defer c.Close()
	}

	opts := []checker.Option{
		checker.WithLogger(log.With("component", "checker")),
		checker.WithValidator(validator.NewVerdictValidator(cfg)),
	}

	verdictCache, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if verdictCache != nil {
		log.Info("Verdict cache enabled", "backend", cfg.Cache.Backend, "ttl", cfg.CacheTTL())
		opts = append(opts, checker.WithCache(verdictCache))

		if c, ok := verdictCache.(io.Closer); ok {
			defer c.Close()
		}
	}

	srvOpts := []server.Option{server.WithLogger(log.With("component", "server"))}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		defer store.Close()

		log.Info("Check history enabled", "path", cfg.History.Path)

		opts = append(opts, checker.WithRecorder(store))
		srvOpts = append(srvOpts, server.WithHistory(store))
	}

	searcher := search.NewClient(cfg.Search, log.With("component", "search"))
	svc := checker.NewService(searcher, analyzer, opts...)

	return server.New(cfg.Server, svc, srvOpts...).Run(ctx)
}
