package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AJaySi/ALwrity-sub003/config"
	"github.com/AJaySi/ALwrity-sub003/internal/apiclient"
	"github.com/AJaySi/ALwrity-sub003/internal/cache"
	"github.com/AJaySi/ALwrity-sub003/internal/observe"
	"github.com/AJaySi/ALwrity-sub003/internal/server"
	"github.com/AJaySi/ALwrity-sub003/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ttlCache := cache.New()
	observe.RegisterCacheStats(ttlCache)

	api := apiclient.NewClient(cfg.API)

	collector, err := telemetry.NewCollector(cfg.Collector, api, ttlCache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create collector")
	}

	srv := server.NewServer(cfg.Server, collector)
	collector.SetUpdateCallback(srv.Broadcast)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		collector.Start(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Start(ctx); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	log.Info().Str("addr", cfg.Server.Addr).Str("upstream", cfg.API.BaseURL).Msg("scheduler telemetry backend started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("shutdown signal received")

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("shutdown complete")
	case <-time.After(15 * time.Second):
		log.Warn().Msg("shutdown timed out, exiting")
	}
}
