package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"cryptotrack/internal"
	"cryptotrack/internal/config"
	"cryptotrack/internal/dashboard"
	"cryptotrack/internal/logger"
	"cryptotrack/internal/server"
	"cryptotrack/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	mode := flag.String("mode", "", "desktop or server, overrides the config file")
	flag.Parse()

	if *mode != "" {
		os.Setenv("CRYPTOTRACK_MODE", *mode)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewWithConfig(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := internal.NewClient(cfg.CoinGecko.BaseURL, cfg.CoinGecko.Timeout, log)
	tr := tracker.New(client, tracker.Options{
		SnapshotTTL: cfg.CoinGecko.SnapshotTTL,
		HistoryDays: cfg.CoinGecko.HistoryDays,
		DefaultCoin: cfg.CoinGecko.DefaultCoin,
	}, log)

	switch cfg.Mode {
	case config.ModeServer:
		srv := server.New(cfg.Server, tr, log)
		if err := srv.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	default:
		runDesktop(ctx, cfg, tr, log)
	}
}

func runDesktop(ctx context.Context, cfg *config.Config, tr *tracker.Tracker, log zerolog.Logger) {
	coins, err := tr.Coins(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load coin directory")
	}
	initial, err := tr.DefaultCoin(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("default_coin", cfg.CoinGecko.DefaultCoin).Msg("Could not resolve default coin")
	}
	log.Info().Int("coins", len(coins)).Str("default", initial.ID).Msg("Coin directory loaded")

	g, err := dashboard.New(ctx, tr, coins, initial, dashboard.Options{
		Title:           cfg.Dashboard.Title,
		Width:           cfg.Dashboard.Width,
		Height:          cfg.Dashboard.Height,
		FontSize:        cfg.Dashboard.FontSize,
		VisibleRows:     cfg.Dashboard.VisibleRows,
		RefreshInterval: cfg.Dashboard.RefreshInterval,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create dashboard")
	}

	if err := g.Run(); err != nil {
		log.Fatal().Err(err).Msg("Dashboard exited with error")
	}
	log.Info().Msg("Dashboard closed")
}
