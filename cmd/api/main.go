package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"amdb/proj/internal/api/tasks"
	"amdb/proj/internal/config"
	"amdb/proj/internal/lib/logger"
	"amdb/proj/internal/services"
	"amdb/proj/internal/services/auth"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "", "path to config file (defaults to $CONFIG_PATH)")
	reconcileOnly := flag.Bool("reconcile", false, "rebuild review back-references and exit")
	seedPath := flag.String("seed", "", "insert movies from a JSON file and exit")
	flag.Parse()

	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)
	if err := run(cfg, log, *reconcileOnly, *seedPath); err != nil {
		log.Error("shutting down the server", "reason", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, reconcileOnly bool, seedPath string) error {
	ctx := context.Background()
	storage, closeStorage, err := openStorage(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	cache := openCache(ctx, log, cfg)
	if cache != nil {
		defer cache.Close()
	}
	tokens := auth.MustLoadTokenIssuer(cfg.Auth.PrivateKeyPath, cfg.Auth.PublicKeyPath, cfg.Auth.TokenTTL)
	bgTasks := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	svcs := services.New(log, storage, tokens, cache, bgTasks)

	switch {
	case seedPath != "":
		return seedMovies(ctx, log, storage.Movies, seedPath)
	case reconcileOnly:
		_, err := svcs.Reviews.RebuildBackReferences(ctx)
		return err
	}

	if cfg.Reconcile.OnStartup {
		// a failed repair is not fatal, the periodic run or -reconcile can retry
		if _, err := svcs.Reviews.RebuildBackReferences(ctx); err != nil {
			log.Warn("startup reconciliation failed", "errMsg", err.Error())
		}
	}
	app := NewApplication(cfg, log, svcs, bgTasks)
	return app.serve()
}
