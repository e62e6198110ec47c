package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"albumshop/internal/config"
	"albumshop/internal/http/routes"
	applog "albumshop/internal/log"
	"albumshop/internal/repos"
)

func main() {
	if err := run(); err != nil {
		applog.Base().Fatal().Err(err).Str("action", "server.exit").Send()
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	closer, err := applog.Setup(applog.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stdout,
		File:   cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	logger := applog.Base()
	if cfg.EphemeralJWTSecret {
		logger.Warn().Str("action", "config.jwt_secret.generated").
			Msg("ALBUMSHOP_JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DBDriver == "postgres" {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	if cfg.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := repos.SeedDemo(ctx, db, cfg.BcryptCost)
		cancel()
		if err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app := routes.NewApp(db, cfg, reg)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("action", "server.start").Str("port", cfg.Port).Str("db_driver", cfg.DBDriver).Send()
		errCh <- app.Listen(":" + cfg.Port)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info().Str("action", "server.shutdown").Str("signal", sig.String()).Send()
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
