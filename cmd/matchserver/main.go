package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Garsondee/Match-Sim/internal/game"
	"github.com/Garsondee/Match-Sim/internal/server"
	"github.com/Garsondee/Match-Sim/internal/store"
)

func main() {
	var addr string
	var driver string
	var dsn string
	var tick time.Duration
	var retain time.Duration
	var configPath string
	var verbose bool

	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.StringVar(&driver, "db-driver", "sqlite", "database driver (sqlite|postgres)")
	flag.StringVar(&dsn, "dsn", "matches.db", "database file path or postgres connection string")
	flag.DurationVar(&tick, "tick", server.DefaultTick, "interval between simulation ticks")
	flag.DurationVar(&retain, "retain", server.DefaultRunRetention, "how long ended runs stay in memory")
	flag.StringVar(&configPath, "config", "", "optional YAML tuning overlay")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := slog.New(log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "matchserver",
	}))

	cfg := game.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = game.LoadConfig(configPath); err != nil {
			logger.Error("load config", "path", configPath, "err", err)
			os.Exit(1)
		}
	}

	st, err := store.Open(driver, dsn)
	if err != nil {
		logger.Error("open store", "driver", driver, "err", err)
		os.Exit(1)
	}
	defer st.Close()

	srv := server.New(st,
		server.WithLogger(logger),
		server.WithTick(tick),
		server.WithRunRetention(retain),
		server.WithConfig(cfg),
	)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", addr, "driver", driver, "tick", tick)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("stop runs", "err", err)
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
}
