package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Match-Sim/internal/game"
	"github.com/Garsondee/Match-Sim/internal/viewer"
)

func main() {
	var targetA, targetB int
	var seed int64
	var configPath string
	var verbose bool

	flag.IntVar(&targetA, "a", 2, "target goals for team A")
	flag.IntVar(&targetB, "b", 1, "target goals for team B")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "RNG seed")
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
		Prefix:          "match-sim",
	}))

	cfg := game.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = game.LoadConfig(configPath); err != nil {
			logger.Error("load config", "path", configPath, "err", err)
			os.Exit(1)
		}
	}

	m, err := game.New(targetA, targetB,
		game.WithSeed(seed),
		game.WithConfig(cfg),
		game.WithLogger(logger),
	)
	if err != nil {
		logger.Error("new match", "err", err)
		os.Exit(1)
	}

	v := viewer.New(m, viewer.WithLogger(logger))
	ebiten.SetWindowTitle("Match Sim")
	ebiten.SetWindowSize(v.Size())
	logger.Info("kick-off", "target", [2]int{targetA, targetB}, "seed", seed)
	if err := ebiten.RunGame(v); err != nil {
		logger.Error("run game", "err", err)
		os.Exit(1)
	}
}
