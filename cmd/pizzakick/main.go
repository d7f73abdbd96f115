package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/pizzakick/pizzakick/internal/config"
	"github.com/pizzakick/pizzakick/internal/game"
	"github.com/pizzakick/pizzakick/internal/logging"
	"github.com/pizzakick/pizzakick/internal/persist"
	"github.com/pizzakick/pizzakick/internal/render"
)

var (
	configFlag  = flag.String("config", "", "config file (default $"+config.EnvPath+" or "+config.DefaultPath+")")
	profileFlag = flag.String("profile", "", "write a profile: cpu|mem")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	switch *profileFlag {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown -profile %q, want cpu or mem", *profileFlag)
	}

	// 1. Load config
	cfg, cfgPath, err := config.Resolve(*configFlag)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	if cfgPath == "" {
		log.Info("no config file, using defaults")
	} else {
		log.Info("config loaded", zap.String("path", cfgPath))
	}

	// 3. Optional PostgreSQL for autosave
	var opts game.Options
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.Open(ctx, cfg.Database, log.Named("db"))
		cancel()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		opts.Snapshots = persist.NewSnapshotRepo(db)
		opts.Events = persist.NewEventLogRepo(db)
	}

	// 4. Assemble the level
	g, err := game.New(cfg, log, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	rg, err := render.NewGame(g, cfg, log.Named("render"))
	if err != nil {
		return err
	}

	// 5. Open the window and run until it closes
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Game.Title)
	ebiten.SetTPS(cfg.Game.TPS)
	log.Info("starting",
		zap.String("level", g.Level().Name),
		zap.Int("tps", cfg.Game.TPS),
		zap.Bool("autosave", opts.Snapshots != nil),
		zap.Bool("watch", cfg.Dev.Watch),
	)
	if err := ebiten.RunGame(rg); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game: %w", err)
	}
	log.Info("shutdown complete", zap.Uint64("ticks", g.World().Tick()))
	return nil
}
