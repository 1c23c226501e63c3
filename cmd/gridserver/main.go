// Package main provides the grid server binary: a websocket endpoint for
// room-based navigation and chat over a three-dimensional room grid.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gridmud/internal/config"
	"github.com/cory-johannsen/gridmud/internal/game/command"
	"github.com/cory-johannsen/gridmud/internal/game/session"
	"github.com/cory-johannsen/gridmud/internal/game/world"
	"github.com/cory-johannsen/gridmud/internal/gameserver"
	"github.com/cory-johannsen/gridmud/internal/observability"
	"github.com/cory-johannsen/gridmud/internal/server"
	"github.com/cory-johannsen/gridmud/internal/transport/ws"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	worldPath := flag.String("world", "", "path to world definition file; overrides world.path from config")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *worldPath != "" {
		cfg.World.Path = *worldPath
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer observability.Sync(logger)

	logger.Info("starting grid server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("world_path", cfg.World.Path),
	)

	// Load world
	worldStart := time.Now()
	worldMgr, err := world.LoadFromFile(cfg.World.Path)
	if err != nil {
		logger.Fatal("loading world", zap.Error(err))
	}
	if !worldMgr.Exists(world.Origin) {
		// Every new session spawns at the origin, so a world without it
		// is unusable.
		logger.Fatal("world has no room at the origin",
			zap.String("world_path", cfg.World.Path),
		)
	}
	logger.Info("world loaded",
		zap.Int("rooms", worldMgr.RoomCount()),
		zap.Duration("elapsed", time.Since(worldStart)),
	)

	// Create managers
	sessMgr := session.NewManager()
	cmdRegistry := command.DefaultRegistry()
	notifier := gameserver.NewNotifier(sessMgr, observability.Component(logger, "notifier"))
	service := gameserver.NewService(worldMgr, sessMgr, cmdRegistry, notifier,
		observability.Component(logger, "gameserver"))

	acceptor := ws.NewAcceptor(cfg.Server, service, observability.Component(logger, "transport"))

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("websocket", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("grid server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("commands", len(cmdRegistry.Commands())),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
