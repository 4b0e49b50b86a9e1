package main

import (
	"context"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"
	cli "github.com/urfave/cli/v3"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/cmd"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/config"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/connectors"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/credentials"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/engine"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/eventbus"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/log"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/otelhelper"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/router"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/scheduler"
)

// stack bundles everything one command needs.
type stack struct {
	cfg    *config.Config
	store  persistence.Persistence
	bus    eventbus.EventBus
	engine *engine.Engine
	router *router.Router
	logger *slog.Logger
}

func buildStack(ctx context.Context, command *cli.Command) (*stack, error) {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return nil, err
	}

	if level := command.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	log.Setup(cfg.LogLevel, cfg.LogFormat)
	logger := log.WithModule("cli")

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		_, err = otelhelper.NewTracer(ctx, "litecrm-automation")
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize tracing", "error", err)
		}
	}

	store := cmd.NewPersistence(cfg.DatabaseURL)
	bus := cmd.NewEventBus(cfg.EventBus, logger)

	conn := connectors.New(connectors.Options{
		Timeout: cfg.HTTPTimeout(),
		Guard: &connectors.Guard{
			AllowedHosts:  cfg.HTTP.AllowedHosts,
			AllowLoopback: cfg.HTTP.AllowLoopback,
		},
	}, logger)

	var creds credentials.Store
	if cfg.Redis.Addr != "" {
		creds = credentials.NewRedisStore(goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr}))
	} else {
		creds = credentials.NewMemoryStore()
	}

	eng := engine.New(store, creds, nil, conn, bus, engine.Options{
		MaxDepth:           cfg.Engine.MaxDepth,
		MaxWhileIterations: cfg.Engine.MaxWhileIterations,
		MaxDelay:           cfg.MaxDelay(),
		AIModel:            cfg.AI.Model,
		AIAPIKey:           cfg.AI.APIKey,
	})

	return &stack{
		cfg:    cfg,
		store:  store,
		bus:    bus,
		engine: eng,
		router: router.New(eng, store.WorkflowRepository()),
		logger: logger,
	}, nil
}

// startScheduler registers configured tenant schedules, if any.
func (s *stack) startScheduler() (*scheduler.Scheduler, error) {
	if len(s.cfg.Schedules) == 0 {
		return nil, nil
	}

	sched := scheduler.New(s.bus)

	for _, schedule := range s.cfg.Schedules {
		err := sched.Add(schedule)
		if err != nil {
			return nil, err
		}
	}

	sched.Start()

	return sched, nil
}

func (s *stack) close(ctx context.Context) {
	err := s.bus.Close()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
	}

	err = s.store.Close(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
	}
}
