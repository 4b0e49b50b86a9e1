package main

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	cli "github.com/urfave/cli/v3"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/web"
)

func apiCommand() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Serve the automation HTTP API and consume domain events",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			s, err := buildStack(ctx, command)
			if err != nil {
				return err
			}
			defer s.close(ctx)

			// The gochannel bus is in-process, so the API node also runs
			// the router.
			err = s.router.Subscribe(ctx, s.bus)
			if err != nil {
				return err
			}

			sched, err := s.startScheduler()
			if err != nil {
				return err
			}

			if sched != nil {
				defer sched.Stop()
			}

			port := s.cfg.API.Port
			if command.Int("port") > 0 {
				port = command.Int("port")
			}

			s.logger.InfoContext(ctx, "Starting automation API", "port", port)

			return newApp(s).Listen(":" + strconv.Itoa(port))
		},
	}
}

func newApp(s *stack) *fiber.App {
	handlers := web.NewAPIHandlers(
		s.bus,
		s.store.ExecutionRepository(),
		validator.New(validator.WithRequiredStructEnabled()),
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	v1 := app.Group("/api/v1")
	v1.Post("/events", handlers.FireEvent)
	v1.Get("/executions/:id", handlers.GetExecution)
	v1.Get("/workflows/:id/executions", handlers.ListWorkflowExecutions)

	return app
}
