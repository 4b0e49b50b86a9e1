package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
)

func workerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Consume domain events and execute matching workflows",
		Action: func(ctx context.Context, command *cli.Command) error {
			s, err := buildStack(ctx, command)
			if err != nil {
				return err
			}
			defer s.close(ctx)

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

			s.logger.InfoContext(ctx, "Automation worker started")

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop

			s.logger.InfoContext(ctx, "Automation worker shutting down")

			return nil
		},
	}
}
