package main

import (
	"context"
	"encoding/json"
	"fmt"

	cli "github.com/urfave/cli/v3"
)

func fireCommand() *cli.Command {
	return &cli.Command{
		Name:  "fire",
		Usage: "Fire one domain event and wait for triggered workflows to settle",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "event",
				Usage:    "Event name (e.g. lead.created)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "tenant",
				Usage:    "Tenant id",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "payload",
				Usage: "Event payload as a JSON object",
				Value: "{}",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			s, err := buildStack(ctx, command)
			if err != nil {
				return err
			}
			defer s.close(ctx)

			var payload map[string]any

			err = json.Unmarshal([]byte(command.String("payload")), &payload)
			if err != nil {
				return fmt.Errorf("invalid payload: %w", err)
			}

			// Trigger directly instead of publishing: the command exits
			// once every matched execution has settled.
			s.router.TriggerByEvent(ctx, command.String("event"), command.String("tenant"), payload)

			return nil
		},
	}
}
