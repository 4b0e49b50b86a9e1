// Package cmd provides common initialization for the command-line binary.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/channels/gochannel"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/channels/kafka"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/eventbus"
)

// NewEventBus creates an event bus for the named provider. gochannel is
// in-process only; kafka requires KAFKA_BROKERS.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "litecrm-automation")
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	case "gochannel", "":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			panic(fmt.Errorf("failed to create gochannel pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
