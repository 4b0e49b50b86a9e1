// Package scheduler publishes SCHEDULED domain events on cron specs, giving
// time-based workflows a trigger source.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/config"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/eventbus"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/log"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/router"
)

type Scheduler struct {
	cron      *cron.Cron
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func New(publisher eventbus.EventPublisher) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		publisher: publisher,
		logger:    log.WithModule("scheduler"),
	}
}

// Add registers one tenant schedule. The entry fires a "scheduled" domain
// event with the configured payload each time the cron spec matches.
func (s *Scheduler) Add(schedule config.Schedule) error {
	_, err := s.cron.AddFunc(schedule.Cron, func() {
		s.logger.Info("Firing scheduled event", "tenant_id", schedule.TenantID, "cron", schedule.Cron)
		router.Fire(context.Background(), s.publisher, "scheduled", schedule.TenantID, schedule.Payload)
	})

	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight entries to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
