package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService runs the periodic drift check
type CronService struct {
	cron     *cron.Cron
	drift    *DriftService
	schedule string
}

// NewCronService creates a new cron service. An empty schedule disables it.
func NewCronService(drift *DriftService, schedule string) *CronService {
	return &CronService{
		cron:     cron.New(),
		drift:    drift,
		schedule: schedule,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if s.schedule == "" {
		log.Println("⚠️ Drift check schedule is empty, cron disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.drift.Run(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("⏰ Cron started [drift check: %s]", s.schedule)
	return nil
}

// Stop waits for a running job to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 Cron stopped")
}
