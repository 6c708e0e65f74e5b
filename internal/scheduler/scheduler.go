package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"cryptoscout/internal/application/scout"
)

// Scheduler drives the periodic scan and analysis cycles.
type Scheduler struct {
	cron *cron.Cron
	svc  *scout.Service
}

func New(svc *scout.Service) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		svc:  svc,
	}
}

// RegisterAll wires the two cron jobs: a full scan+analyze cycle and a
// catch-up analysis pass for projects the cycle missed.
func (s *Scheduler) RegisterAll(scanSpec, analyzeSpec string) error {
	if _, err := s.cron.AddFunc(scanSpec, func() {
		if err := s.svc.RunCycle(context.Background()); err != nil {
			log.Printf("[ERROR] scheduled cycle: %v", err)
		}
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(analyzeSpec, func() {
		if err := s.svc.RunAnalysis(context.Background()); err != nil {
			log.Printf("[ERROR] scheduled analysis: %v", err)
		}
	}); err != nil {
		return err
	}
	return nil
}

// Start begins scheduling in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("[INFO] scheduler started with %d jobs", len(s.cron.Entries()))
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[INFO] scheduler stopped")
}

// RunCycleNow triggers one cycle immediately, outside the cron cadence.
func (s *Scheduler) RunCycleNow(ctx context.Context) error {
	return s.svc.RunCycle(ctx)
}
