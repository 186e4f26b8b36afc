package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"coop-service/internal/service"
)

// Scheduler runs the periodic overdue sweep: installments past their due date
// are flipped to overdue and their members are reminded.
type Scheduler struct {
	cron     *cron.Cron
	payLater service.PayLaterService
	logger   *logrus.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(payLater service.PayLaterService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		payLater: payLater,
		logger:   logger,
	}
}

// Start registers the sweep on the given cron spec and starts the scheduler
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOverdueSweep); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infof("Overdue sweep scheduled: %s", spec)

	return nil
}

// Stop stops the scheduler, waiting for a running sweep to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runOverdueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := s.payLater.MarkOverdueInstallments(ctx)
	if err != nil {
		s.logger.Warnf("Overdue sweep failed: %v", err)
		return
	}

	if err := s.payLater.SendOverdueReminders(ctx); err != nil {
		s.logger.Warnf("Failed to send overdue reminders: %v", err)
	}

	s.logger.Infof("Overdue sweep finished, %d installments marked", count)
}
