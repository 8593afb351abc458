package scheduler

import (
	"context"
	"time"

	"coworking_compliance/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ComplianceScheduler fires the compliance pass on a cron spec. Each firing
// runs under a timeout so a slow store cannot wedge the cron goroutine.
type ComplianceScheduler struct {
	cronEngine  *cron.Cron
	runner      *app.Runner
	logger      *logrus.Entry
	cronSpec    string
	passTimeout time.Duration
}

func NewComplianceScheduler(runner *app.Runner, logger *logrus.Entry, cronSpec string, passTimeout time.Duration) *ComplianceScheduler {
	return &ComplianceScheduler{
		cronEngine:  cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		runner:      runner,
		logger:      logger,
		cronSpec:    cronSpec,
		passTimeout: passTimeout,
	}
}

func (s *ComplianceScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron trigger fired for compliance pass")
		ctx, cancel := context.WithTimeout(context.Background(), s.passTimeout)
		defer cancel()
		s.runner.Run(ctx)
	})
	if err != nil {
		return err
	}
	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Compliance scheduler started")
	return nil
}

func (s *ComplianceScheduler) Stop() {
	s.logger.Info("Stopping compliance scheduler...")
	ctx := s.cronEngine.Stop() // Waits for a running pass to finish.
	<-ctx.Done()
	s.logger.Info("Compliance scheduler stopped")
}
