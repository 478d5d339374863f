// Package schedule triggers cleanup runs on a cron schedule.
package schedule

import (
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs a job on a cron spec. Overlapping triggers are skipped so
// at most one run is in flight at a time.
type Scheduler struct {
	cron *cron.Cron
	spec string
	log  logrus.FieldLogger
}

// New parses the cron spec and registers the job.
func New(spec string, job func(), log logrus.FieldLogger) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, errors.Wrapf(err, "parse schedule %q", spec)
	}
	return &Scheduler{cron: c, spec: spec, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("schedule", s.spec).Info("Scheduler started")
}

// Stop stops triggering new runs; a run already in flight finishes on its
// own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("Scheduler stopped")
}
