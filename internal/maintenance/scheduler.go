// Package maintenance runs periodic housekeeping jobs such as pruning idle
// rate limiter buckets and expired cache entries.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps a cron instance whose jobs log their outcome through zap.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	jobs   map[string]cron.EntryID
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

// New creates a stopped scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("maintenance")
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger{logger: logger}),
			cron.WithChain(cron.Recover(cronLogger{logger: logger})),
		),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// Every registers fn under name using a cron spec such as "@every 1m".
// fn returns how many items it removed.
func (s *Scheduler) Every(spec, name string, fn func() int) error {
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}
	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		removed := fn()
		s.logger.Debug("job finished",
			zap.String("job", name),
			zap.Int("removed", removed),
			zap.Duration("took", time.Since(start)),
		)
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", name, err)
	}
	s.jobs[name] = id
	return nil
}

// RunNow runs a registered job synchronously.
func (s *Scheduler) RunNow(name string) bool {
	id, ok := s.jobs[name]
	if !ok {
		return false
	}
	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return false
	}
	entry.Job.Run()
	return true
}

// Jobs reports the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.jobs)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
