// Package scheduler runs periodic jobs on cron schedules evaluated in UTC.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"spin-rewards/internal/observability"
)

// Job is a scheduled unit of work.
type Job func(ctx context.Context) error

// Runner wraps a cron instance. Overlapping runs of the same job are skipped.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

// New creates a runner whose jobs receive baseCtx.
func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")

	return &Runner{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(
				cron.Recover(cronLogger{logger}),
				cron.SkipIfStillRunning(cronLogger{logger}),
			),
		),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add registers job under name with a standard 5-field spec or descriptor.
func (r *Runner) Add(name, spec string, job Job) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() {
		r.run(name, job)
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	r.logger.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return id, nil
}

func (r *Runner) run(name string, job Job) {
	if r.baseCtx.Err() != nil {
		return
	}

	start := time.Now()
	err := job(r.baseCtx)
	elapsed := time.Since(start)
	observability.RecordJobRun(name, elapsed.Seconds(), err)

	if err != nil {
		r.logger.Error("job failed", zap.String("job", name), zap.Duration("elapsed", elapsed), zap.Error(err))
		return
	}
	r.logger.Debug("job finished", zap.String("job", name), zap.Duration("elapsed", elapsed))
}

// Start begins running scheduled jobs in the background.
func (r *Runner) Start() {
	r.logger.Info("cron started")
	r.cron.Start()
}

// Stop prevents new runs and waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("cron stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
