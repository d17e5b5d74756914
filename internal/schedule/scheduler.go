package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"gitdocsync/internal/pkg/logutil"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// CronScheduler runs maintenance jobs on cron specs. A still-running job
// skips its next tick instead of overlapping.
type CronScheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{cron: cron.New(cron.WithParser(parser))}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	if _, err := c.cron.AddFunc(spec, c.wrap(job, spec)); err != nil {
		return err
	}
	logutil.L().Info("job scheduled", zap.String("job", job.Name()), zap.String("spec", spec))
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.cron.Start()
}

func (c *CronScheduler) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

func (c *CronScheduler) wrap(job Job, spec string) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			logutil.L().Info("job skipped: still running", zap.String("job", job.Name()))
			return
		}
		defer running.Store(false)

		ctx := c.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		logger := logutil.L().With(zap.String("job", job.Name()), zap.String("spec", spec))
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			logger.Error("job finished", zap.Error(err), zap.Duration("duration", time.Since(start)))
			return
		}
		logger.Info("job finished", zap.Duration("duration", time.Since(start)))
	}
}
