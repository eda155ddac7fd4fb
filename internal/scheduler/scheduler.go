package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	applogger "QuoteLens/pkg/logger"
)

// Locker guards a job across processes sharing the same backend.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Job is one scheduled unit of work.
type Job struct {
	Name     string
	Schedule string // standard 5-field cron spec or a descriptor such as "@every 1m"
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs jobs on cron schedules. A run is skipped while the previous
// run of the same job still holds its lock.
type Scheduler struct {
	cron   *cron.Cron
	lock   Locker
	l      *applogger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. lock may be nil for single-process deployments.
func New(l *applogger.Logger, lock Locker) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger{l}))),
		lock:   lock,
		l:      l,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job. An invalid schedule is reported immediately.
func (s *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s has no run func", job.Name)
	}
	if _, err := s.cron.AddFunc(job.Schedule, func() { s.run(job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Schedule, err)
	}
	s.l.Info("job scheduled", applogger.String("job", job.Name), applogger.String("schedule", job.Schedule))
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx := s.ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	if s.lock != nil {
		key := "lock:job:" + job.Name
		ttl := job.Timeout
		if ttl <= 0 {
			ttl = time.Minute
		}
		ok, err := s.lock.TryLock(ctx, key, ttl)
		if err != nil {
			s.l.Warn("job lock failed", applogger.String("job", job.Name), applogger.Error(err))
			return
		}
		if !ok {
			s.l.Debug("job already running elsewhere", applogger.String("job", job.Name))
			return
		}
		defer func() { _ = s.lock.Unlock(context.Background(), key) }()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.l.Error("job failed", applogger.String("job", job.Name), applogger.Error(err))
		return
	}
	s.l.Debug("job done", applogger.String("job", job.Name), applogger.Duration("duration_ms", time.Since(start)))
}

// RunNow executes job synchronously with the same locking as a scheduled run.
func (s *Scheduler) RunNow(job Job) {
	s.run(job)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// cronLogger routes cron's internal logs to the application logger.
type cronLogger struct {
	l *applogger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, applogger.Any("kv", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, applogger.Error(err), applogger.Any("kv", keysAndValues))
}
