package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"QuoteLens/internal/scheduler"
	"QuoteLens/internal/service/ratelimit"
	"QuoteLens/internal/usecase"
	"QuoteLens/pkg/config"
	xhttp "QuoteLens/pkg/http"
	pkgkafka "QuoteLens/pkg/kafka"
	applogger "QuoteLens/pkg/logger"
)

const (
	liveSyncSchedule  = "@every 1m"
	limiterPruneEvery = "@every 10m"
	limiterIdle       = 10 * time.Minute
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	sched      *scheduler.Scheduler
	refresher  *usecase.WatchlistRefresher
	limiter    *ratelimit.Limiter
	live       *usecase.LivePrices
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
}

// New creates a new App. live, consumer and kh are nil when their subsystem is disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	sched *scheduler.Scheduler,
	refresher *usecase.WatchlistRefresher,
	limiter *ratelimit.Limiter,
	live *usecase.LivePrices,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaQuotesHandler,
) *App {
	a := &App{
		cfg:        cfg,
		log:        l,
		httpServer: httpServer,
		sched:      sched,
		refresher:  refresher,
		limiter:    limiter,
		live:       live,
		consumer:   consumer,
	}
	if kh != nil {
		a.kh = kh
	}
	return a
}

// Run starts every enabled subsystem and blocks until ctx ends, a termination
// signal arrives or the HTTP server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.live != nil {
		if err := a.live.Start(ctx); err != nil {
			a.log.Warn("live prices disabled for this run", applogger.Error(err))
			_ = a.live.Shutdown(ctx)
			a.live = nil
		} else {
			a.log.Info("live prices started")
		}
	}

	if err := a.registerJobs(); err != nil {
		return errors.Join(err, a.shutdown())
	}
	a.sched.Start()
	errCh := a.httpServer.Start()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok && err != nil {
			a.log.Error("http server failed", applogger.Error(err))
			runErr = err
		}
	}

	return errors.Join(runErr, a.shutdown())
}

func (a *App) registerJobs() error {
	jobs := []scheduler.Job{{
		Name:     "ratelimit-prune",
		Schedule: limiterPruneEvery,
		Timeout:  time.Minute,
		Run: func(context.Context) error {
			if n := a.limiter.Prune(limiterIdle); n > 0 {
				a.log.Debug("pruned idle rate limit buckets", applogger.Int("count", n))
			}
			return nil
		},
	}}

	if a.cfg.Refresh.Enabled {
		jobs = append(jobs, scheduler.Job{
			Name:     "watchlist-refresh",
			Schedule: a.cfg.Refresh.Schedule,
			Timeout:  5 * time.Minute,
			Run: func(ctx context.Context) error {
				rep, err := a.refresher.Refresh(ctx)
				if err != nil {
					return err
				}
				a.log.Info("watchlist refreshed",
					applogger.Int("updated", len(rep.Updated)),
					applogger.Int("skipped", len(rep.Skipped)),
					applogger.Int("failed", len(rep.Failed)),
				)
				return nil
			},
		})
	}

	if a.live != nil {
		jobs = append(jobs, scheduler.Job{
			Name:     "live-sync",
			Schedule: liveSyncSchedule,
			Timeout:  30 * time.Second,
			Run:      a.live.Sync,
		})
	}

	for _, j := range jobs {
		if err := a.sched.Add(j); err != nil {
			return err
		}
	}
	return nil
}

// shutdown stops the subsystems in reverse start order.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.sched.Stop(ctx); err != nil {
		a.log.Warn("scheduler stop error", applogger.Error(err))
	}
	if a.live != nil {
		if err := a.live.Shutdown(ctx); err != nil {
			a.log.Warn("live prices stop error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
