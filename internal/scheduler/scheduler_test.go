package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"QuoteLens/pkg/cache"
	applogger "QuoteLens/pkg/logger"
)

func TestAddRejectsBadSchedule(t *testing.T) {
	s := New(applogger.NewNop(), nil)
	err := s.Add(Job{Name: "bad", Schedule: "every tuesday", Run: func(context.Context) error { return nil }})
	if err == nil {
		t.Fatalf("expected schedule error")
	}
	if err := s.Add(Job{Name: "nil", Schedule: "@every 1m"}); err == nil {
		t.Fatalf("expected error for missing run func")
	}
	if err := s.Add(Job{Name: "ok", Schedule: "*/15 * * * *", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
}

func TestRunNowHonoursLock(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	s := New(applogger.NewNop(), mc)

	runs := 0
	job := Job{Name: "refresh", Timeout: time.Minute, Run: func(context.Context) error {
		runs++
		return nil
	}}

	ok, _ := mc.TryLock(context.Background(), "lock:job:refresh", time.Minute)
	if !ok {
		t.Fatalf("could not take lock")
	}
	s.RunNow(job)
	if runs != 0 {
		t.Fatalf("job ran while locked")
	}

	_ = mc.Unlock(context.Background(), "lock:job:refresh")
	s.RunNow(job)
	s.RunNow(job)
	if runs != 2 {
		t.Fatalf("runs = %d, want 2 (lock must be released after each run)", runs)
	}
}

func TestRunNowSurvivesJobError(t *testing.T) {
	s := New(applogger.NewNop(), nil)
	called := false
	s.RunNow(Job{Name: "fail", Run: func(context.Context) error {
		called = true
		return errors.New("boom")
	}})
	if !called {
		t.Fatalf("job not run")
	}
}

func TestStartStop(t *testing.T) {
	s := New(applogger.NewNop(), nil)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
