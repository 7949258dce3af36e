package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestScheduler_Register(t *testing.T) {
	s := New(slog.Default())

	if err := s.Register("demo", "0 6 * * *", time.Minute, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("rejects duplicate names", func(t *testing.T) {
		err := s.Register("demo", "0 7 * * *", time.Minute, func(ctx context.Context) error { return nil })
		if err == nil {
			t.Error("expected error for duplicate task name")
		}
	})

	t.Run("rejects invalid cron expressions", func(t *testing.T) {
		err := s.Register("broken", "not a schedule", time.Minute, func(ctx context.Context) error { return nil })
		if err == nil {
			t.Error("expected error for invalid schedule")
		}
	})
}

func TestScheduler_Trigger(t *testing.T) {
	t.Run("unknown task", func(t *testing.T) {
		s := New(slog.Default())
		if err := s.Trigger("nope"); err == nil {
			t.Error("expected error for unknown task")
		}
	})

	t.Run("runs the handler", func(t *testing.T) {
		s := New(slog.Default())
		var ran atomic.Bool
		if err := s.Register("demo", "0 6 * * *", time.Minute, func(ctx context.Context) error {
			ran.Store(true)
			return nil
		}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if err := s.Trigger("demo"); err != nil {
			t.Fatalf("Trigger failed: %v", err)
		}
		waitFor(t, time.Second, ran.Load)
	})

	t.Run("refuses while running", func(t *testing.T) {
		s := New(slog.Default())
		release := make(chan struct{})
		started := make(chan struct{})
		if err := s.Register("slow", "0 6 * * *", time.Minute, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if err := s.Trigger("slow"); err != nil {
			t.Fatalf("first Trigger failed: %v", err)
		}
		<-started

		if err := s.Trigger("slow"); err == nil {
			t.Error("expected error while the task is running")
		}
		close(release)
	})
}

func TestScheduler_RecordsFailures(t *testing.T) {
	s := New(slog.Default())
	var calls atomic.Int32
	if err := s.Register("flaky", "0 6 * * *", time.Minute, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := s.Trigger("flaky"); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	waitFor(t, time.Second, func() bool { return calls.Load() == 1 })
	waitFor(t, time.Second, func() bool {
		return s.Statuses()[0].LastError == "boom"
	})

	status := s.Statuses()[0]
	if status.IsRunning {
		t.Error("expected task to be idle after failure")
	}
	if status.LastRun == nil {
		t.Error("expected LastRun to be set")
	}
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	s := New(slog.Default())
	if err := s.Register("panicky", "0 6 * * *", time.Minute, func(ctx context.Context) error {
		panic("kaboom")
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := s.Trigger("panicky"); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	waitFor(t, time.Second, func() bool {
		return s.Statuses()[0].LastError != ""
	})

	// A panicking task must stay triggerable.
	waitFor(t, time.Second, func() bool { return s.Trigger("panicky") == nil })
}

func TestScheduler_HandlerDeadline(t *testing.T) {
	s := New(slog.Default())
	got := make(chan error, 1)
	if err := s.Register("deadline", "0 6 * * *", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		got <- ctx.Err()
		return ctx.Err()
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := s.Trigger("deadline"); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}

	select {
	case err := <-got:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("ctx err = %v, want DeadlineExceeded", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handler did not observe its deadline")
	}
}

func TestScheduler_Statuses(t *testing.T) {
	s := New(slog.Default())
	for _, name := range []string{"first", "second"} {
		if err := s.Register(name, "0 6 * * *", time.Minute, func(ctx context.Context) error { return nil }); err != nil {
			t.Fatalf("Register %s failed: %v", name, err)
		}
	}

	statuses := s.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}
	if statuses[0].Name != "first" || statuses[1].Name != "second" {
		t.Errorf("order = [%s %s], want registration order", statuses[0].Name, statuses[1].Name)
	}
	if statuses[0].NextRun != nil {
		t.Error("expected no NextRun before Start")
	}

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	statuses = s.Statuses()
	if statuses[0].NextRun == nil {
		t.Error("expected NextRun after Start")
	}
}
