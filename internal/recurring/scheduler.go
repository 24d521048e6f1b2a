package recurring

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler is the periodic trigger adapter. It fires ProcessDue at a fixed
// interval; the manual admin endpoint can run concurrently because the
// per-template commit is what guards against double processing.
type Scheduler struct {
	svc      *Service
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(svc *Service, interval time.Duration) *Scheduler {
	return &Scheduler{svc: svc, interval: interval}
}

// Start launches the background loop. The first cycle runs immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)

	go s.run(ctx)

	slog.Info("recurring scheduler started", "interval", s.interval)
}

// Stop cancels the loop and waits for an in-flight cycle to wind down.
// Cancellation takes effect between templates, never mid-commit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.cancel = nil

	slog.Info("recurring scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.cycle(ctx)

	for {
		select {
		case <-ticker.C:
			s.cycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	result, err := s.svc.ProcessDue(ctx, time.Now().UTC())
	if err != nil {
		slog.Error("recurring cycle failed", "error", err)
		return
	}

	if result.Processed > 0 || len(result.Errors) > 0 {
		slog.Info("recurring cycle completed",
			"processed", result.Processed,
			"failed", len(result.Errors))
	}
}
