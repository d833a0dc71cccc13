// Package notify holds the outbound notification transports and the bounded
// background runner that delivers through them.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of background delivery work.
type Task func(ctx context.Context) error

// Runner runs notification tasks in the background with a concurrency cap.
// Submitting never blocks: when every slot is busy the task is dropped.
type Runner struct {
	group   errgroup.Group
	log     *zap.Logger
	timeout time.Duration

	// mu orders submissions against Wait; closed is guarded by it.
	mu     sync.RWMutex
	closed bool
}

// NewRunner creates a runner with at most limit concurrent tasks, each bounded
// by timeout.
func NewRunner(limit int, timeout time.Duration, log *zap.Logger) *Runner {
	if limit <= 0 {
		limit = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{log: log, timeout: timeout}
	r.group.SetLimit(limit)
	return r
}

// Go schedules task under name. It reports false if the task was dropped
// because the runner is full or draining.
func (r *Runner) Go(name string, task Task) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.log.Warn("notification dropped, runner is draining", zap.String("task", name))
		return false
	}

	ok := r.group.TryGo(func() error {
		r.run(name, task)
		return nil
	})
	if !ok {
		r.log.Warn("notification dropped, runner is full", zap.String("task", name))
	}
	return ok
}

func (r *Runner) run(name string, task Task) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("notification panicked", zap.String("task", name), zap.String("panic", fmt.Sprint(p)))
		}
	}()

	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if err := task(ctx); err != nil {
		r.log.Error("notification failed", zap.String("task", name), zap.Error(err))
		return
	}
	r.log.Debug("notification sent", zap.String("task", name))
}

// Wait stops accepting tasks and blocks until the running ones finish. A Go
// call racing with Wait is either waited for or dropped.
func (r *Runner) Wait() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	_ = r.group.Wait()
}
