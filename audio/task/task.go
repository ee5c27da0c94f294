// Package task defers mutations of audio, channels and recalls to the
// start of an audio loop tick.
package task

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gsequencer/ags/log"
)

var logger log.Logger = log.Component(log.GetLogger(), "task")

// Task is a deferred mutation.
type Task interface {
	Launch() error
}

// Func is a task defined by function.
type Func func() error

// Launch calls f.
func (f Func) Launch() error {
	return f()
}

// Errors wraps errors of tasks launched together.
type Errors []error

func (e Errors) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ",")
}

// Is checks if any of errors match target.
func (e Errors) Is(target error) bool {
	for _, err := range e {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ret returns untyped nil if error list is empty.
func (e Errors) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}

// Thread queues tasks until they are launched. Tasks scheduled together
// are launched together in the order of scheduling.
type Thread struct {
	mu      sync.Mutex
	pending []Task
	// notifies Run about pending tasks.
	signalc chan struct{}
}

// NewThread returns empty task thread.
func NewThread() *Thread {
	return &Thread{
		signalc: make(chan struct{}, 1),
	}
}

// ScheduleTask queues task.
func (t *Thread) ScheduleTask(task Task) {
	t.ScheduleTaskAll(task)
}

// ScheduleTaskAll queues tasks atomically.
func (t *Thread) ScheduleTaskAll(tasks ...Task) {
	if len(tasks) == 0 {
		return
	}
	t.mu.Lock()
	t.pending = append(t.pending, tasks...)
	t.mu.Unlock()
	select {
	case t.signalc <- struct{}{}:
	default:
	}
}

// Pending returns number of queued tasks.
func (t *Thread) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Launch runs all queued tasks. A failed task doesn't stop the others.
func (t *Thread) Launch() error {
	t.mu.Lock()
	tasks := t.pending
	t.pending = nil
	t.mu.Unlock()

	var errs Errors
	for _, task := range tasks {
		if err := task.Launch(); err != nil {
			logger.Warnf("task: %v", err)
			errs = append(errs, err)
		}
	}
	return errs.ret()
}

// Run launches tasks as they are scheduled until ctx is done. It's used
// when no audio loop drains the thread.
func (t *Thread) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.signalc:
			t.Launch()
		}
	}
}
