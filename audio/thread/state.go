package thread

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidState is returned if loop method cannot be executed at this moment.
	ErrInvalidState = errors.New("invalid state")
)

// State identifies one of the possible states loop can be in.
type State int

// States of the loop.
const (
	// Ready means that loop can be started.
	Ready State = iota
	// Running means that loop is ticking at the moment.
	Running
	// Paused means that loop is paused and can be resumed.
	Paused
	// Stopped means that loop is done and cannot be started again.
	Stopped
)

var stateNames = [...]string{
	Ready:   "ready",
	Running: "running",
	Paused:  "paused",
	Stopped: "stopped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// stateFn listens to loop channels in one state.
type stateFn interface {
	state() State
	listen(ctx context.Context, l *Loop, tickc <-chan time.Time) stateFn
	transition(l *Loop, e event) (stateFn, error)
}

// states
type (
	running struct{}
	paused  struct{}
)

// event triggers the state change.
// Use imperative verbs for implementations.
type event interface {
	errc() chan error
}

// feedback is a wrapper for error channels. It's used to give feedback
// about state change or error occurred during that change.
type feedback chan error

func (f feedback) errc() chan error {
	return f
}

// dismiss closes feedback channel.
func (f feedback) dismiss() {
	if f != nil {
		close(f)
	}
}

type (
	pause  struct{ feedback }
	resume struct{ feedback }
	stop   struct{ feedback }
)

func (running) state() State {
	return Running
}

func (s running) listen(ctx context.Context, l *Loop, tickc <-chan time.Time) stateFn {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-l.eventc:
			if next := l.handle(s, e); next != stateFn(s) {
				return next
			}
		case <-tickc:
			if err := l.Tick(); err != nil {
				l.logger.Warnf("audio loop: tick %d: %v", l.Ticks(), err)
			}
		}
	}
}

func (s running) transition(l *Loop, e event) (stateFn, error) {
	switch e.(type) {
	case stop:
		return nil, nil
	case pause:
		return paused{}, nil
	}
	return s, ErrInvalidState
}

func (paused) state() State {
	return Paused
}

func (s paused) listen(ctx context.Context, l *Loop, _ <-chan time.Time) stateFn {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-l.eventc:
			if next := l.handle(s, e); next != stateFn(s) {
				return next
			}
		}
	}
}

func (s paused) transition(l *Loop, e event) (stateFn, error) {
	switch e.(type) {
	case stop:
		return nil, nil
	case resume:
		return running{}, nil
	}
	return s, ErrInvalidState
}

// handle applies event to state s and gives feedback to the caller.
func (l *Loop) handle(s stateFn, e event) stateFn {
	next, err := s.transition(l, e)
	if err != nil {
		e.errc() <- err
		return s
	}
	if next == nil {
		l.setState(Stopped)
	} else {
		l.setState(next.state())
	}
	feedback(e.errc()).dismiss()
	return next
}
