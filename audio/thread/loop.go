// Package thread drives audio runs. A loop launches the queued tasks at
// the start of every tick and then plays each sound scope on its own
// goroutine.
package thread

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/task"
	"github.com/gsequencer/ags/log"
	"github.com/gsequencer/ags/metric"
)

var logger log.Logger = log.Component(log.GetLogger(), "audio-loop")

// DefaultInterval is used when loop isn't configured with tick interval.
const DefaultInterval = 10 * time.Millisecond

// Clock returns a channel of ticks with interval and a function to stop it.
type Clock func(interval time.Duration) (<-chan time.Time, func())

// Loop is the audio loop. It implements task.Registry so audios can be
// added and removed with tasks.
type Loop struct {
	tasks    *task.Thread
	interval time.Duration
	clock    Clock
	logger   log.Logger

	eventc chan event
	donec  chan struct{}

	mu     sync.Mutex
	state  State
	ticks  uint64
	audios []*audio.Audio
}

// Option provides a way to set functional parameters to loop.
type Option func(*Loop)

// WithTasks sets the task thread launched at the start of every tick.
func WithTasks(t *task.Thread) Option {
	return func(l *Loop) {
		l.tasks = t
	}
}

// WithInterval sets tick interval.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		l.interval = d
	}
}

// WithBufferTime sets tick interval to the duration of one buffer.
func WithBufferTime(samplerate, bufferSize int) Option {
	return func(l *Loop) {
		if d := metric.DurationOf(samplerate, int64(bufferSize)); d > 0 {
			l.interval = d
		}
	}
}

// WithClock sets the source of ticks.
func WithClock(c Clock) Option {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithLogger sets logger of the loop.
func WithLogger(lg log.Logger) Option {
	return func(l *Loop) {
		l.logger = lg
	}
}

// New creates a loop in Ready state.
func New(options ...Option) *Loop {
	l := &Loop{
		interval: DefaultInterval,
		clock:    tickerClock,
		logger:   logger,
		eventc:   make(chan event),
		donec:    make(chan struct{}),
	}
	for _, option := range options {
		option(l)
	}
	if l.tasks == nil {
		l.tasks = task.NewThread()
	}
	return l
}

func tickerClock(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Tasks returns the task thread of the loop.
func (l *Loop) Tasks() *task.Thread {
	return l.tasks
}

// State returns current state of the loop.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Ticks returns number of ticks played.
func (l *Loop) Ticks() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

// AddAudio adds audio to the loop. It's a no-op if audio is added already.
func (l *Loop) AddAudio(a *audio.Audio) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, v := range l.audios {
		if v == a {
			return
		}
	}
	l.audios = append(l.audios, a)
}

// RemoveAudio removes audio from the loop.
func (l *Loop) RemoveAudio(a *audio.Audio) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, v := range l.audios {
		if v == a {
			l.audios = append(l.audios[:i], l.audios[i+1:]...)
			return
		}
	}
}

// Audios returns snapshot of audios played by the loop.
func (l *Loop) Audios() []*audio.Audio {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*audio.Audio(nil), l.audios...)
}

// Run starts the loop. Ticks are played until ctx is done or Stop is
// called. Returned channel is closed when the loop is stopped.
func (l *Loop) Run(ctx context.Context) (<-chan struct{}, error) {
	l.mu.Lock()
	if l.state != Ready {
		l.mu.Unlock()
		return nil, fmt.Errorf("run loop in %v state: %w", l.state, ErrInvalidState)
	}
	l.state = Running
	l.mu.Unlock()

	tickc, stopClock := l.clock(l.interval)
	go func() {
		defer close(l.donec)
		defer stopClock()
		var s stateFn = running{}
		for s != nil {
			s = s.listen(ctx, l, tickc)
		}
		l.setState(Stopped)
		l.logger.Debugf("audio loop: stopped after %d ticks", l.Ticks())
	}()
	return l.donec, nil
}

// Pause pauses the running loop.
func (l *Loop) Pause() error {
	return l.send(pause{make(feedback)})
}

// Resume continues the paused loop.
func (l *Loop) Resume() error {
	return l.send(resume{make(feedback)})
}

// Stop stops the loop and waits until it's done.
func (l *Loop) Stop() error {
	if err := l.send(stop{make(feedback)}); err != nil {
		return err
	}
	<-l.donec
	return nil
}

// send passes event to the loop goroutine and waits for the feedback.
func (l *Loop) send(e event) error {
	if s := l.State(); s == Ready || s == Stopped {
		return fmt.Errorf("send event in %v state: %w", s, ErrInvalidState)
	}
	select {
	case l.eventc <- e:
	case <-l.donec:
		return fmt.Errorf("send event: %w", ErrInvalidState)
	}
	return <-e.errc()
}

// run is a live run of an audio.
type run struct {
	audio *audio.Audio
	id    *audio.RecallID
}

// Tick launches the queued tasks and then plays one tick of every live
// run. Runs of the same sound scope are played in order on one
// goroutine, different scopes in parallel. Once all scopes are played the
// run outputs of every audio are mixed. Task errors are returned but
// don't prevent the tick.
func (l *Loop) Tick() error {
	taskErr := l.tasks.Launch()

	scopes := make(map[audio.SoundScope][]run)
	for _, a := range l.Audios() {
		for _, id := range a.RecallIDs() {
			if id.HasState(audio.StateDone) {
				continue
			}
			scopes[id.SoundScope()] = append(scopes[id.SoundScope()], run{audio: a, id: id})
		}
	}

	var g errgroup.Group
	for scope, runs := range scopes {
		scope, runs := scope, runs
		g.Go(func() error {
			return l.play(scope, runs)
		})
	}
	err := g.Wait()
	for _, a := range l.Audios() {
		a.Mix()
	}

	l.mu.Lock()
	l.ticks++
	l.mu.Unlock()

	if taskErr != nil {
		return fmt.Errorf("launch tasks: %w", taskErr)
	}
	return err
}

// play ticks runs of one sound scope. A panic in a recall stops this
// scope for the current tick only.
func (l *Loop) play(scope audio.SoundScope, runs []run) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v scope: %v", scope, p)
		}
	}()
	for _, r := range runs {
		m := metric.For(r.audio.Name(), r.audio.Samplerate())
		for _, st := range audio.TickStages() {
			start := time.Now()
			r.audio.Play(r.id, st)
			m.Stage(st.String(), time.Since(start))
		}
		m.Tick(int64(r.audio.BufferSize()))
		if r.audio.FinishTick(r.id) {
			l.logger.Debugf("audio loop: %s %v run %v done", r.audio.Name(), scope, r.id)
		}
	}
	return nil
}
