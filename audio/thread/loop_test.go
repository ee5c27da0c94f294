package thread_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/recall"
	"github.com/gsequencer/ags/audio/task"
	"github.com/gsequencer/ags/audio/thread"
	"github.com/gsequencer/ags/metric"
	"github.com/gsequencer/ags/mock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	loopAudioRun   = &audio.Type{Name: "ags-test-loop-audio-run", Kind: audio.KindAudioRun}
	loopChannelRun = &audio.Type{Name: "ags-test-loop-channel-run", Kind: audio.KindChannelRun}
)

func newAudio(t *testing.T, name string, log *mock.Log, limit int64) *audio.Audio {
	t.Helper()
	a := audio.NewAudio(audio.Named(name), audio.WithAudioAbility(audio.AbilityNotation))
	a.SetAudioChannels(1)
	a.SetPads(true, 1)
	a.SetPads(false, 1)

	c := audio.NewContainer()
	a.AddRecallContainer(c)
	r, b := mock.Recall(loopAudioRun, name, log, audio.WithAudio(a))
	b.Limit = limit
	c.Add(r)
	a.AddRecall(r, true)
	for _, in := range a.Inputs() {
		in.AddRecallContainer(c)
		r, b := mock.Recall(loopChannelRun, name+"-input", log, audio.WithChannel(in))
		b.Limit = limit
		c.Add(r)
		in.AddRecall(r, false)
	}
	return a
}

// manualClock returns a clock driven by the returned channel.
func manualClock() (thread.Clock, chan<- time.Time) {
	tickc := make(chan time.Time)
	return func(time.Duration) (<-chan time.Time, func()) {
		return tickc, func() {}
	}, tickc
}

func TestTick(t *testing.T) {
	var tests = []struct {
		limit      int64
		ticks      int
		posts      int
		runs       int
		recallIDs  int
		lastIsDone bool
	}{
		{limit: 0, ticks: 3, posts: 3, recallIDs: 1},
		{limit: 2, ticks: 3, posts: 2, recallIDs: 0, lastIsDone: true},
		{limit: 5, ticks: 5, posts: 5, recallIDs: 0, lastIsDone: true},
	}
	for _, c := range tests {
		log := &mock.Log{}
		l := thread.New()
		a := newAudio(t, "tick", log, c.limit)
		l.Tasks().ScheduleTaskAll(
			task.AddAudio(l, a),
			task.StartAudio(a, audio.ScopeNotation),
		)
		for i := 0; i < c.ticks; i++ {
			assert.Nil(t, l.Tick())
		}
		assert.Equal(t, uint64(c.ticks), l.Ticks())
		assert.Equal(t, c.posts, log.Count("tick:run-post"))
		assert.Equal(t, c.posts, log.Count("tick-input:run-post"))
		assert.Equal(t, c.recallIDs, len(a.RecallIDs()))
		assert.Equal(t, c.lastIsDone, log.Count("tick:done") == 1)
	}
}

func TestTickScopes(t *testing.T) {
	log := &mock.Log{}
	l := thread.New()
	first := newAudio(t, "first", log, 0)
	second := audio.NewAudio(audio.Named("second"), audio.WithAudioAbility(audio.AbilitySequencer))
	second.SetAudioChannels(1)
	second.SetPads(true, 1)
	second.SetPads(false, 1)
	c := audio.NewContainer()
	second.AddRecallContainer(c)
	r, _ := mock.Recall(loopAudioRun, "second", log, audio.WithAudio(second))
	c.Add(r)
	second.AddRecall(r, true)

	l.AddAudio(first)
	l.AddAudio(second)
	l.AddAudio(first)
	assert.Equal(t, 2, len(l.Audios()))
	first.StartAudio(audio.ScopeDefault)
	second.StartAudio(audio.ScopeDefault)

	assert.Nil(t, l.Tick())
	assert.Equal(t, 1, log.Count("first:run-post"))
	assert.Equal(t, 1, log.Count("second:run-post"))

	l.Tasks().ScheduleTask(task.RemoveAudio(l, second))
	assert.Nil(t, l.Tick())
	assert.Equal(t, 2, log.Count("first:run-post"))
	assert.Equal(t, 1, log.Count("second:run-post"))
	assert.Equal(t, 1, len(l.Audios()))
	assert.Empty(t, second.RecallIDs())

	values := metric.Get("first")
	assert.Equal(t, "2", values[metric.TickCounter])
	assert.NotEmpty(t, values[metric.StagePrefix+audio.StageRunPost.String()])
	assert.Empty(t, values[metric.StagePrefix+audio.StageRunInitPre.String()])
}

func TestTickScopeOutputs(t *testing.T) {
	a := audio.NewAudio(audio.Named("scopes"), audio.WithAudioAbility(audio.AbilitySequencer|audio.AbilityNotation))
	a.SetAudioChannels(1)
	a.SetPads(true, 1)
	a.SetPads(false, 1)
	out, in := a.Outputs()[0], a.Inputs()[0]

	playback := audio.NewContainer()
	pc := recall.NewPlaybackChannel(out)
	pr := recall.NewPlaybackChannelRun(out, audio.WithFlags(audio.Persistent))
	playback.Add(pc)
	playback.Add(pr)
	out.AddRecall(pc, true)
	out.AddRecall(pr, true)

	volume := audio.NewContainer()
	vc := recall.NewVolumeChannel(in)
	vc.Behaviour().(*recall.VolumeChannel).Volume.SafeWrite(0.5)
	vr := recall.NewVolumeChannelRun(in)
	volume.Add(vc)
	volume.Add(vr)
	in.AddRecall(vc, false)
	in.AddRecall(vr, false)

	l := thread.New()
	l.Tasks().ScheduleTaskAll(
		task.AddAudio(l, a),
		task.StartAudio(a, audio.ScopeDefault),
	)
	assert.Nil(t, l.Tick())
	ids := a.RecallIDs()
	assert.Equal(t, 2, len(ids))
	for _, id := range ids {
		data := in.Recycling().Output(id).Buffer().Data
		for i := range data {
			data[i] = 1
		}
	}

	assert.Nil(t, l.Tick())
	for _, id := range ids {
		for _, v := range in.Recycling().Output(id).Buffer().Data {
			assert.Equal(t, 0.5, v)
		}
		for _, v := range out.Recycling().Output(id).Buffer().Data {
			assert.Equal(t, 0.5, v)
		}
	}
	for _, v := range out.Recycling().Template().Buffer().Data {
		assert.Equal(t, 1.0, v)
	}
	a.StopAudio(audio.ScopeDefault)
}

// recorder is a logger keeping formatted messages.
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.lines = append(r.lines, s)
	r.mu.Unlock()
}

func (r *recorder) Debug(args ...interface{})                 { r.add(fmt.Sprint(args...)) }
func (r *recorder) Info(args ...interface{})                  { r.add(fmt.Sprint(args...)) }
func (r *recorder) Warn(args ...interface{})                  { r.add(fmt.Sprint(args...)) }
func (r *recorder) Debugf(format string, args ...interface{}) { r.add(fmt.Sprintf(format, args...)) }
func (r *recorder) Infof(format string, args ...interface{})  { r.add(fmt.Sprintf(format, args...)) }
func (r *recorder) Warnf(format string, args ...interface{})  { r.add(fmt.Sprintf(format, args...)) }

func (r *recorder) contains(substr ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range r.lines {
		matched := true
		for _, s := range substr {
			matched = matched && strings.Contains(line, s)
		}
		if matched {
			return true
		}
	}
	return false
}

func TestWithLogger(t *testing.T) {
	rec := &recorder{}
	l := thread.New(thread.WithLogger(rec))
	a := newAudio(t, "logged", &mock.Log{}, 1)
	l.AddAudio(a)
	a.StartAudio(audio.ScopeNotation)
	for i := 0; i < 2; i++ {
		assert.Nil(t, l.Tick())
	}
	assert.True(t, rec.contains("logged", "done"))
}

func TestTickTaskError(t *testing.T) {
	errTask := errors.New("task failed")
	l := thread.New()
	l.Tasks().ScheduleTask(task.Func(func() error { return errTask }))
	err := l.Tick()
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, errTask))
	assert.Equal(t, uint64(1), l.Ticks())
	assert.Nil(t, l.Tick())
}

func TestLifecycle(t *testing.T) {
	log := &mock.Log{}
	clock, tickc := manualClock()
	l := thread.New(thread.WithClock(clock))
	a := newAudio(t, "lifecycle", log, 0)
	l.Tasks().ScheduleTaskAll(
		task.AddAudio(l, a),
		task.StartAudio(a, audio.ScopeNotation),
	)

	err := l.Pause()
	assert.True(t, errors.Is(err, thread.ErrInvalidState))
	assert.Equal(t, thread.Ready, l.State())

	done, err := l.Run(context.Background())
	assert.Nil(t, err)
	_, err = l.Run(context.Background())
	assert.True(t, errors.Is(err, thread.ErrInvalidState))
	assert.Equal(t, thread.Running, l.State())

	tickc <- time.Now()
	tickc <- time.Now()
	err = l.Resume()
	assert.True(t, errors.Is(err, thread.ErrInvalidState))

	assert.Nil(t, l.Pause())
	assert.Equal(t, thread.Paused, l.State())
	assert.Equal(t, uint64(2), l.Ticks())
	assert.Equal(t, 2, log.Count("lifecycle:run-post"))
	err = l.Pause()
	assert.True(t, errors.Is(err, thread.ErrInvalidState))

	assert.Nil(t, l.Resume())
	tickc <- time.Now()
	assert.Nil(t, l.Stop())
	<-done
	assert.Equal(t, thread.Stopped, l.State())
	assert.Equal(t, uint64(3), l.Ticks())
	assert.True(t, errors.Is(l.Stop(), thread.ErrInvalidState))
}

func TestRunContext(t *testing.T) {
	clock, tickc := manualClock()
	l := thread.New(thread.WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())
	done, err := l.Run(ctx)
	assert.Nil(t, err)
	tickc <- time.Now()
	cancel()
	<-done
	assert.Equal(t, thread.Stopped, l.State())
	assert.Equal(t, uint64(1), l.Ticks())
}

func TestTicker(t *testing.T) {
	l := thread.New(thread.WithBufferTime(44100, 441))
	done, err := l.Run(context.Background())
	assert.Nil(t, err)
	for l.Ticks() < 2 {
		time.Sleep(time.Millisecond)
	}
	assert.Nil(t, l.Stop())
	<-done
}
