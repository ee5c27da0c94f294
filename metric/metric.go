// Package metric publishes expvar counters of audios played by the audio
// loop. Processing time is accumulated per recall stage so a slow stage
// shows up next to the audio time it rendered.
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const audioLabel = "ags.audio"

const (
	// TickCounter counts played ticks.
	TickCounter = "Ticks"
	// SampleCounter counts rendered samples.
	SampleCounter = "Samples"
	// DurationCounter sums the audio time of rendered samples.
	DurationCounter = "Duration"
	// ProcessingCounter sums the time spent in recall stages.
	ProcessingCounter = "Processing"
	// LoadCounter is processing time per rendered audio time in percent.
	LoadCounter = "Load"
	// StagePrefix prefixes per stage processing time counters.
	StagePrefix = "Stage."
)

var meters = struct {
	sync.Mutex
	m map[string]*Meter
}{
	m: make(map[string]*Meter),
}

// Meter captures counters of one audio name. Meters are shared by audios
// of the same name.
type Meter struct {
	mu         sync.Mutex
	sampleRate int
	bufferSize int64
	bufferTime time.Duration

	ticks      *expvar.Int
	samples    *expvar.Int
	rendered   *duration
	processing *duration
	stages     *expvar.Map
}

// For returns meter of audio name. Sample rate of the first call is kept.
func For(name string, sampleRate int) *Meter {
	meters.Lock()
	defer meters.Unlock()
	if m, ok := meters.m[name]; ok {
		return m
	}
	m := &Meter{
		sampleRate: sampleRate,
		ticks:      expvar.NewInt(key(name, TickCounter)),
		samples:    expvar.NewInt(key(name, SampleCounter)),
		rendered:   &duration{},
		processing: &duration{},
		stages:     expvar.NewMap(key(name, "Stages")),
	}
	expvar.Publish(key(name, DurationCounter), m.rendered)
	expvar.Publish(key(name, ProcessingCounter), m.processing)
	expvar.Publish(key(name, LoadCounter), load{m})
	meters.m[name] = m
	return m
}

// Stage adds time spent in stage.
func (m *Meter) Stage(stage string, d time.Duration) {
	m.processing.add(d)
	m.mu.Lock()
	v, ok := m.stages.Get(stage).(*duration)
	if !ok {
		v = &duration{}
		m.stages.Set(stage, v)
	}
	m.mu.Unlock()
	v.add(d)
}

// Tick counts a played tick of bufferSize samples.
func (m *Meter) Tick(bufferSize int64) {
	m.ticks.Add(1)
	m.samples.Add(bufferSize)
	m.mu.Lock()
	if m.bufferSize != bufferSize {
		m.bufferSize = bufferSize
		m.bufferTime = DurationOf(m.sampleRate, bufferSize)
	}
	d := m.bufferTime
	m.mu.Unlock()
	m.rendered.add(d)
}

// Get returns counter values of audio name. Stage counters are keyed with
// StagePrefix.
func Get(name string) map[string]string {
	meters.Lock()
	m, ok := meters.m[name]
	meters.Unlock()
	values := make(map[string]string)
	if !ok {
		return values
	}
	values[TickCounter] = m.ticks.String()
	values[SampleCounter] = m.samples.String()
	values[DurationCounter] = m.rendered.String()
	values[ProcessingCounter] = m.processing.String()
	values[LoadCounter] = load{m}.String()
	m.stages.Do(func(kv expvar.KeyValue) {
		values[StagePrefix+kv.Key] = kv.Value.String()
	})
	return values
}

// GetAll returns counters of all metered audios.
func GetAll() map[string]map[string]string {
	meters.Lock()
	names := make([]string, 0, len(meters.m))
	for name := range meters.m {
		names = append(names, name)
	}
	meters.Unlock()
	all := make(map[string]map[string]string, len(names))
	for _, name := range names {
		all[name] = Get(name)
	}
	return all
}

// DurationOf returns time duration of samples at sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

func key(name, counter string) string {
	return fmt.Sprintf("%s.%s.%s", audioLabel, name, counter)
}

type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)).String())
}

func (v *duration) value() time.Duration {
	return time.Duration(atomic.LoadInt64(&v.d))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

type load struct {
	m *Meter
}

func (l load) String() string {
	rendered := l.m.rendered.value()
	if rendered <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.2f", float64(l.m.processing.value())/float64(rendered)*100)
}
