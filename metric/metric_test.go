package metric_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gsequencer/ags/metric"
)

func TestMeter(t *testing.T) {
	sampleRate := 1000
	var tests = []struct {
		name               string
		routines           int
		ticks              int
		bufferSize         int64
		stage              time.Duration
		expectedTicks      string
		expectedSamples    string
		expectedDuration   string
		expectedProcessing string
		expectedLoad       string
	}{
		{
			name:               "ags-test-meter",
			routines:           2,
			ticks:              10,
			bufferSize:         100,
			stage:              time.Millisecond,
			expectedTicks:      "20",
			expectedSamples:    "2000",
			expectedDuration:   `"2s"`,
			expectedProcessing: `"40ms"`,
			expectedLoad:       "2.00",
		},
		{
			name:               "ags-test-meter",
			routines:           1,
			ticks:              10,
			bufferSize:         100,
			stage:              0,
			expectedTicks:      "30",
			expectedSamples:    "3000",
			expectedDuration:   `"3s"`,
			expectedProcessing: `"40ms"`,
			expectedLoad:       "1.33",
		},
		{
			name:               "ags-test-meter-other",
			routines:           1,
			ticks:              3,
			bufferSize:         500,
			stage:              time.Second,
			expectedTicks:      "3",
			expectedSamples:    "1500",
			expectedDuration:   `"1.5s"`,
			expectedProcessing: `"6s"`,
			expectedLoad:       "400.00",
		},
	}
	for _, c := range tests {
		var wg sync.WaitGroup
		wg.Add(c.routines)
		for i := 0; i < c.routines; i++ {
			go func(m *metric.Meter) {
				defer wg.Done()
				for i := 0; i < c.ticks; i++ {
					m.Stage("run-pre", c.stage)
					m.Stage("run-post", c.stage)
					m.Tick(c.bufferSize)
				}
			}(metric.For(c.name, sampleRate))
		}
		wg.Wait()
		values := metric.Get(c.name)
		assert.Equal(t, c.expectedTicks, values[metric.TickCounter])
		assert.Equal(t, c.expectedSamples, values[metric.SampleCounter])
		assert.Equal(t, c.expectedDuration, values[metric.DurationCounter])
		assert.Equal(t, c.expectedProcessing, values[metric.ProcessingCounter])
		assert.Equal(t, c.expectedLoad, values[metric.LoadCounter])
		assert.NotEmpty(t, values[metric.StagePrefix+"run-pre"])
	}
	assert.Contains(t, metric.GetAll(), "ags-test-meter-other")
	assert.Empty(t, metric.Get("ags-test-meter-missing"))
}

func TestDurationOf(t *testing.T) {
	assert.Equal(t, time.Second, metric.DurationOf(44100, 44100))
	assert.Equal(t, 500*time.Millisecond, metric.DurationOf(1000, 500))
	assert.Equal(t, time.Duration(0), metric.DurationOf(0, 100))
}
