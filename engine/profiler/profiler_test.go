package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	t time.Duration
}

func (c *stepClock) now() time.Duration { return c.t }

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &stepClock{}
	p := NewProfiler(WithClock(clock.now), WithInterval(100*time.Millisecond))

	var reports []*Report
	for _, step := range []time.Duration{10, 30, 40, 20} {
		clock.t += step * time.Millisecond
		if r := p.Tick(); r != nil {
			reports = append(reports, r)
		}
	}

	require.Len(t, reports, 1)
	r := reports[0]
	assert.Equal(t, 4, r.Frames)
	assert.InDelta(t, 40.0, r.FPS, 0.001)
	assert.Equal(t, 10*time.Millisecond, r.MinFrameTime)
	assert.Equal(t, 40*time.Millisecond, r.MaxFrameTime)
}

func TestTickStartsNewInterval(t *testing.T) {
	clock := &stepClock{}
	p := NewProfiler(WithClock(clock.now), WithInterval(50*time.Millisecond))

	clock.t = 50 * time.Millisecond
	require.NotNil(t, p.Tick())

	clock.t += 10 * time.Millisecond
	assert.Nil(t, p.Tick())

	clock.t += 40 * time.Millisecond
	r := p.Tick()
	require.NotNil(t, r)
	assert.Equal(t, 2, r.Frames)
	assert.Equal(t, 10*time.Millisecond, r.MinFrameTime)
	assert.Equal(t, 40*time.Millisecond, r.MaxFrameTime)
}

func TestBuilderOptionsIgnoreInvalidValues(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithClock(nil))

	assert.Equal(t, DefaultInterval, p.interval)
	assert.NotNil(t, p.now)
}
