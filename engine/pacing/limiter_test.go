package pacing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock advances only when slept on or moved explicitly.
type fakeClock struct {
	now    time.Duration
	sleeps int
}

func (c *fakeClock) Now() time.Duration { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps++
	c.now += d
}

func TestConstants(t *testing.T) {
	assert.Equal(t, 16666*time.Microsecond, MinFrameTime)
	assert.Equal(t, 15384*time.Microsecond, MinCheckTime)
}

func TestShortFrameIsPadded(t *testing.T) {
	clk := &fakeClock{now: time.Second}
	l := NewFrameLimiter(WithClock(clk))
	start := clk.now

	clk.now += 5 * time.Millisecond
	l.UpdateFixFPS()

	assert.GreaterOrEqual(t, clk.now-start, MinFrameTime)
	assert.Less(t, clk.now-start, MinFrameTime+SpinStep+time.Nanosecond)
	assert.Positive(t, clk.sleeps)
}

func TestFrameOverCheckThresholdIsNotPadded(t *testing.T) {
	clk := &fakeClock{}
	l := NewFrameLimiter(WithClock(clk))

	clk.now += 16 * time.Millisecond
	l.UpdateFixFPS()
	assert.Zero(t, clk.sleeps)
	assert.Equal(t, 16*time.Millisecond, clk.now)

	clk.now += 40 * time.Millisecond
	l.UpdateFixFPS()
	assert.Zero(t, clk.sleeps)
}

func TestReferenceMovesEveryFrame(t *testing.T) {
	clk := &fakeClock{}
	l := NewFrameLimiter(WithClock(clk))

	clk.now += 40 * time.Millisecond
	l.UpdateFixFPS()

	before := clk.now
	clk.now += time.Millisecond
	l.UpdateFixFPS()
	assert.GreaterOrEqual(t, clk.now-before, MinFrameTime)
}

func TestResetSkipsPadding(t *testing.T) {
	clk := &fakeClock{}
	l := NewFrameLimiter(WithClock(clk))

	clk.now += time.Hour
	l.Reset()
	clk.now += 20 * time.Millisecond
	l.UpdateFixFPS()
	assert.Zero(t, clk.sleeps)
}

func TestWithTargetFPS(t *testing.T) {
	l := NewFrameLimiter(WithClock(&fakeClock{}), WithTargetFPS(30))
	assert.Equal(t, 33333*time.Microsecond, l.MinFrameTime())

	l = NewFrameLimiter(WithClock(&fakeClock{}), WithTargetFPS(0))
	assert.Equal(t, MinFrameTime, l.MinFrameTime())
}

func TestRealClockInterval(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	l := NewFrameLimiter()
	defer l.Close()

	l.UpdateFixFPS()
	last := time.Now()
	for i := 0; i < 5; i++ {
		l.UpdateFixFPS()
		now := time.Now()
		assert.GreaterOrEqual(t, now.Sub(last), MinFrameTime-time.Millisecond, "frame %d", i)
		last = now
	}
}
