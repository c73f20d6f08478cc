// Package pacing caps the frame rate by sleeping at the end of short frames.
package pacing

import (
	"time"

	"github.com/loov/hrtime"
)

const (
	// TargetFrameRate is the default frame rate cap.
	TargetFrameRate = 60

	// MinFrameTime is the shortest frame allowed at the default rate (1/60 s, 16666 µs).
	MinFrameTime = time.Duration(1_000_000/TargetFrameRate) * time.Microsecond

	// MinCheckTime is the threshold under which a frame is padded (1/65 s, 15384 µs).
	// Frames already longer than this are left alone even if shorter than MinFrameTime.
	MinCheckTime = time.Duration(1_000_000/65) * time.Microsecond

	// SpinStep is the sleep granularity used while padding a frame.
	SpinStep = time.Microsecond
)

// Clock is the time source used by a FrameLimiter.
type Clock interface {
	// Now returns a monotonic timestamp.
	Now() time.Duration
	// Sleep pauses the calling goroutine for at least d.
	Sleep(d time.Duration)
}

type hrClock struct{}

func (hrClock) Now() time.Duration    { return hrtime.Now() }
func (hrClock) Sleep(d time.Duration) { time.Sleep(d) }

// frameLimiter is the implementation of the FrameLimiter interface.
type frameLimiter struct {
	clock        Clock
	reference    time.Duration
	minTime      time.Duration
	minCheckTime time.Duration
	restoreTimer func()
}

// FrameLimiter pads frames to a fixed minimum duration.
//
// A single reference timestamp is kept. UpdateFixFPS measures the time since the reference;
// if it is under the check threshold the limiter sleeps in SpinStep increments until the
// minimum frame time has passed, then moves the reference to the current time. Overshoot is
// not carried into the next frame.
type FrameLimiter interface {
	// UpdateFixFPS pads the current frame if needed and restarts the frame timer.
	// Call once per frame at a fixed point in the frame.
	UpdateFixFPS()

	// Reset restarts the frame timer without padding.
	Reset()

	// MinFrameTime returns the minimum frame duration enforced by UpdateFixFPS.
	//
	// Returns:
	//   - time.Duration: the minimum frame duration
	MinFrameTime() time.Duration

	// Close releases the OS timer resolution request, if any.
	Close()
}

var _ FrameLimiter = &frameLimiter{}

// NewFrameLimiter creates a limiter capped at TargetFrameRate and starts its frame timer.
// With the default clock on Windows the system timer resolution is raised to 1 ms until Close.
//
// Parameters:
//   - options: variadic list of FrameLimiterBuilderOption functions to configure the limiter
//
// Returns:
//   - FrameLimiter: the started limiter
func NewFrameLimiter(options ...FrameLimiterBuilderOption) FrameLimiter {
	l := &frameLimiter{
		minTime:      MinFrameTime,
		minCheckTime: MinCheckTime,
	}
	for _, opt := range options {
		opt(l)
	}
	if l.clock == nil {
		l.clock = hrClock{}
		l.restoreTimer = raiseTimerResolution()
	}
	l.Reset()
	return l
}

func (l *frameLimiter) UpdateFixFPS() {
	elapsed := l.clock.Now() - l.reference
	if elapsed < l.minCheckTime {
		for l.clock.Now()-l.reference < l.minTime {
			l.clock.Sleep(SpinStep)
		}
	}
	l.reference = l.clock.Now()
}

func (l *frameLimiter) Reset() {
	l.reference = l.clock.Now()
}

func (l *frameLimiter) MinFrameTime() time.Duration {
	return l.minTime
}

func (l *frameLimiter) Close() {
	if l.restoreTimer != nil {
		l.restoreTimer()
		l.restoreTimer = nil
	}
}
