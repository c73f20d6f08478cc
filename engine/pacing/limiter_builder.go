package pacing

import "time"

// FrameLimiterBuilderOption is a functional option applied to a frame limiter during construction via NewFrameLimiter.
type FrameLimiterBuilderOption func(*frameLimiter)

// WithClock replaces the high resolution clock. The OS timer resolution is left untouched.
//
// Parameters:
//   - c: the clock to use
//
// Returns:
//   - FrameLimiterBuilderOption: a function that applies the clock option to a frame limiter
func WithClock(c Clock) FrameLimiterBuilderOption {
	return func(l *frameLimiter) {
		l.clock = c
	}
}

// WithTargetFPS changes the frame rate cap. The check threshold keeps the same 65:60 ratio to
// the target as the default. Values <= 0 keep the default of TargetFrameRate.
//
// Parameters:
//   - fps: the maximum frames per second
//
// Returns:
//   - FrameLimiterBuilderOption: a function that applies the target rate to a frame limiter
func WithTargetFPS(fps float64) FrameLimiterBuilderOption {
	return func(l *frameLimiter) {
		if fps <= 0 {
			return
		}
		l.minTime = time.Duration(1_000_000/fps) * time.Microsecond
		l.minCheckTime = time.Duration(1_000_000/(fps*65/60)) * time.Microsecond
	}
}
