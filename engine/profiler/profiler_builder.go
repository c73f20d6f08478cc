package profiler

import "time"

// ProfilerBuilderOption is a functional option applied to a Profiler by NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often Tick reports. Non-positive values keep DefaultInterval.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithClock replaces the monotonic time source.
//
// Parameters:
//   - now: returns a monotonic timestamp
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(now func() time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
