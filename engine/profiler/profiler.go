// Package profiler reports frame rate, frame time spread and Go heap statistics through the
// engine logger at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/loov/hrtime"
)

// DefaultInterval is how often a Profiler reports.
const DefaultInterval = time.Second

// Report is one interval's worth of statistics.
type Report struct {
	Frames       int
	FPS          float64
	MinFrameTime time.Duration
	MaxFrameTime time.Duration
	HeapMB       float64
	AllocRateMB  float64
	NumGC        uint32
	LastPause    time.Duration
	MaxPause     time.Duration
	SysMB        float64
}

// Profiler counts frames between calls to Tick and logs a Report once per interval.
// It is not safe for concurrent use; call Tick from the frame loop only.
type Profiler struct {
	now      func() time.Duration
	interval time.Duration

	frameCount   int
	intervalFrom time.Duration
	lastFrame    time.Duration
	minFrame     time.Duration
	maxFrame     time.Duration

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a Profiler with DefaultInterval and a high resolution clock.
//
// Parameters:
//   - options: functional options for the profiler
//
// Returns:
//   - *Profiler: the profiler, with its interval started now
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		now:      hrtime.Now,
		interval: DefaultInterval,
	}
	for _, opt := range options {
		opt(p)
	}
	p.intervalFrom = p.now()
	p.lastFrame = p.intervalFrom
	return p
}

// Tick records one frame. When the interval has elapsed it logs and returns the Report for it
// and starts the next interval.
//
// Returns:
//   - *Report: the finished interval's report, or nil if the interval is still running
func (p *Profiler) Tick() *Report {
	current := p.now()
	frame := current - p.lastFrame
	p.lastFrame = current
	p.frameCount++
	if p.frameCount == 1 || frame < p.minFrame {
		p.minFrame = frame
	}
	if frame > p.maxFrame {
		p.maxFrame = frame
	}

	elapsed := current - p.intervalFrom
	if elapsed < p.interval {
		return nil
	}

	r := p.report(elapsed)
	logger.Logger().Info("profiler",
		"fps", r.FPS,
		"frame_min", r.MinFrameTime,
		"frame_max", r.MaxFrameTime,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb", r.AllocRateMB,
		"gc", r.NumGC,
		"gc_last_pause", r.LastPause,
		"gc_max_pause", r.MaxPause,
		"sys_mb", r.SysMB,
	)

	p.frameCount = 0
	p.minFrame = 0
	p.maxFrame = 0
	p.intervalFrom = current
	return r
}

func (p *Profiler) report(elapsed time.Duration) *Report {
	runtime.ReadMemStats(&p.memStats)
	seconds := elapsed.Seconds()

	r := &Report{
		Frames:       p.frameCount,
		FPS:          float64(p.frameCount) / seconds,
		MinFrameTime: p.minFrame,
		MaxFrameTime: p.maxFrame,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds,
		NumGC:        p.memStats.NumGC,
		SysMB:        float64(p.memStats.Sys) / 1024 / 1024,
	}

	// PauseNs is a circular buffer of the last 256 pauses.
	gcCount := p.memStats.NumGC
	if gcCount > 0 {
		r.LastPause = time.Duration(p.memStats.PauseNs[(gcCount+255)%256])
		from := p.lastGCCount
		if gcCount-from > 256 {
			from = gcCount - 256
		}
		for i := from; i < gcCount; i++ {
			if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > r.MaxPause {
				r.MaxPause = pause
			}
		}
	}

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return r
}
