// Package fence provides a CPU/GPU synchronization counter in the style of a native fence.
//
// Signal records the next value and asks the queue to report when the work submitted so far
// has finished. Wait blocks, polling the device, until the completed value reaches the target.
package fence

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

// Queue reports completion of all work submitted before the call.
// The callback receives false if the queue finished with a non-success status.
type Queue interface {
	OnSubmittedWorkDone(callback func(ok bool))
}

// Poller drives pending device callbacks. Poll blocks until queued work has been processed.
type Poller interface {
	Poll()
}

// Fence is a monotonically increasing completion counter.
type Fence struct {
	queue  Queue
	poller Poller

	mu        sync.Mutex
	signaled  uint64
	completed uint64
	events    map[uint64][]chan struct{}
}

// New creates a fence with both signaled and completed values at zero.
//
// Parameters:
//   - queue: the queue whose submissions are tracked
//   - poller: drives the device so queue callbacks are delivered
//
// Returns:
//   - *Fence: the new fence
func New(queue Queue, poller Poller) *Fence {
	return &Fence{
		queue:  queue,
		poller: poller,
		events: make(map[uint64][]chan struct{}),
	}
}

// Signal advances the fence to the next value and arranges for the completed value to reach
// it once every submission made before this call has finished.
//
// Returns:
//   - uint64: the signaled value, strictly greater than any previous one
func (f *Fence) Signal() uint64 {
	f.mu.Lock()
	f.signaled++
	v := f.signaled
	f.mu.Unlock()

	f.queue.OnSubmittedWorkDone(func(ok bool) {
		if !ok {
			logger.Logger().Warn("queue work done with non-success status", "fence", v)
		}
		f.complete(v)
	})
	logger.Logger().Debug("fence signaled", "value", v)
	return v
}

// SignaledValue returns the last value passed out by Signal.
func (f *Fence) SignaledValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

// CompletedValue returns the highest value the GPU has reached.
func (f *Fence) CompletedValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// SetEventOnCompletion returns a channel closed once the completed value reaches v.
// The channel is already closed if v has been reached.
//
// Parameters:
//   - v: the value to wait for
//
// Returns:
//   - <-chan struct{}: closed on completion
func (f *Fence) SetEventOnCompletion(v uint64) <-chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed >= v {
		close(ch)
		return ch
	}
	f.events[v] = append(f.events[v], ch)
	return ch
}

// Wait blocks until the completed value reaches v. There is no timeout.
//
// Parameters:
//   - v: the value to wait for
func (f *Fence) Wait(v uint64) {
	if f.CompletedValue() >= v {
		return
	}
	ev := f.SetEventOnCompletion(v)
	logger.Logger().Debug("fence wait", "value", v)
	for {
		select {
		case <-ev:
			return
		default:
			f.poller.Poll()
		}
	}
}

func (f *Fence) complete(v uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v <= f.completed {
		return
	}
	f.completed = v
	for target, chans := range f.events {
		if target > v {
			continue
		}
		for _, ch := range chans {
			close(ch)
		}
		delete(f.events, target)
	}
}

// wgpuQueue adapts *wgpu.Queue to Queue.
type wgpuQueue struct {
	q *wgpu.Queue
}

// WGPUQueue wraps a wgpu queue for use with New.
func WGPUQueue(q *wgpu.Queue) Queue {
	return wgpuQueue{q: q}
}

func (w wgpuQueue) OnSubmittedWorkDone(callback func(ok bool)) {
	w.q.OnSubmittedWorkDone(func(status wgpu.QueueWorkDoneStatus) {
		callback(status == wgpu.QueueWorkDoneStatusSuccess)
	})
}

// wgpuPoller adapts *wgpu.Device to Poller.
type wgpuPoller struct {
	d *wgpu.Device
}

// WGPUPoller wraps a wgpu device for use with New.
func WGPUPoller(d *wgpu.Device) Poller {
	return wgpuPoller{d: d}
}

func (w wgpuPoller) Poll() {
	w.d.Poll(true, nil)
}
