package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

// BackBufferCount is the number of back buffers in the swapchain.
const BackBufferCount = 2

// backBuffer is one swapchain slot: the view acquired for it this frame and its tracked state.
type backBuffer struct {
	view  *wgpu.TextureView
	state ResourceState
}

// swapchain tracks the back buffer slots and the current index. The surface hands out its own
// textures; the slots mirror the flip model so state transitions can be checked per buffer.
type swapchain struct {
	slots   [BackBufferCount]backBuffer
	current int
}

func newSwapchain() *swapchain {
	return &swapchain{}
}

// Current returns the index of the back buffer used by the next or in-flight frame.
func (s *swapchain) Current() int {
	return s.current
}

func (s *swapchain) view() *wgpu.TextureView {
	return s.slots[s.current].view
}

func (s *swapchain) setView(v *wgpu.TextureView) {
	s.slots[s.current].view = v
}

func (s *swapchain) state(index int) ResourceState {
	return s.slots[index].state
}

// transition moves the current back buffer from before to after and panics with a
// *TransitionError if the move is illegal.
func (s *swapchain) transition(before, after ResourceState) {
	slot := &s.slots[s.current]
	if err := checkTransition(fmt.Sprintf("back buffer %d", s.current), slot.state, before, after); err != nil {
		panic(err)
	}
	slot.state = after
	logger.Logger().Debug("resource barrier", "backBuffer", s.current, "before", before.String(), "after", after.String())
}

// advance drops the presented view and moves to the next slot.
func (s *swapchain) advance() {
	s.slots[s.current].view = nil
	s.current = (s.current + 1) % BackBufferCount
}
