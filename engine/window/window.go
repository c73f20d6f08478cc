package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the native window frames are presented to. It owns the event loop and reports the
// client area size the renderer sizes its viewport from.
type Window interface {
	// Title returns the title shown in the title bar.
	Title() string

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels (or nil to disable)
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SurfaceDescriptor returns a platform-appropriate wgpu.SurfaceDescriptor for the window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor, or nil if the window is not open
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PollEvents dispatches pending window events without blocking.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	PollEvents() bool

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: an error if the window was never opened
	Close() error

	// Width returns the client area width in pixels.
	Width() int

	// Height returns the client area height in pixels.
	Height() int
}

type engineWindow struct {
	title  string
	width  int
	height int

	resizable bool

	// closeKey closes the window when pressed. Zero disables it.
	closeKey uint32

	internalWindow any

	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates and opens a Window. Must be called from the thread that will poll its events.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxy-frame",
		width:     1280,
		height:    720,
		resizable: true,
		closeKey:  KeyEscape,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) PollEvents() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// handleResize records the new framebuffer size and forwards it. Zero sizes (minimized) are
// recorded as well; the renderer clamps its viewport to the surface.
func (w *engineWindow) handleResize(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

// handleKey dispatches a key event. It returns true when the key should close the window.
func (w *engineWindow) handleKey(key uint32, pressed bool) bool {
	if pressed && w.closeKey != 0 && key == w.closeKey {
		return true
	}
	if pressed {
		if w.onKeyDown != nil {
			w.onKeyDown(key)
		}
		return false
	}
	if w.onKeyUp != nil {
		w.onKeyUp(key)
	}
	return false
}
