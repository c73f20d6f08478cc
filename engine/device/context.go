// Package device owns the process-wide graphics objects: instance, surface, adapter, device
// and queue. They are created once by NewContext and never recreated.
package device

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

// deviceContext is the implementation of the Context interface.
type deviceContext struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	info     wgpu.AdapterInfo
	device   *wgpu.Device
	queue    *wgpu.Queue
	level    FeatureLevel

	label         string
	debug         bool
	debugFilter   DebugFilter
	forceFallback bool
	levels        []FeatureLevel
}

// Context is the graphics device context shared by the renderer and every GPU resource holder.
type Context interface {
	// Instance returns the native instance.
	Instance() *wgpu.Instance

	// Adapter returns the adapter the device was created on.
	Adapter() *wgpu.Adapter

	// AdapterInfo returns the identifying information of the chosen adapter.
	AdapterInfo() wgpu.AdapterInfo

	// Surface returns the presentation surface created for the window.
	Surface() *wgpu.Surface

	// Device returns the logical device.
	Device() *wgpu.Device

	// Queue returns the device's command queue.
	Queue() *wgpu.Queue

	// FeatureLevel returns the level the device was created at.
	FeatureLevel() FeatureLevel

	// Check passes the error of a native call through the debug filter.
	//
	// Parameters:
	//   - err: the error returned by the native call, or nil
	//
	// Returns:
	//   - error: nil if err is nil or the filter drops its message, otherwise err
	Check(err error) error

	// Release releases the device and every object created with it.
	Release()
}

var _ Context = &deviceContext{}

// NewContext creates the instance and the surface, selects the best hardware adapter, and
// creates the device at the highest feature level the adapter supports.
// The calling goroutine is locked to its OS thread.
//
// Parameters:
//   - surfaceDescriptor: the native window handle descriptor from the window collaborator
//   - options: variadic list of ContextBuilderOption functions to configure the context
//
// Returns:
//   - Context: the created context
//   - error: an error if no adapter or no feature level is usable
func NewContext(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...ContextBuilderOption) (Context, error) {
	runtime.LockOSThread()
	c := &deviceContext{
		label:       "Main Device",
		debugFilter: DefaultDebugFilter(),
		levels:      DefaultFeatureLevels,
	}
	for _, opt := range options {
		opt(c)
	}

	wgpu.SetLogLevel(nativeLogLevel(c.debug))

	c.instance = wgpu.CreateInstance(nil)
	if surfaceDescriptor != nil {
		c.surface = c.instance.CreateSurface(surfaceDescriptor)
	}

	if err := c.initAdapter(); err != nil {
		c.Release()
		return nil, err
	}
	if err := c.initDevice(); err != nil {
		c.Release()
		return nil, err
	}

	logger.Logger().Info("device created",
		"adapter", c.info.Name,
		"type", c.info.AdapterType,
		"backend", c.info.BackendType,
		"featureLevel", c.level.String(),
	)
	return c, nil
}

func (c *deviceContext) initAdapter() error {
	if c.forceFallback {
		a, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			ForceFallbackAdapter: true,
			CompatibleSurface:    c.surface,
		})
		if err != nil {
			return fmt.Errorf("failed to request fallback adapter: %w", err)
		}
		c.adapter = a
		c.info = a.GetInfo()
		return nil
	}

	adapters := c.instance.EnumerateAdapters(nil)
	candidates := make([]AdapterCandidate, len(adapters))
	for i, a := range adapters {
		candidates[i] = AdapterCandidate{
			Index:  i,
			Info:   a.GetInfo(),
			Limits: a.GetLimits().Limits,
		}
		logger.Logger().Debug("adapter found", "index", i, "name", candidates[i].Info.Name, "type", candidates[i].Info.AdapterType)
	}

	chosen, err := SelectAdapter(candidates, c.levels)
	for i, a := range adapters {
		if err != nil || i != chosen.Index {
			a.Release()
		}
	}
	if err != nil {
		return err
	}
	c.adapter = adapters[chosen.Index]
	c.info = chosen.Info
	return nil
}

func (c *deviceContext) initDevice() error {
	supported := c.adapter.GetLimits().Limits
	if c.forceFallback {
		// Software adapters are not held to any tier.
		d, err := c.adapter.RequestDevice(&wgpu.DeviceDescriptor{
			Label:              c.label,
			DeviceLostCallback: deviceLostCallback(c.debugFilter),
		})
		if err != nil {
			return fmt.Errorf("failed to create fallback device: %w", err)
		}
		c.device = d
		c.level = FeatureLevel11_0
		c.queue = d.GetQueue()
		return nil
	}

	level, err := createAtHighestLevel(c.levels, supported, func(level FeatureLevel) error {
		d, err := c.adapter.RequestDevice(&wgpu.DeviceDescriptor{
			Label: c.label,
			RequiredLimits: &wgpu.RequiredLimits{
				Limits: level.Limits(wgpu.DefaultLimits()),
			},
			DeviceLostCallback: deviceLostCallback(c.debugFilter),
		})
		if err != nil {
			return err
		}
		c.device = d
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	c.level = level
	c.queue = c.device.GetQueue()
	return nil
}

func (c *deviceContext) Instance() *wgpu.Instance {
	return c.instance
}

func (c *deviceContext) Adapter() *wgpu.Adapter {
	return c.adapter
}

func (c *deviceContext) AdapterInfo() wgpu.AdapterInfo {
	return c.info
}

func (c *deviceContext) Surface() *wgpu.Surface {
	return c.surface
}

func (c *deviceContext) Device() *wgpu.Device {
	return c.device
}

func (c *deviceContext) Queue() *wgpu.Queue {
	return c.queue
}

func (c *deviceContext) FeatureLevel() FeatureLevel {
	return c.level
}

func (c *deviceContext) Check(err error) error {
	return checkNative(c.debugFilter, c.debug, err)
}

func (c *deviceContext) Release() {
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}

// ErrNoSurface is returned when a surface is required from a context created without one.
var ErrNoSurface = errors.New("device context has no surface")

// RequireSurface returns the context's surface or an error if it was created headless.
//
// Parameters:
//   - c: the device context
//
// Returns:
//   - *wgpu.Surface: the surface
//   - error: an error if the context has no surface
func RequireSurface(c Context) (*wgpu.Surface, error) {
	if c.Surface() == nil {
		return nil, ErrNoSurface
	}
	return c.Surface(), nil
}
