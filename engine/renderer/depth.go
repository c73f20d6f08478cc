package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// DepthFormat is the format of the depth surface and of every pipeline's depth state.
	DepthFormat = wgpu.TextureFormatDepth32Float
	// DepthClearValue is the depth every frame starts from.
	DepthClearValue = 1.0
)

// depthSurface is the single depth buffer. It is sized to the surface at creation and stays in
// StateDepthWrite; it is not resized with the window.
type depthSurface struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   uint32
	height  uint32
}

func newDepthSurface(device *wgpu.Device, width, height uint32) (*depthSurface, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create depth texture: %w", err)
	}
	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "Depth View",
		Format:          DepthFormat,
		Dimension:       wgpu.TextureViewDimension2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspectDepthOnly,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create depth view: %w", err)
	}
	return &depthSurface{texture: tex, view: view, width: width, height: height}, nil
}

func (d *depthSurface) release() {
	if d.view != nil {
		d.view.Release()
		d.view = nil
	}
	if d.texture != nil {
		d.texture.Release()
		d.texture = nil
	}
}
