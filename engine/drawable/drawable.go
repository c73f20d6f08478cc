// Package drawable provides the lit 3D object and the 2D sprite drawn by the object3D and
// sprite pipelines.
package drawable

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUContext is the subset of the renderer a drawable needs to create and update its resources.
type GPUContext interface {
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error
	WriteBuffers(writes []bind_group_provider.BufferWrite) error
}

// initTexture uploads tex at binding 0 with a default sampler at binding 1 and creates the group.
func initTexture(gpu GPUContext, provider bind_group_provider.BindGroupProvider, layout wgpu.BindGroupLayoutDescriptor, tex common.TextureStagingData) error {
	if err := gpu.InitTextureView(provider, 0, tex); err != nil {
		return err
	}
	if err := gpu.InitSampler(provider, 1, common.SamplerStagingData{}); err != nil {
		return err
	}
	return gpu.InitBindGroup(provider, layout, nil, nil)
}

func putMat4(buf []byte, m mgl32.Mat4) {
	for i, f := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

func putFloats(buf []byte, fs ...float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

func releaseAll(providers ...bind_group_provider.BindGroupProvider) {
	for _, p := range providers {
		if p != nil {
			p.Release()
		}
	}
}
