package pipeline

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("custom", "// wgsl")

	assert.Equal(t, "custom", p.PipelineKey())
	assert.Equal(t, "// wgsl", p.Source())
	assert.Equal(t, "vs_main", p.VertexEntryPoint())
	assert.Equal(t, "fs_main", p.FragmentEntryPoint())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	require.NotNil(t, p.BlendState())
	assert.Nil(t, p.RenderPipeline())
	assert.Nil(t, p.PipelineLayout())
	assert.Nil(t, p.BindGroupLayout(0))
}

func TestWithBindGroupLayoutFillsGaps(t *testing.T) {
	p := NewPipeline("gaps", "", WithBindGroupLayout(2, UniformLayout("late", 16)))

	layouts := p.BindGroupLayoutDescriptors()
	require.Len(t, layouts, 3)
	assert.Empty(t, layouts[0].Entries)
	assert.Empty(t, layouts[1].Entries)
	assert.Equal(t, "late", layouts[2].Label)
}

func TestBuilderOptions(t *testing.T) {
	p := NewPipeline("opts", "",
		WithEntryPoints("v", "f"),
		WithDepthBias(2, 1.5),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithFrontFace(wgpu.FrontFaceCW),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithBlendState(nil),
		WithDepth(false, true),
	)
	assert.Equal(t, "v", p.VertexEntryPoint())
	assert.Equal(t, "f", p.FragmentEntryPoint())
	assert.Equal(t, int32(2), p.DepthBias())
	assert.Equal(t, float32(1.5), p.DepthBiasSlopeScale())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	assert.Nil(t, p.BlendState())
	assert.False(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
}

func TestSpritePipeline(t *testing.T) {
	p := NewSpritePipeline()

	assert.Equal(t, "sprite", p.PipelineKey())
	assert.True(t, p.BlendEnabled())
	assert.False(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	require.Len(t, p.BindGroupLayoutDescriptors(), 2)
	require.Len(t, p.VertexLayouts(), 1)
	assert.Contains(t, p.Source(), "fn vs_main")
	assert.Contains(t, p.Source(), "fn fs_main")
}

func TestObject3DPipeline(t *testing.T) {
	p := NewObject3DPipeline()

	assert.Equal(t, "object3D", p.PipelineKey())
	assert.False(t, p.BlendEnabled())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())

	layouts := p.BindGroupLayoutDescriptors()
	require.Len(t, layouts, light.RootSlot+1)
	assert.Equal(t, light.BindGroupLayoutDescriptor().Entries, layouts[light.RootSlot].Entries)
	assert.Equal(t, uint64(TransformUniformSize), layouts[Object3DTransformGroup].Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(MaterialUniformSize), layouts[Object3DMaterialGroup].Entries[0].Buffer.MinBindingSize)

	assert.True(t, strings.HasPrefix(p.Source(), light.LightGroupSource))
	assert.Contains(t, p.Source(), "@group(3) @binding(0) var<uniform> lights: LightGroup;")
}

func TestBundleOptionsOverrideDefaults(t *testing.T) {
	p := NewObject3DPipeline(WithCullMode(wgpu.CullModeNone))
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
}

func TestVertexLayoutMatchesVertex(t *testing.T) {
	layout := VertexLayout()
	assert.Equal(t, uint64(common.VertexStride), layout.ArrayStride)

	locations := make(map[uint32]uint64)
	for _, a := range layout.Attributes {
		locations[a.ShaderLocation] = a.Offset
	}
	assert.Equal(t, map[uint32]uint64{0: 0, 1: 12, 2: 24, 3: 44}, locations)
}

func TestReleaseBeforeRegistration(t *testing.T) {
	p := NewSpritePipeline()
	assert.NotPanics(t, p.Release)
}
