package pipeline

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/cogentcore/webgpu/wgpu"
)

// Keys of the built-in bundles.
const (
	SpriteKey   = "sprite"
	Object3DKey = "object3D"
)

// Uniform block sizes of the built-in bundles.
const (
	// SpriteUniformSize is transform mat4 + color vec4.
	SpriteUniformSize = 80
	// TransformUniformSize is view_proj mat4 + model mat4 + eye vec3, padded to 16.
	TransformUniformSize = 144
	// MaterialUniformSize is ambient, alpha, diffuse, shininess, specular, padded to 16.
	MaterialUniformSize = 48
)

// Bind group indices used by the object3D bundle. Lighting is light.RootSlot.
const (
	Object3DTransformGroup = 0
	Object3DTextureGroup   = 1
	Object3DMaterialGroup  = 2
)

// Bind group indices used by the sprite bundle.
const (
	SpriteUniformGroup = 0
	SpriteTextureGroup = 1
)

//go:embed assets/sprite.wgsl
var spriteSource string

//go:embed assets/object3d.wgsl
var object3DSource string

// VertexLayout returns the layout of common.Vertex with the attributes both bundles read:
// position at location 0, normal at 1, uv at 2 and color at 3. The tangent is not consumed.
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: common.VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 44, ShaderLocation: 3},
		},
	}
}

// UniformLayout returns a single uniform buffer binding visible to both stages.
//
// Parameters:
//   - label: the layout label
//   - size: the minimum binding size in bytes
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
func UniformLayout(label string, size uint64) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	}
}

// TextureLayout returns a filterable 2D texture at binding 0 and its sampler at binding 1.
//
// Parameters:
//   - label: the layout label
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
func TextureLayout(label string) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}

// NewSpritePipeline creates the "sprite" bundle: alpha blending, no depth test or write, no culling.
//
// Parameters:
//   - opts: options applied after the bundle defaults
//
// Returns:
//   - Pipeline: the sprite bundle
func NewSpritePipeline(opts ...PipelineBuilderOption) Pipeline {
	base := []PipelineBuilderOption{
		WithBindGroupLayout(SpriteUniformGroup, UniformLayout("Sprite Uniform Layout", SpriteUniformSize)),
		WithBindGroupLayout(SpriteTextureGroup, TextureLayout("Sprite Texture Layout")),
		WithVertexLayout(VertexLayout()),
		WithBlendEnabled(true),
		WithDepth(false, false),
		WithCullMode(wgpu.CullModeNone),
	}
	return NewPipeline(SpriteKey, spriteSource, append(base, opts...)...)
}

// NewObject3DPipeline creates the "object3D" bundle: depth test and write, back-face culling,
// no blending, and the light group bound at light.RootSlot.
//
// Parameters:
//   - opts: options applied after the bundle defaults
//
// Returns:
//   - Pipeline: the object3D bundle
func NewObject3DPipeline(opts ...PipelineBuilderOption) Pipeline {
	base := []PipelineBuilderOption{
		WithBindGroupLayout(Object3DTransformGroup, UniformLayout("Object3D Transform Layout", TransformUniformSize)),
		WithBindGroupLayout(Object3DTextureGroup, TextureLayout("Object3D Texture Layout")),
		WithBindGroupLayout(Object3DMaterialGroup, UniformLayout("Object3D Material Layout", MaterialUniformSize)),
		WithBindGroupLayout(light.RootSlot, light.BindGroupLayoutDescriptor()),
		WithVertexLayout(VertexLayout()),
		WithBlendEnabled(false),
		WithDepth(true, true),
		WithCullMode(wgpu.CullModeBack),
	}
	return NewPipeline(Object3DKey, light.LightGroupSource+"\n"+object3DSource, append(base, opts...)...)
}
