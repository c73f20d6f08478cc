package material

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a functional option for configuring a Material.
type MaterialBuilderOption func(*material)

// WithName sets the material identifier, also used as the GPU resource label.
//
// Parameters:
//   - name: the material name
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithPhong sets the ambient, diffuse and specular reflectance and the specular exponent.
//
// Parameters:
//   - ambient: ambient reflectance
//   - diffuse: diffuse reflectance
//   - specular: specular reflectance
//   - shininess: specular exponent
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithPhong(ambient, diffuse, specular mgl32.Vec3, shininess float32) MaterialBuilderOption {
	return func(m *material) {
		m.ambient = ambient
		m.diffuse = diffuse
		m.specular = specular
		m.shininess = shininess
	}
}

// WithAlpha sets the opacity.
//
// Parameters:
//   - alpha: opacity in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithAlpha(alpha float32) MaterialBuilderOption {
	return func(m *material) {
		m.alpha = alpha
	}
}

// WithDiffuseTexture sets the RGBA texture sampled by the fragment shader.
//
// Parameters:
//   - tex: the texture pixels
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithDiffuseTexture(tex common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.diffuseTexture = tex
	}
}

// WithBindGroupProvider sets the provider used for the material uniform instead of a new one.
//
// Parameters:
//   - provider: the BindGroupProvider
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) MaterialBuilderOption {
	return func(m *material) {
		m.bindGroupProvider = provider
	}
}
