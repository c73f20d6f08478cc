package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

type material struct {
	mu sync.Mutex

	name      string
	ambient   mgl32.Vec3
	diffuse   mgl32.Vec3
	specular  mgl32.Vec3
	alpha     float32
	shininess float32

	diffuseTexture common.TextureStagingData
	dirty          bool

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material is a Phong surface: ambient, diffuse and specular reflectance, opacity, a specular
// exponent and a diffuse texture. Setters mark the material dirty until the next Flush.
type Material interface {
	// Name returns the material identifier.
	Name() string

	// Ambient returns the ambient reflectance.
	Ambient() mgl32.Vec3

	// Diffuse returns the diffuse reflectance.
	Diffuse() mgl32.Vec3

	// Specular returns the specular reflectance.
	Specular() mgl32.Vec3

	// Alpha returns the opacity multiplied into the texture alpha.
	Alpha() float32

	// Shininess returns the specular exponent.
	Shininess() float32

	// DiffuseTexture returns the texture sampled by the fragment shader.
	DiffuseTexture() common.TextureStagingData

	// SetAmbient sets the ambient reflectance.
	SetAmbient(c mgl32.Vec3)

	// SetDiffuse sets the diffuse reflectance.
	SetDiffuse(c mgl32.Vec3)

	// SetSpecular sets the specular reflectance.
	SetSpecular(c mgl32.Vec3)

	// SetAlpha sets the opacity.
	SetAlpha(alpha float32)

	// SetShininess sets the specular exponent.
	SetShininess(shininess float32)

	// GPU returns the uniform block for the current values.
	//
	// Returns:
	//   - GPUMaterial: the uniform block
	GPU() GPUMaterial

	// Flush returns the buffer write for the material uniform if a setter ran since the last
	// Flush, and clears the dirty flag.
	//
	// Returns:
	//   - bind_group_provider.BufferWrite: the write
	//   - bool: false if nothing changed
	Flush() (bind_group_provider.BufferWrite, bool)

	// BindGroupProvider returns the provider holding the material uniform buffer.
	BindGroupProvider() bind_group_provider.BindGroupProvider
}

var _ Material = &material{}

// NewMaterial creates a white, opaque material with a 1x1 white texture. The material starts
// dirty so the first Flush uploads it.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		name:           "Material",
		ambient:        mgl32.Vec3{0.3, 0.3, 0.3},
		diffuse:        mgl32.Vec3{0.8, 0.8, 0.8},
		specular:       mgl32.Vec3{0.5, 0.5, 0.5},
		alpha:          1,
		shininess:      32,
		diffuseTexture: common.SolidTexture(255, 255, 255, 255),
		dirty:          true,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.bindGroupProvider == nil {
		m.bindGroupProvider = bind_group_provider.NewBindGroupProvider(m.name)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Ambient() mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ambient
}

func (m *material) Diffuse() mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.diffuse
}

func (m *material) Specular() mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.specular
}

func (m *material) Alpha() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alpha
}

func (m *material) Shininess() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shininess
}

func (m *material) DiffuseTexture() common.TextureStagingData {
	return m.diffuseTexture
}

func (m *material) SetAmbient(c mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ambient = c
	m.dirty = true
}

func (m *material) SetDiffuse(c mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diffuse = c
	m.dirty = true
}

func (m *material) SetSpecular(c mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specular = c
	m.dirty = true
}

func (m *material) SetAlpha(alpha float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alpha = alpha
	m.dirty = true
}

func (m *material) SetShininess(shininess float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shininess = shininess
	m.dirty = true
}

func (m *material) GPU() GPUMaterial {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gpu()
}

func (m *material) gpu() GPUMaterial {
	return GPUMaterial{
		Ambient:   m.ambient,
		Alpha:     m.alpha,
		Diffuse:   m.diffuse,
		Shininess: m.shininess,
		Specular:  m.specular,
	}
}

func (m *material) Flush() (bind_group_provider.BufferWrite, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty {
		return bind_group_provider.BufferWrite{}, false
	}
	m.dirty = false
	g := m.gpu()
	return bind_group_provider.BufferWrite{
		Provider: m.bindGroupProvider,
		Binding:  0,
		Data:     g.Marshal(),
	}, true
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}
