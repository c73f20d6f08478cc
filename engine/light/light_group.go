package light

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// CacheState reports whether the constant buffer mirror matches the records.
type CacheState int

const (
	// StateClean means the mirror holds the current records.
	StateClean CacheState = iota

	// StateDirty means a setter ran since the last flush.
	StateDirty
)

func (s CacheState) String() string {
	if s == StateDirty {
		return "dirty"
	}
	return "clean"
}

// IndexError is the panic value raised when a setter or getter receives a slot index
// outside its record array.
type IndexError struct {
	Type  LightType
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("light: %s index %d out of range [0, %d)", e.Type, e.Index, e.Len)
}

// GPUContext is the subset of the renderer the light group needs to allocate and upload
// its constant buffer.
type GPUContext interface {
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	WriteBuffers(writes []bind_group_provider.BufferWrite) error
}

// BindGroupSetter is satisfied by *wgpu.RenderPassEncoder.
type BindGroupSetter interface {
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
}

// lightGroup is the implementation of the LightGroup interface.
type lightGroup struct {
	label    string
	gpu      GPUContext
	provider bind_group_provider.BindGroupProvider

	records Records
	state   CacheState

	// mirror is the CPU image of the uniform block. It persists between flushes so inactive
	// slots keep their previous contents.
	mirror []byte
}

// LightGroup caches a fixed set of directional lights, point lights, spot lights and circle
// shadows and mirrors them into a uniform buffer.
//
// Setters only mark the group dirty. Update re-serializes every slot when dirty and uploads
// the mirror; Draw binds the buffer at RootSlot without checking the dirty state, so Update
// must run first in the same frame for Draw to see fresh data.
//
// Every indexed method panics with *IndexError when the index is outside the record array.
type LightGroup interface {
	// Update serializes and uploads all records if any setter ran since the last flush.
	// It is a no-op while clean. A failed upload leaves the group dirty so the next Update
	// retries it.
	//
	// Returns:
	//   - error: the upload error, if any
	Update() error

	// Draw binds the light group's bind group at RootSlot on the given pass.
	//
	// Parameters:
	//   - pass: the render pass encoder recording the current frame
	Draw(pass BindGroupSetter)

	// State returns whether the mirror is clean or dirty.
	//
	// Returns:
	//   - CacheState: StateClean or StateDirty
	State() CacheState

	// Mirror returns a copy of the CPU image last uploaded to the GPU.
	//
	// Returns:
	//   - []byte: MirrorSize bytes
	Mirror() []byte

	// Records returns a copy of the current light records.
	//
	// Returns:
	//   - Records: the record arrays and ambient color
	Records() Records

	// BindGroupProvider returns the provider owning the uniform buffer and bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the GPU resource holder
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetAmbientColor sets the scene ambient color.
	//
	// Parameters:
	//   - color: RGB ambient color
	SetAmbientColor(color mgl32.Vec3)

	// SetDirLightActive enables or disables a directional light.
	//
	// Parameters:
	//   - index: slot in [0, DirLightNum)
	//   - active: whether the light contributes to shading
	SetDirLightActive(index int, active bool)

	// SetDirLightDir sets the direction a directional light travels. The direction is normalized.
	//
	// Parameters:
	//   - index: slot in [0, DirLightNum)
	//   - dir: direction, w is carried through
	SetDirLightDir(index int, dir mgl32.Vec4)

	// SetDirLightColor sets the color of a directional light.
	//
	// Parameters:
	//   - index: slot in [0, DirLightNum)
	//   - color: RGB color
	SetDirLightColor(index int, color mgl32.Vec3)

	// SetPointLightActive enables or disables a point light.
	//
	// Parameters:
	//   - index: slot in [0, PointLightNum)
	//   - active: whether the light contributes to shading
	SetPointLightActive(index int, active bool)

	// SetPointLightPos sets the world position of a point light.
	//
	// Parameters:
	//   - index: slot in [0, PointLightNum)
	//   - pos: world position
	SetPointLightPos(index int, pos mgl32.Vec3)

	// SetPointLightColor sets the color of a point light.
	//
	// Parameters:
	//   - index: slot in [0, PointLightNum)
	//   - color: RGB color
	SetPointLightColor(index int, color mgl32.Vec3)

	// SetPointLightAtten sets the attenuation factors of a point light.
	//
	// Parameters:
	//   - index: slot in [0, PointLightNum)
	//   - atten: constant, linear and quadratic factors
	SetPointLightAtten(index int, atten mgl32.Vec3)

	// SetSpotLightActive enables or disables a spot light.
	SetSpotLightActive(index int, active bool)

	// SetSpotLightDir sets the cone axis of a spot light. The direction is normalized.
	SetSpotLightDir(index int, dir mgl32.Vec4)

	// SetSpotLightPos sets the world position of a spot light.
	SetSpotLightPos(index int, pos mgl32.Vec3)

	// SetSpotLightColor sets the color of a spot light.
	SetSpotLightColor(index int, color mgl32.Vec3)

	// SetSpotLightAtten sets the attenuation factors of a spot light.
	SetSpotLightAtten(index int, atten mgl32.Vec3)

	// SetSpotLightFactorAngle sets the falloff start and end angles of a spot light.
	//
	// Parameters:
	//   - index: slot in [0, SpotLightNum)
	//   - degrees: falloff start and end angles in degrees, stored as cosines
	SetSpotLightFactorAngle(index int, degrees mgl32.Vec2)

	// SetCircleShadowActive enables or disables a circle shadow.
	SetCircleShadowActive(index int, active bool)

	// SetCircleShadowCasterPos sets the world position of the shadow caster.
	SetCircleShadowCasterPos(index int, pos mgl32.Vec3)

	// SetCircleShadowDir sets the projection direction of a circle shadow. The direction is normalized.
	SetCircleShadowDir(index int, dir mgl32.Vec4)

	// SetCircleShadowDistanceCasterLight sets the distance between the caster and its virtual light.
	SetCircleShadowDistanceCasterLight(index int, distance float32)

	// SetCircleShadowAtten sets the attenuation factors of a circle shadow.
	SetCircleShadowAtten(index int, atten mgl32.Vec3)

	// SetCircleShadowFactorAngle sets the falloff start and end angles of a circle shadow.
	//
	// Parameters:
	//   - index: slot in [0, CircleShadowNum)
	//   - degrees: falloff start and end angles in degrees, stored as cosines
	SetCircleShadowFactorAngle(index int, degrees mgl32.Vec2)

	// AmbientColor returns the scene ambient color.
	AmbientColor() mgl32.Vec3

	// DirLight returns a copy of a directional light record.
	DirLight(index int) DirectionalLight

	// PointLight returns a copy of a point light record.
	PointLight(index int) PointLight

	// SpotLight returns a copy of a spot light record.
	SpotLight(index int) SpotLight

	// CircleShadow returns a copy of a circle shadow record.
	CircleShadow(index int) CircleShadow

	// Release frees the uniform buffer and bind group.
	Release()
}

var _ LightGroup = &lightGroup{}

// NewLightGroup creates a light group seeded with the default three-point rig: directional
// lights 0 to 2 active and white, every other slot inactive and the ambient color zero.
// Options are applied after the default rig. The GPU buffer is allocated, the initial state is
// transferred once and the group starts clean.
//
// Panics if gpu is nil.
//
// Parameters:
//   - gpu: the renderer (or any GPUContext) used to allocate and upload the uniform buffer
//   - options: variadic list of LightGroupBuilderOption functions to configure the group
//
// Returns:
//   - LightGroup: the initialized light group
//   - error: an error if the GPU bind group could not be created
func NewLightGroup(gpu GPUContext, options ...LightGroupBuilderOption) (LightGroup, error) {
	if gpu == nil {
		panic("light: NewLightGroup requires a non-nil GPUContext")
	}

	g := &lightGroup{
		label:   "Light Group",
		gpu:     gpu,
		records: DefaultRecords(),
		mirror:  make([]byte, MirrorSize),
	}
	g.defaultLightSetting()

	for _, opt := range options {
		opt(g)
	}

	g.provider = bind_group_provider.NewBindGroupProvider(g.label)
	if err := gpu.InitBindGroup(g.provider, BindGroupLayoutDescriptor(), nil, map[int]uint64{0: BufferSize}); err != nil {
		return nil, fmt.Errorf("failed to create light group constant buffer: %w", err)
	}

	if err := g.transfer(); err != nil {
		g.provider.Release()
		return nil, err
	}
	g.state = StateClean
	return g, nil
}

// defaultLightSetting installs the three-point directional rig.
func (g *lightGroup) defaultLightSetting() {
	dirs := [DirLightNum]mgl32.Vec4{
		{0, -1, 0, 0},
		{0.5, 0.1, 0.2, 0},
		{-0.5, 0.1, -0.2, 0},
	}
	for i, d := range dirs {
		g.SetDirLightActive(i, true)
		g.SetDirLightColor(i, mgl32.Vec3{1, 1, 1})
		g.SetDirLightDir(i, d)
	}
}

func (g *lightGroup) transfer() error {
	Serialize(g.mirror, &g.records)
	if err := g.gpu.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: g.provider, Binding: 0, Offset: 0, Data: g.mirror},
	}); err != nil {
		return fmt.Errorf("failed to upload light group %q: %w", g.label, err)
	}
	logger.Logger().Debug("light group transferred", "label", g.label, "bytes", len(g.mirror))
	return nil
}

func (g *lightGroup) Update() error {
	if g.state == StateClean {
		return nil
	}
	if err := g.transfer(); err != nil {
		return err
	}
	g.state = StateClean
	return nil
}

func (g *lightGroup) Draw(pass BindGroupSetter) {
	pass.SetBindGroup(RootSlot, g.provider.BindGroup(), nil)
}

func (g *lightGroup) State() CacheState {
	return g.state
}

func (g *lightGroup) Mirror() []byte {
	out := make([]byte, len(g.mirror))
	copy(out, g.mirror)
	return out
}

func (g *lightGroup) Records() Records {
	return g.records
}

func (g *lightGroup) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return g.provider
}

func (g *lightGroup) Release() {
	if g.provider != nil {
		g.provider.Release()
	}
}

func checkIndex(t LightType, index, n int) {
	if index < 0 || index >= n {
		panic(&IndexError{Type: t, Index: index, Len: n})
	}
}

func (g *lightGroup) SetAmbientColor(color mgl32.Vec3) {
	g.records.AmbientColor = color
	g.state = StateDirty
}

func (g *lightGroup) SetDirLightActive(index int, active bool) {
	checkIndex(LightTypeDirectional, index, DirLightNum)
	g.records.DirLights[index].Active = active
	g.state = StateDirty
}

func (g *lightGroup) SetDirLightDir(index int, dir mgl32.Vec4) {
	checkIndex(LightTypeDirectional, index, DirLightNum)
	g.records.DirLights[index].Dir = normalizeDir(dir)
	g.state = StateDirty
}

func (g *lightGroup) SetDirLightColor(index int, color mgl32.Vec3) {
	checkIndex(LightTypeDirectional, index, DirLightNum)
	g.records.DirLights[index].Color = color
	g.state = StateDirty
}

func (g *lightGroup) SetPointLightActive(index int, active bool) {
	checkIndex(LightTypePoint, index, PointLightNum)
	g.records.PointLights[index].Active = active
	g.state = StateDirty
}

func (g *lightGroup) SetPointLightPos(index int, pos mgl32.Vec3) {
	checkIndex(LightTypePoint, index, PointLightNum)
	g.records.PointLights[index].Pos = pos
	g.state = StateDirty
}

func (g *lightGroup) SetPointLightColor(index int, color mgl32.Vec3) {
	checkIndex(LightTypePoint, index, PointLightNum)
	g.records.PointLights[index].Color = color
	g.state = StateDirty
}

func (g *lightGroup) SetPointLightAtten(index int, atten mgl32.Vec3) {
	checkIndex(LightTypePoint, index, PointLightNum)
	g.records.PointLights[index].Atten = atten
	g.state = StateDirty
}

func (g *lightGroup) SetSpotLightActive(index int, active bool) {
	checkIndex(LightTypeSpot, index, SpotLightNum)
	g.records.SpotLights[index].Active = active
	g.state = StateDirty
}

func (g *lightGroup) SetSpotLightDir(index int, dir mgl32.Vec4) {
	checkIndex(LightTypeSpot, index, SpotLightNum)
	g.records.SpotLights[index].Dir = normalizeDir(dir)
	g.state = StateDirty
}

func (g *lightGroup) SetSpotLightPos(index int, pos mgl32.Vec3) {
	checkIndex(LightTypeSpot, index, SpotLightNum)
	g.records.SpotLights[index].Pos = pos
	g.state = StateDirty
}

func (g *lightGroup) SetSpotLightColor(index int, color mgl32.Vec3) {
	checkIndex(LightTypeSpot, index, SpotLightNum)
	g.records.SpotLights[index].Color = color
	g.state = StateDirty
}

func (g *lightGroup) SetSpotLightAtten(index int, atten mgl32.Vec3) {
	checkIndex(LightTypeSpot, index, SpotLightNum)
	g.records.SpotLights[index].Atten = atten
	g.state = StateDirty
}

func (g *lightGroup) SetSpotLightFactorAngle(index int, degrees mgl32.Vec2) {
	checkIndex(LightTypeSpot, index, SpotLightNum)
	g.records.SpotLights[index].FactorAngleCos = angleCos(degrees)
	g.state = StateDirty
}

func (g *lightGroup) SetCircleShadowActive(index int, active bool) {
	checkIndex(LightTypeCircleShadow, index, CircleShadowNum)
	g.records.CircleShadows[index].Active = active
	g.state = StateDirty
}

func (g *lightGroup) SetCircleShadowCasterPos(index int, pos mgl32.Vec3) {
	checkIndex(LightTypeCircleShadow, index, CircleShadowNum)
	g.records.CircleShadows[index].CasterPos = pos
	g.state = StateDirty
}

func (g *lightGroup) SetCircleShadowDir(index int, dir mgl32.Vec4) {
	checkIndex(LightTypeCircleShadow, index, CircleShadowNum)
	g.records.CircleShadows[index].Dir = normalizeDir(dir)
	g.state = StateDirty
}

func (g *lightGroup) SetCircleShadowDistanceCasterLight(index int, distance float32) {
	checkIndex(LightTypeCircleShadow, index, CircleShadowNum)
	g.records.CircleShadows[index].DistanceCasterLight = distance
	g.state = StateDirty
}

func (g *lightGroup) SetCircleShadowAtten(index int, atten mgl32.Vec3) {
	checkIndex(LightTypeCircleShadow, index, CircleShadowNum)
	g.records.CircleShadows[index].Atten = atten
	g.state = StateDirty
}

func (g *lightGroup) SetCircleShadowFactorAngle(index int, degrees mgl32.Vec2) {
	checkIndex(LightTypeCircleShadow, index, CircleShadowNum)
	g.records.CircleShadows[index].FactorAngleCos = angleCos(degrees)
	g.state = StateDirty
}

func (g *lightGroup) AmbientColor() mgl32.Vec3 {
	return g.records.AmbientColor
}

func (g *lightGroup) DirLight(index int) DirectionalLight {
	checkIndex(LightTypeDirectional, index, DirLightNum)
	return g.records.DirLights[index]
}

func (g *lightGroup) PointLight(index int) PointLight {
	checkIndex(LightTypePoint, index, PointLightNum)
	return g.records.PointLights[index]
}

func (g *lightGroup) SpotLight(index int) SpotLight {
	checkIndex(LightTypeSpot, index, SpotLightNum)
	return g.records.SpotLights[index]
}

func (g *lightGroup) CircleShadow(index int) CircleShadow {
	checkIndex(LightTypeCircleShadow, index, CircleShadowNum)
	return g.records.CircleShadows[index]
}
