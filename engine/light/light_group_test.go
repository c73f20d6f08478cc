package light

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGPU struct {
	initErr  error
	writeErr error
	desc     wgpu.BindGroupLayoutDescriptor
	sizes    map[int]uint64
	writes   [][]byte
}

func (f *fakeGPU) InitBindGroup(_ bind_group_provider.BindGroupProvider, d wgpu.BindGroupLayoutDescriptor, _ map[int]wgpu.BufferUsage, s map[int]uint64) error {
	f.desc = d
	f.sizes = s
	return f.initErr
}

func (f *fakeGPU) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	for _, w := range writes {
		f.writes = append(f.writes, append([]byte(nil), w.Data...))
	}
	return nil
}

type fakePass struct {
	groups []uint32
}

func (p *fakePass) SetBindGroup(groupIndex uint32, _ *wgpu.BindGroup, _ []uint32) {
	p.groups = append(p.groups, groupIndex)
}

func readF(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4]))
}

func readU(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

func newTestGroup(t *testing.T, opts ...LightGroupBuilderOption) (LightGroup, *fakeGPU) {
	t.Helper()
	gpu := &fakeGPU{}
	g, err := NewLightGroup(gpu, opts...)
	require.NoError(t, err)
	return g, gpu
}

func TestNewLightGroupDefaultRig(t *testing.T) {
	g, gpu := newTestGroup(t)

	assert.Equal(t, StateClean, g.State())
	require.Len(t, gpu.writes, 1, "creation transfers once")
	assert.Equal(t, uint64(BufferSize), gpu.sizes[0])
	assert.Equal(t, uint64(MirrorSize), gpu.desc.Entries[0].Buffer.MinBindingSize)

	for i := 0; i < DirLightNum; i++ {
		assert.True(t, g.DirLight(i).Active, "dir %d", i)
		assert.Equal(t, mgl32.Vec3{1, 1, 1}, g.DirLight(i).Color)
	}
	for i := 0; i < PointLightNum; i++ {
		assert.False(t, g.PointLight(i).Active)
	}
	for i := 0; i < SpotLightNum; i++ {
		assert.False(t, g.SpotLight(i).Active)
	}
	assert.False(t, g.CircleShadow(0).Active)

	g.Update()
	assert.Len(t, gpu.writes, 1, "clean update must not upload")

	m := g.Mirror()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{readF(m, 0), readF(m, 4), readF(m, 8)})

	assert.Equal(t, float32(0), readF(m, dirLightBase))
	assert.Equal(t, float32(1), readF(m, dirLightBase+4))
	assert.Equal(t, float32(0), readF(m, dirLightBase+8))
	assert.Equal(t, float32(0), readF(m, dirLightBase+12))
	assert.Equal(t, uint32(1), readU(m, dirLightBase+dirActiveOffset))

	want := mgl32.Vec3{0.5, 0.1, 0.2}.Normalize().Mul(-1)
	slot := dirLightBase + DirLightStride
	assert.InDelta(t, want[0], readF(m, slot), 1e-6)
	assert.InDelta(t, want[1], readF(m, slot+4), 1e-6)
	assert.InDelta(t, want[2], readF(m, slot+8), 1e-6)
}

func TestSettersBatchIntoOneUpload(t *testing.T) {
	g, gpu := newTestGroup(t)

	g.SetAmbientColor(mgl32.Vec3{0.1, 0.1, 0.1})
	g.SetPointLightActive(0, true)
	g.SetPointLightPos(0, mgl32.Vec3{1, 2, 3})
	g.SetSpotLightColor(1, mgl32.Vec3{1, 0, 0})
	g.SetCircleShadowDistanceCasterLight(0, 50)
	assert.Equal(t, StateDirty, g.State())

	g.Update()
	assert.Len(t, gpu.writes, 2)
	assert.Equal(t, StateClean, g.State())

	g.Update()
	assert.Len(t, gpu.writes, 2)
}

func TestSetterWithSameValueStillDirties(t *testing.T) {
	g, gpu := newTestGroup(t)

	g.SetDirLightActive(0, true)
	assert.Equal(t, StateDirty, g.State())

	g.Update()
	assert.Len(t, gpu.writes, 2)
}

func TestInactiveSlotKeepsStaleFields(t *testing.T) {
	g, gpu := newTestGroup(t)

	g.SetPointLightActive(0, true)
	g.SetPointLightPos(0, mgl32.Vec3{1, 2, 3})
	g.SetPointLightColor(0, mgl32.Vec3{0.5, 0.5, 0.5})
	g.Update()

	g.SetPointLightActive(0, false)
	g.SetPointLightPos(0, mgl32.Vec3{9, 9, 9})
	g.Update()

	m := gpu.writes[len(gpu.writes)-1]
	assert.Equal(t, uint32(0), readU(m, pointLightBase+pointActiveOffset))
	assert.Equal(t, float32(1), readF(m, pointLightBase))
	assert.Equal(t, float32(2), readF(m, pointLightBase+4))
	assert.Equal(t, float32(3), readF(m, pointLightBase+8))
	assert.Equal(t, float32(0.5), readF(m, pointLightBase+16))
}

func TestDrawBindsRootSlotWithoutUpload(t *testing.T) {
	g, gpu := newTestGroup(t)
	pass := &fakePass{}

	g.SetDirLightColor(0, mgl32.Vec3{1, 0, 0})
	g.Draw(pass)

	assert.Equal(t, []uint32{RootSlot}, pass.groups)
	assert.Len(t, gpu.writes, 1)
	assert.Equal(t, StateDirty, g.State())
}

func TestOutOfRangeIndexPanics(t *testing.T) {
	g, _ := newTestGroup(t)

	assert.PanicsWithError(t, "light: point light index 5 out of range [0, 3)", func() {
		g.SetPointLightActive(5, true)
	})
	assert.Panics(t, func() { g.SetDirLightDir(-1, mgl32.Vec4{1, 0, 0, 0}) })
	assert.Panics(t, func() { g.SetSpotLightPos(SpotLightNum, mgl32.Vec3{}) })
	assert.Panics(t, func() { g.SetCircleShadowActive(1, true) })
	assert.Panics(t, func() { _ = g.DirLight(DirLightNum) })

	defer func() {
		r := recover()
		var idxErr *IndexError
		require.True(t, errors.As(r.(error), &idxErr))
		assert.Equal(t, LightTypeSpot, idxErr.Type)
		assert.Equal(t, 7, idxErr.Index)
	}()
	g.SetSpotLightActive(7, true)
}

func TestDirectionSettersNormalize(t *testing.T) {
	g, _ := newTestGroup(t)

	g.SetSpotLightDir(0, mgl32.Vec4{0, 0, 4, 0})
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 0}, g.SpotLight(0).Dir)

	g.SetCircleShadowDir(0, mgl32.Vec4{0, -2, 0, 0})
	assert.Equal(t, mgl32.Vec4{0, -1, 0, 0}, g.CircleShadow(0).Dir)

	g.SetDirLightDir(1, mgl32.Vec4{})
	assert.Equal(t, mgl32.Vec4{}, g.DirLight(1).Dir)
}

func TestFactorAngleStoresCosines(t *testing.T) {
	g, gpu := newTestGroup(t)

	g.SetSpotLightActive(2, true)
	g.SetSpotLightFactorAngle(2, mgl32.Vec2{60, 90})
	cos := g.SpotLight(2).FactorAngleCos
	assert.InDelta(t, 0.5, cos[0], 1e-6)
	assert.InDelta(t, 0, cos[1], 1e-6)

	g.Update()
	m := gpu.writes[len(gpu.writes)-1]
	slot := spotLightBase + 2*SpotLightStride
	assert.InDelta(t, 0.5, readF(m, slot+64), 1e-6)
	assert.Equal(t, uint32(1), readU(m, slot+spotActiveOffset))
}

func TestCircleShadowSerialization(t *testing.T) {
	g, gpu := newTestGroup(t)

	g.SetCircleShadowActive(0, true)
	g.SetCircleShadowDir(0, mgl32.Vec4{0, -1, 0, 0})
	g.SetCircleShadowCasterPos(0, mgl32.Vec3{4, 5, 6})
	g.SetCircleShadowAtten(0, mgl32.Vec3{0.5, 0.6, 0})
	g.SetCircleShadowFactorAngle(0, mgl32.Vec2{0, 60})
	g.Update()

	m := gpu.writes[len(gpu.writes)-1]
	assert.Equal(t, float32(1), readF(m, circleShadowBase+4))
	assert.Equal(t, float32(4), readF(m, circleShadowBase+16))
	assert.Equal(t, float32(100), readF(m, circleShadowBase+28))
	assert.Equal(t, float32(0.6), readF(m, circleShadowBase+36))
	assert.InDelta(t, 1, readF(m, circleShadowBase+48), 1e-6)
	assert.InDelta(t, 0.5, readF(m, circleShadowBase+52), 1e-6)
	assert.Equal(t, uint32(1), readU(m, circleShadowBase+circleShadowActiveOffset))
}

func TestBuilderOptions(t *testing.T) {
	g, gpu := newTestGroup(t,
		WithLabel("scene lights"),
		WithAmbientColor(mgl32.Vec3{0.2, 0.2, 0.2}),
		WithPointLight(1, PointLight{Pos: mgl32.Vec3{0, 3, 0}, Color: mgl32.Vec3{1, 1, 1}, Atten: mgl32.Vec3{1, 0.1, 0.01}, Active: true}),
		WithDirectionalLight(2, DirectionalLight{Dir: mgl32.Vec4{0, 0, -3, 0}}),
	)

	assert.Equal(t, "scene lights", g.BindGroupProvider().Label())
	assert.Equal(t, StateClean, g.State())
	assert.False(t, g.DirLight(2).Active)
	assert.Equal(t, mgl32.Vec4{0, 0, -1, 0}, g.DirLight(2).Dir)

	m := gpu.writes[0]
	assert.Equal(t, float32(0.2), readF(m, 0))
	assert.Equal(t, float32(3), readF(m, pointLightBase+PointLightStride+4))
	assert.Equal(t, uint32(0), readU(m, dirLightBase+2*DirLightStride+dirActiveOffset))
}

func TestNewLightGroupErrors(t *testing.T) {
	assert.Panics(t, func() { _, _ = NewLightGroup(nil) })

	boom := errors.New("out of memory")
	_, err := NewLightGroup(&fakeGPU{initErr: boom})
	assert.ErrorIs(t, err, boom)
}

func TestLayoutConstants(t *testing.T) {
	assert.Equal(t, 560, MirrorSize)
	assert.Equal(t, 768, BufferSize)
	assert.Contains(t, LightGroupSource, "struct LightGroup")
	assert.Equal(t, "circle shadow", LightTypeCircleShadow.String())
	assert.Equal(t, "dirty", StateDirty.String())
}

func TestFailedUploadStaysDirty(t *testing.T) {
	g, gpu := newTestGroup(t)

	g.SetPointLightActive(0, true)
	gpu.writeErr = errors.New("device lost")
	err := g.Update()
	require.Error(t, err)
	assert.ErrorIs(t, err, gpu.writeErr)
	assert.Equal(t, StateDirty, g.State())
	assert.Len(t, gpu.writes, 1)

	gpu.writeErr = nil
	require.NoError(t, g.Update())
	assert.Equal(t, StateClean, g.State())
	require.Len(t, gpu.writes, 2)
	assert.Equal(t, uint32(1), readU(gpu.writes[1], pointLightBase+pointActiveOffset))
}

func TestNewLightGroupUploadFailure(t *testing.T) {
	gpu := &fakeGPU{writeErr: errors.New("out of memory")}
	g, err := NewLightGroup(gpu)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, gpu.writeErr)
}
