package drawable

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGPU struct {
	calls    []string
	writes   []bind_group_provider.BufferWrite
	failOn   string
	writeErr error
	indices  []int
}

func (g *fakeGPU) record(call string) error {
	g.calls = append(g.calls, call)
	if call == g.failOn {
		return errors.New("out of memory")
	}
	return nil
}

func (g *fakeGPU) InitMeshBuffers(p bind_group_provider.BindGroupProvider, _, _ []byte, indexCount int) error {
	g.indices = append(g.indices, indexCount)
	return g.record("mesh:" + p.Label())
}

func (g *fakeGPU) InitBindGroup(p bind_group_provider.BindGroupProvider, _ wgpu.BindGroupLayoutDescriptor, _ map[int]wgpu.BufferUsage, _ map[int]uint64) error {
	return g.record("group:" + p.Label())
}

func (g *fakeGPU) InitTextureView(p bind_group_provider.BindGroupProvider, binding int, _ common.TextureStagingData) error {
	return g.record(fmt.Sprintf("texture:%s:%d", p.Label(), binding))
}

func (g *fakeGPU) InitSampler(p bind_group_provider.BindGroupProvider, binding int, _ common.SamplerStagingData) error {
	return g.record(fmt.Sprintf("sampler:%s:%d", p.Label(), binding))
}

func (g *fakeGPU) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	if g.writeErr != nil {
		return g.writeErr
	}
	g.writes = append(g.writes, writes...)
	return nil
}

type fakeFrame struct {
	calls  []string
	groups []bind_group_provider.BindGroupProvider
}

func (f *fakeFrame) CommandList() *wgpu.RenderPassEncoder { return nil }

func (f *fakeFrame) SetBindGroup(groupIndex uint32, _ *wgpu.BindGroup, _ []uint32) {
	f.calls = append(f.calls, fmt.Sprintf("bind:%d", groupIndex))
}

func (f *fakeFrame) DrawCall(key string, _ bind_group_provider.BindGroupProvider, _ uint32, groups []bind_group_provider.BindGroupProvider) error {
	f.calls = append(f.calls, "draw:"+key)
	f.groups = groups
	return nil
}

func readF(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func readMat4(b []byte) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = readF(b, i*4)
	}
	return m
}

func newLights(t *testing.T) light.LightGroup {
	t.Helper()
	g, err := light.NewLightGroup(&fakeGPU{})
	require.NoError(t, err)
	return g
}

func TestCubeMesh(t *testing.T) {
	m := CubeMesh(0.5, mgl32.Vec4{1, 0, 0, 1})

	require.Len(t, m.Vertices, 24)
	require.Len(t, m.Indices, 36)
	for _, v := range m.Vertices {
		p, n := mgl32.Vec3(v.Position), mgl32.Vec3(v.Normal)
		assert.InDelta(t, 1, n.Len(), 1e-6)
		assert.InDelta(t, 0.5, p.Dot(n), 1e-6)
		assert.Equal(t, [4]float32{1, 0, 0, 1}, v.Color)
	}
	for i := 0; i < len(m.Indices); i += 3 {
		a := mgl32.Vec3(m.Vertices[m.Indices[i]].Position)
		b := mgl32.Vec3(m.Vertices[m.Indices[i+1]].Position)
		c := mgl32.Vec3(m.Vertices[m.Indices[i+2]].Position)
		n := mgl32.Vec3(m.Vertices[m.Indices[i]].Normal)
		assert.Greater(t, b.Sub(a).Cross(c.Sub(a)).Dot(n), float32(0), "triangle %d winds clockwise", i/3)
	}
}

func TestQuadMesh(t *testing.T) {
	m := QuadMesh()
	assert.Len(t, m.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
}

func TestNewObject3DInitOrder(t *testing.T) {
	gpu := &fakeGPU{}
	_, err := NewObject3D(gpu, CubeMesh(1, mgl32.Vec4{1, 1, 1, 1}), camera.NewCamera(), WithLabel("Cube"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"mesh:Cube Mesh",
		"group:Cube Transform",
		"texture:Cube Texture:0",
		"sampler:Cube Texture:1",
		"group:Cube Texture",
		"group:Cube Material",
	}, gpu.calls)
	assert.Equal(t, []int{36}, gpu.indices)
}

func TestNewObject3DFailure(t *testing.T) {
	gpu := &fakeGPU{failOn: "sampler:Cube Texture:1"}
	_, err := NewObject3D(gpu, CubeMesh(1, mgl32.Vec4{}), camera.NewCamera(), WithLabel("Cube"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cube texture")
}

func TestObject3DPrepareWritesTransform(t *testing.T) {
	gpu := &fakeGPU{}
	cam := camera.NewCamera(camera.WithPosition(mgl32.Vec3{0, 2, -6}))
	o, err := NewObject3D(gpu, CubeMesh(1, mgl32.Vec4{1, 1, 1, 1}), cam, WithPosition(mgl32.Vec3{1, 2, 3}))
	require.NoError(t, err)

	o.Prepare(0.016)
	frame := &fakeFrame{}
	require.NoError(t, o.Draw(frame, newLights(t)))

	require.Len(t, gpu.writes, 2)
	transform := gpu.writes[0].Data
	require.Len(t, transform, pipeline.TransformUniformSize)
	assert.Equal(t, cam.ViewProjectionMatrix(), readMat4(transform[0:]))
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), readMat4(transform[64:]))
	assert.Equal(t, float32(2), readF(transform, 132))
	assert.Equal(t, float32(-6), readF(transform, 136))
	assert.Len(t, gpu.writes[1].Data, pipeline.MaterialUniformSize)

	assert.Equal(t, []string{fmt.Sprintf("bind:%d", light.RootSlot), "draw:object3D"}, frame.calls)
	require.Len(t, frame.groups, 3)
	assert.Same(t, o.Material().BindGroupProvider(), frame.groups[pipeline.Object3DMaterialGroup])
}

func TestObject3DMaterialUploadedOnlyWhenChanged(t *testing.T) {
	gpu := &fakeGPU{}
	m := material.NewMaterial()
	o, err := NewObject3D(gpu, CubeMesh(1, mgl32.Vec4{}), camera.NewCamera(), WithMaterial(m))
	require.NoError(t, err)
	lights := newLights(t)

	o.Prepare(0)
	require.NoError(t, o.Draw(&fakeFrame{}, lights))
	o.Prepare(0)
	require.NoError(t, o.Draw(&fakeFrame{}, lights))
	assert.Len(t, gpu.writes, 3)

	m.SetAlpha(0.5)
	o.Prepare(0)
	require.NoError(t, o.Draw(&fakeFrame{}, lights))
	assert.Len(t, gpu.writes, 5)
}

func TestObject3DFailedUploadIsRetried(t *testing.T) {
	gpu := &fakeGPU{}
	m := material.NewMaterial()
	o, err := NewObject3D(gpu, CubeMesh(1, mgl32.Vec4{}), camera.NewCamera(), WithMaterial(m))
	require.NoError(t, err)
	lights := newLights(t)

	o.Prepare(0)
	gpu.writeErr = errors.New("device lost")
	frame := &fakeFrame{}
	err = o.Draw(frame, lights)
	require.ErrorIs(t, err, gpu.writeErr)
	assert.Empty(t, frame.calls)

	gpu.writeErr = nil
	o.Prepare(0)
	require.NoError(t, o.Draw(frame, lights))
	require.Len(t, gpu.writes, 2, "one transform and the requeued material")
	assert.Len(t, gpu.writes[0].Data, pipeline.MaterialUniformSize)
	assert.Len(t, gpu.writes[1].Data, pipeline.TransformUniformSize)
}

func TestObject3DSpin(t *testing.T) {
	o, err := NewObject3D(&fakeGPU{}, CubeMesh(1, mgl32.Vec4{}), camera.NewCamera(), WithSpin(mgl32.Vec3{0, 2, 0}, math.Pi))
	require.NoError(t, err)

	o.Prepare(0.5)

	rotated := o.Rotation().Rotate(mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 0, rotated.X(), 1e-5)
	assert.InDelta(t, -1, rotated.Z(), 1e-5)

	o.SetSpin(mgl32.Vec3{}, 1)
	before := o.Rotation()
	o.Prepare(1)
	assert.Equal(t, before, o.Rotation())
}

func TestObject3DRequiresLights(t *testing.T) {
	o, err := NewObject3D(&fakeGPU{}, CubeMesh(1, mgl32.Vec4{}), camera.NewCamera())
	require.NoError(t, err)

	assert.ErrorIs(t, o.Draw(&fakeFrame{}, nil), ErrNoLights)
}

func TestObject3DModelMatrix(t *testing.T) {
	o, err := NewObject3D(&fakeGPU{}, CubeMesh(1, mgl32.Vec4{}), camera.NewCamera())
	require.NoError(t, err)
	o.SetPosition(mgl32.Vec3{0, 0, 4})
	o.SetScale(mgl32.Vec3{2, 2, 2})

	p := o.ModelMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.Equal(t, mgl32.Vec4{2, 0, 4, 1}, p)
}

func TestNewSprite(t *testing.T) {
	gpu := &fakeGPU{}
	_, err := NewSprite(gpu, WithSpriteLabel("Badge"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"mesh:Badge Mesh",
		"group:Badge Uniform",
		"texture:Badge Texture:0",
		"sampler:Badge Texture:1",
		"group:Badge Texture",
	}, gpu.calls)
	assert.Equal(t, []int{6}, gpu.indices)
}

func TestSpriteUploadsOnlyWhenDirty(t *testing.T) {
	gpu := &fakeGPU{}
	s, err := NewSprite(gpu, WithRect(mgl32.Vec2{0.5, -0.5}, mgl32.Vec2{0.25, 0.5}), WithColor(mgl32.Vec4{1, 0, 0, 0.5}))
	require.NoError(t, err)

	frame := &fakeFrame{}
	s.Prepare(0)
	require.NoError(t, s.Draw(frame, nil))
	require.Len(t, gpu.writes, 1)

	data := gpu.writes[0].Data
	require.Len(t, data, pipeline.SpriteUniformSize)
	m := readMat4(data)
	assert.Equal(t, s.Transform(), m)
	assert.Equal(t, mgl32.Vec4{0.5 + 0.125, -0.5 + 0.25, 0, 1}, m.Mul4x1(mgl32.Vec4{0.5, 0.5, 0, 1}))
	assert.Equal(t, float32(0.5), readF(data, 76))

	s.Prepare(0)
	require.NoError(t, s.Draw(frame, nil))
	assert.Len(t, gpu.writes, 1)

	s.SetColor(mgl32.Vec4{0, 1, 0, 1})
	s.Prepare(0)
	require.NoError(t, s.Draw(frame, nil))
	assert.Len(t, gpu.writes, 2)

	assert.Equal(t, []string{"draw:sprite", "draw:sprite", "draw:sprite"}, frame.calls)
	require.Len(t, frame.groups, 2)
}

func TestSpriteFailedUploadIsRebuilt(t *testing.T) {
	gpu := &fakeGPU{}
	s, err := NewSprite(gpu)
	require.NoError(t, err)

	s.Prepare(0)
	gpu.writeErr = errors.New("device lost")
	require.ErrorIs(t, s.Draw(&fakeFrame{}, nil), gpu.writeErr)

	gpu.writeErr = nil
	s.Prepare(0)
	require.NoError(t, s.Draw(&fakeFrame{}, nil))
	assert.Len(t, gpu.writes, 1)
}
