package drawable

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoLights is returned by Object3D.Draw when the scene has no light group to bind.
var ErrNoLights = errors.New("drawable: object3D requires a light group")

type object3D struct {
	mu sync.Mutex

	label    string
	gpu      GPUContext
	camera   camera.Camera
	material material.Material

	position  mgl32.Vec3
	rotation  mgl32.Quat
	scale     mgl32.Vec3
	spinAxis  mgl32.Vec3
	spinSpeed float32

	meshProvider      bind_group_provider.BindGroupProvider
	transformProvider bind_group_provider.BindGroupProvider
	textureProvider   bind_group_provider.BindGroupProvider

	// pending holds the writes computed by Prepare until Draw issues them on the frame thread.
	pending []bind_group_provider.BufferWrite
}

// Object3D is a lit, textured mesh drawn with the object3D pipeline.
type Object3D interface {
	scene.Drawable

	// Position returns the world position.
	Position() mgl32.Vec3

	// SetPosition moves the object.
	SetPosition(p mgl32.Vec3)

	// Rotation returns the orientation.
	Rotation() mgl32.Quat

	// SetRotation sets the orientation.
	SetRotation(q mgl32.Quat)

	// Scale returns the per-axis scale.
	Scale() mgl32.Vec3

	// SetScale sets the per-axis scale.
	SetScale(s mgl32.Vec3)

	// SetSpin makes Prepare rotate the object around axis at a constant rate.
	//
	// Parameters:
	//   - axis: the rotation axis, need not be normalized
	//   - radiansPerSecond: the angular speed, 0 to stop
	SetSpin(axis mgl32.Vec3, radiansPerSecond float32)

	// ModelMatrix returns translate * rotate * scale.
	ModelMatrix() mgl32.Mat4

	// Material returns the object's material.
	Material() material.Material
}

var _ Object3D = &object3D{}

// NewObject3D uploads mesh and creates the transform, texture and material bind groups.
//
// Parameters:
//   - gpu: the renderer
//   - mesh: the mesh to draw
//   - cam: the camera whose view projection is written each Prepare
//   - options: functional options to configure the object
//
// Returns:
//   - Object3D: the object
//   - error: an error if a GPU resource could not be created
func NewObject3D(gpu GPUContext, mesh common.Mesh, cam camera.Camera, options ...Object3DBuilderOption) (Object3D, error) {
	if gpu == nil || cam == nil {
		panic("drawable: NewObject3D requires a GPUContext and a Camera")
	}
	o := &object3D{
		label:    "Object3D",
		gpu:      gpu,
		camera:   cam,
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
	}
	for _, opt := range options {
		opt(o)
	}
	if o.material == nil {
		o.material = material.NewMaterial(material.WithName(o.label + " Material"))
	}

	o.meshProvider = bind_group_provider.NewBindGroupProvider(o.label + " Mesh")
	o.transformProvider = bind_group_provider.NewBindGroupProvider(o.label + " Transform")
	o.textureProvider = bind_group_provider.NewBindGroupProvider(o.label + " Texture")

	if err := gpu.InitMeshBuffers(o.meshProvider, mesh.VertexData(), mesh.IndexData(), len(mesh.Indices)); err != nil {
		o.Release()
		return nil, fmt.Errorf("failed to create %s mesh: %w", o.label, err)
	}
	if err := gpu.InitBindGroup(o.transformProvider, pipeline.UniformLayout("Object3D Transform Layout", pipeline.TransformUniformSize), nil, nil); err != nil {
		o.Release()
		return nil, fmt.Errorf("failed to create %s transform: %w", o.label, err)
	}
	if err := initTexture(gpu, o.textureProvider, pipeline.TextureLayout("Object3D Texture Layout"), o.material.DiffuseTexture()); err != nil {
		o.Release()
		return nil, fmt.Errorf("failed to create %s texture: %w", o.label, err)
	}
	if err := gpu.InitBindGroup(o.material.BindGroupProvider(), pipeline.UniformLayout("Object3D Material Layout", pipeline.MaterialUniformSize), nil, nil); err != nil {
		o.Release()
		return nil, fmt.Errorf("failed to create %s material: %w", o.label, err)
	}
	return o, nil
}

func (o *object3D) Position() mgl32.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position
}

func (o *object3D) SetPosition(p mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.position = p
}

func (o *object3D) Rotation() mgl32.Quat {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rotation
}

func (o *object3D) SetRotation(q mgl32.Quat) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotation = q.Normalize()
}

func (o *object3D) Scale() mgl32.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.scale
}

func (o *object3D) SetScale(s mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scale = s
}

func (o *object3D) SetSpin(axis mgl32.Vec3, radiansPerSecond float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if axis.Len() == 0 {
		radiansPerSecond = 0
	} else {
		axis = axis.Normalize()
	}
	o.spinAxis = axis
	o.spinSpeed = radiansPerSecond
}

func (o *object3D) ModelMatrix() mgl32.Mat4 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.modelMatrix()
}

func (o *object3D) modelMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(o.position.X(), o.position.Y(), o.position.Z())
	s := mgl32.Scale3D(o.scale.X(), o.scale.Y(), o.scale.Z())
	return t.Mul4(o.rotation.Mat4()).Mul4(s)
}

func (o *object3D) Material() material.Material {
	return o.material
}

// Prepare advances the spin and computes the transform and material uploads.
func (o *object3D) Prepare(deltaTime float32) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.spinSpeed != 0 {
		o.rotation = mgl32.QuatRotate(o.spinSpeed*deltaTime, o.spinAxis).Mul(o.rotation).Normalize()
	}

	buf := make([]byte, pipeline.TransformUniformSize)
	putMat4(buf[0:], o.camera.ViewProjectionMatrix())
	putMat4(buf[64:], o.modelMatrix())
	eye := o.camera.Position()
	putFloats(buf[128:], eye.X(), eye.Y(), eye.Z())

	// Writes left by a failed upload stay queued; only the transform is superseded.
	o.pending = slices.DeleteFunc(o.pending, func(w bind_group_provider.BufferWrite) bool {
		return w.Provider == o.transformProvider
	})
	o.pending = append(o.pending, bind_group_provider.BufferWrite{
		Provider: o.transformProvider,
		Binding:  0,
		Data:     buf,
	})
	if w, ok := o.material.Flush(); ok {
		o.pending = append(o.pending, w)
	}
}

// Draw uploads the prepared writes, binds the light group at its root slot and draws. Writes
// that fail to upload are kept and sent again ahead of the next frame's.
func (o *object3D) Draw(frame scene.Frame, lights light.LightGroup) error {
	if lights == nil {
		return ErrNoLights
	}
	o.mu.Lock()
	pending := o.pending
	o.pending = nil
	o.mu.Unlock()

	if len(pending) > 0 {
		if err := o.gpu.WriteBuffers(pending); err != nil {
			o.requeue(pending)
			return fmt.Errorf("failed to upload %s: %w", o.label, err)
		}
	}
	lights.Draw(frame)
	return frame.DrawCall(pipeline.Object3DKey, o.meshProvider, 1, []bind_group_provider.BindGroupProvider{
		pipeline.Object3DTransformGroup: o.transformProvider,
		pipeline.Object3DTextureGroup:   o.textureProvider,
		pipeline.Object3DMaterialGroup:  o.material.BindGroupProvider(),
	})
}

func (o *object3D) requeue(writes []bind_group_provider.BufferWrite) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(writes, o.pending...)
}

func (o *object3D) Release() {
	releaseAll(o.meshProvider, o.transformProvider, o.textureProvider, o.material.BindGroupProvider())
}
