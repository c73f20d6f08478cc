package drawable

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

type sprite struct {
	mu sync.Mutex

	label   string
	gpu     GPUContext
	texture common.TextureStagingData

	// center and size are in normalized device coordinates.
	center mgl32.Vec2
	size   mgl32.Vec2
	angle  float32
	color  mgl32.Vec4
	dirty  bool

	meshProvider    bind_group_provider.BindGroupProvider
	uniformProvider bind_group_provider.BindGroupProvider
	textureProvider bind_group_provider.BindGroupProvider

	pending []bind_group_provider.BufferWrite
}

// Sprite is an unlit, alpha-blended textured quad placed in normalized device coordinates and
// drawn with the sprite pipeline.
type Sprite interface {
	scene.Drawable

	// Center returns the quad center in NDC.
	Center() mgl32.Vec2

	// SetCenter moves the quad.
	SetCenter(c mgl32.Vec2)

	// Size returns the quad width and height in NDC.
	Size() mgl32.Vec2

	// SetSize resizes the quad.
	SetSize(s mgl32.Vec2)

	// SetAngle sets the rotation around the quad center in radians.
	SetAngle(radians float32)

	// Color returns the tint multiplied into the texture.
	Color() mgl32.Vec4

	// SetColor sets the tint.
	SetColor(c mgl32.Vec4)

	// Transform returns the quad-to-NDC matrix.
	Transform() mgl32.Mat4
}

var _ Sprite = &sprite{}

// NewSprite uploads a unit quad and creates the sprite's uniform and texture bind groups.
//
// Parameters:
//   - gpu: the renderer
//   - options: functional options to configure the sprite
//
// Returns:
//   - Sprite: the sprite
//   - error: an error if a GPU resource could not be created
func NewSprite(gpu GPUContext, options ...SpriteBuilderOption) (Sprite, error) {
	if gpu == nil {
		panic("drawable: NewSprite requires a GPUContext")
	}
	s := &sprite{
		label:   "Sprite",
		gpu:     gpu,
		texture: common.SolidTexture(255, 255, 255, 255),
		size:    mgl32.Vec2{0.5, 0.5},
		color:   mgl32.Vec4{1, 1, 1, 1},
		dirty:   true,
	}
	for _, opt := range options {
		opt(s)
	}

	s.meshProvider = bind_group_provider.NewBindGroupProvider(s.label + " Mesh")
	s.uniformProvider = bind_group_provider.NewBindGroupProvider(s.label + " Uniform")
	s.textureProvider = bind_group_provider.NewBindGroupProvider(s.label + " Texture")

	quad := QuadMesh()
	if err := gpu.InitMeshBuffers(s.meshProvider, quad.VertexData(), quad.IndexData(), len(quad.Indices)); err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to create %s mesh: %w", s.label, err)
	}
	if err := gpu.InitBindGroup(s.uniformProvider, pipeline.UniformLayout("Sprite Uniform Layout", pipeline.SpriteUniformSize), nil, nil); err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to create %s uniform: %w", s.label, err)
	}
	if err := initTexture(gpu, s.textureProvider, pipeline.TextureLayout("Sprite Texture Layout"), s.texture); err != nil {
		s.Release()
		return nil, fmt.Errorf("failed to create %s texture: %w", s.label, err)
	}
	return s, nil
}

func (s *sprite) Center() mgl32.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}

func (s *sprite) SetCenter(c mgl32.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = c
	s.dirty = true
}

func (s *sprite) Size() mgl32.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *sprite) SetSize(size mgl32.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size = size
	s.dirty = true
}

func (s *sprite) SetAngle(radians float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.angle = radians
	s.dirty = true
}

func (s *sprite) Color() mgl32.Vec4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

func (s *sprite) SetColor(c mgl32.Vec4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = c
	s.dirty = true
}

func (s *sprite) Transform() mgl32.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transform()
}

func (s *sprite) transform() mgl32.Mat4 {
	return mgl32.Translate3D(s.center.X(), s.center.Y(), 0).
		Mul4(mgl32.HomogRotate3DZ(s.angle)).
		Mul4(mgl32.Scale3D(s.size.X(), s.size.Y(), 1))
}

// Prepare computes the uniform upload when the sprite changed since the last frame.
func (s *sprite) Prepare(float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	s.dirty = false

	buf := make([]byte, pipeline.SpriteUniformSize)
	putMat4(buf[0:], s.transform())
	putFloats(buf[64:], s.color[:]...)
	s.pending = append(s.pending, bind_group_provider.BufferWrite{
		Provider: s.uniformProvider,
		Binding:  0,
		Data:     buf,
	})
}

// Draw uploads any prepared writes and draws. Sprites are unlit; lights is ignored. A failed
// upload marks the sprite dirty so the next Prepare rebuilds it.
func (s *sprite) Draw(frame scene.Frame, _ light.LightGroup) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(pending) > 0 {
		if err := s.gpu.WriteBuffers(pending); err != nil {
			s.mu.Lock()
			s.dirty = true
			s.mu.Unlock()
			return fmt.Errorf("failed to upload %s: %w", s.label, err)
		}
	}
	return frame.DrawCall(pipeline.SpriteKey, s.meshProvider, 1, []bind_group_provider.BindGroupProvider{
		pipeline.SpriteUniformGroup: s.uniformProvider,
		pipeline.SpriteTextureGroup: s.textureProvider,
	})
}

func (s *sprite) Release() {
	releaseAll(s.meshProvider, s.uniformProvider, s.textureProvider)
}
