package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readF(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestGPUMaterialLayout(t *testing.T) {
	g := GPUMaterial{
		Ambient:   [3]float32{1, 2, 3},
		Alpha:     0.5,
		Diffuse:   [3]float32{4, 5, 6},
		Shininess: 16,
		Specular:  [3]float32{7, 8, 9},
	}

	buf := g.Marshal()

	require.Len(t, buf, pipeline.MaterialUniformSize)
	assert.Equal(t, float32(1), readF(buf, 0))
	assert.Equal(t, float32(3), readF(buf, 8))
	assert.Equal(t, float32(0.5), readF(buf, 12))
	assert.Equal(t, float32(4), readF(buf, 16))
	assert.Equal(t, float32(16), readF(buf, 28))
	assert.Equal(t, float32(9), readF(buf, 40))
	assert.Equal(t, float32(0), readF(buf, 44))
}

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()

	assert.Equal(t, "Material", m.Name())
	assert.Equal(t, float32(1), m.Alpha())
	assert.Equal(t, float32(32), m.Shininess())
	assert.Equal(t, common.SolidTexture(255, 255, 255, 255), m.DiffuseTexture())
	require.NotNil(t, m.BindGroupProvider())
	assert.Equal(t, "Material", m.BindGroupProvider().Label())
}

func TestBuilderOptions(t *testing.T) {
	tex := common.SolidTexture(10, 20, 30, 255)
	m := NewMaterial(
		WithName("brick"),
		WithPhong(mgl32.Vec3{0.1, 0.1, 0.1}, mgl32.Vec3{0.7, 0.2, 0.2}, mgl32.Vec3{1, 1, 1}, 8),
		WithAlpha(0.25),
		WithDiffuseTexture(tex),
	)

	assert.Equal(t, "brick", m.Name())
	assert.Equal(t, mgl32.Vec3{0.7, 0.2, 0.2}, m.Diffuse())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, m.Specular())
	assert.Equal(t, float32(8), m.Shininess())
	assert.Equal(t, float32(0.25), m.Alpha())
	assert.Equal(t, tex, m.DiffuseTexture())
}

func TestFlushOnlyWhenDirty(t *testing.T) {
	m := NewMaterial()

	w, ok := m.Flush()
	require.True(t, ok)
	assert.Same(t, m.BindGroupProvider(), w.Provider)
	assert.Equal(t, 0, w.Binding)
	assert.Len(t, w.Data, pipeline.MaterialUniformSize)

	_, ok = m.Flush()
	assert.False(t, ok)

	m.SetShininess(64)
	w, ok = m.Flush()
	require.True(t, ok)
	assert.Equal(t, float32(64), readF(w.Data, 28))
}

func TestSettersUpdateGPUBlock(t *testing.T) {
	m := NewMaterial()
	m.SetAmbient(mgl32.Vec3{0.1, 0.2, 0.3})
	m.SetDiffuse(mgl32.Vec3{0.4, 0.5, 0.6})
	m.SetSpecular(mgl32.Vec3{0.7, 0.8, 0.9})
	m.SetAlpha(0.5)

	g := m.GPU()
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, g.Ambient)
	assert.Equal(t, [3]float32{0.4, 0.5, 0.6}, g.Diffuse)
	assert.Equal(t, [3]float32{0.7, 0.8, 0.9}, g.Specular)
	assert.Equal(t, float32(0.5), g.Alpha)
}
