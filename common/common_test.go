package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(7, 0, 5))
	assert.Equal(t, 0, Clamp(-3, 0, 5))
	assert.Equal(t, 3, Clamp(3, 0, 5))
	assert.Equal(t, float32(1), Clamp(float32(1.5), 0, 1))
	assert.Equal(t, float32(0.25), Clamp(float32(0.25), 0, 1))
}

func TestAngleConversion(t *testing.T) {
	assert.InDelta(t, Pi, DegToRad(180), 1e-6)
	assert.InDelta(t, 90, RadToDeg(Pi/2), 1e-4)
	assert.InDelta(t, 37.5, RadToDeg(DegToRad(37.5)), 1e-4)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 4, Coalesce(0, 4, 9))
	assert.Equal(t, "", Coalesce("", ""))
}

func TestMeshPacking(t *testing.T) {
	m := Mesh{
		Vertices: []Vertex{
			{Position: [3]float32{1, 2, 3}, Color: [4]float32{0, 0, 0, 1}},
			{UV: [2]float32{0.5, 0.25}},
		},
		Indices: []uint32{0, 1, 0},
	}

	vd := m.VertexData()
	assert.Len(t, vd, 2*VertexStride)
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(vd[4:8])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(vd[56:60])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(vd[VertexStride+28:VertexStride+32])))

	id := m.IndexData()
	assert.Len(t, id, 12)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(id[4:8]))
}

func TestSolidTexture(t *testing.T) {
	tex := SolidTexture(255, 128, 0, 255)
	assert.Equal(t, uint32(1), tex.Width)
	assert.Equal(t, uint32(1), tex.Height)
	assert.Equal(t, []byte{255, 128, 0, 255}, tex.Pixels)
}
