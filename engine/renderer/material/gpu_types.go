package material

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
)

// GPUMaterial is the uniform block at the object3D pipeline's material group.
// Layout (48 bytes): ambient vec3 @0, alpha @12, diffuse vec3 @16, shininess @28, specular vec3 @32.
type GPUMaterial struct {
	Ambient   [3]float32
	Alpha     float32
	Diffuse   [3]float32
	Shininess float32
	Specular  [3]float32
}

// Marshal serializes the block for upload.
//
// Returns:
//   - []byte: pipeline.MaterialUniformSize bytes
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, pipeline.MaterialUniformSize)
	put := func(off int, f float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
	}
	for i := range 3 {
		put(i*4, g.Ambient[i])
		put(16+i*4, g.Diffuse[i])
		put(32+i*4, g.Specular[i])
	}
	put(12, g.Alpha)
	put(28, g.Shininess)
	return buf
}
