package light

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Fixed record capacities. These must match the array lengths in LightGroupSource.
const (
	DirLightNum     = 3
	PointLightNum   = 3
	SpotLightNum    = 3
	CircleShadowNum = 1
)

// RootSlot is the bind group index the light group is bound to by Draw.
const RootSlot = 3

// Byte layout of the light group uniform block (WGSL uniform alignment).
const (
	DirLightStride     = 32
	PointLightStride   = 48
	SpotLightStride    = 80
	CircleShadowStride = 64

	dirLightBase     = 16
	pointLightBase   = dirLightBase + DirLightNum*DirLightStride
	spotLightBase    = pointLightBase + PointLightNum*PointLightStride
	circleShadowBase = spotLightBase + SpotLightNum*SpotLightStride

	// MirrorSize is the size of the serialized light group (560 bytes).
	MirrorSize = circleShadowBase + CircleShadowNum*CircleShadowStride

	// BufferSize is MirrorSize rounded up to the 256-byte constant buffer granularity.
	BufferSize = (MirrorSize + 0xff) &^ 0xff
)

// active flag offsets within each record.
const (
	dirActiveOffset          = 28
	pointActiveOffset        = 44
	spotActiveOffset         = 72
	circleShadowActiveOffset = 56
)

// LightGroupSource is the canonical WGSL definition of the LightGroup uniform struct.
// Matches the layout written by Serialize exactly.
//
//go:embed assets/light_group.wgsl
var LightGroupSource string

// Records is the CPU-side source of truth serialized into the constant buffer mirror.
type Records struct {
	AmbientColor  mgl32.Vec3
	DirLights     [DirLightNum]DirectionalLight
	PointLights   [PointLightNum]PointLight
	SpotLights    [SpotLightNum]SpotLight
	CircleShadows [CircleShadowNum]CircleShadow
}

// DefaultRecords returns every slot at its default with the ambient color zeroed.
func DefaultRecords() Records {
	var r Records
	for i := range r.DirLights {
		r.DirLights[i] = DefaultDirectionalLight()
	}
	for i := range r.PointLights {
		r.PointLights[i] = DefaultPointLight()
	}
	for i := range r.SpotLights {
		r.SpotLights[i] = DefaultSpotLight()
	}
	for i := range r.CircleShadows {
		r.CircleShadows[i] = DefaultCircleShadow()
	}
	return r
}

// Serialize writes records into dst, which must be at least MirrorSize bytes.
//
// Active slots get every field written, with directions negated. Inactive slots only get
// their active word cleared; the rest of the slot keeps whatever an earlier call wrote.
//
// Parameters:
//   - dst: the mirror to write into
//   - r: the records to serialize
func Serialize(dst []byte, r *Records) {
	_ = dst[MirrorSize-1]

	putVec3(dst[0:], r.AmbientColor)

	for i, l := range r.DirLights {
		slot := dst[dirLightBase+i*DirLightStride:]
		if !l.Active {
			putBool(slot[dirActiveOffset:], false)
			continue
		}
		putVec4(slot[0:], l.Dir.Mul(-1))
		putVec3(slot[16:], l.Color)
		putBool(slot[dirActiveOffset:], true)
	}

	for i, l := range r.PointLights {
		slot := dst[pointLightBase+i*PointLightStride:]
		if !l.Active {
			putBool(slot[pointActiveOffset:], false)
			continue
		}
		putVec3(slot[0:], l.Pos)
		putVec3(slot[16:], l.Color)
		putVec3(slot[32:], l.Atten)
		putBool(slot[pointActiveOffset:], true)
	}

	for i, l := range r.SpotLights {
		slot := dst[spotLightBase+i*SpotLightStride:]
		if !l.Active {
			putBool(slot[spotActiveOffset:], false)
			continue
		}
		putVec4(slot[0:], l.Dir.Mul(-1))
		putVec3(slot[16:], l.Pos)
		putVec3(slot[32:], l.Color)
		putVec3(slot[48:], l.Atten)
		putVec2(slot[64:], l.FactorAngleCos)
		putBool(slot[spotActiveOffset:], true)
	}

	for i, s := range r.CircleShadows {
		slot := dst[circleShadowBase+i*CircleShadowStride:]
		if !s.Active {
			putBool(slot[circleShadowActiveOffset:], false)
			continue
		}
		putVec4(slot[0:], s.Dir.Mul(-1))
		putVec3(slot[16:], s.CasterPos)
		putFloat(slot[28:], s.DistanceCasterLight)
		putVec3(slot[32:], s.Atten)
		putVec2(slot[48:], s.FactorAngleCos)
		putBool(slot[circleShadowActiveOffset:], true)
	}
}

// BindGroupLayoutDescriptor describes the single uniform binding consumed at RootSlot.
// Pipelines that read lighting must use this layout for group RootSlot.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout of the light group bind group
func BindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Light Group Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: MirrorSize,
				},
			},
		},
	}
}

func putFloat(buf []byte, f float32) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(f))
}

func putVec2(buf []byte, v mgl32.Vec2) {
	putFloat(buf[0:], v[0])
	putFloat(buf[4:], v[1])
}

func putVec3(buf []byte, v mgl32.Vec3) {
	putFloat(buf[0:], v[0])
	putFloat(buf[4:], v[1])
	putFloat(buf[8:], v[2])
}

func putVec4(buf []byte, v mgl32.Vec4) {
	putFloat(buf[0:], v[0])
	putFloat(buf[4:], v[1])
	putFloat(buf[8:], v[2])
	putFloat(buf[12:], v[3])
}

func putBool(buf []byte, b bool) {
	var v uint32
	if b {
		v = 1
	}
	binary.LittleEndian.PutUint32(buf[0:4], v)
}
