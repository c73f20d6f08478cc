package light

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies one of the fixed record arrays held by a LightGroup.
type LightType int

const (
	// LightTypeDirectional is a light with no position, only direction.
	LightTypeDirectional LightType = iota

	// LightTypePoint is a light emitting in all directions from a position, attenuated by distance.
	LightTypePoint

	// LightTypeSpot is a light emitting in a cone from a position along a direction.
	// Falloff between the two cone angles is controlled by FactorAngleCos.
	LightTypeSpot

	// LightTypeCircleShadow is a projected blob shadow cast by a point caster along a direction.
	LightTypeCircleShadow
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional light"
	case LightTypePoint:
		return "point light"
	case LightTypeSpot:
		return "spot light"
	case LightTypeCircleShadow:
		return "circle shadow"
	default:
		return fmt.Sprintf("LightType(%d)", int(t))
	}
}

// DirectionalLight is a single directional light record.
type DirectionalLight struct {
	Dir    mgl32.Vec4 // normalized direction the light travels
	Color  mgl32.Vec3
	Active bool
}

// PointLight is a single point light record.
type PointLight struct {
	Pos    mgl32.Vec3
	Color  mgl32.Vec3
	Atten  mgl32.Vec3 // constant, linear and quadratic attenuation factors
	Active bool
}

// SpotLight is a single spot light record.
type SpotLight struct {
	Dir            mgl32.Vec4
	Pos            mgl32.Vec3
	Color          mgl32.Vec3
	Atten          mgl32.Vec3
	FactorAngleCos mgl32.Vec2 // cosines of the falloff start and end angles
	Active         bool
}

// CircleShadow is a single circle shadow record.
type CircleShadow struct {
	Dir                 mgl32.Vec4
	CasterPos           mgl32.Vec3
	DistanceCasterLight float32
	Atten               mgl32.Vec3
	FactorAngleCos      mgl32.Vec2
	Active              bool
}

// DefaultDirectionalLight returns an inactive white light pointing down +X.
func DefaultDirectionalLight() DirectionalLight {
	return DirectionalLight{
		Dir:   mgl32.Vec4{1, 0, 0, 0},
		Color: mgl32.Vec3{1, 1, 1},
	}
}

// DefaultPointLight returns an inactive white light at the origin with unit attenuation.
func DefaultPointLight() PointLight {
	return PointLight{
		Color: mgl32.Vec3{1, 1, 1},
		Atten: mgl32.Vec3{1, 1, 1},
	}
}

// DefaultSpotLight returns an inactive white spot light at the origin pointing down +X.
func DefaultSpotLight() SpotLight {
	return SpotLight{
		Dir:            mgl32.Vec4{1, 0, 0, 0},
		Color:          mgl32.Vec3{1, 1, 1},
		Atten:          mgl32.Vec3{1, 1, 1},
		FactorAngleCos: mgl32.Vec2{0.5, 0.2},
	}
}

// DefaultCircleShadow returns an inactive shadow cast along +X from a caster 100 units from its light.
func DefaultCircleShadow() CircleShadow {
	return CircleShadow{
		Dir:                 mgl32.Vec4{1, 0, 0, 0},
		DistanceCasterLight: 100,
		Atten:               mgl32.Vec3{0.5, 0.6, 0},
		FactorAngleCos:      mgl32.Vec2{0.2, 0.5},
	}
}

// normalizeDir scales v by the inverse of its xyz length. A zero vector is returned unchanged.
func normalizeDir(v mgl32.Vec4) mgl32.Vec4 {
	l := v.Vec3().Len()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// angleCos converts a pair of angles in degrees to their cosines.
func angleCos(degrees mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{
		math32.Cos(common.DegToRad(degrees[0])),
		math32.Cos(common.DegToRad(degrees[1])),
	}
}
