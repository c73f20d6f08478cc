package light

import "github.com/go-gl/mathgl/mgl32"

// LightGroupBuilderOption is a functional option applied to a light group during construction
// via NewLightGroup. Options run after the default rig and before the initial transfer.
type LightGroupBuilderOption func(*lightGroup)

// WithLabel sets the label used for the group's GPU resources.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - LightGroupBuilderOption: a function that applies the label option to a light group
func WithLabel(label string) LightGroupBuilderOption {
	return func(g *lightGroup) {
		g.label = label
	}
}

// WithAmbientColor sets the initial ambient color.
//
// Parameters:
//   - color: RGB ambient color
//
// Returns:
//   - LightGroupBuilderOption: a function that applies the ambient color option to a light group
func WithAmbientColor(color mgl32.Vec3) LightGroupBuilderOption {
	return func(g *lightGroup) {
		g.SetAmbientColor(color)
	}
}

// WithDirectionalLight replaces a directional light slot. The direction is normalized.
// Panics with *IndexError if index is out of range.
//
// Parameters:
//   - index: slot in [0, DirLightNum)
//   - l: the record to install
//
// Returns:
//   - LightGroupBuilderOption: a function that installs the record on a light group
func WithDirectionalLight(index int, l DirectionalLight) LightGroupBuilderOption {
	return func(g *lightGroup) {
		g.SetDirLightActive(index, l.Active)
		g.SetDirLightColor(index, l.Color)
		g.SetDirLightDir(index, l.Dir)
	}
}

// WithPointLight replaces a point light slot.
// Panics with *IndexError if index is out of range.
//
// Parameters:
//   - index: slot in [0, PointLightNum)
//   - l: the record to install
//
// Returns:
//   - LightGroupBuilderOption: a function that installs the record on a light group
func WithPointLight(index int, l PointLight) LightGroupBuilderOption {
	return func(g *lightGroup) {
		checkIndex(LightTypePoint, index, PointLightNum)
		g.records.PointLights[index] = l
		g.state = StateDirty
	}
}

// WithSpotLight replaces a spot light slot. The direction is normalized and FactorAngleCos is
// taken as already converted to cosines.
// Panics with *IndexError if index is out of range.
//
// Parameters:
//   - index: slot in [0, SpotLightNum)
//   - l: the record to install
//
// Returns:
//   - LightGroupBuilderOption: a function that installs the record on a light group
func WithSpotLight(index int, l SpotLight) LightGroupBuilderOption {
	return func(g *lightGroup) {
		checkIndex(LightTypeSpot, index, SpotLightNum)
		l.Dir = normalizeDir(l.Dir)
		g.records.SpotLights[index] = l
		g.state = StateDirty
	}
}

// WithCircleShadow replaces a circle shadow slot. The direction is normalized and
// FactorAngleCos is taken as already converted to cosines.
// Panics with *IndexError if index is out of range.
//
// Parameters:
//   - index: slot in [0, CircleShadowNum)
//   - s: the record to install
//
// Returns:
//   - LightGroupBuilderOption: a function that installs the record on a light group
func WithCircleShadow(index int, s CircleShadow) LightGroupBuilderOption {
	return func(g *lightGroup) {
		checkIndex(LightTypeCircleShadow, index, CircleShadowNum)
		s.Dir = normalizeDir(s.Dir)
		g.records.CircleShadows[index] = s
		g.state = StateDirty
	}
}
