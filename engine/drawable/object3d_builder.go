package drawable

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Object3DBuilderOption is a functional option applied to an Object3D by NewObject3D.
type Object3DBuilderOption func(*object3D)

// WithLabel sets the label used for the object's GPU resources.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - Object3DBuilderOption: option function to apply
func WithLabel(label string) Object3DBuilderOption {
	return func(o *object3D) {
		o.label = label
	}
}

// WithMaterial sets the material. Defaults to a new white material.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - Object3DBuilderOption: option function to apply
func WithMaterial(m material.Material) Object3DBuilderOption {
	return func(o *object3D) {
		o.material = m
	}
}

// WithPosition sets the initial world position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - Object3DBuilderOption: option function to apply
func WithPosition(p mgl32.Vec3) Object3DBuilderOption {
	return func(o *object3D) {
		o.position = p
	}
}

// WithSpin sets a constant rotation applied by Prepare.
//
// Parameters:
//   - axis: the rotation axis
//   - radiansPerSecond: the angular speed
//
// Returns:
//   - Object3DBuilderOption: option function to apply
func WithSpin(axis mgl32.Vec3, radiansPerSecond float32) Object3DBuilderOption {
	return func(o *object3D) {
		if axis.Len() == 0 {
			return
		}
		o.spinAxis = axis.Normalize()
		o.spinSpeed = radiansPerSecond
	}
}
