package scene

import "github.com/Carmen-Shannon/oxy-frame/engine/light"

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is drawn. Scenes are active by default.
//
// Parameters:
//   - active: whether the scene is drawn
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithLights sets the scene's light group.
//
// Parameters:
//   - lights: the light group
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights light.LightGroup) SceneBuilderOption {
	return func(s *scene) {
		s.lights = lights
	}
}

// WithDrawables adds initial drawables in order.
//
// Parameters:
//   - drawables: the drawables to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDrawables(drawables ...Drawable) SceneBuilderOption {
	return func(s *scene) {
		for _, d := range drawables {
			if d == nil {
				continue
			}
			s.entries = append(s.entries, entry{id: s.nextID, drawable: d})
			s.nextID++
		}
	}
}

// WithPrepareWorkers sets the number of workers Prepare fans out to. Defaults to
// runtime.NumCPU()-1. Values below 1 are raised to 1.
//
// Parameters:
//   - n: the number of workers
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPrepareWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.prepareWorkers = max(n, 1)
	}
}
