package drawable

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/go-gl/mathgl/mgl32"
)

// SpriteBuilderOption is a functional option applied to a Sprite by NewSprite.
type SpriteBuilderOption func(*sprite)

// WithSpriteLabel sets the label used for the sprite's GPU resources.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - SpriteBuilderOption: option function to apply
func WithSpriteLabel(label string) SpriteBuilderOption {
	return func(s *sprite) {
		s.label = label
	}
}

// WithRect places the quad in normalized device coordinates.
//
// Parameters:
//   - center: the quad center
//   - size: the quad width and height
//
// Returns:
//   - SpriteBuilderOption: option function to apply
func WithRect(center, size mgl32.Vec2) SpriteBuilderOption {
	return func(s *sprite) {
		s.center = center
		s.size = size
	}
}

// WithColor sets the tint multiplied into the texture.
//
// Parameters:
//   - color: RGBA tint
//
// Returns:
//   - SpriteBuilderOption: option function to apply
func WithColor(color mgl32.Vec4) SpriteBuilderOption {
	return func(s *sprite) {
		s.color = color
	}
}

// WithTexture sets the RGBA texture. Defaults to a 1x1 white texture.
//
// Parameters:
//   - tex: the texture pixels
//
// Returns:
//   - SpriteBuilderOption: option function to apply
func WithTexture(tex common.TextureStagingData) SpriteBuilderOption {
	return func(s *sprite) {
		s.texture = tex
	}
}
