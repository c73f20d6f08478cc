package window

import "github.com/go-gl/glfw/v3.3/glfw"

// Key codes reported to key callbacks.
const (
	KeyEscape = uint32(glfw.KeyEscape)
	KeySpace  = uint32(glfw.KeySpace)
	Key1      = uint32(glfw.Key1)
	Key2      = uint32(glfw.Key2)
	Key3      = uint32(glfw.Key3)
	KeyA      = uint32(glfw.KeyA)
	KeyD      = uint32(glfw.KeyD)
	KeyL      = uint32(glfw.KeyL)
	KeyP      = uint32(glfw.KeyP)
	KeyS      = uint32(glfw.KeyS)
)
