package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/config"
	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/Carmen-Shannon/oxy-frame/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUContext is everything the demo needs from the renderer.
type GPUContext interface {
	drawable.GPUContext
	light.GPUContext
}

type demo struct {
	camera  camera.Camera
	lights  light.LightGroup
	world   scene.Scene
	overlay scene.Scene
}

func newDemo(gpu GPUContext, width, height int, cfg config.Config) (*demo, error) {
	d := &demo{
		camera: camera.NewCamera(
			camera.WithPosition(mgl32.Vec3{0, 1.5, -4}),
			camera.WithAspect(aspect(width, height)),
		),
	}

	lightOpts := append([]light.LightGroupBuilderOption{
		light.WithLabel("Demo Lights"),
		light.WithPointLight(0, light.PointLight{
			Pos:   mgl32.Vec3{1.5, 1.5, -1.5},
			Color: mgl32.Vec3{1, 0.6, 0.3},
			Atten: mgl32.Vec3{1, 0.2, 0.05},
		}),
		light.WithSpotLight(0, light.SpotLight{
			Dir:            mgl32.Vec4{0, -1, 0, 0},
			Pos:            mgl32.Vec3{0, 3, 0},
			Color:          mgl32.Vec3{0.3, 0.5, 1},
			Atten:          mgl32.Vec3{1, 0, 0},
			FactorAngleCos: mgl32.Vec2{0.95, 0.85},
		}),
		light.WithCircleShadow(0, light.CircleShadow{
			Dir:                 mgl32.Vec4{0, 1, 0, 0},
			CasterPos:           mgl32.Vec3{0, 0, 0},
			DistanceCasterLight: 100,
			Atten:               mgl32.Vec3{0.5, 0.6, 0},
			FactorAngleCos:      mgl32.Vec2{0.2, 0.5},
		}),
	}, cfg.LightOptions()...)
	lights, err := light.NewLightGroup(gpu, lightOpts...)
	if err != nil {
		return nil, err
	}
	d.lights = lights

	cube, err := drawable.NewObject3D(gpu,
		drawable.CubeMesh(0.75, mgl32.Vec4{1, 1, 1, 1}),
		d.camera,
		drawable.WithLabel("Cube"),
		drawable.WithSpin(mgl32.Vec3{0.3, 1, 0.1}, common.DegToRad(45)),
		drawable.WithMaterial(material.NewMaterial(
			material.WithName("Cube Material"),
			material.WithPhong(mgl32.Vec3{0.2, 0.2, 0.2}, mgl32.Vec3{0.8, 0.5, 0.3}, mgl32.Vec3{0.6, 0.6, 0.6}, 24),
		)),
	)
	if err != nil {
		lights.Release()
		return nil, fmt.Errorf("failed to create cube: %w", err)
	}

	badge, err := drawable.NewSprite(gpu,
		drawable.WithSpriteLabel("Badge"),
		drawable.WithRect(mgl32.Vec2{-0.85, 0.85}, mgl32.Vec2{0.1, 0.1 * aspect(width, height)}),
		drawable.WithColor(mgl32.Vec4{1, 1, 1, 0.6}),
	)
	if err != nil {
		cube.Release()
		lights.Release()
		return nil, fmt.Errorf("failed to create badge: %w", err)
	}

	d.world = scene.NewScene("world", scene.WithLights(lights), scene.WithDrawables(cube))
	d.overlay = scene.NewScene("overlay", scene.WithDrawables(badge))
	return d, nil
}

func aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

func (d *demo) resize(width, height int) {
	if width > 0 && height > 0 {
		d.camera.SetAspect(aspect(width, height))
	}
}

// keyDown toggles lights. It runs on the frame thread while events are polled.
func (d *demo) keyDown(key uint32) {
	switch key {
	case window.Key1, window.Key2, window.Key3:
		i := int(key - window.Key1)
		d.lights.SetDirLightActive(i, !d.lights.DirLight(i).Active)
		logger.Logger().Info("directional light toggled", "index", i, "active", d.lights.DirLight(i).Active)
	case window.KeyP:
		d.lights.SetPointLightActive(0, !d.lights.PointLight(0).Active)
		logger.Logger().Info("point light toggled", "active", d.lights.PointLight(0).Active)
	case window.KeyL:
		d.lights.SetSpotLightActive(0, !d.lights.SpotLight(0).Active)
		logger.Logger().Info("spot light toggled", "active", d.lights.SpotLight(0).Active)
	case window.KeyS:
		d.lights.SetCircleShadowActive(0, !d.lights.CircleShadow(0).Active)
		logger.Logger().Info("circle shadow toggled", "active", d.lights.CircleShadow(0).Active)
	}
}

// release frees both scenes. The world scene releases the light group.
func (d *demo) release() {
	d.world.Release()
	d.overlay.Release()
}
