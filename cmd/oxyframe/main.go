// Command oxyframe opens a window and renders a lit, spinning cube with a sprite overlay.
//
// Keys 1-3 toggle the directional lights, P the point light, L the spot light and S the circle
// shadow. Escape quits.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-frame/engine"
	"github.com/Carmen-Shannon/oxy-frame/engine/config"
	"github.com/Carmen-Shannon/oxy-frame/engine/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/pacing"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/window"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	debug      bool
	fps        int
	profile    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "oxyframe",
		Short:        "Render a lit cube through the frame pipeline",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable the GPU validation layer and debug logging")
	cmd.Flags().IntVar(&opts.fps, "fps", 0, "frame rate cap (overrides renderer.target_fps)")
	cmd.Flags().BoolVar(&opts.profile, "profile", false, "log frame rate and memory once per second")
	return cmd
}

// loadConfig reads the config file, if any, and applies flags that were set explicitly.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if cmd.Flags().Changed("debug") {
		cfg.Renderer.Debug = opts.debug
	}
	if cmd.Flags().Changed("fps") {
		cfg.Renderer.TargetFPS = opts.fps
	}
	if cmd.Flags().Changed("profile") {
		cfg.Renderer.Profile = opts.profile
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// logLevel is Debug when the renderer runs with the validation layer, from either the flag or
// the config file.
func logLevel(cfg config.Config) slog.Level {
	if cfg.Renderer.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func run(cfg config.Config) error {
	logger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg)})))

	// Open the window first, the surface descriptor comes from it
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithResizable(cfg.Window.Resizable),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	// Adapter and device for the window surface
	ctx, err := device.NewContext(win.SurfaceDescriptor(),
		device.WithDebug(cfg.Renderer.Debug),
		device.WithForceFallbackAdapter(cfg.Renderer.ForceFallbackAdapter),
	)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	defer ctx.Release()

	// Sprite and lit object pipelines, optionally frame capped
	rendererOpts := []renderer.RendererBuilderOption{
		renderer.WithPipelines(pipeline.NewSpritePipeline(), pipeline.NewObject3DPipeline()),
	}
	if cfg.Renderer.TargetFPS > 0 {
		rendererOpts = append(rendererOpts, renderer.WithFrameLimiter(
			pacing.NewFrameLimiter(pacing.WithTargetFPS(float64(cfg.Renderer.TargetFPS))),
		))
	}
	if c, ok := cfg.ClearColor(); ok {
		rendererOpts = append(rendererOpts, renderer.WithClearColor(c))
	}
	r, err := renderer.NewRenderer(ctx, win, rendererOpts...)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Release()

	// World and overlay scenes
	d, err := newDemo(r, win.Width(), win.Height(), cfg)
	if err != nil {
		return err
	}
	defer d.release()

	win.SetResizeCallback(d.resize)
	win.SetKeyDownCallback(d.keyDown)

	// Overlay draws after the world
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithProfiling(cfg.Renderer.Profile),
		engine.WithScene(0, d.world),
		engine.WithScene(1, d.overlay),
	)
	return eng.Run()
}
