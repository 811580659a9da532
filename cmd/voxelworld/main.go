// Command voxelworld flies a camera over streamed voxel terrain.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/graphics"
	"voxelterrain/internal/input"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	settingsPath := flag.String("config", "settings.yaml", "settings file (YAML or JSON); defaults are used if it does not exist")
	seed := flag.Int64("seed", 0, "override the world seed when non-zero")
	radius := flag.Int("radius", 0, "override the view radius in chunks when non-zero")
	workers := flag.Int("workers", 0, "override the worker count when non-zero")
	fps := flag.Int("fps", 120, "frame rate limit, 0 for unlimited")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	log, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	settings, err := config.Load(*settingsPath)
	if err != nil {
		log.Error("load settings", "path", *settingsPath, "err", err)
		os.Exit(1)
	}
	if *seed != 0 {
		settings.Noise.Seed = *seed
	}
	if *radius != 0 {
		settings.Stream.ViewRadius = *radius
	}
	if *workers != 0 {
		settings.Stream.Workers = *workers
	}
	if err := settings.Validate(); err != nil {
		log.Error("invalid overrides", "err", err)
		os.Exit(1)
	}

	if err := glfw.Init(); err != nil {
		log.Error("init glfw", "err", err)
		os.Exit(1)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		log.Error("create window", "err", err)
		os.Exit(1)
	}

	r, err := graphics.NewTerrainRenderer(time.Duration(settings.Stream.CrossFadeMillis) * time.Millisecond)
	if err != nil {
		log.Error("build terrain renderer", "err", err)
		os.Exit(1)
	}
	defer r.Dispose()

	im := input.NewInputManager()
	im.SetKeyCallback(window)

	app := newApp(window, r, im, settings, *settingsPath, log)
	app.limiter.limit = *fps
	app.Run()
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("bad -log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
