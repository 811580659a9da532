package main

import (
	"fmt"
	"log/slog"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/graphics"
	"voxelterrain/internal/input"
	"voxelterrain/internal/meshing"
	"voxelterrain/internal/noise"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/streaming"
	"voxelterrain/internal/view"
	"voxelterrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

type appState int

const (
	stateTitle appState = iota
	statePlaying
)

// app is the frame scheduler: it owns the window, switches between the
// title screen and a streaming session, and calls Streamer.Update once per
// frame with the camera position.
type app struct {
	window   *glfw.Window
	renderer *graphics.TerrainRenderer
	input    *input.InputManager
	log      *slog.Logger

	settings     config.Settings
	settingsPath string

	state    appState
	camera   *view.FlyCamera
	streamer *streaming.Streamer
	limiter  fpsLimiter

	frames     int
	lastTitle  time.Time
	lastTime   time.Time
	titleColor mgl32.Vec3
	skyColor   mgl32.Vec3
}

func newApp(w *glfw.Window, r *graphics.TerrainRenderer, im *input.InputManager, s config.Settings, path string, log *slog.Logger) *app {
	width, height := w.GetFramebufferSize()
	a := &app{
		window:       w,
		renderer:     r,
		input:        im,
		log:          log,
		settings:     s,
		settingsPath: path,
		camera:       view.NewFlyCamera(mgl32.Vec3{}, width, height),
		titleColor:   mgl32.Vec3{0.08, 0.10, 0.14},
		skyColor:     r.SkyColor,
	}
	w.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if a.state == statePlaying {
			a.camera.Look(x, y)
		}
	})
	w.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		a.camera.SetViewport(width, height)
	})
	return a
}

// Run loops until the window closes. An active session is torn down first.
func (a *app) Run() {
	a.enterTitle()
	a.lastTime = time.Now()
	a.lastTitle = a.lastTime
	for !a.window.ShouldClose() {
		a.tick()
	}
	if a.streamer != nil {
		a.returnToTitle()
	}
}

func (a *app) tick() {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(a.lastTime).Seconds()
	a.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	switch a.state {
	case stateTitle:
		a.tickTitle()
	case statePlaying:
		a.tickPlaying(dt)
	}

	func() { defer profiling.Track("glfw.SwapBuffers")(); a.window.SwapBuffers() }()
	a.input.PostUpdate()

	a.frames++
	if time.Since(a.lastTitle) >= time.Second {
		a.updateWindowTitle()
		a.frames = 0
		a.lastTitle = time.Now()
	}
	a.limiter.wait()
}

func (a *app) tickTitle() {
	if a.input.JustPressed(input.ActionQuit) || a.input.JustPressed(input.ActionReturnToTitle) {
		a.window.SetShouldClose(true)
		return
	}
	if a.input.JustPressed(input.ActionStart) {
		a.startSession()
		return
	}
	a.renderer.SkyColor = a.titleColor
	a.renderer.BeginFrame()
}

func (a *app) tickPlaying(dt float64) {
	if a.input.JustPressed(input.ActionReturnToTitle) {
		a.returnToTitle()
		return
	}
	if a.input.JustPressed(input.ActionSaveSettings) {
		a.saveSettings()
	}
	if a.input.JustPressed(input.ActionToggleWireframe) {
		a.renderer.Wireframe = !a.renderer.Wireframe
	}
	if a.input.JustPressed(input.ActionViewRadiusUp) {
		a.setViewRadius(a.streamer.Config().ViewRadius + 1)
	}
	if a.input.JustPressed(input.ActionViewRadiusDown) {
		a.setViewRadius(a.streamer.Config().ViewRadius - 1)
	}

	a.camera.Move(a.movement(), dt)

	delta := a.streamer.Update(a.camera.Position)
	a.renderer.Apply(delta)

	a.renderer.BeginFrame()
	a.renderer.Render(a.camera)
}

func (a *app) movement() view.Movement {
	var m view.Movement
	bind := []struct {
		action input.Action
		move   view.Movement
	}{
		{input.ActionMoveForward, view.MoveForward},
		{input.ActionMoveBackward, view.MoveBack},
		{input.ActionMoveLeft, view.MoveLeft},
		{input.ActionMoveRight, view.MoveRight},
		{input.ActionMoveUp, view.MoveUp},
		{input.ActionMoveDown, view.MoveDown},
		{input.ActionBoost, view.MoveBoost},
	}
	for _, b := range bind {
		if a.input.IsActive(b.action) {
			m |= b.move
		}
	}
	return m
}

func (a *app) startSession() {
	field := noise.New(a.settings.Noise)
	gen := world.NewGenerator(field)
	mesher := meshing.NewMesher(meshing.DefaultPalette())
	a.streamer = streaming.New(a.settings.Stream, gen, mesher, a.log)

	spawnY := float32(gen.HeightAt(0, 0) + 24)
	a.camera.Position = mgl32.Vec3{0.5, spawnY, 0.5}
	a.camera.ResetMouse()
	a.renderer.SkyColor = a.skyColor
	a.renderer.SetFogRange(float32(a.settings.Stream.ViewRadius * world.Size))

	a.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	a.input.Release()
	a.state = statePlaying
	a.log.Info("session started", "seed", a.settings.Noise.Seed, "view_radius", a.settings.Stream.ViewRadius, "spawn_y", spawnY)
}

// returnToTitle drops every chunk and stops the workers.
func (a *app) returnToTitle() {
	a.renderer.Apply(a.streamer.Reset())
	a.renderer.Clear()
	a.streamer.Close()
	a.streamer = nil
	a.enterTitle()
}

func (a *app) enterTitle() {
	a.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	a.input.Release()
	a.state = stateTitle
}

func (a *app) setViewRadius(r int) {
	a.streamer.SetViewRadius(r)
	cfg := a.streamer.Config()
	a.settings.Stream.ViewRadius = cfg.ViewRadius
	a.renderer.SetFogRange(float32(cfg.ViewRadius * world.Size))
	a.log.Info("view radius changed", "radius", cfg.ViewRadius)
}

func (a *app) saveSettings() {
	if err := config.Save(a.settingsPath, a.settings); err != nil {
		a.log.Error("save settings", "path", a.settingsPath, "err", err)
		return
	}
	a.log.Info("settings saved", "path", a.settingsPath)
}

func (a *app) updateWindowTitle() {
	switch a.state {
	case stateTitle:
		a.window.SetTitle(fmt.Sprintf("%s | press Enter to start, Esc to quit", winTitle))
	case statePlaying:
		st := a.streamer.Stats()
		rs := a.renderer.Stats()
		c := world.ChunkFromWorld(a.camera.Position)
		a.window.SetTitle(fmt.Sprintf("%s | %d fps | chunk %v | loaded %d ready %d pending %d | drawn %d/%d | %s",
			winTitle, a.frames, c, st.Loaded, st.Ready, st.Pending+st.InFlight, rs.Drawn, rs.Chunks, profiling.TopN(3)))
	}
}
