package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestEdgesLastOneFrame(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyEnter, glfw.Press)
	if !im.JustPressed(ActionStart) || !im.IsActive(ActionStart) {
		t.Fatal("press not seen")
	}
	im.PostUpdate()
	if im.JustPressed(ActionStart) || !im.IsActive(ActionStart) {
		t.Fatal("edge survived PostUpdate or hold was lost")
	}

	im.HandleKeyEvent(glfw.KeyEnter, glfw.Repeat)
	if im.JustPressed(ActionStart) {
		t.Fatal("key repeat counted as a new press")
	}
	im.HandleKeyEvent(glfw.KeyEnter, glfw.Release)
	if !im.JustReleased(ActionStart) || im.IsActive(ActionStart) {
		t.Fatal("release not seen")
	}
}

func TestTapWithinOneFrame(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyEscape, glfw.Press)
	im.HandleKeyEvent(glfw.KeyEscape, glfw.Release)
	if !im.JustPressed(ActionReturnToTitle) || !im.JustReleased(ActionReturnToTitle) {
		t.Fatal("tap lost between frames")
	}
}

func TestSharedActionAndUnbind(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyKPAdd, glfw.Press)
	if !im.JustPressed(ActionViewRadiusUp) {
		t.Fatal("keypad binding missing")
	}
	im.UnbindKey(glfw.KeyW)
	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	if im.IsActive(ActionMoveForward) {
		t.Fatal("unbound key still drives its action")
	}
	im.BindKey(glfw.KeyUp, ActionMoveForward)
	im.HandleKeyEvent(glfw.KeyUp, glfw.Press)
	if !im.IsActive(ActionMoveForward) {
		t.Fatal("rebinding failed")
	}
	im.Release()
	if im.IsActive(ActionMoveForward) || im.JustPressed(ActionViewRadiusUp) {
		t.Fatal("release left state behind")
	}
	if im.IsActive(ActionCount) || im.JustPressed(-1) {
		t.Fatal("out of range action reported active")
	}
}
