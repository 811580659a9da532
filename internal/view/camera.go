// Package view holds the free-flying camera used to drive streaming and the
// frustum test used to skip chunks outside the view.
package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	mouseSensitivity = 0.002
	maxPitch         = 1.54 // just short of straight up/down
	defaultSpeed     = 25.0 // blocks per second
	boostFactor      = 4.0
)

// Movement flags for FlyCamera.Move.
type Movement uint8

const (
	MoveForward Movement = 1 << iota
	MoveBack
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	MoveBoost
)

// FlyCamera is a noclip camera. Yaw and pitch are in radians.
type FlyCamera struct {
	Position mgl32.Vec3
	Yaw      float64
	Pitch    float64
	Speed    float32

	FOV         float32
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	lastX, lastY float64
	firstMouse   bool
}

func NewFlyCamera(pos mgl32.Vec3, width, height int) *FlyCamera {
	c := &FlyCamera{
		Position:   pos,
		Yaw:        -math.Pi / 2,
		Speed:      defaultSpeed,
		FOV:        70.0,
		NearPlane:  0.1,
		FarPlane:   2000.0,
		firstMouse: true,
	}
	c.SetViewport(width, height)
	return c
}

func (c *FlyCamera) SetViewport(width, height int) {
	if height <= 0 {
		height = 1
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Look applies a cursor position. The first call only records the position.
func (c *FlyCamera) Look(xpos, ypos float64) {
	if c.firstMouse {
		c.lastX, c.lastY = xpos, ypos
		c.firstMouse = false
		return
	}
	c.Yaw += (xpos - c.lastX) * mouseSensitivity
	c.Pitch += (c.lastY - ypos) * mouseSensitivity
	c.lastX, c.lastY = xpos, ypos

	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

// ResetMouse makes the next Look call re-seed the cursor position, e.g.
// after the cursor was released on the title screen.
func (c *FlyCamera) ResetMouse() {
	c.firstMouse = true
}

func (c *FlyCamera) Front() mgl32.Vec3 {
	fx := math.Cos(c.Yaw) * math.Cos(c.Pitch)
	fy := math.Sin(c.Pitch)
	fz := math.Sin(c.Yaw) * math.Cos(c.Pitch)
	return mgl32.Vec3{float32(fx), float32(fy), float32(fz)}.Normalize()
}

// Move advances the camera by dt seconds along the requested directions.
// Forward and back follow the view direction including pitch.
func (c *FlyCamera) Move(m Movement, dt float64) {
	if m == 0 {
		return
	}
	front := c.Front()
	right := front.Cross(mgl32.Vec3{0, 1, 0}).Normalize()

	var dir mgl32.Vec3
	if m&MoveForward != 0 {
		dir = dir.Add(front)
	}
	if m&MoveBack != 0 {
		dir = dir.Sub(front)
	}
	if m&MoveRight != 0 {
		dir = dir.Add(right)
	}
	if m&MoveLeft != 0 {
		dir = dir.Sub(right)
	}
	if m&MoveUp != 0 {
		dir = dir.Add(mgl32.Vec3{0, 1, 0})
	}
	if m&MoveDown != 0 {
		dir = dir.Sub(mgl32.Vec3{0, 1, 0})
	}
	if dir.Len() == 0 {
		return
	}
	speed := c.Speed
	if m&MoveBoost != 0 {
		speed *= boostFactor
	}
	c.Position = c.Position.Add(dir.Normalize().Mul(speed * float32(dt)))
}

func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *FlyCamera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
