package view

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLookClampsPitch(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{}, 900, 600)
	c.Look(0, 0)
	c.Look(0, -100000)
	if c.Pitch != maxPitch {
		t.Fatalf("pitch %v, want clamped to %v", c.Pitch, maxPitch)
	}
	c.Look(0, 100000)
	if c.Pitch != -maxPitch {
		t.Fatalf("pitch %v, want clamped to %v", c.Pitch, -maxPitch)
	}
}

func TestFirstLookOnlySeeds(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{}, 900, 600)
	yaw := c.Yaw
	c.Look(500, 500)
	if c.Yaw != yaw || c.Pitch != 0 {
		t.Fatal("first cursor event rotated the camera")
	}
	c.Look(600, 500)
	if math.Abs(c.Yaw-yaw-100*mouseSensitivity) > 1e-9 {
		t.Fatalf("yaw moved by %v", c.Yaw-yaw)
	}
}

func TestMoveForwardFollowsView(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{0, 50, 0}, 900, 600)
	front := c.Front()
	c.Move(MoveForward, 1)
	want := mgl32.Vec3{0, 50, 0}.Add(front.Mul(defaultSpeed))
	if !c.Position.ApproxEqualThreshold(want, 1e-4) {
		t.Fatalf("position %v, want %v", c.Position, want)
	}

	c.Move(MoveForward|MoveBack, 1)
	if !c.Position.ApproxEqualThreshold(want, 1e-4) {
		t.Fatal("opposite directions did not cancel")
	}
	c.Move(MoveUp|MoveBoost, 0.5)
	if got := c.Position.Y() - want.Y(); math.Abs(float64(got-defaultSpeed*boostFactor*0.5)) > 1e-3 {
		t.Fatalf("boosted climb %v", got)
	}
}

func testFrustum() Frustum {
	c := NewFlyCamera(mgl32.Vec3{0, 0, 0}, 800, 800)
	// yaw -pi/2 looks down -Z
	return NewFrustum(c.ProjectionMatrix().Mul4(c.ViewMatrix()))
}

func TestFrustumAABB(t *testing.T) {
	f := testFrustum()
	cases := []struct {
		name   string
		origin mgl32.Vec3
		in     bool
	}{
		{"ahead", mgl32.Vec3{-16, -16, -100}, true},
		{"behind", mgl32.Vec3{-16, -16, 100}, false},
		{"far left", mgl32.Vec3{-500, -16, -100}, false},
		{"above", mgl32.Vec3{-16, 400, -100}, false},
		{"beyond far plane", mgl32.Vec3{-16, -16, -3000}, false},
		{"around camera", mgl32.Vec3{-16, -16, -16}, true},
	}
	for _, tc := range cases {
		if got := f.IntersectsCube(tc.origin, 32); got != tc.in {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.in)
		}
	}
}

func TestFrustumMarginInflates(t *testing.T) {
	f := testFrustum()
	// just behind the camera and touching the near plane region
	lo, hi := mgl32.Vec3{-1, -1, 0.5}, mgl32.Vec3{1, 1, 0.9}
	f.Margin = 0
	if f.IntersectsAABB(lo, hi) {
		t.Fatal("box behind the camera reported visible without margin")
	}
	f.Margin = 1
	if !f.IntersectsAABB(lo, hi) {
		t.Fatal("margin did not include the box")
	}
}
