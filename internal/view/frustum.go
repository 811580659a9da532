package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type plane struct {
	a, b, c, d float32
}

// Frustum is the six clip planes of a projection*view matrix, in order
// left, right, bottom, top, near, far.
type Frustum struct {
	planes [6]plane
	// Margin inflates boxes before testing, in blocks.
	Margin float32
}

// NewFrustum extracts the planes of clip = proj * view.
func NewFrustum(clip mgl32.Mat4) Frustum {
	// mgl32 matrices are column-major
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	var f Frustum
	f.planes[0] = normalizePlane(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03})
	f.planes[1] = normalizePlane(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03})
	f.planes[2] = normalizePlane(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13})
	f.planes[3] = normalizePlane(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13})
	f.planes[4] = normalizePlane(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23})
	f.planes[5] = normalizePlane(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23})
	f.Margin = 1.0
	return f
}

func normalizePlane(p plane) plane {
	n := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if n == 0 {
		return p
	}
	return plane{p.a / n, p.b / n, p.c / n, p.d / n}
}

// IntersectsAABB reports whether the box [lo, hi] is at least partly inside.
func (f Frustum) IntersectsAABB(lo, hi mgl32.Vec3) bool {
	m := f.Margin
	minx, miny, minz := lo[0]-m, lo[1]-m, lo[2]-m
	maxx, maxy, maxz := hi[0]+m, hi[1]+m, hi[2]+m
	for _, p := range f.planes {
		// positive vertex for this plane normal
		px := maxx
		if p.a < 0 {
			px = minx
		}
		py := maxy
		if p.b < 0 {
			py = miny
		}
		pz := maxz
		if p.c < 0 {
			pz = minz
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}

// IntersectsCube tests an axis-aligned cube of the given edge length whose
// minimum corner is origin.
func (f Frustum) IntersectsCube(origin mgl32.Vec3, size float32) bool {
	return f.IntersectsAABB(origin, origin.Add(mgl32.Vec3{size, size, size}))
}
