package meshing

import (
	"fmt"

	"voxelterrain/internal/profiling"
	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesher turns generated chunks into MeshBuffers. It holds no per-chunk state
// and is safe for concurrent use.
type Mesher struct {
	palette Palette
}

// NewMesher returns a mesher colouring faces from p.
func NewMesher(p Palette) *Mesher {
	return &Mesher{palette: p}
}

// axes lists (d, u, v) per face axis; u x v points along +d.
var axes = [3][3]int{{0, 1, 2}, {1, 2, 0}, {2, 0, 1}}

// Build greedy-meshes c at its own resolution. A face is emitted where a
// solid sample borders air, the border shell included, and coplanar faces of
// the same block type merge into maximal rectangles.
func (m *Mesher) Build(c *world.VoxelChunk) *MeshBuffer {
	defer profiling.Track("meshing.Build")()
	return m.build(c, true)
}

// BuildNaive emits one quad per exposed face. Reference output for Build.
func (m *Mesher) BuildNaive(c *world.VoxelChunk) *MeshBuffer {
	defer profiling.Track("meshing.BuildNaive")()
	return m.build(c, false)
}

func (m *Mesher) build(c *world.VoxelChunk, greedy bool) *MeshBuffer {
	if !c.Generated {
		panic(fmt.Sprintf("meshing: chunk %v meshed before generation", c.Coord))
	}
	out := &MeshBuffer{Coord: c.Coord, Resolution: c.Resolution}
	if c.IsEmpty() {
		return out
	}

	n := c.Dim()
	step := float32(c.Resolution.Step())
	mask := make([]world.BlockType, n*n)

	for _, ax := range axes {
		d, u, v := ax[0], ax[1], ax[2]
		for _, sign := range [2]int{1, -1} {
			for a := 0; a < n; a++ {
				// Build the exposed-face mask for slice a.
				var p, q [3]int
				for j := 0; j < n; j++ {
					for i := 0; i < n; i++ {
						p[d], p[u], p[v] = a, i, j
						q = p
						q[d] += sign
						b := c.Get(p[0], p[1], p[2])
						if !b.Valid() {
							panic(fmt.Sprintf("meshing: unknown block type %d in chunk %v", uint8(b), c.Coord))
						}
						if b.Solid() && !c.Get(q[0], q[1], q[2]).Solid() {
							mask[j*n+i] = b
						} else {
							mask[j*n+i] = world.BlockTypeAir
						}
					}
				}

				plane := a
				if sign > 0 {
					plane = a + 1
				}

				// Greedy merge over mask (i along u, j along v)
				for j := 0; j < n; j++ {
					for i := 0; i < n; {
						b := mask[j*n+i]
						if b == world.BlockTypeAir {
							i++
							continue
						}
						w, h := 1, 1
						if greedy {
							for i+w < n && mask[j*n+i+w] == b {
								w++
							}
						outer:
							for j+h < n {
								for k := i; k < i+w; k++ {
									if mask[(j+h)*n+k] != b {
										break outer
									}
								}
								h++
							}
						}
						m.emitQuad(out, d, u, v, sign, plane, i, j, w, h, step, b)
						// zero-out mask region
						for jj := j; jj < j+h; jj++ {
							for ii := i; ii < i+w; ii++ {
								mask[jj*n+ii] = world.BlockTypeAir
							}
						}
						i += w
					}
				}
			}
		}
	}
	return out
}

// emitQuad appends a w x h face on the given plane, CCW seen from outside.
func (m *Mesher) emitQuad(out *MeshBuffer, d, u, v, sign, plane, i, j, w, h int, step float32, b world.BlockType) {
	var p0, du, dv mgl32.Vec3
	p0[d] = float32(plane) * step
	p0[u] = float32(i) * step
	p0[v] = float32(j) * step
	du[u] = float32(w) * step
	dv[v] = float32(h) * step
	var normal mgl32.Vec3
	normal[d] = float32(sign)
	color := m.palette.Color(b)

	corners := [4]mgl32.Vec3{p0, p0.Add(du), p0.Add(du).Add(dv), p0.Add(dv)}
	if sign < 0 {
		corners[1], corners[3] = corners[3], corners[1]
	}
	base := uint32(len(out.Vertices))
	for _, pos := range corners {
		out.Vertices = append(out.Vertices, Vertex{Position: pos, Normal: normal, Color: color})
	}
	out.Indices = append(out.Indices, base, base+1, base+2, base+2, base+3, base)
}
