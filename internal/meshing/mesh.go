package meshing

import (
	"fmt"

	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is number of float32 per interleaved vertex (pos.xyz + normal.xyz + color.rgb)
const VertexStride = 9

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec3
}

// MeshBuffer is the geometry for one chunk at one resolution. Positions are
// chunk-local; Transform places the chunk in the world. A MeshBuffer is never
// modified after Build returns it.
type MeshBuffer struct {
	Coord      world.ChunkCoord
	Resolution world.Resolution
	Vertices   []Vertex
	Indices    []uint32
}

// Empty reports whether the mesh has no geometry.
func (m *MeshBuffer) Empty() bool {
	return m == nil || len(m.Indices) == 0
}

func (m *MeshBuffer) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// QuadCount is the number of emitted faces.
func (m *MeshBuffer) QuadCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices) / 4
}

// Transform returns the model matrix derived from the chunk coordinate.
func (m *MeshBuffer) Transform() mgl32.Mat4 {
	return mgl32.Translate3D(m.Coord.OriginVec().Elem())
}

// Interleaved flattens the vertices for GPU upload.
func (m *MeshBuffer) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Vertices)*VertexStride)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.Color[0], v.Color[1], v.Color[2],
		)
	}
	return out
}

func (m *MeshBuffer) String() string {
	return fmt.Sprintf("mesh %v %v: %d vertices, %d triangles", m.Coord, m.Resolution, len(m.Vertices), m.TriangleCount())
}

// Palette maps solid block types to face colours.
type Palette map[world.BlockType]mgl32.Vec3

// DefaultPalette uses each block type's base colour.
func DefaultPalette() Palette {
	p := make(Palette, len(world.SolidBlockTypes))
	for _, b := range world.SolidBlockTypes {
		p[b] = b.Color()
	}
	return p
}

// Color returns the colour for b. A block type without a colour is a
// programming error.
func (p Palette) Color(b world.BlockType) mgl32.Vec3 {
	c, ok := p[b]
	if !ok {
		panic(fmt.Sprintf("meshing: no colour for block type %v", b))
	}
	return c
}
