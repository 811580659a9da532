package meshing

import (
	"reflect"
	"testing"

	"voxelterrain/internal/config"
	"voxelterrain/internal/noise"
	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func emptyChunk(res world.Resolution) *world.VoxelChunk {
	c := world.NewVoxelChunk(world.ChunkCoord{}, res)
	c.Generated = true
	return c
}

func generated(t testing.TB, coord world.ChunkCoord, res world.Resolution) *world.VoxelChunk {
	t.Helper()
	s := config.Default()
	s.Noise.Seed = 42
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	return world.NewGenerator(noise.New(s.Noise)).Generate(coord, res)
}

type faceKey struct {
	x, y, z int
	axis    int
	sign    int
}

// exposedFaces derives the expected face set straight from the samples.
func exposedFaces(c *world.VoxelChunk) map[faceKey]world.BlockType {
	out := make(map[faceKey]world.BlockType)
	n := c.Dim()
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				b := c.Get(x, y, z)
				if !b.Solid() {
					continue
				}
				p := [3]int{x, y, z}
				for axis := 0; axis < 3; axis++ {
					for _, sign := range []int{1, -1} {
						q := p
						q[axis] += sign
						if !c.Get(q[0], q[1], q[2]).Solid() {
							out[faceKey{x, y, z, axis, sign}] = b
						}
					}
				}
			}
		}
	}
	return out
}

// meshFaces expands every quad into the unit faces it covers.
func meshFaces(t *testing.T, m *MeshBuffer, pal Palette) map[faceKey]world.BlockType {
	t.Helper()
	step := float32(m.Resolution.Step())
	colorType := make(map[mgl32.Vec3]world.BlockType)
	for b, c := range pal {
		colorType[c] = b
	}
	out := make(map[faceKey]world.BlockType)
	for q := 0; q < m.QuadCount(); q++ {
		vs := m.Vertices[q*4 : q*4+4]
		normal := vs[0].Normal
		axis, sign := -1, 0
		for i := 0; i < 3; i++ {
			if normal[i] != 0 {
				axis, sign = i, int(normal[i])
			}
		}
		lo, hi := vs[0].Position, vs[0].Position
		for _, v := range vs[1:] {
			for i := 0; i < 3; i++ {
				lo[i] = min(lo[i], v.Position[i])
				hi[i] = max(hi[i], v.Position[i])
			}
		}
		var a, b [3]int
		for i := 0; i < 3; i++ {
			a[i] = int(lo[i] / step)
			b[i] = int(hi[i] / step)
		}
		if sign > 0 {
			a[axis]--
		}
		b[axis] = a[axis] + 1
		bt := colorType[vs[0].Color]
		for x := a[0]; x < b[0]; x++ {
			for y := a[1]; y < b[1]; y++ {
				for z := a[2]; z < b[2]; z++ {
					k := faceKey{x, y, z, axis, sign}
					if _, dup := out[k]; dup {
						t.Fatalf("face %v emitted twice", k)
					}
					out[k] = bt
				}
			}
		}
	}
	return out
}

func TestAllAirMeshIsEmpty(t *testing.T) {
	m := NewMesher(DefaultPalette()).Build(emptyChunk(world.ResolutionFull))
	if !m.Empty() || len(m.Vertices) != 0 || len(m.Indices) != 0 {
		t.Fatalf("all-air chunk produced %v", m)
	}
}

func TestEnclosedStoneMeshIsEmpty(t *testing.T) {
	for _, res := range world.Resolutions {
		c := emptyChunk(res)
		c.Fill(world.BlockTypeStone)
		m := NewMesher(DefaultPalette()).Build(c)
		if !m.Empty() {
			t.Fatalf("%v: stone enclosed by stone produced %d triangles", res, m.TriangleCount())
		}
	}
}

func TestSingleBlockMesh(t *testing.T) {
	c := emptyChunk(world.ResolutionFull)
	c.Set(0, 0, 0, world.BlockTypeSurface)
	m := NewMesher(DefaultPalette()).Build(c)
	if m.QuadCount() != 6 || m.TriangleCount() != 12 {
		t.Fatalf("single block: got %d quads, %d triangles, want 6 and 12", m.QuadCount(), m.TriangleCount())
	}
}

func TestTwoBlocksSeparated(t *testing.T) {
	c := emptyChunk(world.ResolutionFull)
	c.Set(0, 0, 0, world.BlockTypeStone)
	c.Set(2, 0, 0, world.BlockTypeStone)
	m := NewMesher(DefaultPalette()).Build(c)
	if m.QuadCount() != 12 {
		t.Fatalf("two separated blocks: got %d quads, want 12", m.QuadCount())
	}
}

func TestTwoBlocksTouchingGreedy(t *testing.T) {
	c := emptyChunk(world.ResolutionFull)
	c.Set(0, 0, 0, world.BlockTypeStone)
	c.Set(1, 0, 0, world.BlockTypeStone)
	m := NewMesher(DefaultPalette()).Build(c)
	// Union is a 2x1x1 cuboid
	if m.QuadCount() != 6 {
		t.Fatalf("two touching blocks: got %d quads, want 6", m.QuadCount())
	}
}

func TestDifferentTypesDoNotMerge(t *testing.T) {
	c := emptyChunk(world.ResolutionFull)
	c.Set(0, 0, 0, world.BlockTypeSurface)
	c.Set(1, 0, 0, world.BlockTypeSubsoil)
	m := NewMesher(DefaultPalette()).Build(c)
	if m.QuadCount() != 10 {
		t.Fatalf("mixed pair: got %d quads, want 10", m.QuadCount())
	}
}

func TestBorderShellCullsFaces(t *testing.T) {
	c := emptyChunk(world.ResolutionFull)
	n := c.Dim()
	c.Set(n-1, 0, 0, world.BlockTypeStone)
	c.Set(n, 0, 0, world.BlockTypeStone) // neighbour chunk's voxel
	m := NewMesher(DefaultPalette()).Build(c)
	if m.QuadCount() != 5 {
		t.Fatalf("border culling: got %d quads, want 5", m.QuadCount())
	}
	for _, v := range m.Vertices {
		if v.Normal == (mgl32.Vec3{1, 0, 0}) {
			t.Fatal("face against solid border was emitted")
		}
	}
}

func TestDecimatedPositionsScale(t *testing.T) {
	c := emptyChunk(world.ResolutionQuarter)
	c.Set(1, 1, 1, world.BlockTypeBoulder)
	m := NewMesher(DefaultPalette()).Build(c)
	if m.QuadCount() != 6 {
		t.Fatalf("got %d quads", m.QuadCount())
	}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			if v.Position[i] != 4 && v.Position[i] != 8 {
				t.Fatalf("vertex %v not on the 4-voxel sample grid", v.Position)
			}
		}
	}
}

func TestQuadsWindOutward(t *testing.T) {
	c := generated(t, world.ChunkCoord{X: 0, Y: 1, Z: 0}, world.ResolutionFull)
	m := NewMesher(DefaultPalette()).Build(c)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]]
		b := m.Vertices[m.Indices[i+1]]
		d := m.Vertices[m.Indices[i+2]]
		n := b.Position.Sub(a.Position).Cross(d.Position.Sub(a.Position))
		if n.Dot(a.Normal) <= 0 {
			t.Fatalf("triangle %d winds against its normal %v", i/3, a.Normal)
		}
	}
}

// Greedy output covers exactly the exposed faces, never more geometry than
// one quad per face, at every resolution.
func TestGreedyMatchesExposedFaces(t *testing.T) {
	pal := DefaultPalette()
	mesher := NewMesher(pal)
	coords := []world.ChunkCoord{{X: 0, Y: 1, Z: 0}, {X: -1, Y: 0, Z: 2}, {X: 3, Y: 1, Z: -2}}
	for _, coord := range coords {
		for _, res := range world.Resolutions {
			c := generated(t, coord, res)
			want := exposedFaces(c)
			greedy := mesher.Build(c)
			naive := mesher.BuildNaive(c)

			if greedy.TriangleCount() > naive.TriangleCount() || len(greedy.Vertices) > len(naive.Vertices) {
				t.Fatalf("%v %v: greedy %d triangles > naive %d", coord, res, greedy.TriangleCount(), naive.TriangleCount())
			}
			if naive.QuadCount() != len(want) {
				t.Fatalf("%v %v: naive %d quads, %d exposed faces", coord, res, naive.QuadCount(), len(want))
			}
			if got := meshFaces(t, greedy, pal); !reflect.DeepEqual(got, want) {
				t.Fatalf("%v %v: greedy faces differ from exposed faces (%d vs %d)", coord, res, len(got), len(want))
			}
			if got := meshFaces(t, naive, pal); !reflect.DeepEqual(got, want) {
				t.Fatalf("%v %v: naive faces differ from exposed faces", coord, res)
			}
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	c := generated(t, world.ChunkCoord{X: 1, Y: 1, Z: 1}, world.ResolutionHalf)
	mesher := NewMesher(DefaultPalette())
	a := mesher.Build(c)
	b := mesher.Build(c)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical voxels produced different meshes")
	}
}

func TestMissingColourPanics(t *testing.T) {
	c := emptyChunk(world.ResolutionFull)
	c.Set(3, 3, 3, world.BlockTypeStone)
	pal := DefaultPalette()
	delete(pal, world.BlockTypeStone)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for block type without colour")
		}
	}()
	NewMesher(pal).Build(c)
}

func TestUngeneratedChunkPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic meshing an ungenerated chunk")
		}
	}()
	NewMesher(DefaultPalette()).Build(world.NewVoxelChunk(world.ChunkCoord{}, world.ResolutionFull))
}

func TestTransformAndInterleave(t *testing.T) {
	c := world.NewVoxelChunk(world.ChunkCoord{X: 1, Y: 2, Z: -3}, world.ResolutionFull)
	c.Generated = true
	c.Set(0, 0, 0, world.BlockTypeLeaves)
	m := NewMesher(DefaultPalette()).Build(c)
	origin := m.Transform().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if origin != (mgl32.Vec4{32, 64, -96, 1}) {
		t.Fatalf("transform origin = %v", origin)
	}
	flat := m.Interleaved()
	if len(flat) != len(m.Vertices)*VertexStride {
		t.Fatalf("interleaved length %d", len(flat))
	}
	want := world.BlockTypeLeaves.Color()
	if flat[6] != want[0] || flat[7] != want[1] || flat[8] != want[2] {
		t.Fatalf("colour not interleaved after normal: %v", flat[:9])
	}
}

func BenchmarkBuildGreedy(b *testing.B) {
	c := generated(b, world.ChunkCoord{X: 0, Y: 1, Z: 0}, world.ResolutionFull)
	mesher := NewMesher(DefaultPalette())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = mesher.Build(c)
	}
}

func BenchmarkBuildNaive(b *testing.B) {
	c := generated(b, world.ChunkCoord{X: 0, Y: 1, Z: 0}, world.ResolutionFull)
	mesher := NewMesher(DefaultPalette())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = mesher.BuildNaive(c)
	}
}
