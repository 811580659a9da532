package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Size is the edge length of a chunk in voxels.
const Size = 32

// ChunkCoord identifies a chunk in chunk-grid units.
type ChunkCoord struct {
	X, Y, Z int
}

// Origin returns the world position of the chunk's minimum corner.
func (c ChunkCoord) Origin() (x, y, z int) {
	return c.X * Size, c.Y * Size, c.Z * Size
}

// OriginVec is Origin as a vector.
func (c ChunkCoord) OriginVec() mgl32.Vec3 {
	x, y, z := c.Origin()
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

// Add offsets c by the given chunk deltas.
func (c ChunkCoord) Add(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// ChunkFromWorld returns the chunk containing a world position.
func ChunkFromWorld(p mgl32.Vec3) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(int(math.Floor(float64(p.X()))), Size),
		Y: floorDiv(int(math.Floor(float64(p.Y()))), Size),
		Z: floorDiv(int(math.Floor(float64(p.Z()))), Size),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Resolution is the detail tier a chunk is generated and meshed at.
type Resolution uint8

const (
	ResolutionFull Resolution = iota
	ResolutionHalf
	ResolutionQuarter
)

// Resolutions lists every tier from finest to coarsest.
var Resolutions = []Resolution{ResolutionFull, ResolutionHalf, ResolutionQuarter}

// Step is the distance in voxels between neighbouring samples.
func (r Resolution) Step() int {
	switch r {
	case ResolutionFull:
		return 1
	case ResolutionHalf:
		return 2
	case ResolutionQuarter:
		return 4
	}
	panic(fmt.Sprintf("world: unknown resolution %d", uint8(r)))
}

// Dim is the number of interior samples along each axis.
func (r Resolution) Dim() int {
	return Size / r.Step()
}

func (r Resolution) String() string {
	switch r {
	case ResolutionFull:
		return "full"
	case ResolutionHalf:
		return "half"
	case ResolutionQuarter:
		return "quarter"
	}
	return fmt.Sprintf("Resolution(%d)", uint8(r))
}

// VoxelChunk is a dense sample grid for one chunk at one resolution. Indices
// run from -1 to Dim() inclusive; -1 and Dim() address the border shell, which
// holds the samples neighbouring chunks would produce at the same positions.
type VoxelChunk struct {
	Coord      ChunkCoord
	Resolution Resolution
	Generated  bool
	Meshed     bool

	dim    int
	stride int
	blocks []BlockType
	solid  int // interior only
	dirty  bool
}

// NewVoxelChunk returns an all-air chunk.
func NewVoxelChunk(coord ChunkCoord, res Resolution) *VoxelChunk {
	dim := res.Dim()
	stride := dim + 2
	return &VoxelChunk{
		Coord:      coord,
		Resolution: res,
		dim:        dim,
		stride:     stride,
		blocks:     make([]BlockType, stride*stride*stride),
	}
}

// Dim is the number of interior samples along each axis.
func (c *VoxelChunk) Dim() int {
	return c.dim
}

func (c *VoxelChunk) index(x, y, z int) int {
	if x < -1 || x > c.dim || y < -1 || y > c.dim || z < -1 || z > c.dim {
		panic(fmt.Sprintf("world: sample (%d,%d,%d) outside chunk %v with dim %d", x, y, z, c.Coord, c.dim))
	}
	return ((y+1)*c.stride+(z+1))*c.stride + (x + 1)
}

func (c *VoxelChunk) interior(x, y, z int) bool {
	return x >= 0 && x < c.dim && y >= 0 && y < c.dim && z >= 0 && z < c.dim
}

// Get returns the sample at (x,y,z).
func (c *VoxelChunk) Get(x, y, z int) BlockType {
	return c.blocks[c.index(x, y, z)]
}

// Set stores a sample and marks the chunk dirty.
func (c *VoxelChunk) Set(x, y, z int, b BlockType) {
	if !b.Valid() {
		panic(fmt.Sprintf("world: unknown block type %d", uint8(b)))
	}
	i := c.index(x, y, z)
	old := c.blocks[i]
	if old == b {
		return
	}
	if c.interior(x, y, z) {
		if old.Solid() {
			c.solid--
		}
		if b.Solid() {
			c.solid++
		}
	}
	c.blocks[i] = b
	c.dirty = true
}

// Fill sets every sample, border included.
func (c *VoxelChunk) Fill(b BlockType) {
	if !b.Valid() {
		panic(fmt.Sprintf("world: unknown block type %d", uint8(b)))
	}
	for i := range c.blocks {
		c.blocks[i] = b
	}
	c.solid = 0
	if b.Solid() {
		c.solid = c.dim * c.dim * c.dim
	}
	c.dirty = true
}

// SolidCount is the number of non-air interior samples.
func (c *VoxelChunk) SolidCount() int {
	return c.solid
}

// IsEmpty reports whether no interior sample is solid.
func (c *VoxelChunk) IsEmpty() bool {
	return c.solid == 0
}

// IsDirty reports whether the chunk changed since ClearDirty.
func (c *VoxelChunk) IsDirty() bool {
	return c.dirty
}

func (c *VoxelChunk) ClearDirty() {
	c.dirty = false
}

// Raw exposes the sample array, border included, in storage order.
func (c *VoxelChunk) Raw() []BlockType {
	return c.blocks
}
