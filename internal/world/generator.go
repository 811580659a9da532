package world

import (
	"math"

	"voxelterrain/internal/config"
	"voxelterrain/internal/noise"
	"voxelterrain/internal/profiling"
)

// Generator fills VoxelChunks from a noise field. Every sample is a pure
// function of its world position and the chunk's resolution, so chunks can be
// generated on any goroutine in any order and still agree on shared borders.
type Generator struct {
	field *noise.Field
	cfg   config.NoiseConfig

	// highest y at which any terrain, cliff or decoration voxel can exist
	maxY int
}

// NewGenerator returns a generator reading field.
func NewGenerator(field *noise.Field) *Generator {
	cfg := field.Config()
	top := int(math.Ceil(field.MaxHeight()))
	if cfg.Cliffs.Enabled {
		top += int(math.Ceil(cfg.Cliffs.Amplitude))
	}
	return &Generator{
		field: field,
		cfg:   cfg,
		maxY:  top + treeMaxHeight + canopyRadius + 2,
	}
}

// Field returns the noise field the generator samples.
func (g *Generator) Field() *noise.Field {
	return g.field
}

// MaxY is the highest world y that can hold a solid voxel.
func (g *Generator) MaxY() int {
	return g.maxY
}

// HeightAt is the y of the first voxel above the height surface in a column.
func (g *Generator) HeightAt(x, z int) int {
	return int(math.Floor(g.field.Height(float64(x), float64(z))))
}

// solid decides terrain occupancy for one full-resolution voxel. top is
// HeightAt for the column.
func (g *Generator) solid(x, y, z, top int) bool {
	if y < 0 {
		return true
	}
	if y < top {
		if y > 0 && g.cfg.Caves.Enabled && g.field.Density(float64(x), float64(y), float64(z)) > g.cfg.Caves.Threshold {
			return false
		}
		return true
	}
	c := g.cfg.Cliffs
	if !c.Enabled || float64(y-top) >= c.Amplitude {
		return false
	}
	return g.field.Ridge(float64(x), float64(y), float64(z))-float64(y-top)/c.Amplitude > c.Threshold
}

// Generate produces the chunk at coord for res, border shell included.
func (g *Generator) Generate(coord ChunkCoord, res Resolution) *VoxelChunk {
	defer profiling.Track("world.Generate")()

	c := NewVoxelChunk(coord, res)
	s := res.Step()
	dim := res.Dim()
	x0, y0, z0 := coord.Origin()

	// Samples span [y0-s, y0+Size+s) including the border shell.
	r := region{
		minX: x0 - s, maxX: x0 + Size + s,
		minZ: z0 - s, maxZ: z0 + Size + s,
		minY: y0 - s, maxY: y0 + Size + s,
	}
	if r.minY > g.maxY {
		c.Generated = true
		return c
	}

	feats := g.decorations(r)
	col := newColumn(g, r.minY, r.maxY)
	for i := -1; i <= dim; i++ {
		wx := x0 + i*s
		for k := -1; k <= dim; k++ {
			wz := z0 + k*s
			col.fill(wx, wz)
			col.overlay(feats.at(wx, wz))
			for j := -1; j <= dim; j++ {
				c.Set(i, j, k, col.topmost(y0+j*s, s))
			}
		}
	}
	c.Generated = true
	return c
}

// column caches full-resolution occupancy and block types for one world
// column over [lo, hi).
type column struct {
	g      *Generator
	lo, hi int
	top    int
	solid  []bool // covers [lo, hi+depthCap) so classification can look up
	types  []BlockType
	rank   []uint8
}

func newColumn(g *Generator, lo, hi int) *column {
	n := hi - lo
	return &column{
		g:     g,
		lo:    lo,
		hi:    hi,
		solid: make([]bool, n+g.cfg.SubsoilDepth+1),
		types: make([]BlockType, n),
		rank:  make([]uint8, n),
	}
}

func (c *column) fill(x, z int) {
	g := c.g
	c.top = g.HeightAt(x, z)
	for i := range c.solid {
		y := c.lo + i
		c.solid[i] = y <= g.maxY && g.solid(x, y, z, c.top)
	}
	for i := range c.types {
		c.types[i] = c.classify(i)
		c.rank[i] = 0
	}
}

// classify assigns a block type by depth below the exposed top of the solid
// run containing voxel i.
func (c *column) classify(i int) BlockType {
	if !c.solid[i] {
		return BlockTypeAir
	}
	y := c.lo + i
	if y < 0 {
		return BlockTypeStone
	}
	depthCap := c.g.cfg.SubsoilDepth + 1
	d := 0
	for d < depthCap && i+d+1 < len(c.solid) && c.solid[i+d+1] {
		d++
	}
	if d == depthCap || y+d < c.top-1 {
		return BlockTypeStone
	}
	if d == 0 {
		return BlockTypeSurface
	}
	return BlockTypeSubsoil
}

// overlay writes decoration voxels into air, higher rank winning.
func (c *column) overlay(vs []decoVoxel) {
	for _, v := range vs {
		i := v.y - c.lo
		if i < 0 || i >= len(c.types) {
			continue
		}
		if c.solid[i] || c.rank[i] >= v.kind.rank() {
			continue
		}
		c.types[i] = v.kind
		c.rank[i] = v.kind.rank()
	}
}

// topmost returns the highest non-air voxel type in [y, y+span).
func (c *column) topmost(y, span int) BlockType {
	for yy := y + span - 1; yy >= y; yy-- {
		if b := c.types[yy-c.lo]; b != BlockTypeAir {
			return b
		}
	}
	return BlockTypeAir
}
