package world

import (
	"voxelterrain/internal/noise"
	"voxelterrain/internal/profiling"
)

const (
	treeMinHeight    = 4
	treeMaxHeight    = 6
	canopyRadius     = 2
	treeCellMargin   = canopyRadius // keeps canopies inside their cell
	boulderMaxRadius = 2
	decoReach        = 2 // widest horizontal reach from an anchor column
)

// rank orders decorations competing for the same voxel.
func (b BlockType) rank() uint8 {
	switch b {
	case BlockTypeTrunk:
		return 3
	case BlockTypeBoulder:
		return 2
	case BlockTypeLeaves:
		return 1
	}
	return 0
}

type region struct {
	minX, maxX int // [min, max)
	minZ, maxZ int
	minY, maxY int
}

func (r region) containsXZ(x, z int) bool {
	return x >= r.minX && x < r.maxX && z >= r.minZ && z < r.maxZ
}

type decoVoxel struct {
	y    int
	kind BlockType
}

// decoSet holds decoration voxels per world column.
type decoSet struct {
	cols map[[2]int][]decoVoxel
}

func (d *decoSet) add(r region, x, y, z int, kind BlockType) {
	if !r.containsXZ(x, z) || y < r.minY || y >= r.maxY {
		return
	}
	key := [2]int{x, z}
	d.cols[key] = append(d.cols[key], decoVoxel{y: y, kind: kind})
}

func (d *decoSet) at(x, z int) []decoVoxel {
	return d.cols[[2]int{x, z}]
}

// occupancy records trunk footprints per column so boulder placement is an
// O(columns) check.
type occupancy struct {
	minX, minZ int
	w, h       int
	used       []bool
}

func newOccupancy(minX, maxX, minZ, maxZ int) *occupancy {
	w, h := maxX-minX, maxZ-minZ
	return &occupancy{minX: minX, minZ: minZ, w: w, h: h, used: make([]bool, w*h)}
}

func (o *occupancy) index(x, z int) (int, bool) {
	lx, lz := x-o.minX, z-o.minZ
	if lx < 0 || lx >= o.w || lz < 0 || lz >= o.h {
		return 0, false
	}
	return lz*o.w + lx, true
}

func (o *occupancy) mark(x, z int) {
	if i, ok := o.index(x, z); ok {
		o.used[i] = true
	}
}

func (o *occupancy) taken(x, z int) bool {
	i, ok := o.index(x, z)
	return ok && o.used[i]
}

type tree struct {
	x, z   int
	base   int // first trunk voxel
	height int
}

type boulder struct {
	x, z   int
	base   int
	radius int
}

// exposedTop reports whether a column's height-surface voxel is solid and
// uncovered, which is where a Surface block sits.
func (g *Generator) exposedTop(x, z int) (int, bool) {
	top := g.HeightAt(x, z)
	if top <= 0 {
		return top, false
	}
	return top, g.solid(x, top-1, z, top) && !g.solid(x, top, z, top)
}

// trees enumerates every tree whose trunk lies in [minX,maxX)x[minZ,maxZ).
func (g *Generator) trees(minX, maxX, minZ, maxZ int) []tree {
	sc := g.cfg.Scatter
	cell := sc.TreeCell
	span := cell - 2*treeCellMargin
	var out []tree
	for cx := floorDiv(minX, cell); cx <= floorDiv(maxX-1, cell); cx++ {
		for cz := floorDiv(minZ, cell); cz <= floorDiv(maxZ-1, cell); cz++ {
			ox := cx*cell + cell/2
			oz := cz*cell + cell/2
			forest := g.field.Cluster(float64(ox), float64(oz), noise.ChannelForest)
			density := clamp01((forest - 0.35) / 0.3)
			if g.field.Scatter(cx, cz, noise.ChannelTree) >= sc.TreeChance*density {
				continue
			}
			tx := cx*cell + treeCellMargin + int(g.field.Scatter(cx, cz, noise.ChannelTreeOffsetX)*float64(span))
			tz := cz*cell + treeCellMargin + int(g.field.Scatter(cx, cz, noise.ChannelTreeOffsetZ)*float64(span))
			if tx < minX || tx >= maxX || tz < minZ || tz >= maxZ {
				continue
			}
			top, ok := g.exposedTop(tx, tz)
			if !ok {
				continue
			}
			h := treeMinHeight + int(g.field.Scatter(cx, cz, noise.ChannelTreeHeight)*float64(treeMaxHeight-treeMinHeight+1))
			out = append(out, tree{x: tx, z: tz, base: top, height: h})
		}
	}
	return out
}

// boulders enumerates boulder candidates anchored in [minX,maxX)x[minZ,maxZ)
// that do not touch a trunk column.
func (g *Generator) boulders(minX, maxX, minZ, maxZ int, occ *occupancy) []boulder {
	sc := g.cfg.Scatter
	cell := sc.BoulderCell
	span := cell - 2*boulderMaxRadius
	var out []boulder
	for cx := floorDiv(minX, cell); cx <= floorDiv(maxX-1, cell); cx++ {
		for cz := floorDiv(minZ, cell); cz <= floorDiv(maxZ-1, cell); cz++ {
			if g.field.Scatter(cx, cz, noise.ChannelBoulder) >= sc.BoulderChance {
				continue
			}
			bx := cx*cell + boulderMaxRadius + int(g.field.Scatter(cx, cz, noise.ChannelBoulderOffsetX)*float64(span))
			bz := cz*cell + boulderMaxRadius + int(g.field.Scatter(cx, cz, noise.ChannelBoulderOffsetZ)*float64(span))
			if bx < minX || bx >= maxX || bz < minZ || bz >= maxZ {
				continue
			}
			radius := 1 + int(g.field.Scatter(cx, cz, noise.ChannelBoulderSize)*float64(boulderMaxRadius))
			if blocked(occ, bx, bz, radius) {
				continue
			}
			top, ok := g.exposedTop(bx, bz)
			if !ok {
				continue
			}
			out = append(out, boulder{x: bx, z: bz, base: top, radius: radius})
		}
	}
	return out
}

func blocked(occ *occupancy, x, z, radius int) bool {
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if occ.taken(x+dx, z+dz) {
				return true
			}
		}
	}
	return false
}

// decorations collects every decoration voxel inside r. Anchors are
// enumerated from a margin around r wide enough that features straddling the
// region edge, and the trunks that could block them, are all seen.
func (g *Generator) decorations(r region) *decoSet {
	defer profiling.Track("world.decorations")()

	set := &decoSet{cols: make(map[[2]int][]decoVoxel)}
	if r.minY > g.maxY {
		return set
	}

	// Boulders anchored within decoReach of r can reach it; trunks within
	// boulderMaxRadius of those anchors can block them.
	m := decoReach + boulderMaxRadius
	occ := newOccupancy(r.minX-m, r.maxX+m, r.minZ-m, r.maxZ+m)
	ts := g.trees(r.minX-m, r.maxX+m, r.minZ-m, r.maxZ+m)
	for _, t := range ts {
		occ.mark(t.x, t.z)
	}

	for _, t := range ts {
		g.placeTree(set, r, t)
	}
	for _, b := range g.boulders(r.minX-decoReach, r.maxX+decoReach, r.minZ-decoReach, r.maxZ+decoReach, occ) {
		g.placeBoulder(set, r, b)
	}
	return set
}

func (g *Generator) placeTree(set *decoSet, r region, t tree) {
	crown := t.base + t.height - 1
	if t.base > r.maxY || crown+1 < r.minY {
		return
	}
	for y := t.base; y <= crown; y++ {
		set.add(r, t.x, y, t.z, BlockTypeTrunk)
	}
	for dy := -1; dy <= 1; dy++ {
		rad := canopyRadius
		if dy == 1 {
			rad = 1
		}
		for dx := -rad; dx <= rad; dx++ {
			for dz := -rad; dz <= rad; dz++ {
				if rad == canopyRadius && abs(dx) == rad && abs(dz) == rad {
					continue
				}
				set.add(r, t.x+dx, crown+dy, t.z+dz, BlockTypeLeaves)
			}
		}
	}
}

func (g *Generator) placeBoulder(set *decoSet, r region, b boulder) {
	if b.base-1 > r.maxY || b.base+b.radius < r.minY {
		return
	}
	outer := (float64(b.radius) + 0.5) * (float64(b.radius) + 0.5)
	for dy := -1; dy <= b.radius; dy++ {
		for dx := -b.radius; dx <= b.radius; dx++ {
			for dz := -b.radius; dz <= b.radius; dz++ {
				d2 := float64(dx*dx+dz*dz) + float64(dy*dy)*1.4
				if d2 > outer {
					continue
				}
				x, y, z := b.x+dx, b.base+dy, b.z+dz
				// solid core, ragged shell
				if d2 > outer*0.45 && g.field.Scatter3(x, y, z, noise.ChannelBoulderShape) < 0.4 {
					continue
				}
				set.add(r, x, y, z, BlockTypeBoulder)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
