package streaming

import (
	"fmt"

	"voxelterrain/internal/profiling"
	"voxelterrain/internal/world"
)

// Grid indexes chunk records by coordinate. It is owned by the main thread
// and is not safe for concurrent use.
type Grid struct {
	records  map[world.ChunkCoord]*ChunkRecord
	modCount uint64 // increases on any insert/remove

	// Per-column index for XZ queries: (chunkX,chunkZ) -> slice indexed by chunkY
	colIndex map[[2]int][]*ChunkRecord
}

func NewGrid() *Grid {
	return &Grid{
		records:  make(map[world.ChunkCoord]*ChunkRecord),
		colIndex: make(map[[2]int][]*ChunkRecord),
	}
}

func (g *Grid) Len() int {
	return len(g.records)
}

func (g *Grid) ModCount() uint64 {
	return g.modCount
}

func (g *Grid) Get(c world.ChunkCoord) *ChunkRecord {
	return g.records[c]
}

func (g *Grid) Has(c world.ChunkCoord) bool {
	_, ok := g.records[c]
	return ok
}

// Insert adds r. Inserting over an existing record is a programming error.
func (g *Grid) Insert(r *ChunkRecord) {
	if _, ok := g.records[r.Coord]; ok {
		panic(fmt.Sprintf("streaming: record %v inserted twice", r.Coord))
	}
	if r.Coord.Y < 0 {
		panic(fmt.Sprintf("streaming: record %v below the world", r.Coord))
	}
	g.records[r.Coord] = r
	g.modCount++
	key := [2]int{r.Coord.X, r.Coord.Z}
	col := g.colIndex[key]
	if len(col) <= r.Coord.Y {
		n := make([]*ChunkRecord, r.Coord.Y+1)
		copy(n, col)
		col = n
	}
	col[r.Coord.Y] = r
	g.colIndex[key] = col
}

// Remove deletes and returns the record at c, or nil.
func (g *Grid) Remove(c world.ChunkCoord) *ChunkRecord {
	r, ok := g.records[c]
	if !ok {
		return nil
	}
	delete(g.records, c)
	g.modCount++
	key := [2]int{c.X, c.Z}
	if col, ok := g.colIndex[key]; ok && c.Y < len(col) {
		col[c.Y] = nil
		// trim trailing nils
		end := len(col)
		for end > 0 && col[end-1] == nil {
			end--
		}
		if end == 0 {
			delete(g.colIndex, key)
		} else {
			g.colIndex[key] = col[:end]
		}
	}
	return r
}

// AppendOutside appends the coordinates of records whose column lies beyond
// a square radius (in chunks) of (cx, cz), or that sit at or above maxY.
// Only the column index is walked.
func (g *Grid) AppendOutside(cx, cz, radius, maxY int, dst []world.ChunkCoord) []world.ChunkCoord {
	defer profiling.Track("streaming.AppendOutside")()
	for key, col := range g.colIndex {
		far := max(abs(key[0]-cx), abs(key[1]-cz)) > radius
		if !far && len(col) <= maxY {
			continue
		}
		for y, r := range col {
			if r != nil && (far || y >= maxY) {
				dst = append(dst, r.Coord)
			}
		}
	}
	return dst
}

// Each calls fn for every record in unspecified order.
func (g *Grid) Each(fn func(*ChunkRecord)) {
	for _, r := range g.records {
		fn(r)
	}
}

// Clear removes every record.
func (g *Grid) Clear() {
	clear(g.records)
	clear(g.colIndex)
	g.modCount++
}
