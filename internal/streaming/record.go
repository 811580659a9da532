package streaming

import (
	"fmt"
	"sync/atomic"

	"voxelterrain/internal/meshing"
	"voxelterrain/internal/world"
)

// State is the lifecycle stage of a chunk record.
type State uint8

const (
	StateRequested State = iota
	StateGenerating
	StateMeshing
	StateReady
	StateEvicted
)

func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateGenerating:
		return "generating"
	case StateMeshing:
		return "meshing"
	case StateReady:
		return "ready"
	case StateEvicted:
		return "evicted"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

type workKind uint8

const (
	workNone workKind = iota
	workGenerate
	workMesh
)

func (w workKind) String() string {
	switch w {
	case workGenerate:
		return "generate"
	case workMesh:
		return "mesh"
	}
	return "none"
}

// ticket identifies one submitted job. Cancelling it makes workers skip the
// job if it has not started and drop its output if it has.
type ticket struct {
	id        uint64
	cancelled atomic.Bool
}

func (t *ticket) cancel() {
	t.cancelled.Store(true)
}

func (t *ticket) isCancelled() bool {
	return t.cancelled.Load()
}

// ChunkRecord is the streamer's view of one chunk coordinate.
type ChunkRecord struct {
	Coord world.ChunkCoord
	// Resolution is the tier the chunk should be shown at. Mesh may still be
	// at an older tier while the new one is built.
	Resolution world.Resolution
	State      State

	// Voxels lives between generation and a successful mesh.
	Voxels *world.VoxelChunk
	// Mesh is the servable mesh; Previous is the one it replaced.
	Mesh     *meshing.MeshBuffer
	Previous *meshing.MeshBuffer

	retained map[world.Resolution]*world.PackedChunk
	work     workKind
	ticket   *ticket
	failures int
}

// Servable reports whether the record has a mesh to draw.
func (r *ChunkRecord) Servable() bool {
	return r.Mesh != nil
}

// InFlight reports whether a job for the record is running or queued.
func (r *ChunkRecord) InFlight() bool {
	return r.ticket != nil
}

// Retained returns the packed voxels kept for res, if any.
func (r *ChunkRecord) Retained(res world.Resolution) *world.PackedChunk {
	return r.retained[res]
}

func (r *ChunkRecord) retain(p *world.PackedChunk) {
	if p == nil {
		return
	}
	if r.retained == nil {
		r.retained = make(map[world.Resolution]*world.PackedChunk, len(world.Resolutions))
	}
	r.retained[p.Resolution] = p
}

// release drops everything the record owns and reports whether an in-flight
// job was cancelled.
func (r *ChunkRecord) release() (cancelled bool) {
	if r.ticket != nil {
		r.ticket.cancel()
		r.ticket = nil
		cancelled = true
	}
	r.Voxels = nil
	r.Mesh = nil
	r.Previous = nil
	r.retained = nil
	r.work = workNone
	r.State = StateEvicted
	return cancelled
}
