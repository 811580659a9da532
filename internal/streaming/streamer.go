// Package streaming keeps the set of loaded chunks in step with the player:
// it plans which coordinates should exist at which detail tier, runs
// generation and meshing on a worker pool, and hands finished meshes to the
// main thread once per frame.
package streaming

import (
	"cmp"
	"log/slog"
	"slices"

	"voxelterrain/internal/config"
	"voxelterrain/internal/meshing"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshUpdate tells presentation that a chunk's active mesh changed.
// Previous is the mesh being replaced, for cross-fading; it may be nil.
type MeshUpdate struct {
	Coord    world.ChunkCoord
	Mesh     *meshing.MeshBuffer
	Previous *meshing.MeshBuffer
}

// FrameDelta is everything that changed during one Update.
type FrameDelta struct {
	Requested []world.ChunkCoord
	Published []MeshUpdate
	Evicted   []world.ChunkCoord
}

// Empty reports whether nothing changed.
func (d FrameDelta) Empty() bool {
	return len(d.Requested) == 0 && len(d.Published) == 0 && len(d.Evicted) == 0
}

// Stats are cumulative counters plus the current queue picture.
type Stats struct {
	Loaded    int
	Ready     int
	Pending   int
	InFlight  int
	Generated int
	Meshed    int
	Swapped   int // tier changes served from an existing mesh
	Discarded int // results that arrived for superseded or evicted jobs
	Dropped   int // jobs workers skipped after cancellation
	Failed    int
}

type retryEntry struct {
	coord world.ChunkCoord
	work  workKind
}

// Streamer owns the chunk grid and the worker pool. Update, Reset and Close
// must be called from one goroutine.
type Streamer struct {
	cfg  config.StreamConfig
	log  *slog.Logger
	grid *Grid
	pool *workerPool

	pending  map[world.ChunkCoord]struct{}
	retry    []retryEntry
	inFlight int

	last    world.ChunkCoord
	hasLast bool

	nextTicket uint64
	stats      Stats
	results    []result
	closed     bool
}

// New starts a streamer with cfg.Workers workers. cfg is expected to have
// passed config validation.
func New(cfg config.StreamConfig, gen *world.Generator, mesher *meshing.Mesher, log *slog.Logger) *Streamer {
	return newStreamer(cfg, pipeline{gen: gen, mesher: mesher}, log)
}

func newStreamer(cfg config.StreamConfig, runner jobRunner, log *slog.Logger) *Streamer {
	if log == nil {
		log = slog.Default()
	}
	cfg.Workers = max(cfg.Workers, 1)
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	cfg.VerticalChunks = max(cfg.VerticalChunks, 1)
	s := &Streamer{
		cfg:     cfg,
		log:     log.With("component", "streamer"),
		grid:    NewGrid(),
		pool:    newWorkerPool(cfg.Workers, cfg.QueueSize, runner),
		pending: make(map[world.ChunkCoord]struct{}),
	}
	s.log.Debug("streamer started", "workers", cfg.Workers, "queue", cfg.QueueSize, "view_radius", cfg.ViewRadius)
	return s
}

// Grid exposes the chunk index for read-only queries on the main thread.
func (s *Streamer) Grid() *Grid {
	return s.grid
}

// Config returns the active streaming configuration.
func (s *Streamer) Config() config.StreamConfig {
	return s.cfg
}

// Record returns the record at c, or nil.
func (s *Streamer) Record(c world.ChunkCoord) *ChunkRecord {
	return s.grid.Get(c)
}

// Mesh returns the servable mesh at c, or nil.
func (s *Streamer) Mesh(c world.ChunkCoord) *meshing.MeshBuffer {
	if r := s.grid.Get(c); r != nil {
		return r.Mesh
	}
	return nil
}

func (s *Streamer) Stats() Stats {
	st := s.stats
	st.Loaded = s.grid.Len()
	st.Pending = len(s.pending) + len(s.retry)
	st.InFlight = s.inFlight
	st.Dropped = int(s.pool.dropped.Load())
	st.Ready = 0
	s.grid.Each(func(r *ChunkRecord) {
		if r.State == StateReady {
			st.Ready++
		}
	})
	return st
}

// Idle reports whether no work is queued, running or waiting for retry.
func (s *Streamer) Idle() bool {
	return len(s.pending) == 0 && len(s.retry) == 0 && s.inFlight == 0
}

// SetViewRadius changes the view radius. The configured detail radii are
// kept; tierFor caps them at the current view radius. The desired set is
// recomputed on the next Update.
func (s *Streamer) SetViewRadius(r int) {
	r = min(max(r, 1), config.MaxViewRadius)
	if r == s.cfg.ViewRadius {
		return
	}
	s.cfg.ViewRadius = r
	s.hasLast = false
}

// Update advances streaming by one frame. Results finished since the last
// call are applied first, the desired set is replanned only when the player
// has entered a new chunk, and queued work is dispatched nearest-first
// without blocking.
func (s *Streamer) Update(pos mgl32.Vec3) FrameDelta {
	defer profiling.Track("streaming.Update")()
	var delta FrameDelta
	if s.closed {
		return delta
	}

	s.requeueFailed()
	s.applyResults(&delta)

	current := world.ChunkFromWorld(pos)
	if !s.hasLast || current != s.last {
		s.last = current
		s.hasLast = true
		s.plan(&delta)
	}

	s.dispatch()
	return delta
}

// tierFor maps a horizontal chunk distance to a detail tier.
func (s *Streamer) tierFor(dist int) world.Resolution {
	full, half := s.detailRadii()
	switch {
	case dist <= full:
		return world.ResolutionFull
	case dist <= half:
		return world.ResolutionHalf
	default:
		return world.ResolutionQuarter
	}
}

// detailRadii returns the full and half radii in effect for the current
// view radius.
func (s *Streamer) detailRadii() (full, half int) {
	full = min(s.cfg.FullDetailRadius, s.cfg.ViewRadius)
	half = min(max(s.cfg.HalfDetailRadius, full), s.cfg.ViewRadius)
	return full, half
}

func (s *Streamer) distance(c world.ChunkCoord) int {
	return max(abs(c.X-s.last.X), abs(c.Z-s.last.Z))
}

// plan recomputes the desired set around s.last.
func (s *Streamer) plan(delta *FrameDelta) {
	defer profiling.Track("streaming.plan")()
	r := s.cfg.ViewRadius

	evict := s.grid.AppendOutside(s.last.X, s.last.Z, r, s.cfg.VerticalChunks, nil)
	sortCoords(evict)
	for _, c := range evict {
		s.evict(c)
		delta.Evicted = append(delta.Evicted, c)
	}

	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			tier := s.tierFor(max(abs(dx), abs(dz)))
			for y := 0; y < s.cfg.VerticalChunks; y++ {
				c := world.ChunkCoord{X: s.last.X + dx, Y: y, Z: s.last.Z + dz}
				rec := s.grid.Get(c)
				if rec == nil {
					s.grid.Insert(&ChunkRecord{Coord: c, Resolution: tier, State: StateRequested})
					s.schedule(s.grid.Get(c), workGenerate)
					delta.Requested = append(delta.Requested, c)
					continue
				}
				if rec.Resolution != tier {
					s.retier(rec, tier, delta)
				}
			}
		}
	}
	if len(delta.Requested) > 0 || len(delta.Evicted) > 0 {
		s.log.Debug("replanned", "center", s.last.String(), "requested", len(delta.Requested), "evicted", len(delta.Evicted), "loaded", s.grid.Len())
	}
}

func (s *Streamer) evict(c world.ChunkCoord) {
	rec := s.grid.Remove(c)
	if rec == nil {
		return
	}
	if rec.release() {
		s.inFlight--
	}
	delete(s.pending, c)
}

// retier moves rec to a new target tier, keeping its active mesh servable
// until the replacement is ready.
func (s *Streamer) retier(rec *ChunkRecord, tier world.Resolution, delta *FrameDelta) {
	if rec.ticket != nil {
		rec.ticket.cancel()
		rec.ticket = nil
		s.inFlight--
	}
	delete(s.pending, rec.Coord)
	rec.work = workNone
	rec.Resolution = tier
	if rec.Voxels != nil && rec.Voxels.Resolution != tier {
		rec.Voxels = nil
	}

	switch {
	case rec.Mesh != nil && rec.Mesh.Resolution == tier:
		// flipped back before the other tier finished
		rec.State = StateReady
	case rec.Previous != nil && rec.Previous.Resolution == tier:
		rec.Mesh, rec.Previous = rec.Previous, rec.Mesh
		rec.State = StateReady
		s.stats.Swapped++
		delta.Published = append(delta.Published, MeshUpdate{Coord: rec.Coord, Mesh: rec.Mesh, Previous: rec.Previous})
	case rec.Voxels != nil:
		s.schedule(rec, workMesh)
	case rec.Retained(tier) != nil:
		s.schedule(rec, workMesh)
	default:
		s.schedule(rec, workGenerate)
	}
}

func (s *Streamer) schedule(rec *ChunkRecord, w workKind) {
	rec.work = w
	s.pending[rec.Coord] = struct{}{}
}

// requeueFailed puts last update's failures back on the dispatch queue.
func (s *Streamer) requeueFailed() {
	if len(s.retry) == 0 {
		return
	}
	for _, e := range s.retry {
		rec := s.grid.Get(e.coord)
		if rec == nil || rec.ticket != nil || rec.work != workNone {
			continue
		}
		s.schedule(rec, e.work)
	}
	s.retry = s.retry[:0]
}

func (s *Streamer) applyResults(delta *FrameDelta) {
	s.results = s.pool.drain(s.results[:0])
	for _, r := range s.results {
		s.apply(r, delta)
	}
	clear(s.results)
}

func (s *Streamer) apply(r result, delta *FrameDelta) {
	rec := s.grid.Get(r.job.coord)
	if rec == nil || rec.ticket != r.job.ticket {
		s.stats.Discarded++
		return
	}
	rec.ticket = nil
	s.inFlight--

	if r.err != nil {
		rec.failures++
		s.stats.Failed++
		retry := r.job.kind
		if r.job.kind == workMesh && r.job.voxels == nil {
			// retained voxels are unusable; start over
			delete(rec.retained, r.job.res)
			retry = workGenerate
		}
		s.log.Warn("chunk job failed", "coord", rec.Coord.String(), "tier", r.job.res.String(), "job", r.job.kind.String(), "attempt", rec.failures, "err", r.err)
		s.retry = append(s.retry, retryEntry{coord: rec.Coord, work: retry})
		return
	}

	switch r.job.kind {
	case workGenerate:
		s.stats.Generated++
		rec.Voxels = r.voxels
		rec.State = StateMeshing
		s.schedule(rec, workMesh)
	case workMesh:
		s.stats.Meshed++
		rec.Voxels = nil
		rec.retain(r.packed)
		rec.Previous = rec.Mesh
		rec.Mesh = r.mesh
		rec.State = StateReady
		rec.failures = 0
		delta.Published = append(delta.Published, MeshUpdate{Coord: rec.Coord, Mesh: rec.Mesh, Previous: rec.Previous})
	}
}

// dispatch submits pending work nearest-first until the queue is full.
func (s *Streamer) dispatch() {
	if len(s.pending) == 0 {
		return
	}
	defer profiling.Track("streaming.dispatch")()

	order := make([]world.ChunkCoord, 0, len(s.pending))
	for c := range s.pending {
		order = append(order, c)
	}
	slices.SortFunc(order, func(a, b world.ChunkCoord) int {
		if d := cmp.Compare(s.distance(a), s.distance(b)); d != 0 {
			return d
		}
		return compareCoords(a, b)
	})

	for _, c := range order {
		rec := s.grid.Get(c)
		if rec == nil || rec.work == workNone {
			delete(s.pending, c)
			continue
		}
		j := job{kind: rec.work, coord: c, res: rec.Resolution, retain: s.cfg.RetainVoxels}
		if j.kind == workMesh {
			j.voxels = rec.Voxels
			if j.voxels == nil {
				j.packed = rec.Retained(rec.Resolution)
			}
		}
		s.nextTicket++
		j.ticket = &ticket{id: s.nextTicket}
		if !s.pool.submit(j) {
			// queue full: the rest waits for a later frame
			return
		}
		rec.ticket = j.ticket
		rec.work = workNone
		if j.kind == workGenerate {
			rec.State = StateGenerating
		} else {
			rec.State = StateMeshing
		}
		s.inFlight++
		delete(s.pending, c)
	}
}

// Reset evicts every chunk and forgets the player position, as on a return
// to the title screen. The worker pool keeps running.
func (s *Streamer) Reset() FrameDelta {
	var delta FrameDelta
	s.grid.Each(func(rec *ChunkRecord) {
		rec.release()
		delta.Evicted = append(delta.Evicted, rec.Coord)
	})
	sortCoords(delta.Evicted)
	s.grid.Clear()
	clear(s.pending)
	s.retry = s.retry[:0]
	s.inFlight = 0
	s.hasLast = false
	s.last = world.ChunkCoord{}
	s.log.Info("streamer reset", "evicted", len(delta.Evicted))
	return delta
}

// Close stops the worker pool. Update is a no-op afterwards.
func (s *Streamer) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.pool.shutdown()
	s.log.Debug("streamer closed")
}

func compareCoords(a, b world.ChunkCoord) int {
	if d := cmp.Compare(a.X, b.X); d != 0 {
		return d
	}
	if d := cmp.Compare(a.Z, b.Z); d != 0 {
		return d
	}
	return cmp.Compare(a.Y, b.Y)
}

func sortCoords(cs []world.ChunkCoord) {
	slices.SortFunc(cs, compareCoords)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
