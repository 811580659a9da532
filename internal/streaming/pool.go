package streaming

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"voxelterrain/internal/meshing"
	"voxelterrain/internal/world"
)

// job is plain data in; workers never touch the grid.
type job struct {
	kind   workKind
	coord  world.ChunkCoord
	res    world.Resolution
	voxels *world.VoxelChunk
	packed *world.PackedChunk
	retain bool
	ticket *ticket
}

// result is plain data out, applied by the main thread.
type result struct {
	job    job
	voxels *world.VoxelChunk
	packed *world.PackedChunk
	mesh   *meshing.MeshBuffer
	err    error
}

// jobRunner executes one job to completion.
type jobRunner interface {
	run(j job) result
}

// pipeline is the production runner.
type pipeline struct {
	gen    *world.Generator
	mesher *meshing.Mesher
}

func (p pipeline) run(j job) result {
	switch j.kind {
	case workGenerate:
		return result{job: j, voxels: p.gen.Generate(j.coord, j.res)}
	case workMesh:
		c := j.voxels
		if c == nil {
			var err error
			if c, err = j.packed.Unpack(); err != nil {
				return result{job: j, err: err}
			}
		}
		out := result{job: j, mesh: p.mesher.Build(c), packed: j.packed}
		// the job owns c until its result is applied
		c.Meshed = true
		c.ClearDirty()
		if j.retain && out.packed == nil {
			packed, err := world.Pack(c)
			if err != nil {
				return result{job: j, err: err}
			}
			out.packed = packed
		}
		return out
	}
	panic(fmt.Sprintf("streaming: unknown job kind %d", j.kind))
}

// workerPool manages goroutines for chunk generation and meshing.
type workerPool struct {
	jobQueue chan job
	results  chan result
	workers  int
	runner   jobRunner
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// jobs skipped or dropped because their ticket was cancelled
	dropped atomic.Int64
}

func newWorkerPool(workers, queueSize int, runner jobRunner) *workerPool {
	ctx, cancel := context.WithCancel(context.Background())
	pool := &workerPool{
		jobQueue: make(chan job, queueSize),
		results:  make(chan result, queueSize+workers),
		workers:  workers,
		runner:   runner,
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	return pool
}

// submit queues a job without blocking.
// Returns true if job was submitted successfully, false if queue is full
func (p *workerPool) submit(j job) bool {
	select {
	case p.jobQueue <- j:
		return true
	default:
		return false
	}
}

func (p *workerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case j, ok := <-p.jobQueue:
			if !ok {
				return
			}
			if j.ticket.isCancelled() {
				p.dropped.Add(1)
				continue
			}
			r := p.runner.run(j)
			if j.ticket.isCancelled() {
				p.dropped.Add(1)
				continue
			}
			select {
			case p.results <- r:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// drain returns every completed result without blocking.
func (p *workerPool) drain(dst []result) []result {
	for {
		select {
		case r := <-p.results:
			dst = append(dst, r)
		default:
			return dst
		}
	}
}

// shutdown stops the workers and waits for running jobs to finish.
func (p *workerPool) shutdown() {
	p.cancel()
	close(p.jobQueue)
	p.wg.Wait()
}

func (p *workerPool) queueLength() int {
	return len(p.jobQueue)
}
