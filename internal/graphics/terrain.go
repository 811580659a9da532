// Package graphics draws streamed terrain meshes with OpenGL 4.1.
package graphics

import (
	"time"

	"voxelterrain/internal/meshing"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/streaming"
	"voxelterrain/internal/view"
	"voxelterrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// gpuMesh is one uploaded MeshBuffer.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	res           world.Resolution
	origin        mgl32.Vec3
	model         mgl32.Mat4
}

// chunkDraw is what is on screen for one coordinate: the current mesh and,
// during a tier change, the mesh it replaced.
type chunkDraw struct {
	current *gpuMesh
	fading  *gpuMesh
	fade    crossFade
}

// RenderStats describes the last Render call.
type RenderStats struct {
	Chunks    int
	Drawn     int
	Culled    int
	Fading    int
	Triangles int
}

// TerrainRenderer owns the GPU copies of published chunk meshes. All methods
// must run on the thread that owns the GL context.
type TerrainRenderer struct {
	shader   *Shader
	chunks   map[world.ChunkCoord]*chunkDraw
	fadeTime time.Duration
	stats    RenderStats

	SkyColor mgl32.Vec3
	LightDir mgl32.Vec3
	FogStart float32
	FogEnd   float32

	// Wireframe draws polygon outlines only.
	Wireframe bool

	now     func() time.Time
	upload  func(*meshing.MeshBuffer) *gpuMesh
	release func(*gpuMesh)
}

// NewTerrainRenderer compiles the terrain program and configures depth
// testing and back-face culling. fade is the LOD cross-fade duration.
func NewTerrainRenderer(fade time.Duration) (*TerrainRenderer, error) {
	shader, err := NewShader(terrainVertexShader, terrainFragmentShader)
	if err != nil {
		return nil, err
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	r := newTerrainRenderer(fade)
	r.shader = shader
	r.upload = uploadMesh
	r.release = releaseMesh
	return r, nil
}

func newTerrainRenderer(fade time.Duration) *TerrainRenderer {
	return &TerrainRenderer{
		chunks:   make(map[world.ChunkCoord]*chunkDraw),
		fadeTime: fade,
		SkyColor: mgl32.Vec3{0.53, 0.81, 0.92},
		LightDir: mgl32.Vec3{0.3, 1.0, 0.3}.Normalize(),
		FogStart: 128,
		FogEnd:   256,
		now:      time.Now,
	}
}

func (r *TerrainRenderer) Stats() RenderStats {
	return r.stats
}

// Len returns the number of coordinates with something to draw.
func (r *TerrainRenderer) Len() int {
	return len(r.chunks)
}

// Apply uploads published meshes and frees evicted ones.
func (r *TerrainRenderer) Apply(delta streaming.FrameDelta) {
	defer profiling.Track("graphics.Apply")()
	for _, c := range delta.Evicted {
		r.drop(c)
	}
	for _, u := range delta.Published {
		var m *gpuMesh
		if !u.Mesh.Empty() {
			m = r.upload(u.Mesh)
		}
		d := r.chunks[u.Coord]
		if d == nil {
			if m == nil {
				continue
			}
			d = &chunkDraw{}
			r.chunks[u.Coord] = d
		}
		if d.fading != nil {
			r.release(d.fading)
			d.fading = nil
		}
		if d.current != nil {
			if u.Previous != nil && r.fadeTime > 0 {
				d.fading = d.current
				d.fade = crossFade{start: r.now(), duration: r.fadeTime}
			} else {
				r.release(d.current)
			}
		}
		d.current = m
		if d.current == nil && d.fading == nil {
			delete(r.chunks, u.Coord)
		}
	}
}

func (r *TerrainRenderer) drop(c world.ChunkCoord) {
	d := r.chunks[c]
	if d == nil {
		return
	}
	if d.current != nil {
		r.release(d.current)
	}
	if d.fading != nil {
		r.release(d.fading)
	}
	delete(r.chunks, c)
}

// retire frees fading meshes whose cross-fade has finished.
func (r *TerrainRenderer) retire(now time.Time) {
	for c, d := range r.chunks {
		if d.fading == nil || !d.fade.done(now) {
			continue
		}
		r.release(d.fading)
		d.fading = nil
		if d.current == nil {
			delete(r.chunks, c)
		}
	}
}

// BeginFrame clears the colour and depth buffers to the sky colour.
func (r *TerrainRenderer) BeginFrame() {
	gl.ClearColor(r.SkyColor.X(), r.SkyColor.Y(), r.SkyColor.Z(), 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// SetFogRange fades terrain into the sky between 60% and 100% of distance.
func (r *TerrainRenderer) SetFogRange(distance float32) {
	r.FogEnd = distance
	r.FogStart = distance * 0.6
}

// Render draws every chunk that intersects the camera frustum.
func (r *TerrainRenderer) Render(cam *view.FlyCamera) {
	defer profiling.Track("graphics.Render")()
	now := r.now()
	r.retire(now)

	viewMat := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	frustum := view.NewFrustum(proj.Mul4(viewMat))

	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.shader.Use()
	r.shader.SetMat4("proj", proj)
	r.shader.SetMat4("view", viewMat)
	r.shader.SetVec3("lightDir", r.LightDir)
	r.shader.SetVec3("fogColor", r.SkyColor)
	r.shader.SetFloat("fogStart", r.FogStart)
	r.shader.SetFloat("fogEnd", max(r.FogEnd, r.FogStart+1))

	st := RenderStats{Chunks: len(r.chunks)}
	for _, d := range r.chunks {
		anchor := d.current
		if anchor == nil {
			anchor = d.fading
		}
		if !frustum.IntersectsCube(anchor.origin, world.Size) {
			st.Culled++
			continue
		}
		p := float32(1)
		if d.fading != nil {
			p = d.fade.progress(now)
			st.Fading++
			st.Triangles += r.draw(d.fading, p, true)
		}
		if d.current != nil {
			st.Triangles += r.draw(d.current, p, false)
		}
		st.Drawn++
	}
	gl.BindVertexArray(0)
	r.stats = st
}

func (r *TerrainRenderer) draw(m *gpuMesh, fade float32, invert bool) int {
	r.shader.SetMat4("model", m.model)
	r.shader.SetFloat("fade", fade)
	r.shader.SetBool("fadeInvert", invert)
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	return int(m.count) / 3
}

// Clear frees every uploaded mesh, e.g. when returning to the title screen.
func (r *TerrainRenderer) Clear() {
	for c := range r.chunks {
		r.drop(c)
	}
}

// Dispose frees all GPU resources including the program.
func (r *TerrainRenderer) Dispose() {
	r.Clear()
	if r.shader != nil {
		r.shader.Delete()
	}
}

func uploadMesh(mb *meshing.MeshBuffer) *gpuMesh {
	data := mb.Interleaved()
	m := &gpuMesh{
		count:  int32(len(mb.Indices)),
		res:    mb.Resolution,
		origin: mb.Coord.OriginVec(),
		model:  mb.Transform(),
	}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.GenBuffers(1, &m.ebo)

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mb.Indices)*4, gl.Ptr(mb.Indices), gl.STATIC_DRAW)

	stride := int32(meshing.VertexStride * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)
	gl.BindVertexArray(0)
	return m
}

func releaseMesh(m *gpuMesh) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
}
