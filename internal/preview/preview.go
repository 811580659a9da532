// Package preview renders a top-down surface map of generated terrain
// without a GL context.
package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"runtime"

	"voxelterrain/internal/profiling"
	"voxelterrain/internal/world"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// NoSurface marks a column with no solid sample in generated range.
const NoSurface = math.MinInt32

type Options struct {
	CenterX, CenterZ int // chunk coordinates
	Radius           int // chunks around the centre, square
	Resolution       world.Resolution
	Workers          int
}

// Map is the topmost solid sample of every column in a square of chunks.
// Samples are laid out row-major with X along rows.
type Map struct {
	OriginX, OriginZ int // world position of sample (0, 0)
	Step             int
	Width            int
	Heights          []int
	Types            []world.BlockType
}

// Build generates every chunk it needs, top down per chunk column, and
// stops descending once each column has found its surface.
func Build(ctx context.Context, gen *world.Generator, opt Options) (*Map, error) {
	defer profiling.Track("preview.Build")()
	if opt.Radius < 0 {
		return nil, fmt.Errorf("preview: negative radius %d", opt.Radius)
	}
	if opt.Workers <= 0 {
		opt.Workers = runtime.NumCPU()
	}
	res := opt.Resolution
	dim := res.Dim()
	side := 2*opt.Radius + 1
	m := &Map{
		OriginX: (opt.CenterX - opt.Radius) * world.Size,
		OriginZ: (opt.CenterZ - opt.Radius) * world.Size,
		Step:    res.Step(),
		Width:   side * dim,
	}
	m.Heights = make([]int, m.Width*m.Width)
	m.Types = make([]world.BlockType, m.Width*m.Width)
	for i := range m.Heights {
		m.Heights[i] = NoSurface
	}

	topChunk := gen.MaxY() / world.Size
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.Workers)
	for cx := 0; cx < side; cx++ {
		for cz := 0; cz < side; cz++ {
			g.Go(func() error {
				coord := world.ChunkCoord{X: opt.CenterX - opt.Radius + cx, Z: opt.CenterZ - opt.Radius + cz}
				// columns are disjoint, so writes never overlap
				return m.fillColumn(ctx, gen, coord, topChunk, res, cx*dim, cz*dim)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map) fillColumn(ctx context.Context, gen *world.Generator, coord world.ChunkCoord, top int, res world.Resolution, px, pz int) error {
	dim := res.Dim()
	s := res.Step()
	remaining := dim * dim
	for cy := top; cy >= 0 && remaining > 0; cy-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		coord.Y = cy
		c := gen.Generate(coord, res)
		if c.IsEmpty() {
			continue
		}
		_, y0, _ := coord.Origin()
		for i := 0; i < dim; i++ {
			for k := 0; k < dim; k++ {
				idx := (pz+k)*m.Width + px + i
				if m.Heights[idx] != NoSurface {
					continue
				}
				for j := dim - 1; j >= 0; j-- {
					if b := c.Get(i, j, k); b.Solid() {
						m.Heights[idx] = y0 + j*s
						m.Types[idx] = b
						remaining--
						break
					}
				}
			}
		}
	}
	return nil
}

// Summary is a count of surface types and the height range of a Map.
type Summary struct {
	Columns    int
	Missing    int
	MinHeight  int
	MaxHeight  int
	TypeCounts map[world.BlockType]int
}

func (m *Map) Summary() Summary {
	s := Summary{
		Columns:    len(m.Heights),
		MinHeight:  math.MaxInt32,
		MaxHeight:  math.MinInt32,
		TypeCounts: make(map[world.BlockType]int),
	}
	for i, h := range m.Heights {
		if h == NoSurface {
			s.Missing++
			continue
		}
		s.MinHeight = min(s.MinHeight, h)
		s.MaxHeight = max(s.MaxHeight, h)
		s.TypeCounts[m.Types[i]]++
	}
	if s.Missing == s.Columns {
		s.MinHeight, s.MaxHeight = 0, 0
	}
	return s
}

// Image shades each sample by block colour and relative height, scaled so
// that one block covers scale pixels whatever the sample step.
func (m *Map) Image(scale int) *image.RGBA {
	scale = max(scale, 1)
	src := image.NewRGBA(image.Rect(0, 0, m.Width, m.Width))
	sum := m.Summary()
	span := float32(max(sum.MaxHeight-sum.MinHeight, 1))
	for z := 0; z < m.Width; z++ {
		for x := 0; x < m.Width; x++ {
			idx := z*m.Width + x
			h := m.Heights[idx]
			if h == NoSurface {
				src.SetRGBA(x, z, color.RGBA{A: 255})
				continue
			}
			shade := 0.55 + 0.45*float32(h-sum.MinHeight)/span
			c := m.Types[idx].Color()
			src.SetRGBA(x, z, color.RGBA{
				R: channel(c[0] * shade),
				G: channel(c[1] * shade),
				B: channel(c[2] * shade),
				A: 255,
			})
		}
	}
	size := m.Width * m.Step * scale
	if size == m.Width {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func channel(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("preview: encode png: %w", err)
	}
	return nil
}
