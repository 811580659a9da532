// Package noise evaluates the terrain noise field. Every function takes
// absolute world coordinates; chunk-local coordinates would break continuity
// across chunk boundaries.
package noise

import (
	"math"

	"voxelterrain/internal/config"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Channel selects an independent scatter stream.
type Channel uint8

const (
	ChannelTree Channel = iota
	ChannelTreeOffsetX
	ChannelTreeOffsetZ
	ChannelTreeHeight
	ChannelForest
	ChannelBoulder
	ChannelBoulderOffsetX
	ChannelBoulderOffsetZ
	ChannelBoulderSize
	ChannelBoulderShape
)

const (
	persistence = 0.5
	lacunarity  = 2.0
)

type layer struct {
	src       opensimplex.Noise
	frequency float64
	amplitude float64
	octaves   int
}

// Field is immutable after New and safe for concurrent use.
type Field struct {
	base    float64
	layers  []layer
	caves   opensimplex.Noise
	cliffs  *perlin.Perlin
	cfg     config.NoiseConfig
	scatter uint64
	maxH    float64
}

// New builds the noise sources for cfg. cfg is expected to have passed Validate.
func New(cfg config.NoiseConfig) *Field {
	f := &Field{
		base:    cfg.BaseHeight,
		cfg:     cfg,
		scatter: uint64(DeriveSeed(cfg.Seed, cfg.Scatter.Seed)),
		maxH:    cfg.BaseHeight,
	}
	f.cfg.Layers = append([]config.Layer(nil), cfg.Layers...)
	for _, l := range cfg.Layers {
		f.layers = append(f.layers, layer{
			src:       opensimplex.New(DeriveSeed(cfg.Seed, l.Seed)),
			frequency: l.Frequency,
			amplitude: l.Amplitude,
			octaves:   max(l.Octaves, 1),
		})
		f.maxH += l.Amplitude
	}
	f.caves = opensimplex.New(DeriveSeed(cfg.Seed, cfg.Caves.Seed))
	f.cliffs = perlin.NewPerlin(2, 2, 3, DeriveSeed(cfg.Seed, cfg.Cliffs.Seed))
	return f
}

// Config returns the configuration the field was built from.
func (f *Field) Config() config.NoiseConfig {
	return f.cfg
}

// Height is the terrain surface height at a world column.
func (f *Field) Height(x, z float64) float64 {
	h := f.base
	for _, l := range f.layers {
		h += l.amplitude * fractal2(l.src, x, z, l.octaves, l.frequency)
	}
	return h
}

// MaxHeight bounds Height from above. Used to skip chunks that cannot
// contain terrain.
func (f *Field) MaxHeight() float64 {
	return f.maxH
}

// MinHeight bounds Height from below.
func (f *Field) MinHeight() float64 {
	lo := f.base
	for _, l := range f.layers {
		lo -= l.amplitude
	}
	return lo
}

// Density is 3D cave density in [-1,1]. VerticalSquash scales the y frequency.
func (f *Field) Density(x, y, z float64) float64 {
	c := f.cfg.Caves
	return f.caves.Eval3(x*c.Frequency, y*c.Frequency*c.VerticalSquash, z*c.Frequency)
}

// Ridge is ridged Perlin noise in [0,1], peaking along the zero set of the
// underlying noise.
func (f *Field) Ridge(x, y, z float64) float64 {
	c := f.cfg.Cliffs
	n := f.cliffs.Noise3D(x*c.Frequency, y*c.Frequency, z*c.Frequency)
	r := 1 - math.Abs(n)
	if r < 0 {
		return 0
	}
	return r
}

// Scatter is white noise in [0,1) for an integer world cell.
func (f *Field) Scatter(x, z int, ch Channel) float64 {
	return unit(hash2(int64(x), int64(z), f.scatter+uint64(ch)*golden))
}

// Scatter3 is the 3D variant of Scatter.
func (f *Field) Scatter3(x, y, z int, ch Channel) float64 {
	return unit(hash3(int64(x), int64(y), int64(z), f.scatter+uint64(ch)*golden))
}

// Cluster is smooth value noise in [0,1] used to group features into patches.
func (f *Field) Cluster(x, z float64, ch Channel) float64 {
	freq := f.cfg.Scatter.ForestFrequency
	return octaveValue2D(x*freq, z*freq, f.scatter^uint64(ch)<<32, 3, persistence, lacunarity)
}

// fractal2 is normalised so the result stays in [-1,1] for any octave count.
func fractal2(src opensimplex.Noise, x, z float64, octaves int, frequency float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for range octaves {
		total += src.Eval2(x*frequency, z*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	return total / maxVal
}
