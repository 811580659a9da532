package config

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrInvalidConfig is wrapped by every rejection from Validate and Load.
var ErrInvalidConfig = errors.New("invalid config")

// Layer is one 2D height noise layer.
type Layer struct {
	Seed      int64   `yaml:"seed" json:"seed"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Octaves   int     `yaml:"octaves,omitempty" json:"octaves,omitempty"`
}

// CaveConfig controls 3D cave carving below the height surface.
type CaveConfig struct {
	Enabled        bool    `yaml:"enabled" json:"enabled"`
	Seed           int64   `yaml:"seed" json:"seed"`
	Frequency      float64 `yaml:"frequency" json:"frequency"`
	VerticalSquash float64 `yaml:"vertical_squash" json:"vertical_squash"`
	Threshold      float64 `yaml:"threshold" json:"threshold"`
}

// CliffConfig controls ridged noise added above the height surface.
type CliffConfig struct {
	Enabled   bool    `yaml:"enabled" json:"enabled"`
	Seed      int64   `yaml:"seed" json:"seed"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// ScatterConfig controls tree and boulder placement.
type ScatterConfig struct {
	Seed            int64   `yaml:"seed" json:"seed"`
	TreeCell        int     `yaml:"tree_cell" json:"tree_cell"`
	TreeChance      float64 `yaml:"tree_chance" json:"tree_chance"`
	ForestFrequency float64 `yaml:"forest_frequency" json:"forest_frequency"`
	BoulderCell     int     `yaml:"boulder_cell" json:"boulder_cell"`
	BoulderChance   float64 `yaml:"boulder_chance" json:"boulder_chance"`
}

// NoiseConfig is everything terrain generation reads. It must not change after
// the world starts.
type NoiseConfig struct {
	Seed         int64         `yaml:"seed" json:"seed"`
	BaseHeight   float64       `yaml:"base_height" json:"base_height"`
	SubsoilDepth int           `yaml:"subsoil_depth" json:"subsoil_depth"`
	Layers       []Layer       `yaml:"layers" json:"layers"`
	Caves        CaveConfig    `yaml:"caves" json:"caves"`
	Cliffs       CliffConfig   `yaml:"cliffs" json:"cliffs"`
	Scatter      ScatterConfig `yaml:"scatter" json:"scatter"`
}

// StreamConfig holds chunk streaming tunables. Radii are in chunks.
type StreamConfig struct {
	ViewRadius       int  `yaml:"view_radius" json:"view_radius"`
	FullDetailRadius int  `yaml:"full_detail_radius" json:"full_detail_radius"`
	HalfDetailRadius int  `yaml:"half_detail_radius" json:"half_detail_radius"`
	VerticalChunks   int  `yaml:"vertical_chunks" json:"vertical_chunks"`
	Workers          int  `yaml:"workers" json:"workers"`
	QueueSize        int  `yaml:"queue_size" json:"queue_size"`
	RetainVoxels     bool `yaml:"retain_voxels" json:"retain_voxels"`
	CrossFadeMillis  int  `yaml:"cross_fade_ms" json:"cross_fade_ms"`
}

// Settings is the on-disk settings document.
type Settings struct {
	Noise  NoiseConfig  `yaml:"noise" json:"noise"`
	Stream StreamConfig `yaml:"stream" json:"stream"`

	// LegacyLayers accepts the flat {"layers": [...]} settings.json format.
	LegacyLayers []Layer `yaml:"layers,omitempty" json:"layers,omitempty"`
}

// Limits applied by Validate.
const (
	MaxViewRadius     = 32
	MaxVerticalChunks = 16
	MaxOctaves        = 8
	MinTreeCell       = 6
	MinBoulderCell    = 6
)

// DefaultLayers are the five classic height layers.
func DefaultLayers() []Layer {
	return []Layer{
		{Seed: 0, Frequency: 0.01, Amplitude: 10, Octaves: 1},
		{Seed: 1, Frequency: 0.03, Amplitude: 5, Octaves: 1},
		{Seed: 2, Frequency: 0.08, Amplitude: 2, Octaves: 1},
		{Seed: 4, Frequency: 0.16, Amplitude: 1, Octaves: 1},
		{Seed: 5, Frequency: 0.32, Amplitude: 0.5, Octaves: 1},
	}
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		Noise: NoiseConfig{
			Seed:         0,
			BaseHeight:   40,
			SubsoilDepth: 3,
			Layers:       DefaultLayers(),
			Caves: CaveConfig{
				Enabled:        true,
				Seed:           2,
				Frequency:      0.04,
				VerticalSquash: 1.5,
				Threshold:      0.55,
			},
			Cliffs: CliffConfig{
				Enabled:   true,
				Seed:      3,
				Frequency: 0.02,
				Amplitude: 30,
				Threshold: 0.8,
			},
			Scatter: ScatterConfig{
				Seed:            7,
				TreeCell:        8,
				TreeChance:      0.45,
				ForestFrequency: 0.006,
				BoulderCell:     12,
				BoulderChance:   0.2,
			},
		},
		Stream: StreamConfig{
			ViewRadius:       8,
			FullDetailRadius: 2,
			HalfDetailRadius: 5,
			VerticalChunks:   8,
			Workers:          0,
			QueueSize:        256,
			RetainVoxels:     false,
			CrossFadeMillis:  400,
		},
	}
}

// Validate rejects parameters generation cannot honour and clamps the rest
// into range. All rejections are joined into one error.
func (s *Settings) Validate() error {
	if len(s.LegacyLayers) > 0 {
		s.Noise.Layers = s.LegacyLayers
		s.LegacyLayers = nil
	}
	return errors.Join(s.Noise.validate(), s.Stream.normalize())
}

func (n *NoiseConfig) validate() error {
	var errs []error
	if len(n.Layers) == 0 {
		errs = append(errs, fmt.Errorf("noise.layers: at least one layer required: %w", ErrInvalidConfig))
	}
	for i := range n.Layers {
		l := &n.Layers[i]
		if l.Frequency <= 0 {
			errs = append(errs, fmt.Errorf("noise.layers[%d].frequency %v must be > 0: %w", i, l.Frequency, ErrInvalidConfig))
		}
		if l.Amplitude < 0 {
			errs = append(errs, fmt.Errorf("noise.layers[%d].amplitude %v must be >= 0: %w", i, l.Amplitude, ErrInvalidConfig))
		}
		l.Octaves = clamp(l.Octaves, 1, MaxOctaves)
	}
	if n.Caves.Enabled && n.Caves.Frequency <= 0 {
		errs = append(errs, fmt.Errorf("noise.caves.frequency %v must be > 0: %w", n.Caves.Frequency, ErrInvalidConfig))
	}
	if n.Caves.VerticalSquash <= 0 {
		n.Caves.VerticalSquash = 1
	}
	if n.Cliffs.Enabled {
		if n.Cliffs.Frequency <= 0 {
			errs = append(errs, fmt.Errorf("noise.cliffs.frequency %v must be > 0: %w", n.Cliffs.Frequency, ErrInvalidConfig))
		}
		if n.Cliffs.Amplitude <= 0 {
			errs = append(errs, fmt.Errorf("noise.cliffs.amplitude %v must be > 0: %w", n.Cliffs.Amplitude, ErrInvalidConfig))
		}
	}
	if n.Scatter.ForestFrequency <= 0 {
		errs = append(errs, fmt.Errorf("noise.scatter.forest_frequency %v must be > 0: %w", n.Scatter.ForestFrequency, ErrInvalidConfig))
	}
	n.SubsoilDepth = clamp(n.SubsoilDepth, 0, 16)
	n.Scatter.TreeCell = max(n.Scatter.TreeCell, MinTreeCell)
	n.Scatter.BoulderCell = max(n.Scatter.BoulderCell, MinBoulderCell)
	n.Scatter.TreeChance = clampf(n.Scatter.TreeChance, 0, 1)
	n.Scatter.BoulderChance = clampf(n.Scatter.BoulderChance, 0, 1)
	return errors.Join(errs...)
}

func (c *StreamConfig) normalize() error {
	if c.ViewRadius < 1 {
		return fmt.Errorf("stream.view_radius %d must be >= 1: %w", c.ViewRadius, ErrInvalidConfig)
	}
	c.ViewRadius = min(c.ViewRadius, MaxViewRadius)
	// detail radii may exceed view_radius; the streamer caps them per frame
	c.FullDetailRadius = clamp(c.FullDetailRadius, 0, MaxViewRadius)
	c.HalfDetailRadius = clamp(c.HalfDetailRadius, c.FullDetailRadius, MaxViewRadius)
	c.VerticalChunks = clamp(c.VerticalChunks, 1, MaxVerticalChunks)
	if c.Workers <= 0 {
		c.Workers = max(runtime.NumCPU()-1, 1)
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	c.CrossFadeMillis = max(c.CrossFadeMillis, 0)
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
