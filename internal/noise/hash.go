package noise

import "math"

// Integer hashing for lattice and scatter values. SplitMix64 finaliser, stable
// across runs and platforms for the same inputs.

const golden = 0x9E3779B97F4A7C15

func mix64(v uint64) uint64 {
	v += golden
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func hash2(x, z int64, seed uint64) uint64 {
	return mix64(uint64(x)*golden + uint64(z)*0x517CC1B727220A95 + seed)
}

func hash3(x, y, z int64, seed uint64) uint64 {
	return mix64(uint64(x)*golden + uint64(y)*0x517CC1B727220A95 + uint64(z)*0x6C62272E07BB0142 + seed)
}

// DeriveSeed combines a world seed with a per-purpose seed.
func DeriveSeed(world, sub int64) int64 {
	return int64(mix64(uint64(world)*golden ^ mix64(uint64(sub))))
}

// unit maps a hash to [0,1).
func unit(h uint64) float64 {
	return float64(h>>11) * (1.0 / (1 << 53))
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func valueNoise2D(x, z float64, seed uint64) float64 {
	x0 := math.Floor(x)
	z0 := math.Floor(z)
	fx := fade(x - x0)
	fz := fade(z - z0)
	ix, iz := int64(x0), int64(z0)

	v00 := unit(hash2(ix, iz, seed))
	v10 := unit(hash2(ix+1, iz, seed))
	v01 := unit(hash2(ix, iz+1, seed))
	v11 := unit(hash2(ix+1, iz+1, seed))
	return lerp(lerp(v00, v10, fx), lerp(v01, v11, fx), fz)
}

// octaveValue2D is normalised fractal value noise in [0,1].
func octaveValue2D(x, z float64, seed uint64, octaves int, persistence, lacunarity float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := range octaves {
		sum += valueNoise2D(x*frequency, z*frequency, seed+uint64(i*131)) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
