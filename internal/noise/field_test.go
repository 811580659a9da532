package noise

import (
	"math"
	"sync"
	"testing"

	"voxelterrain/internal/config"
)

func singleLayer(seed int64) config.NoiseConfig {
	cfg := config.Default().Noise
	cfg.Seed = seed
	cfg.Layers = []config.Layer{{Seed: 0, Frequency: 0.013, Amplitude: 12, Octaves: 1}}
	return cfg
}

func TestHeightReproducibleAcrossInstances(t *testing.T) {
	a := New(singleLayer(42))
	b := New(singleLayer(42))
	if a.Height(0, 0) != b.Height(0, 0) {
		t.Fatalf("height(0,0) differs: %v vs %v", a.Height(0, 0), b.Height(0, 0))
	}
	for _, p := range [][2]float64{{17, -3}, {-1000.5, 250.25}, {1e5, 1e5}} {
		if a.Height(p[0], p[1]) != b.Height(p[0], p[1]) {
			t.Errorf("height%v differs between instances", p)
		}
	}
}

func TestHeightDependsOnSeed(t *testing.T) {
	a := New(singleLayer(42))
	b := New(singleLayer(43))
	same := 0
	for x := 0; x < 64; x++ {
		if a.Height(float64(x)*7.3, 11) == b.Height(float64(x)*7.3, 11) {
			same++
		}
	}
	if same == 64 {
		t.Fatal("different seeds produced identical height fields")
	}
}

func TestHeightWithinBounds(t *testing.T) {
	f := New(config.Default().Noise)
	lo, hi := f.MinHeight(), f.MaxHeight()
	for x := -200; x < 200; x += 3 {
		for z := -200; z < 200; z += 5 {
			h := f.Height(float64(x), float64(z))
			if h < lo-1e-9 || h > hi+1e-9 {
				t.Fatalf("height(%d,%d)=%v outside [%v,%v]", x, z, h, lo, hi)
			}
		}
	}
}

func TestConcurrentEvaluationIsDeterministic(t *testing.T) {
	f := New(config.Default().Noise)
	want := make([]float64, 256)
	for i := range want {
		x := float64(i) * 1.7
		want[i] = f.Height(x, -x) + f.Density(x, 12, x) + f.Ridge(x, 40, -x)
	}
	var wg sync.WaitGroup
	errs := make(chan int, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range want {
				x := float64(i) * 1.7
				if f.Height(x, -x)+f.Density(x, 12, x)+f.Ridge(x, 40, -x) != want[i] {
					errs <- i
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for i := range errs {
		t.Errorf("sample %d differed under concurrency", i)
	}
}

func TestScatterRangeAndChannels(t *testing.T) {
	f := New(config.Default().Noise)
	differ := false
	for x := -50; x < 50; x++ {
		for z := -50; z < 50; z++ {
			v := f.Scatter(x, z, ChannelTree)
			if v < 0 || v >= 1 {
				t.Fatalf("scatter out of range: %v", v)
			}
			if v != f.Scatter(x, z, ChannelBoulder) {
				differ = true
			}
		}
	}
	if !differ {
		t.Fatal("channels should be independent")
	}
}

func TestRidgeAndClusterRange(t *testing.T) {
	f := New(config.Default().Noise)
	for i := 0; i < 500; i++ {
		x := float64(i)*3.1 - 700
		r := f.Ridge(x, float64(i%60), -x)
		if r < 0 || r > 1 || math.IsNaN(r) {
			t.Fatalf("ridge out of range: %v", r)
		}
		c := f.Cluster(x, x*0.5, ChannelForest)
		if c < 0 || c > 1 {
			t.Fatalf("cluster out of range: %v", c)
		}
	}
}

func BenchmarkHeight(b *testing.B) {
	f := New(config.Default().Noise)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Height(float64(i), float64(i>>3))
	}
}
