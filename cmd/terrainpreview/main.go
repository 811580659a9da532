// Command terrainpreview renders a top-down PNG of the terrain and prints
// mesh statistics for the centre column, without opening a window.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"

	"voxelterrain/internal/config"
	"voxelterrain/internal/noise"
	"voxelterrain/internal/preview"
	"voxelterrain/internal/world"

	"github.com/xlab/closer"
)

type options struct {
	settings  string
	seed      int64
	x, z      int
	radius    int
	tier      string
	scale     int
	out       string
	meshStats bool
	workers   int
}

func main() {
	var opt options
	flag.StringVar(&opt.settings, "config", "", "settings file (YAML or JSON); built-in defaults when empty")
	flag.Int64Var(&opt.seed, "seed", 0, "override the world seed when non-zero")
	flag.IntVar(&opt.x, "x", 0, "centre chunk X")
	flag.IntVar(&opt.z, "z", 0, "centre chunk Z")
	flag.IntVar(&opt.radius, "radius", 4, "chunks around the centre")
	flag.StringVar(&opt.tier, "tier", "half", "sampling tier: full, half or quarter")
	flag.IntVar(&opt.scale, "scale", 1, "pixels per block")
	flag.StringVar(&opt.out, "out", "terrain.png", "output PNG path")
	flag.BoolVar(&opt.meshStats, "mesh-stats", true, "print mesh statistics for the centre column")
	flag.IntVar(&opt.workers, "workers", 0, "generation workers, 0 for one per CPU")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "bad -log-level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	partial := ""
	closer.Bind(func() {
		stop()
		if partial != "" {
			os.Remove(partial)
		}
	})
	defer closer.Close()

	if err := run(ctx, opt, log, &partial, os.Stdout); err != nil {
		log.Error("terrainpreview failed", "err", err)
		closer.Fatalln(err)
	}
}

func parseTier(s string) (world.Resolution, error) {
	for _, r := range world.Resolutions {
		if strings.EqualFold(r.String(), s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

func loadSettings(opt options) (config.Settings, error) {
	s := config.Default()
	if opt.settings != "" {
		var err error
		if s, err = config.Load(opt.settings); err != nil {
			return s, err
		}
	}
	if opt.seed != 0 {
		s.Noise.Seed = opt.seed
	}
	return s, s.Validate()
}

// run writes the PNG to a temporary file first; *partial names it until it
// is renamed into place, so an interrupt can clean it up.
func run(ctx context.Context, opt options, log *slog.Logger, partial *string, stdout io.Writer) error {
	tier, err := parseTier(opt.tier)
	if err != nil {
		return err
	}
	settings, err := loadSettings(opt)
	if err != nil {
		return err
	}
	gen := world.NewGenerator(noise.New(settings.Noise))

	log.Info("building preview", "seed", settings.Noise.Seed, "center", fmt.Sprintf("(%d,%d)", opt.x, opt.z), "radius", opt.radius, "tier", tier.String())
	m, err := preview.Build(ctx, gen, preview.Options{
		CenterX:    opt.x,
		CenterZ:    opt.z,
		Radius:     opt.radius,
		Resolution: tier,
		Workers:    opt.workers,
	})
	if err != nil {
		return err
	}

	tmp := opt.out + ".tmp"
	*partial = tmp
	if err := writeImage(tmp, m.Image(opt.scale)); err != nil {
		return err
	}
	if err := os.Rename(tmp, opt.out); err != nil {
		return err
	}
	*partial = ""

	sum := m.Summary()
	fmt.Fprintf(stdout, "wrote %s: %d columns, surface y %d..%d\n", opt.out, sum.Columns, sum.MinHeight, sum.MaxHeight)
	types := make([]world.BlockType, 0, len(sum.TypeCounts))
	for t := range sum.TypeCounts {
		types = append(types, t)
	}
	slices.Sort(types)
	for _, t := range types {
		fmt.Fprintf(stdout, "  %-8s %6d\n", t, sum.TypeCounts[t])
	}

	if opt.meshStats {
		return printMeshStats(stdout, gen, world.ChunkCoord{X: opt.x, Z: opt.z}, settings.Stream.VerticalChunks)
	}
	return nil
}

func writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := preview.WritePNG(w, img); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
