package main

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voxelterrain/internal/world"
)

func TestParseTier(t *testing.T) {
	for _, r := range world.Resolutions {
		got, err := parseTier(strings.ToUpper(r.String()))
		if err != nil || got != r {
			t.Fatalf("parseTier(%q) = %v, %v", r.String(), got, err)
		}
	}
	if _, err := parseTier("eighth"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestRunWritesPNG(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "map.png")
	opt := options{seed: 42, radius: 0, tier: "quarter", scale: 1, out: out, meshStats: true, workers: 2}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var stdout bytes.Buffer
	partial := ""
	if err := run(context.Background(), opt, log, &partial, &stdout); err != nil {
		t.Fatal(err)
	}
	if partial != "" {
		t.Fatalf("partial file %q left registered", partial)
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temporary file left behind")
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != world.Size {
		t.Fatalf("image width %d, want %d", img.Bounds().Dx(), world.Size)
	}
	if !strings.Contains(stdout.String(), "greedy quads") || !strings.Contains(stdout.String(), "wrote ") {
		t.Fatalf("unexpected output:\n%s", stdout.String())
	}
}

func TestRunRejectsBadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("noise:\n  base_height: high\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opt := options{settings: path, tier: "full", out: filepath.Join(dir, "x.png")}
	partial := ""
	err := run(context.Background(), opt, slog.New(slog.NewTextHandler(io.Discard, nil)), &partial, io.Discard)
	if err == nil {
		t.Fatal("expected settings error")
	}
}
