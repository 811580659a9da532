package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings rejected: %v", err)
	}
	if len(s.Noise.Layers) != 5 {
		t.Fatalf("expected 5 default layers, got %d", len(s.Noise.Layers))
	}
	if s.Stream.VerticalChunks != 8 {
		t.Errorf("expected 8 vertical chunks, got %d", s.Stream.VerticalChunks)
	}
	if s.Stream.Workers < 1 {
		t.Errorf("workers not resolved: %d", s.Stream.Workers)
	}
}

func TestParseYAMLOverridesDefaults(t *testing.T) {
	raw := []byte(`
noise:
  seed: 42
stream:
  view_radius: 6
  full_detail_radius: 9
`)
	s, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Noise.Seed != 42 {
		t.Errorf("seed = %d, want 42", s.Noise.Seed)
	}
	if s.Stream.ViewRadius != 6 {
		t.Errorf("view radius = %d, want 6", s.Stream.ViewRadius)
	}
	// kept as configured; half is raised to match
	if s.Stream.FullDetailRadius != 9 || s.Stream.HalfDetailRadius != 9 {
		t.Errorf("detail radii = %d/%d, want 9/9", s.Stream.FullDetailRadius, s.Stream.HalfDetailRadius)
	}
	if len(s.Noise.Layers) != 5 {
		t.Errorf("untouched layers should keep defaults, got %d", len(s.Noise.Layers))
	}
}

func TestParseLegacyLayersJSON(t *testing.T) {
	raw := []byte(`{"layers":[{"seed":9,"frequency":0.02,"amplitude":3}]}`)
	s, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(s.Noise.Layers) != 1 {
		t.Fatalf("expected legacy layer to replace defaults, got %d layers", len(s.Noise.Layers))
	}
	l := s.Noise.Layers[0]
	if l.Seed != 9 || l.Frequency != 0.02 || l.Amplitude != 3 || l.Octaves != 1 {
		t.Errorf("unexpected layer %+v", l)
	}
	if s.LegacyLayers != nil {
		t.Errorf("legacy layers should be folded into noise.layers")
	}
}

func TestParseRejectsZeroFrequency(t *testing.T) {
	raw := []byte(`{"noise":{"layers":[{"seed":1,"frequency":0,"amplitude":2},{"seed":2,"frequency":-1,"amplitude":1}]}}`)
	_, err := Parse(raw)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestParseRejectsSchemaViolation(t *testing.T) {
	cases := map[string]string{
		"wrong type":    `{"stream":{"view_radius":"far"}}`,
		"unknown field": `{"stream":{"draw_distance":5}}`,
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestValidateClamps(t *testing.T) {
	s := Default()
	s.Stream.ViewRadius = 100
	s.Stream.VerticalChunks = 0
	s.Noise.Layers[0].Octaves = 40
	s.Noise.Scatter.TreeCell = 2
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if s.Stream.ViewRadius != MaxViewRadius {
		t.Errorf("view radius = %d", s.Stream.ViewRadius)
	}
	if s.Stream.VerticalChunks != 1 {
		t.Errorf("vertical chunks = %d", s.Stream.VerticalChunks)
	}
	if s.Noise.Layers[0].Octaves != MaxOctaves {
		t.Errorf("octaves = %d", s.Noise.Layers[0].Octaves)
	}
	if s.Noise.Scatter.TreeCell != MinTreeCell {
		t.Errorf("tree cell = %d", s.Noise.Scatter.TreeCell)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"settings.json", "settings.yaml"} {
		path := filepath.Join(dir, name)
		s := Default()
		s.Noise.Seed = 1234
		s.Noise.Layers[2].Amplitude = 7
		if err := s.Validate(); err != nil {
			t.Fatalf("validate: %v", err)
		}
		if err := Save(path, s); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if got.Noise.Seed != 1234 || got.Noise.Layers[2].Amplitude != 7 {
			t.Errorf("%s: round trip lost values: %+v", name, got.Noise)
		}
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Stream.ViewRadius != Default().Stream.ViewRadius {
		t.Errorf("expected defaults")
	}
}

func TestLoadUnreadable(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "settings.yaml"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(filepath.Join(dir, "settings.yaml")); err == nil {
		t.Fatal("expected error reading a directory")
	}
}
