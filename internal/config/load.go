package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed settings.schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func settingsSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("settings.schema.json", schemaSource)
	})
	return schema, schemaErr
}

// Load reads a YAML or JSON settings file over the defaults. A missing file
// yields the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a settings document over the defaults, checks it against the
// embedded schema and validates the result.
func Parse(raw []byte) (Settings, error) {
	s := Default()
	if err := checkSchema(raw); err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// checkSchema round-trips the document through encoding/json so the validator
// sees the value shapes it expects.
func checkSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	if doc == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	sch, err := settingsSchema()
	if err != nil {
		return fmt.Errorf("compile settings schema: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("settings schema: %v: %w", err, ErrInvalidConfig)
	}
	return nil
}

// Save writes s to path, as indented JSON for .json files and YAML otherwise.
func Save(path string, s Settings) error {
	var (
		out []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		out, err = json.MarshalIndent(s, "", "  ")
		out = append(out, '\n')
	default:
		out, err = yaml.Marshal(&s)
	}
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
