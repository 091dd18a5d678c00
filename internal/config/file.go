package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envProjectRoot is the environment variable consulted when no --job root is
// configured.
const envProjectRoot = "JOB"

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current values; unknown keys are rejected so typos surface.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is only
// an error when required is true.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ResolveProjectRoot fills ProjectRoot from the JOB environment variable when
// it was not configured explicitly. This is the only place the environment is
// consulted; downstream packages receive the root as a plain value.
func (c *Config) ResolveProjectRoot() {
	if c.ProjectRoot != "" {
		return
	}
	c.ProjectRoot = os.Getenv(envProjectRoot)
}
