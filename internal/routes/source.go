package routes

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Descriptor is the authoring format for one route: a pattern, an exact-match
// flag, the bound view unit, and ordered children. A descriptor with no
// pattern is the catch-all and must be last among its siblings.
type Descriptor struct {
	Pattern  string       `yaml:"pattern"`
	Exact    bool         `yaml:"exact"`
	Unit     string       `yaml:"unit"`
	Children []Descriptor `yaml:"children"`
}

// Source is the single declarative origin of the route tree. Both the
// eager-bound and lazy-bound renderings derive from it.
type Source struct {
	Routes []Descriptor `yaml:"routes"`
}

// Load parses a YAML route source.
func Load(r io.Reader) (*Source, error) {
	var src Source
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&src); err != nil {
		return nil, fmt.Errorf("parsing route source: %w", err)
	}
	return &src, nil
}

// LoadFile parses a YAML route source from a file.
func LoadFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening route source %s: %w", path, err)
	}
	defer f.Close()

	src, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("route source %s: %w", path, err)
	}
	return src, nil
}
