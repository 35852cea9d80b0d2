package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wombatlabs/picomgr/picofile"
)

// manifest describes a set of modules to register, in the order given.
//
//	padding: 16
//	final_padding: 64
//	capacity: 32
//	imports: [sys.log, sys.alloc]
//	modules:
//	  - name: hooks
//	    path: build/hooks.pico
//	  - name: transport
//	    path: build/transport.pico
type manifest struct {
	Padding      int          `yaml:"padding"`
	FinalPadding int          `yaml:"final_padding"`
	Capacity     int          `yaml:"capacity"`
	Imports      []string     `yaml:"imports"`
	Modules      []moduleSpec `yaml:"modules"`
}

type moduleSpec struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

const defaultCapacity = 32

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if len(m.Modules) == 0 {
		return nil, fmt.Errorf("manifest lists no modules")
	}
	if m.Capacity == 0 {
		m.Capacity = defaultCapacity
	}
	if m.Capacity < len(m.Modules) {
		return nil, fmt.Errorf("capacity %d below module count %d", m.Capacity, len(m.Modules))
	}

	// Paths are relative to the manifest.
	dir := filepath.Dir(path)
	for i, spec := range m.Modules {
		if spec.Name == "" || spec.Path == "" {
			return nil, fmt.Errorf("module %d: name and path are required", i)
		}
		if !filepath.IsAbs(spec.Path) {
			m.Modules[i].Path = filepath.Join(dir, spec.Path)
		}
	}

	return &m, nil
}

// importTable builds the resolver handed through to the loader. The manifest
// only names the symbols; the CLI has no live values to bind, so each symbol
// resolves to a placeholder.
func (m *manifest) importTable() picofile.ImportMap {
	table := make(picofile.ImportMap, len(m.Imports))
	for _, sym := range m.Imports {
		table[sym] = struct{}{}
	}
	return table
}
