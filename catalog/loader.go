package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed dataset/catalog.yaml
var defaultDataset []byte

// file is the on-disk shape of a catalog YAML document.
type file struct {
	Tools     []ToolRecord     `yaml:"tools"`
	Playbooks []PlaybookRecord `yaml:"playbooks"`
}

// Default returns the embedded discovery dataset.
//
// The embedded data is validated at build time by the package tests, so a
// parse or validation failure here indicates a corrupted binary and panics.
func Default() *Catalog {
	c, err := Parse(defaultDataset)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded dataset invalid: %v", err))
	}
	return c
}

// Parse builds a Catalog from YAML bytes of the catalog file shape:
//
//	tools:
//	  - id: claude
//	    name: Claude
//	    ...
//	playbooks:
//	  - id: startup-mvp
//	    ...
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: failed to parse dataset: %w", err)
	}
	return New(f.Tools, f.Playbooks)
}

// Load reads and parses a catalog YAML file from the given path.
// If the path is a directory, it looks for catalog.yaml or catalog.yml in
// that directory.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		yamlPath := filepath.Join(path, "catalog.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "catalog.yml")
			if _, err := os.Stat(ymlPath); err != nil {
				return nil, fmt.Errorf("catalog: no catalog.yaml or catalog.yml found in %s", path)
			}
			configPath = ymlPath
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read dataset file: %w", err)
	}

	return Parse(data)
}
