// Package regions loads the body-region catalog a session starts from.
package regions

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var defaultCatalog []byte

type Region struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Systems     []string `yaml:"systems" json:"systems"`
}

type yamlCatalog struct {
	Version int      `yaml:"version"`
	Regions []Region `yaml:"regions"`
}

type Catalog struct {
	byID    map[string]Region
	ordered []Region
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read regions file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse regions: %w", err)
	}
	if len(raw.Regions) == 0 {
		return nil, errors.New("regions: catalog is empty")
	}
	c := &Catalog{byID: make(map[string]Region, len(raw.Regions))}
	for i, r := range raw.Regions {
		r.ID = strings.ToLower(strings.TrimSpace(r.ID))
		r.Name = strings.TrimSpace(r.Name)
		if r.ID == "" {
			return nil, fmt.Errorf("regions[%d]: missing id", i)
		}
		if r.Name == "" {
			r.Name = r.ID
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("regions: duplicate id %q", r.ID)
		}
		c.byID[r.ID] = r
		c.ordered = append(c.ordered, r)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool { return c.ordered[i].Name < c.ordered[j].Name })
	return c, nil
}

// Get resolves id case-insensitively.
func (c *Catalog) Get(id string) (Region, bool) {
	if c == nil {
		return Region{}, false
	}
	r, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return r, ok
}

func (c *Catalog) List() []Region {
	if c == nil {
		return nil
	}
	out := make([]Region, len(c.ordered))
	copy(out, c.ordered)
	return out
}
