package detector

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Package category keys.
const (
	CategoryEcomSite          = "ecom_site"
	CategoryGeneralWebsite    = "general_website"
	CategoryBusinessProcess   = "business_process"
	CategoryMarketingPlatform = "marketing_platform"
)

//go:embed keywords.yaml
var keywordsYAML []byte

type numRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r numRange) contains(v float64) bool { return v >= r.Min && v <= r.Max }

type categorySpec struct {
	Key        string   `yaml:"key"`
	Label      string   `yaml:"label"`
	Priority   int      `yaml:"priority"`
	Keywords   []string `yaml:"keywords"`
	ValueRange numRange `yaml:"value_range"`
	ItemRange  numRange `yaml:"item_range"`
}

type catalogSpec struct {
	Categories []categorySpec `yaml:"categories"`
}

// catalog is parsed once at init and never mutated afterwards.
var catalog = mustLoadCatalog()

func mustLoadCatalog() []categorySpec {
	var spec catalogSpec
	if err := yaml.Unmarshal(keywordsYAML, &spec); err != nil {
		panic(fmt.Sprintf("detector: bad embedded keyword catalogue: %v", err))
	}
	if len(spec.Categories) == 0 {
		panic("detector: empty keyword catalogue")
	}
	// Deterministic iteration: priority order, lowest first.
	sort.SliceStable(spec.Categories, func(i, j int) bool {
		return spec.Categories[i].Priority < spec.Categories[j].Priority
	})
	return spec.Categories
}

// CategoryLabel resolves a category key to its display label.
func CategoryLabel(key string) string {
	for _, c := range catalog {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}

// Categories returns the known category keys in priority order.
func Categories() []string {
	keys := make([]string, 0, len(catalog))
	for _, c := range catalog {
		keys = append(keys, c.Key)
	}
	return keys
}
