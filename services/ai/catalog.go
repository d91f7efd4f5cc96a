package ai

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Provider API styles
const (
	StyleChatCompletion = "chat_completion"
	StyleMessages       = "messages"
)

//go:embed providers.yaml
var defaultCatalog []byte

// ProviderSpec describes one provider entry of the catalog
type ProviderSpec struct {
	Name    string   `yaml:"name"`
	EnvKey  string   `yaml:"env_key"`
	Style   string   `yaml:"style"`
	BaseURL string   `yaml:"base_url"`
	Models  []string `yaml:"models"`
}

// Catalog is the ordered provider list; order is the default priority
type Catalog struct {
	Providers []ProviderSpec `yaml:"providers"`
}

// LoadCatalog reads the provider catalog from path, or the embedded default when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read provider catalog: %w", err)
		}
		data = b
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML provider catalog
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse provider catalog: %w", err)
	}
	seen := make(map[string]bool)
	for _, p := range c.Providers {
		if p.Name == "" || p.EnvKey == "" {
			return nil, fmt.Errorf("provider catalog entry requires name and env_key")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate provider %q in catalog", p.Name)
		}
		seen[p.Name] = true
		if p.Style != StyleChatCompletion && p.Style != StyleMessages {
			return nil, fmt.Errorf("provider %q has unknown style %q", p.Name, p.Style)
		}
		if len(p.Models) == 0 {
			return nil, fmt.Errorf("provider %q lists no models", p.Name)
		}
	}
	return &c, nil
}

// EnvKeys returns the credential environment keys of every provider, in catalog order
func (c *Catalog) EnvKeys() []string {
	keys := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		keys = append(keys, p.EnvKey)
	}
	return keys
}
