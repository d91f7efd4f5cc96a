package ai

import (
	"errors"
	"fmt"
	"strings"

	"reclamassur/config"
)

// ErrNoProviderConfigured is returned before any provider call when no credential is set
var ErrNoProviderConfigured = errors.New("no AI provider configured")

// Credentials maps a credential environment key to its API key
type Credentials map[string]string

// CredentialsFromConfig collects the provider keys loaded by config.Load
func CredentialsFromConfig(cfg *config.Config) Credentials {
	return Credentials{
		"MISTRAL_API_KEY": cfg.MistralAPIKey,
		"GROQ_API_KEY":    cfg.GroqAPIKey,
		"OPENAI_API_KEY":  cfg.OpenAIAPIKey,
		"CLAUDE_API_KEY":  cfg.ClaudeAPIKey,
	}
}

// BuildAdapters instantiates one adapter per catalog provider whose credential is set,
// in catalog order. Providers without a credential are skipped.
func BuildAdapters(catalog *Catalog, creds Credentials) ([]Adapter, error) {
	var adapters []Adapter
	for _, spec := range catalog.Providers {
		key := strings.TrimSpace(creds[spec.EnvKey])
		if key == "" {
			continue
		}
		switch spec.Style {
		case StyleMessages:
			adapters = append(adapters, NewClaudeAdapter(spec, key))
		default:
			adapters = append(adapters, NewChatCompletionAdapter(spec, key))
		}
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%w: checked %s", ErrNoProviderConfigured, strings.Join(catalog.EnvKeys(), ", "))
	}
	return adapters, nil
}

// OrderAdapters moves the preferred provider first when it is configured. "auto", an empty
// hint or an unconfigured provider keep the default order.
func OrderAdapters(adapters []Adapter, preferred string) []Adapter {
	preferred = strings.ToLower(strings.TrimSpace(preferred))
	first := -1
	if preferred != "" && preferred != "auto" {
		for i, a := range adapters {
			if a.Name() == preferred {
				first = i
				break
			}
		}
	}

	ordered := make([]Adapter, 0, len(adapters))
	if first >= 0 {
		ordered = append(ordered, adapters[first])
	}
	for i, a := range adapters {
		if i != first {
			ordered = append(ordered, a)
		}
	}
	return ordered
}
