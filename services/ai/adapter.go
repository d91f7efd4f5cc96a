package ai

import (
	"context"
	"net/http"
	"time"
)

// Prompt is the provider-agnostic input of a generation call
type Prompt struct {
	System string
	User   string
}

// Adapter is implemented by every LLM provider integration
type Adapter interface {
	// Name returns the provider name as listed in the catalog (e.g. "groq")
	Name() string

	// Models returns the interchangeable model identifiers, most preferred first
	Models() []string

	// Generate returns the completion text produced by the given model
	Generate(ctx context.Context, prompt Prompt, model string) (string, error)
}

// Generation parameters shared by all adapters
const (
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
	requestTimeout     = 60 * time.Second
)

// newHTTPClient returns the client used by provider SDKs. SDK-level retries are disabled so
// the orchestrator owns the retry schedule.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
