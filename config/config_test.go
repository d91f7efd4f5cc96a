package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("AI_RETRY_BASE_DELAY", "")
	t.Setenv("EMAIL_TEST_MODE", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "documents", cfg.StorageBucket)
	assert.Equal(t, time.Second, cfg.AIRetryBaseDelay)
	assert.True(t, cfg.EmailTestMode)
}

func TestLoadProviderKeys(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "m-key")
	t.Setenv("GROQ_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "c-key")

	cfg := Load()

	assert.Equal(t, "m-key", cfg.MistralAPIKey)
	assert.Equal(t, "g-key", cfg.GroqAPIKey)
	assert.Empty(t, cfg.OpenAIAPIKey)
	assert.Equal(t, "c-key", cfg.ClaudeAPIKey)
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"1", true},
		{"on", true},
		{"false", false},
		{"off", false},
		{"garbage", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			assert.Equal(t, tt.expected, getEnvBool("TEST_BOOL", true))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "not-a-duration")
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION", time.Second))
}

func TestStorageConfigured(t *testing.T) {
	cfg := &Config{StorageBucket: "documents"}
	assert.False(t, cfg.StorageConfigured())

	cfg.StorageEndpoint = "https://project.supabase.co/storage/v1/s3"
	cfg.StorageAccessKeyID = "id"
	cfg.StorageSecretAccessKey = "secret"
	assert.True(t, cfg.StorageConfigured())
}
