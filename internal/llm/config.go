package llm

import (
	"os"
	"strconv"
)

// Decoding options sent with every chart request.
const (
	DefaultMaxTokens   = 200
	DefaultTemperature = 0.0
	DefaultTopP        = 1.0
	DefaultCandidates  = 1
)

// StopSequences end a completion at the start of the next turn.
var StopSequences = []string{"Description:", "Code:"}

// Config holds all configuration for the completion client.
type Config struct {
	APIKey     string
	Endpoint   string
	Model      string
	TimeoutMs  int
	MaxRetries int
	LogPrompts bool
}

// DefaultConfig returns a Config with sensible defaults and no credential.
func DefaultConfig() Config {
	return Config{
		Endpoint:   "https://api.openai.com",
		Model:      "davinci-002",
		TimeoutMs:  30000,
		MaxRetries: 0,
		LogPrompts: true,
	}
}

// HasCredential reports whether an API key is set.
func (c Config) HasCredential() bool {
	return c.APIKey != ""
}

// LoadConfig reads configuration from environment variables, falling back to
// defaults for any unset values. The credential comes from OPENAI_KEY.
func LoadConfig() Config {
	cfg := DefaultConfig()

	cfg.APIKey = os.Getenv("OPENAI_KEY")
	if v := os.Getenv("RIDEWAIT_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("RIDEWAIT_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("RIDEWAIT_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("RIDEWAIT_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("RIDEWAIT_LLM_LOG_PROMPTS"); v != "" {
		cfg.LogPrompts, _ = strconv.ParseBool(v)
	}

	return cfg
}
