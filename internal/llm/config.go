package llm

import (
	"os"
	"strconv"
)

// TaskType identifies the kind of generation call being made.
type TaskType string

const (
	TaskMacroPlan   TaskType = "macro_plan"
	TaskSessionText TaskType = "session_text"
)

// TaskConfig holds per-task generation parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Provider names a generation/embedding backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderVertex Provider = "vertex"
)

// LLMConfig holds all configuration for the provider clients.
type LLMConfig struct {
	Provider          Provider
	LogCalls          bool
	Endpoint          string
	Model             string
	EmbedModel        string
	TimeoutMs         int
	MaxRetries        int
	RequestsPerSecond float64 // 0 disables rate limiting
	Burst             int
	GCPProject        string
	GCPLocation       string
	Tasks             map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig pointed at a local Ollama instance.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Provider:          ProviderOllama,
		LogCalls:          false,
		Endpoint:          "http://localhost:11434",
		Model:             "llama3.2",
		EmbedModel:        "nomic-embed-text",
		TimeoutMs:         30000,
		MaxRetries:        1,
		RequestsPerSecond: 0,
		Burst:             1,
		Tasks: map[TaskType]TaskConfig{
			TaskMacroPlan:   {Temperature: 0.2, MaxTokens: 4096, TimeoutMs: 60000},
			TaskSessionText: {Temperature: 0.4, MaxTokens: 1024, TimeoutMs: 20000},
		},
	}
}

// LoadConfig reads provider configuration from TEMPO_LLM_* environment
// variables, falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("TEMPO_LLM_PROVIDER"); v != "" {
		cfg.Provider = Provider(v)
	}
	if v := os.Getenv("TEMPO_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("TEMPO_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("TEMPO_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("TEMPO_LLM_EMBED_MODEL"); v != "" {
		cfg.EmbedModel = v
	}
	if v := os.Getenv("TEMPO_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("TEMPO_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("TEMPO_LLM_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("TEMPO_LLM_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Burst = n
		}
	}
	cfg.GCPProject = os.Getenv("TEMPO_GCP_PROJECT")
	cfg.GCPLocation = os.Getenv("TEMPO_GCP_LOCATION")

	applyTaskTimeoutEnv(&cfg, TaskMacroPlan, "TEMPO_LLM_MACRO_PLAN_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskSessionText, "TEMPO_LLM_SESSION_TEXT_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
