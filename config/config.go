// Package config loads runtime configuration from the environment, an
// optional .env file and an optional YAML guardrail policy.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/kustopilot/core"
)

// Config holds everything the service needs to start.
type Config struct {
	// Provider selects the completion backend: "openai" or "anthropic".
	Provider string

	// ListenAddr is the HTTP listen address.
	ListenAddr string

	Kusto  Kusto
	Budget core.RetryBudget

	// PolicyFile optionally points at a YAML guardrail policy.
	PolicyFile string
}

// Kusto holds cluster connection settings.
type Kusto struct {
	Endpoint     string
	Database     string
	ClientID     string
	ClientSecret string
	TenantID     string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is fine, the environment may be fully populated already.
	_ = godotenv.Load()

	budget := core.DefaultRetryBudget()

	var err error
	if budget.MaxSemanticRetries, err = intEnv("MAX_SEMANTIC_RETRIES", budget.MaxSemanticRetries); err != nil {
		return nil, err
	}
	if budget.MaxSystemRetries, err = intEnv("MAX_SYSTEM_RETRIES", budget.MaxSystemRetries); err != nil {
		return nil, err
	}
	if budget.BaseDelay, err = durationEnv("RETRY_BASE_DELAY", budget.BaseDelay); err != nil {
		return nil, err
	}

	cfg := &Config{
		Provider:   env("LLM_PROVIDER", "openai"),
		ListenAddr: env("LISTEN_ADDR", ":8080"),
		Kusto: Kusto{
			Endpoint:     os.Getenv("KUSTO_ENDPOINT"),
			Database:     os.Getenv("KUSTO_DATABASE"),
			ClientID:     os.Getenv("AZURE_CLIENT_ID"),
			ClientSecret: os.Getenv("AZURE_CLIENT_SECRET"),
			TenantID:     os.Getenv("AZURE_TENANT_ID"),
		},
		Budget:     budget,
		PolicyFile: os.Getenv("GUARDRAIL_POLICY_FILE"),
	}

	if cfg.Kusto.Endpoint == "" {
		return nil, fmt.Errorf("KUSTO_ENDPOINT must be set")
	}
	if cfg.Kusto.Database == "" {
		return nil, fmt.Errorf("KUSTO_DATABASE must be set")
	}

	return cfg, nil
}

// Policy is the YAML guardrail policy. Zero-valued fields keep the built-in
// defaults, so a policy file only has to name what it changes.
type Policy struct {
	AllowedTable        string   `yaml:"allowed_table"`
	BlockedPatterns     []string `yaml:"blocked_patterns"`
	AggregationKeywords []string `yaml:"aggregation_keywords"`
	LimitKeywords       []string `yaml:"limit_keywords"`
	RowCap              int      `yaml:"row_cap"`
}

// LoadPolicy parses a guardrail policy file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	return &p, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
