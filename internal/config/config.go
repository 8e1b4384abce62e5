// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Extraction providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	CORSOrigins []string
	Location    *time.Location

	// PageClientKey is rendered into the home page for browser-side use.
	// Keep it short-lived and domain-restricted; it is visible to anyone who loads the page.
	PageClientKey string

	Sheets  SheetsConfig
	Extract ExtractConfig
	Session SessionConfig

	JournalDBPath string // empty disables the commit journal
	EntriesLimit  int    // default page size for journal listings
}

// SheetsConfig points the row sink at its destination.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	Timeout         time.Duration
}

// ExtractConfig selects and configures the language model.
type ExtractConfig struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	Timeout       time.Duration
}

// SessionConfig controls pending-entry expiry.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadExtractOnly reads configuration for tools that only talk to the model.
func LoadExtractOnly() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateExtract(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func load() (*Config, error) {
	tz := getEnv("TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"*"}),
		Location:      loc,
		PageClientKey: getEnv("PAGE_CLIENT_KEY", ""),
		Sheets: SheetsConfig{
			SpreadsheetID:   getEnv("SHEET_ID", ""),
			SheetName:       getEnv("SHEET_NAME", "Sheet1"),
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
			Timeout:         getEnvDuration("SHEETS_TIMEOUT", 30*time.Second),
		},
		Extract: ExtractConfig{
			Provider:      strings.ToLower(getEnv("EXTRACT_PROVIDER", ProviderOpenAI)),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:       getEnvDuration("EXTRACT_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			TTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
		JournalDBPath: getEnv("JOURNAL_DB_PATH", ""),
		EntriesLimit:  getEnvInt("ENTRIES_LIMIT", 50),
	}, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("SHEET_ID cannot be empty")
	}
	if c.Sheets.SheetName == "" {
		return fmt.Errorf("SHEET_NAME cannot be empty")
	}
	if c.Sheets.CredentialsFile == "" {
		return fmt.Errorf("GOOGLE_CREDENTIALS_FILE cannot be empty")
	}
	if c.EntriesLimit <= 0 {
		return fmt.Errorf("ENTRIES_LIMIT must be > 0")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be > 0")
	}
	return c.ValidateExtract()
}

// ValidateExtract checks the model settings only.
func (c *Config) ValidateExtract() error {
	switch c.Extract.Provider {
	case ProviderOpenAI:
		if c.Extract.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY cannot be empty")
		}
	case ProviderGemini:
		if c.Extract.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY cannot be empty")
		}
	default:
		return fmt.Errorf("EXTRACT_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.Extract.Provider)
	}
	if c.Extract.Timeout <= 0 {
		return fmt.Errorf("EXTRACT_TIMEOUT must be > 0")
	}
	return nil
}

// JournalEnabled reports whether committed rows are also recorded locally.
func (c *Config) JournalEnabled() bool {
	return c.JournalDBPath != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
