package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SHEET_ID", "sheet-123")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/tmp/creds.json")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "Sheet1", cfg.Sheets.SheetName)
	assert.Equal(t, ProviderOpenAI, cfg.Extract.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Extract.OpenAIModel)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.JournalEnabled())
	assert.Empty(t, cfg.PageClientKey)
	assert.Equal(t, 50, cfg.EntriesLimit)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("EXTRACT_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GEMINI_BASE_URL", "http://localhost:9999/")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JOURNAL_DB_PATH", "/tmp/journal.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Extract.Provider)
	assert.Equal(t, "http://localhost:9999/", cfg.Extract.GeminiBaseURL)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.JournalEnabled())
}

func TestLoadRejectsMissingValues(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  string
	}{
		{"sheet id", "SHEET_ID", "SHEET_ID"},
		{"credentials", "GOOGLE_CREDENTIALS_FILE", "GOOGLE_CREDENTIALS_FILE"},
		{"api key", "OPENAI_API_KEY", "OPENAI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadExtractOnlySkipsSheets(t *testing.T) {
	t.Setenv("SHEET_ID", "")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TIMEZONE", "UTC")

	_, err := LoadExtractOnly()
	require.NoError(t, err)
}

func TestUnknownProvider(t *testing.T) {
	setRequired(t)
	t.Setenv("EXTRACT_PROVIDER", "llama")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXTRACT_PROVIDER")
}

func TestBadDurationFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("EXTRACT_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Extract.Timeout)
}
