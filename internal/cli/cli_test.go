package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/winlog/internal/domain"
	"github.com/ashureev/winlog/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordExtractor finds "physical:" and "social:" markers, standing in for the model.
type keywordExtractor struct{}

func (keywordExtractor) Extract(_ context.Context, text string) domain.Extraction {
	var e domain.Extraction
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "physical:"):
			e.PhysicalWin = strings.TrimSpace(strings.TrimPrefix(part, "physical:"))
		case strings.HasPrefix(part, "social:"):
			e.SocialHighlight = strings.TrimSpace(strings.TrimPrefix(part, "social:"))
		}
	}
	return e
}

func TestProcessBatch(t *testing.T) {
	var rows []domain.Row
	sink := session.SinkFunc(func(_ context.Context, row domain.Row) (domain.AppendResult, error) {
		if row.PhysicalAchievement == "fail" {
			return domain.AppendResult{}, errors.New("sheet unavailable")
		}
		rows = append(rows, row)
		return domain.AppendResult{}, nil
	})
	now := time.Date(2024, 2, 29, 6, 0, 0, 0, time.UTC)
	acc := session.NewAccumulator(session.NewMemoryStore(), sink, func() time.Time { return now })

	input := strings.Join([]string{
		"# morning notes",
		"physical: fastest 5K; social: dinner with friends",
		"",
		"physical: fail; social: lost",
		"social: coffee with a colleague",
		"nothing to see here",
	}, "\n")

	formatFlag = "json"
	var out bytes.Buffer
	failed, err := processBatch(context.Background(), strings.NewReader(input), &out, keywordExtractor{}, acc)
	require.NoError(t, err)

	assert.Equal(t, 1, failed)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"fastest 5K", "dinner with friends", "2024-02-29 06:00:00"}, rows[0].Cells())
	assert.Equal(t, []string{"N/A", "coffee with a colleague", "2024-02-29 06:00:00"}, rows[1].Cells(),
		"failed line must not leak into the next one")

	dec := json.NewDecoder(&out)
	var outcomes []submitOutcome
	for dec.More() {
		var o submitOutcome
		require.NoError(t, dec.Decode(&o))
		outcomes = append(outcomes, o)
	}
	require.Len(t, outcomes, 4)
	assert.True(t, outcomes[0].Complete)
	assert.Contains(t, outcomes[1].Error, "sheet unavailable")
	assert.False(t, outcomes[3].Complete)
}

func TestReadTextFromArgs(t *testing.T) {
	text, err := readText([]string{"ran", "a", "marathon"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ran a marathon", text)

	_, err = readText([]string{"   "}, nil)
	assert.Error(t, err)
}

func TestWriteEntriesText(t *testing.T) {
	formatFlag = "text"
	t.Cleanup(func() { formatFlag = "json" })

	var buf bytes.Buffer
	writeEntries(&buf, nil)
	assert.Equal(t, "no entries\n", buf.String())

	buf.Reset()
	writeEntries(&buf, []*domain.Entry{{
		SessionID:           "s1",
		PhysicalAchievement: "Swim 2km",
		SocialWin:           "Birthday party",
		CommittedAt:         time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}})
	assert.Contains(t, buf.String(), "2024-01-02 03:04:05")
	assert.Contains(t, buf.String(), "Birthday party")
	assert.Contains(t, buf.String(), "[s1]")
}

func TestWriteOutcomeText(t *testing.T) {
	formatFlag = "text"
	t.Cleanup(func() { formatFlag = "json" })

	var buf bytes.Buffer
	writeOutcome(&buf, submitOutcome{Complete: true, Row: []string{"a", "b", "c"}})
	writeOutcome(&buf, submitOutcome{})
	assert.Equal(t, "logged: a | b | c\nincomplete: nothing to log\n", buf.String())
}

func TestCommandFailuresReturnErrors(t *testing.T) {
	t.Setenv("JOURNAL_DB_PATH", "")
	t.Setenv("SHEET_ID", "")
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"entries without journal", []string{"entries"}, "no journal database"},
		{"submit without config", []string{"submit", "--physical", "5K"}, "configure"},
		{"batch missing file", []string{"batch", "/nonexistent/wins.txt"}, "open batch file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			RootCmd.SetOut(&out)
			RootCmd.SetArgs(tt.args)
			t.Cleanup(func() { RootCmd.SetArgs(nil) })

			err := RootCmd.ExecuteContext(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
