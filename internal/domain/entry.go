// Package domain holds the value types shared by the extraction, session and sink layers.
package domain

import (
	"strings"
	"time"
)

// TimestampLayout is the format of the third cell of every committed row.
const TimestampLayout = "2006-01-02 15:04:05"

// Placeholder replaces a field that was never supplied before commit.
const Placeholder = "N/A"

// Fields are the two values accumulated for one entry.
type Fields struct {
	PhysicalAchievement string `json:"physical_achievement"`
	SocialWin           string `json:"social_win"`
}

// IsEmpty reports whether neither field carries a value.
func (f Fields) IsEmpty() bool {
	return strings.TrimSpace(f.PhysicalAchievement) == "" && strings.TrimSpace(f.SocialWin) == ""
}

// IsComplete reports whether both fields carry a value.
func (f Fields) IsComplete() bool {
	return strings.TrimSpace(f.PhysicalAchievement) != "" && strings.TrimSpace(f.SocialWin) != ""
}

// Merge overwrites each field with the incoming value when that value is non-empty.
func (f Fields) Merge(in Fields) Fields {
	if strings.TrimSpace(in.PhysicalAchievement) != "" {
		f.PhysicalAchievement = in.PhysicalAchievement
	}
	if strings.TrimSpace(in.SocialWin) != "" {
		f.SocialWin = in.SocialWin
	}
	return f
}

// Extraction is the model's reading of a free-text note.
type Extraction struct {
	PhysicalWin     string `json:"physical_win"`
	SocialHighlight string `json:"social_highlight"`
}

// Fields converts the extraction into accumulator input.
func (e Extraction) Fields() Fields {
	return Fields{PhysicalAchievement: e.PhysicalWin, SocialWin: e.SocialHighlight}
}

// PendingEntry is a session's uncommitted state.
type PendingEntry struct {
	SessionID string
	Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Row is one committed line of the destination sheet.
type Row struct {
	PhysicalAchievement string
	SocialWin           string
	CommittedAt         time.Time
}

// NewRow builds a row from accumulated fields, substituting the placeholder for empty ones.
func NewRow(f Fields, at time.Time) Row {
	row := Row{
		PhysicalAchievement: strings.TrimSpace(f.PhysicalAchievement),
		SocialWin:           strings.TrimSpace(f.SocialWin),
		CommittedAt:         at,
	}
	if row.PhysicalAchievement == "" {
		row.PhysicalAchievement = Placeholder
	}
	if row.SocialWin == "" {
		row.SocialWin = Placeholder
	}
	return row
}

// Timestamp returns the formatted commit time.
func (r Row) Timestamp() string {
	return r.CommittedAt.Format(TimestampLayout)
}

// Cells returns the row in sheet column order.
func (r Row) Cells() []string {
	return []string{r.PhysicalAchievement, r.SocialWin, r.Timestamp()}
}

// AppendResult describes where a sink placed a row.
type AppendResult struct {
	UpdatedRange string
}
