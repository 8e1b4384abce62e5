package store

import (
	"context"
	"log/slog"

	"github.com/ashureev/winlog/internal/domain"
	"github.com/ashureev/winlog/internal/identity"
	"github.com/ashureev/winlog/internal/session"
)

// JournalSink records every row its inner sink accepts.
type JournalSink struct {
	next session.Sink
	repo Repository
}

// NewJournalSink wraps next so successful appends are journaled in repo.
func NewJournalSink(next session.Sink, repo Repository) *JournalSink {
	return &JournalSink{next: next, repo: repo}
}

// Append implements session.Sink. A journal failure is logged only; the row
// has already reached the destination by then.
func (j *JournalSink) Append(ctx context.Context, row domain.Row) (domain.AppendResult, error) {
	res, err := j.next.Append(ctx, row)
	if err != nil {
		return res, err
	}

	entry := &domain.Entry{
		SessionID:           identity.SessionIDFromContext(ctx),
		PhysicalAchievement: row.PhysicalAchievement,
		SocialWin:           row.SocialWin,
		CommittedAt:         row.CommittedAt,
		UpdatedRange:        res.UpdatedRange,
	}
	if jerr := j.repo.RecordEntry(ctx, entry); jerr != nil {
		slog.Error("Failed to journal committed row", "session_id", entry.SessionID, "error", jerr)
	}
	return res, nil
}
