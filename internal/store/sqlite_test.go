package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/winlog/internal/domain"
	"github.com/ashureev/winlog/internal/identity"
	"github.com/ashureev/winlog/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndListEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	base := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	for i, social := range []string{"first", "second", "third"} {
		require.NoError(t, s.RecordEntry(ctx, &domain.Entry{
			SessionID:           "s1",
			PhysicalAchievement: domain.Placeholder,
			SocialWin:           social,
			CommittedAt:         base.Add(time.Duration(i) * time.Minute),
			UpdatedRange:        "Sheet1!A1:C1",
		}))
	}

	entries, err := s.ListEntries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "third", entries[0].SocialWin)
	assert.Equal(t, "second", entries[1].SocialWin)
	assert.Len(t, entries[0].ID, 26, "ULID")
	assert.Equal(t, base.Add(2*time.Minute).Unix(), entries[0].CommittedAt.Unix())
	assert.Equal(t, "Sheet1!A1:C1", entries[0].UpdatedRange)
}

func TestListEntriesEmpty(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.ListEntries(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingRepo struct{ Repository }

func (failingRepo) RecordEntry(context.Context, *domain.Entry) error { return errors.New("disk full") }

func TestJournalSinkRecordsSuccessfulAppends(t *testing.T) {
	s := newTestStore(t)
	inner := session.SinkFunc(func(context.Context, domain.Row) (domain.AppendResult, error) {
		return domain.AppendResult{UpdatedRange: "Sheet1!A4:C4"}, nil
	})
	sink := NewJournalSink(inner, s)

	ctx := identity.WithSessionID(context.Background(), "tab-1")
	row := domain.NewRow(domain.Fields{PhysicalAchievement: "Marathon"}, time.Now())
	_, err := sink.Append(ctx, row)
	require.NoError(t, err)

	entries, err := s.ListEntries(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tab-1", entries[0].SessionID)
	assert.Equal(t, "Marathon", entries[0].PhysicalAchievement)
	assert.Equal(t, domain.Placeholder, entries[0].SocialWin)
	assert.Equal(t, "Sheet1!A4:C4", entries[0].UpdatedRange)
}

func TestJournalSinkSkipsFailedAppends(t *testing.T) {
	s := newTestStore(t)
	inner := session.SinkFunc(func(context.Context, domain.Row) (domain.AppendResult, error) {
		return domain.AppendResult{}, errors.New("quota exceeded")
	})

	_, err := NewJournalSink(inner, s).Append(context.Background(), domain.NewRow(domain.Fields{SocialWin: "x"}, time.Now()))
	require.Error(t, err)

	entries, err := s.ListEntries(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournalFailureDoesNotFailCommit(t *testing.T) {
	inner := session.SinkFunc(func(context.Context, domain.Row) (domain.AppendResult, error) {
		return domain.AppendResult{UpdatedRange: "Sheet1!A2:C2"}, nil
	})

	res, err := NewJournalSink(inner, failingRepo{}).Append(context.Background(), domain.NewRow(domain.Fields{SocialWin: "x"}, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "Sheet1!A2:C2", res.UpdatedRange)
}
