package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/winlog/internal/domain"
	"github.com/ashureev/winlog/internal/identity"
)

// Sink receives committed rows.
type Sink interface {
	Append(ctx context.Context, row domain.Row) (domain.AppendResult, error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, row domain.Row) (domain.AppendResult, error)

// Append implements Sink.
func (f SinkFunc) Append(ctx context.Context, row domain.Row) (domain.AppendResult, error) {
	return f(ctx, row)
}

// Result describes the outcome of a merge or commit.
type Result struct {
	// Complete is true when a row was committed by this call.
	Complete bool
	Row      domain.Row
	Append   domain.AppendResult

	// Pending is the entry still held for the session after the call, if any.
	Pending *domain.PendingEntry
}

// Accumulator implements the merge-then-commit protocol over a Store.
type Accumulator struct {
	store Store
	sink  Sink
	now   func() time.Time
}

// NewAccumulator creates an Accumulator. now may be nil to use time.Now.
func NewAccumulator(store Store, sink Sink, now func() time.Time) *Accumulator {
	if now == nil {
		now = time.Now
	}
	return &Accumulator{store: store, sink: sink, now: now}
}

// Merge folds fields into the session's pending entry. An unseen key with no
// non-empty field leaves the store untouched.
func (a *Accumulator) Merge(ctx context.Context, key string, fields domain.Fields) (*domain.PendingEntry, error) {
	return a.store.Update(ctx, key, func(cur *domain.PendingEntry) *domain.PendingEntry {
		if cur == nil {
			if fields.IsEmpty() {
				return nil
			}
			cur = &domain.PendingEntry{}
		}
		cur.Fields = cur.Fields.Merge(fields)
		return cur
	})
}

// Commit turns the session's pending entry into a row. When nothing was ever
// supplied the call is a no-op with Complete false.
func (a *Accumulator) Commit(ctx context.Context, key string) (Result, error) {
	var taken *domain.PendingEntry
	if _, err := a.store.Update(ctx, key, func(cur *domain.PendingEntry) *domain.PendingEntry {
		if cur == nil || cur.Fields.IsEmpty() {
			return cur
		}
		taken = cur
		return nil
	}); err != nil {
		return Result{}, fmt.Errorf("take pending entry: %w", err)
	}

	if taken == nil {
		pending, err := a.store.Get(ctx, key)
		if err != nil {
			return Result{}, fmt.Errorf("get pending entry: %w", err)
		}
		return Result{Pending: pending}, nil
	}

	row := domain.NewRow(taken.Fields, a.now())
	res, err := a.sink.Append(identity.WithSessionID(ctx, key), row)
	if err != nil {
		a.restore(ctx, key, taken)
		return Result{}, fmt.Errorf("commit session %q: %w", key, err)
	}

	slog.Info("Session committed", "session_id", key, "updated_range", res.UpdatedRange)
	return Result{Complete: true, Row: row, Append: res}, nil
}

// Submit merges fields and commits when both fields are present or finalize is set.
func (a *Accumulator) Submit(ctx context.Context, key string, fields domain.Fields, finalize bool) (Result, error) {
	pending, err := a.Merge(ctx, key, fields)
	if err != nil {
		return Result{}, fmt.Errorf("merge session %q: %w", key, err)
	}
	if !finalize && (pending == nil || !pending.Fields.IsComplete()) {
		return Result{Pending: pending}, nil
	}
	return a.Commit(ctx, key)
}

// restore puts a taken entry back after a failed append. Values merged
// while the append was in flight take precedence.
func (a *Accumulator) restore(ctx context.Context, key string, taken *domain.PendingEntry) {
	_, err := a.store.Update(ctx, key, func(cur *domain.PendingEntry) *domain.PendingEntry {
		if cur == nil {
			return taken
		}
		cur.Fields = taken.Fields.Merge(cur.Fields)
		cur.CreatedAt = taken.CreatedAt
		return cur
	})
	if err != nil {
		slog.Error("Failed to restore pending entry", "session_id", key, "error", err)
	}
}
