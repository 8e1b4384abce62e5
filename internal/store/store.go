// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ashureev/winlog/internal/domain"
)

// Repository defines the interface for the local journal of committed rows.
type Repository interface {
	// RecordEntry persists a committed entry. An empty ID is filled in.
	RecordEntry(ctx context.Context, entry *domain.Entry) error

	// ListEntries returns the most recent entries, newest first.
	ListEntries(ctx context.Context, limit int) ([]*domain.Entry, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
