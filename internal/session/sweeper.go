package session

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper runs a background goroutine that periodically drops pending
// entries idle for longer than ttl. It stops when ctx is done.
func StartSweeper(ctx context.Context, store Store, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweep(ctx, store, ttl)
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweep(ctx context.Context, store Store, ttl time.Duration) {
	removed, err := store.Sweep(ctx, ttl)
	if err != nil {
		slog.Error("Session sweeper failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("Session sweeper removed idle entries", "count", removed, "remaining", store.Len())
	}
}
