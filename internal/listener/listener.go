// Package listener provides a Postgres LISTEN/NOTIFY consumer for official
// result events. It holds a dedicated pgx connection (not from the pool)
// listening on the `official_result` channel.
//
// When an official score is written, the Postgres trigger fires pg_notify
// with the official match id and this consumer revalidates every pending
// user protocol for that fixture.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Jakkmalm/speedway-protocol/internal/official"
)

const (
	channel          = "official_result"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Start opens a dedicated connection and listens on the official_result
// channel. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, validator *official.Validator, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, validator, logger)
		if ctx.Err() != nil {
			logger.Info("Official result listener stopped (context cancelled)")
			return
		}

		logger.Error("Official result listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, validator *official.Validator, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+channel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Official result listener connected", "channel", channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		officialMatchID := notification.Payload
		if officialMatchID == "" {
			continue
		}
		logger.Info("Official result event received", "official_id", officialMatchID)

		// Process asynchronously to avoid blocking the listener
		go func(id string) {
			if err := validator.RevalidateForOfficial(ctx, id); err != nil {
				logger.Warn("Revalidation for official result failed",
					"official_id", id, "error", err)
			}
		}(officialMatchID)
	}
}
