package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers webhook event IDs that have already been
// applied to the board. Shopify redelivers webhooks on timeouts, so a
// redelivered order event must not create a second card.
type IdempotencyStore interface {
	// MarkProcessed records an event ID for the given TTL. It returns
	// true when the ID is new and false when the event was seen before.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether an event ID has been recorded.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls webhook deduplication.
type IdempotencyConfig struct {
	// TTL bounds how long event IDs are remembered. Shopify retries
	// deliveries for well under a day, so 24 hours covers redeliveries
	// without growing the store forever.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
