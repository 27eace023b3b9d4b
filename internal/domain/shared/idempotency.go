package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers already-processed callback keys so that
// at-least-once deliveries from the payment gateway collapse to a single
// ledger effect. It is a fast-path hint only; the persistent unique
// constraint on the gateway order id remains authoritative.
type IdempotencyStore interface {
	// IsProcessed reports whether a key has already been marked. A false
	// negative only costs a trip to the authoritative database path.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// MarkProcessed marks a key as processed with a TTL. Called only after
	// the ledger effect has committed, so a crash can never leave a marked
	// key in front of an unapplied callback.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for callback idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed keys; after it expires the
	// unique-constraint path alone handles duplicates.
	TTL time.Duration

	// Enabled determines whether the fast-path check is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
