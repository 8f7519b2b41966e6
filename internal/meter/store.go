package meter

import "context"

// Store is the narrow persistence contract the reading service needs. The
// production implementation lives in internal/db; tests use an in-memory
// fake.
type Store interface {
	// Insert appends a new reading.
	Insert(ctx context.Context, r *Reading) error

	// MostRecent returns the reading with the greatest TimestampMs across
	// the whole collection, or nil if there are none. Implementations must
	// serve this from the time-ordered index, not a scan.
	MostRecent(ctx context.Context) (*Reading, error)

	// QueryRange returns readings with TimestampMs in [startMs, endMs),
	// newest first.
	QueryRange(ctx context.Context, startMs, endMs int64) ([]Reading, error)

	// Get returns the reading with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Reading, error)

	// DeleteIfOwned deletes the reading only if requester created it, or —
	// for legacy rows with no CreatedBy — if the stored display name equals
	// requester. The predicate check and the delete are a single
	// conditional operation. Returns ErrForbidden when the predicate fails
	// and ErrNotFound when no such row exists.
	DeleteIfOwned(ctx context.Context, id, requester string) error

	// UpsertMonthlyAggregate adds deltaKWh to the (owner, period) rollup
	// row, creating it if absent.
	UpsertMonthlyAggregate(ctx context.Context, owner, period string, deltaKWh float64, nowMs int64) error

	// MonthlyAggregateTotal returns the rollup total for (owner, period),
	// or 0 if no row exists.
	MonthlyAggregateTotal(ctx context.Context, owner, period string) (float64, error)
}
