package driven

import "context"

// KVStore is the key-value backend persisting chunk records for the
// vector index. It supports hash-like records, membership sets and key
// enumeration by pattern. Single-key operations are assumed atomic;
// no cross-key transactions are assumed.
//
// Implementations may include:
//   - In-memory maps (tests, ephemeral runs)
//   - SQLite (local persistence)
//   - Any Redis-compatible server
type KVStore interface {
	// HashSet stores all fields of a hash record, overwriting any
	// existing record under key.
	HashSet(ctx context.Context, key string, fields map[string]string) error

	// HashGetAll returns every field of the record, or ErrNotFound.
	HashGetAll(ctx context.Context, key string) (map[string]string, error)

	// SetAdd adds a member to the set at key, creating it if absent.
	// Adding an existing member is a no-op.
	SetAdd(ctx context.Context, key, member string) error

	// SetMembers lists the members of the set at key. A missing set
	// yields an empty slice, not an error.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// Delete removes a hash record or set. Deleting a missing key is
	// a no-op.
	Delete(ctx context.Context, key string) error

	// Keys enumerates keys matching a glob pattern ('*' wildcard),
	// in stable lexicographic order.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Close releases resources.
	Close() error
}
