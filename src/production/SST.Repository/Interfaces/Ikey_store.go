package interfaces

import (
	"context"
	"errors"
)

// Scope is the authorization level a credential namespace grants. The key's
// textual prefix carries no authorization weight; only which namespace holds
// the key does.
type Scope int

const (
	ScopeOrdinary Scope = iota
	ScopeAdmin
)

func (s Scope) String() string {
	if s == ScopeAdmin {
		return "admin"
	}
	return "ordinary"
}

// ErrRecordMissing is returned by Owner when a key is present in the
// membership set but has no backing record. The two are written together, so
// this is an invariant violation, not a missing-value case.
var ErrRecordMissing = errors.New("key present in set but record missing")

// KeyStore persists issued API keys. Each key lives in a per-scope record
// namespace plus a per-scope membership set used for enumeration and
// existence counting; Insert and Remove update both sides atomically.
type KeyStore interface {
	// Exists reports whether the key is present in the scope's record namespace.
	Exists(ctx context.Context, scope Scope, key string) (bool, error)

	// Insert writes the key's record with the given owner label and adds the
	// key to the scope's membership set.
	Insert(ctx context.Context, scope Scope, key, owner string) error

	// Remove deletes the key's record and removes it from the membership set.
	Remove(ctx context.Context, scope Scope, key string) error

	// Owner resolves a key to its owner label. Returns ErrRecordMissing when
	// the record is gone.
	Owner(ctx context.Context, scope Scope, key string) (string, error)

	// Members enumerates all keys in the scope's membership set.
	Members(ctx context.Context, scope Scope) ([]string, error)

	// Count returns the cardinality of the scope's membership set.
	Count(ctx context.Context, scope Scope) (int64, error)

	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) error
}
