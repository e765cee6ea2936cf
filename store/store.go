// Package store abstracts the key-value persistence layer behind the
// ledger. Backends exist for memory (tests), a JSON file, and DynamoDB;
// the ledger logic never sees which one it is writing through.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a missing key. Callers treat it as
// "new account, seed defaults".
var ErrNotFound = errors.New("store: key not found")

// Adapter is a minimal key-value contract. Writes overwrite the whole
// value for the key; there is no partial-field patching.
type Adapter interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
