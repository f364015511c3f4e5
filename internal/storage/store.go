package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is the persistence collaborator: an opaque string-keyed document
// store. The repository layer owns which keys exist and what they hold; every
// value is written as a whole-document replace.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	ClearAll(ctx context.Context) error
}
