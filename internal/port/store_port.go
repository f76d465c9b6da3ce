package port

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// SnapshotStore is a dumb durable key-value sink. Set overwrites the whole
// value; there is no versioning between concurrent writers.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
