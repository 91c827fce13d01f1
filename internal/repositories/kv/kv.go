// Package kv is the local-storage substrate: string keys mapped to string blobs.
package kv

import (
	"context"
	"errors"
)

// Table holds one row per key on the SQL backends.
const Table = "local_storage"

var ErrNotFound = errors.New("key not found")

//go:generate go run go.uber.org/mock/mockgen -source=kv.go -destination=mocks/mock.go
type Repository interface {
	// Get returns the value stored under key or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Keys lists stored keys starting with prefix, in ascending order
	Keys(ctx context.Context, prefix string) ([]string, error)
}
