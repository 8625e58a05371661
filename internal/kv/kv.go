// Package kv provides the durable string-keyed store backing the
// pending queue, punch mirrors and media index.
package kv

import "context"

// Store is a durable key-value store. Get returns ok=false for a
// missing key rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
