// Package repository holds the durable credential slots of the client.
//
// Every backend implements Store. Values are opaque strings; callers that
// need a value to survive a restart pick a durable backend (sqlite, redis,
// dynamodb) and wrap it with Seal when the value is a secret.
package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("credential not found")

// Store is a string key-value store. Remove of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
