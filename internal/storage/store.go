// Package storage provides durable key/value storage for client state,
// the local equivalent of the browser's localStorage.
package storage

import (
	"context"
	"fmt"
	"regexp"
)

// Store persists small named entries. Get returns errs.ErrNotFound for a
// missing key; Delete of a missing key is not an error.
type Store interface {
	// Get loads the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key.
	Delete(ctx context.Context, key string) error
	// Close releases underlying resources.
	Close() error
}

var keyRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

func checkKey(key string) error {
	if !keyRegex.MatchString(key) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
