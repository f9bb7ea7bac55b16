package storage

import (
	"context"
	"fmt"

	"github.com/and161185/perpus/internal/crypto/statecrypto"
)

// Sealed encrypts every value of an inner Store with a per-key derived key.
type Sealed struct {
	inner  Store
	master []byte
}

// NewSealed wraps inner; master must be statecrypto.KeyLen bytes.
func NewSealed(inner Store, master []byte) (*Sealed, error) {
	if len(master) != statecrypto.KeyLen {
		return nil, fmt.Errorf("storage: master key must be %d bytes", statecrypto.KeyLen)
	}
	return &Sealed{inner: inner, master: master}, nil
}

// Get loads and opens the entry.
func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	k, err := statecrypto.DeriveEntryKey(s.master, key)
	if err != nil {
		return nil, err
	}
	pt, err := statecrypto.Open(k, key, blob)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", key, err)
	}
	return pt, nil
}

// Put seals and stores the entry.
func (s *Sealed) Put(ctx context.Context, key string, value []byte) error {
	k, err := statecrypto.DeriveEntryKey(s.master, key)
	if err != nil {
		return err
	}
	blob, err := statecrypto.Seal(k, key, value)
	if err != nil {
		return err
	}
	return s.inner.Put(ctx, key, blob)
}

func (s *Sealed) Delete(ctx context.Context, key string) error { return s.inner.Delete(ctx, key) }
func (s *Sealed) Close() error                                 { return s.inner.Close() }
