// Package statecrypto seals client state at rest with a machine-local key.
package statecrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeyLen is the length of master and derived keys.
const KeyLen = 32

// ErrShortBlob is returned when a sealed blob cannot hold a nonce.
var ErrShortBlob = errors.New("sealed blob too short")

func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// LoadOrCreateKey reads the master key at path, generating it (0600) on first use.
func LoadOrCreateKey(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(b) != KeyLen {
			return nil, fmt.Errorf("state key %s: want %d bytes, got %d", path, KeyLen, len(b))
		}
		return b, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	key, err := Rand(KeyLen)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveEntryKey derives a per-entry key via HKDF-SHA256 using the entry name as info.
func DeriveEntryKey(master []byte, name string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, nil, []byte(name))
	key := make([]byte, KeyLen)
	_, err := r.Read(key)
	return key, err
}

// Seal encrypts plaintext with XChaCha20-Poly1305, random nonce, AAD = name.
// Output layout: nonce || ciphertext.
func Seal(key []byte, name string, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := Rand(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, []byte(name))...)
	return out, nil
}

// Open decrypts a blob produced by Seal with the same key and name.
func Open(key []byte, name string, blob []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, ErrShortBlob
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := blob[:chacha20poly1305.NonceSizeX]
	ct := blob[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, ct, []byte(name))
}
