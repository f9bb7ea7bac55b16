package statecrypto

import (
	"bytes"
	"crypto/subtle"
	"os"
	"path/filepath"
	"testing"
)

func TestRand_LengthUniq(t *testing.T) {
	t.Parallel()
	const n = 48
	a, err := Rand(n)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, _ := Rand(n)
	if bytes.Equal(a, b) {
		t.Fatalf("Rand produced equal slices")
	}
}

func TestLoadOrCreateKey(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "state.key")

	k1, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(k1) != KeyLen {
		t.Fatalf("len=%d", len(k1))
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("key file mode %v, want 0600", st.Mode().Perm())
	}

	k2, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if subtle.ConstantTimeCompare(k1, k2) != 1 {
		t.Fatalf("second load must return the same key")
	}
}

func TestLoadOrCreateKey_RejectsWrongLength(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.key")
	_ = os.WriteFile(path, []byte("short"), 0o600)
	if _, err := LoadOrCreateKey(path); err == nil {
		t.Fatalf("expected error for truncated key")
	}
}

func TestDeriveEntryKey_DiffPerName(t *testing.T) {
	t.Parallel()
	master, _ := Rand(KeyLen)
	ka, _ := DeriveEntryKey(master, "user")
	kb, _ := DeriveEntryKey(master, "other")
	if len(ka) != KeyLen || len(kb) != KeyLen {
		t.Fatalf("unexpected key length")
	}
	if subtle.ConstantTimeCompare(ka, kb) != 0 {
		t.Fatalf("keys for different entries must differ")
	}
	ka2, _ := DeriveEntryKey(master, "user")
	if subtle.ConstantTimeCompare(ka, ka2) != 1 {
		t.Fatalf("DeriveEntryKey must be deterministic")
	}
}

func TestSealOpen_Roundtrip_And_AAD(t *testing.T) {
	t.Parallel()
	master, _ := Rand(KeyLen)
	key, err := DeriveEntryKey(master, "user")
	if err != nil {
		t.Fatalf("DeriveEntryKey: %v", err)
	}
	pt := []byte(`{"username":"budi","token":"t","idPengguna":7}`)

	blob, err := Seal(key, "user", pt)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Contains(blob, []byte("budi")) {
		t.Fatalf("ciphertext leaks plaintext")
	}
	got, err := Open(key, "user", blob)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, pt) {
		t.Fatalf("roundtrip mismatch")
	}

	if _, err := Open(key, "other", blob); err == nil {
		t.Fatalf("expected error on name mismatch")
	}
	other, _ := DeriveEntryKey(master, "other")
	if _, err := Open(other, "user", blob); err == nil {
		t.Fatalf("expected error on wrong key")
	}
	if _, err := Open(key, "user", blob[:5]); err != ErrShortBlob {
		t.Fatalf("want ErrShortBlob, got %v", err)
	}
}
