package storage

import (
	"fmt"
	"path/filepath"

	"github.com/and161185/perpus/internal/crypto/statecrypto"
)

// Drivers
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open builds the Store for driver under dir. With seal set, values are
// encrypted with the key kept in dir/state.key.
func Open(driver, dir string, seal bool) (Store, error) {
	var (
		st  Store
		err error
	)
	switch driver {
	case DriverFile:
		st, err = NewFileStore(dir)
	case DriverSQLite:
		st, err = NewSQLiteStore(filepath.Join(dir, "state.db"))
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if !seal {
		return st, nil
	}

	key, err := statecrypto.LoadOrCreateKey(filepath.Join(dir, "state.key"))
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("state key: %w", err)
	}
	sealed, err := NewSealed(st, key)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return sealed, nil
}
