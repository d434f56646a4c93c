package store

import (
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh store in a temp directory and closes it
// when the test ends.
func createTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
