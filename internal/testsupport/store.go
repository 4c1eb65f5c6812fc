package testsupport

import (
	"testing"

	"switchboard/internal/config"
	"switchboard/internal/queue"
)

// MustOpenStore opens a queue store for the given config and registers
// cleanup with the test lifecycle.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}
