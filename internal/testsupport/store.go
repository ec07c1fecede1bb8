package testsupport

import (
	"testing"

	"runout/internal/store"
)

// NewStore opens a scan store in a per-test temp directory and closes it when
// the test finishes.
func NewStore(t testing.TB) *store.Store {
	t.Helper()

	cfg := NewConfig(t)
	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close test store: %v", err)
		}
	})
	return s
}
