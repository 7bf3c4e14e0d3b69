package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/testutil"
)

// testEpoch is the fixed clock every test store stamps writes with.
var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestStore opens a store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	return openTestStore(t, filepath.Join(t.TempDir(), "test.db"))
}

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path,
		WithLogger(quietLogger()),
		WithClock(testutil.NewStepClock(testEpoch, 0).Now))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
