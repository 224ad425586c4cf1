package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/config"
	"github.com/julianstephens/studyclock/internal/storage"
	"github.com/julianstephens/studyclock/internal/storage/memory"
	"github.com/julianstephens/studyclock/internal/storage/sqlite"
)

func newContext(t *testing.T, store storage.Provider) *cli.Context {
	t.Helper()
	cfg := &config.Config{
		Storage:      store.GetConfigPath(),
		Notifier:     config.NotifierLocal,
		GraceMinutes: 10,
		Location:     time.UTC,
	}
	ctx, err := cli.New(cfg, store)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	return ctx
}

func setupTestSQLite(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() { store.Close() })
	return newContext(t, store), dbPath
}

func setupTestMemory(t *testing.T) *cli.Context {
	t.Helper()
	return newContext(t, memory.NewStore())
}
