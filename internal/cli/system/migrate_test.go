package system

import (
	"context"
	"testing"

	"github.com/julianstephens/studyclock/internal/storage/sqlite"
)

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, _ := setupTestSQLite(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatal(err)
	}

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
}

func TestMigrateCmd_AppliesPending(t *testing.T) {
	ctx, dbPath := setupTestSQLite(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatal(err)
	}
	db := ctx.Store.(*sqlite.Store).GetDB()
	if _, err := db.Exec("UPDATE schema_version SET version = 1"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DROP TABLE activity_results"); err != nil {
		t.Fatal(err)
	}
	ctx.Store.Close()

	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() { store.Close() })
	ctx = newContext(t, store)
	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetResults(context.Background()); err != nil {
		t.Errorf("results table should exist after migrating: %v", err)
	}
}

func TestMigrateCmd_MemoryUnsupported(t *testing.T) {
	ctx := setupTestMemory(t)
	if err := (&MigrateCmd{}).Run(ctx); err == nil {
		t.Error("expected migrate to reject the in-memory store")
	}
}
