package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/config"
	"github.com/julianstephens/studyclock/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Reset by deleting existing participant data before initialization."`
	Source string `help:"Source database path or connection string to copy participant data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	target := ctx.Store.GetConfigPath()
	backend := storage.DetectBackend(target)

	if c.Source != "" && sameTarget(c.Source, target) {
		return fmt.Errorf("source and destination are the same: %s", target)
	}

	if c.Force && backend == storage.BackendSQLite {
		if _, err := os.Stat(target); err == nil {
			if info, ok, err := ctx.Snapshot("init-force"); err != nil {
				return fmt.Errorf("failed to back up existing database: %w", err)
			} else if ok {
				fmt.Printf("Backed up existing data to: %s\n", info.Name())
			}
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(target); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", target)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	if c.Force && backend != storage.BackendSQLite {
		if err := ctx.Store.Wipe(ctx.Background()); err != nil {
			return fmt.Errorf("failed to reset existing data: %w", err)
		}
		fmt.Printf("Reset existing data at: %s\n", target)
	}
	fmt.Printf("Initialized studyclock storage at: %s\n", target)

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx.Background(), ctx.Store); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Println("Copy completed successfully!")
	}
	return nil
}

func sameTarget(a, b string) bool {
	if storage.DetectBackend(a) != storage.BackendSQLite {
		return a == b
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

func (c *InitCmd) copyData(ctx context.Context, dst storage.Provider) error {
	path, err := config.ExpandPath(c.Source)
	if err != nil {
		return err
	}
	src, err := storage.Open(path, storage.Options{})
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	fmt.Println("  Copying settings and progress...")
	keys, err := src.Keys(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list source keys: %w", err)
	}
	for _, k := range keys {
		v, ok, err := src.Get(ctx, k)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", k, err)
		}
		if !ok {
			continue
		}
		if err := dst.Set(ctx, k, v); err != nil {
			return fmt.Errorf("failed to write %s: %w", k, err)
		}
	}
	fmt.Printf("    Copied %d entries\n", len(keys))

	fmt.Println("  Copying schedules...")
	schedules, err := src.GetSchedules(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schedules from source: %w", err)
	}
	if err := dst.SaveSchedules(ctx, schedules); err != nil {
		return fmt.Errorf("failed to save schedules: %w", err)
	}
	fmt.Printf("    Copied %d schedules\n", len(schedules))

	fmt.Println("  Copying results...")
	results, err := src.GetResults(ctx)
	if err != nil {
		return fmt.Errorf("failed to get results from source: %w", err)
	}
	for _, r := range results {
		if err := dst.AddResult(ctx, r); err != nil {
			return fmt.Errorf("failed to add result %s: %w", r.ID, err)
		}
	}
	fmt.Printf("    Copied %d results\n", len(results))
	return nil
}
