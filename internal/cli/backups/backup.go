package backups

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyclock/internal/backup"
	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/constants"
)

var errNotSQLite = errors.New("backups are only available for SQLite storage")

// confirm is replaced in tests.
var confirm = func(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Restore").
		Negative("Cancel").
		Value(&ok).
		WithTheme(huh.ThemeDracula()).
		Run()
	return ok, err
}

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Back up participant data." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore participant data from a backup."`
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, ok := ctx.Backups()
	if !ok {
		return errNotSQLite
	}
	info, err := mgr.Create("manual")
	if errors.Is(err, backup.ErrNoDatabase) {
		return fmt.Errorf("%w, run 'studyclock init' first", err)
	}
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Printf("✓ Backup created: %s\n", info.Name())
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, ok := ctx.Backups()
	if !ok {
		return errNotSQLite
	}
	list, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No backups found.")
		fmt.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	fmt.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(list), constants.MaxBackups)
	for _, b := range list {
		fmt.Printf("  %s  %-12s  %s  (%.1f KB)\n",
			b.TakenAt.Local().Format("2006-01-02 15:04:05"), b.Reason, b.Name(), float64(b.Size)/1024.0)
	}
	fmt.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	Backup string `arg:"" help:"Path or file name of the backup to restore."`
	Yes    bool   `help:"Do not ask for confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, ok := ctx.Backups()
	if !ok {
		return errNotSQLite
	}
	path, err := mgr.Resolve(c.Backup)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := confirm(
			"Replace participant data with "+path+"?",
			"Stop the dashboard and any cron notify job first. The current data is backed up before restoring.",
		)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
	}
	previous, err := mgr.Restore(path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if previous.Path != "" {
		fmt.Printf("Backed up current data to: %s\n", previous.Name())
	}
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("restored database could not be opened: %w", err)
	}

	fmt.Println("✓ Participant data restored successfully!")
	return nil
}
