package system

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/keyring"
	"github.com/julianstephens/studyclock/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a connection string in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string with its password masked."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
}

// AccountFlag selects the keyring slot: the database connection or the reminder gateway URL.
type AccountFlag struct {
	Account string `help:"Which credential to manage (database or amqp)." enum:"database,amqp" default:"database"`
}

func (f AccountFlag) account() keyring.Account {
	if f.Account == "amqp" {
		return keyring.AccountAMQP
	}
	return keyring.AccountDatabase
}

func (f AccountFlag) label() string {
	if f.Account == "amqp" {
		return "AMQP URL"
	}
	return "Connection string"
}

// KeyringSetCmd stores credentials in the OS keyring
type KeyringSetCmd struct {
	AccountFlag `embed:""`
	ConnectionString string `arg:"" help:"PostgreSQL connection string, or AMQP URL with --account=amqp."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if cmd.account() == keyring.AccountAMQP {
		if !strings.HasPrefix(cmd.ConnectionString, "amqp://") && !strings.HasPrefix(cmd.ConnectionString, "amqps://") {
			return errors.New("AMQP URL must start with amqp:// or amqps://")
		}
	} else if err := validateDatabaseConnString(cmd.ConnectionString); err != nil {
		return err
	}

	if err := keyring.Set(cmd.account(), cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", strings.ToLower(cmd.label()), err)
	}

	fmt.Printf("✓ %s stored successfully in OS keyring\n", cmd.label())
	if cmd.account() == keyring.AccountDatabase {
		fmt.Println("  You can now use studyclock without the --config flag")
	}
	return nil
}

func validateDatabaseConnString(connStr string) error {
	if !postgres.IsConnString(connStr) && !strings.Contains(connStr, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}
	if _, err := postgres.ValidateConnString(connStr); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
		fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
	}
	return nil
}

// KeyringGetCmd retrieves credentials from the OS keyring
type KeyringGetCmd struct {
	AccountFlag `embed:""`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.Get(cmd.account())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'studyclock keyring set' to store one", strings.ToLower(cmd.label()))
		}
		return fmt.Errorf("failed to retrieve %s from keyring: %w", strings.ToLower(cmd.label()), err)
	}

	fmt.Printf("%s retrieved from keyring:\n", cmd.label())
	fmt.Println(maskPassword(secret))
	return nil
}

// KeyringDeleteCmd removes credentials from the OS keyring
type KeyringDeleteCmd struct {
	AccountFlag `embed:""`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.Delete(cmd.account()); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", strings.ToLower(cmd.label()))
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", strings.ToLower(cmd.label()), err)
	}

	fmt.Printf("✓ %s deleted from OS keyring\n", cmd.label())
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	fmt.Println("✓ OS keyring is available")

	for _, f := range []AccountFlag{{Account: "database"}, {Account: "amqp"}} {
		_, err := keyring.Get(f.account())
		switch {
		case err == nil:
			fmt.Printf("✓ %s is stored in keyring\n", f.label())
		case errors.Is(err, keyring.ErrNotFound):
			fmt.Printf("ℹ No %s stored in keyring\n", strings.ToLower(f.label()))
		default:
			fmt.Printf("⚠ %s could not be read: %v\n", f.label(), err)
		}
	}
	return nil
}

// maskPassword masks passwords in connection strings and URLs for display
func maskPassword(connStr string) string {
	if strings.Contains(connStr, "://") {
		u, err := url.Parse(connStr)
		if err == nil && u.User != nil {
			if _, hasPassword := u.User.Password(); hasPassword {
				idx := strings.Index(connStr, "://") + 3
				at := strings.LastIndex(connStr, "@")
				if at > idx {
					return connStr[:idx] + u.User.Username() + ":****" + connStr[at:]
				}
			}
		}
		return connStr
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		masked := make([]string, 0, len(parts))
		for _, part := range parts {
			if strings.HasPrefix(part, "password=") {
				masked = append(masked, "password=****")
			} else {
				masked = append(masked, part)
			}
		}
		return strings.Join(masked, " ")
	}
	return connStr
}
