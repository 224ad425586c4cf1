package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/studyclock/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored for an account
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Account names a secret slot under the application's keyring service.
type Account string

const (
	AccountDatabase Account = constants.DefaultKeyringUser
	AccountAMQP     Account = constants.AMQPKeyringUser
)

// Get retrieves the secret stored for account.
func Get(account Account) (string, error) {
	secret, err := gokeyring.Get(constants.AppName, string(account))
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores secret for account, replacing any previous value.
func Set(account Account, secret string) error {
	if secret == "" {
		return fmt.Errorf("%s secret cannot be empty", account)
	}
	if err := gokeyring.Set(constants.AppName, string(account), secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the secret stored for account.
func Delete(account Account) error {
	if err := gokeyring.Delete(constants.AppName, string(account)); err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string.
func GetConnectionString() (string, error) {
	return Get(AccountDatabase)
}

// SetConnectionString stores the database connection string.
func SetConnectionString(connStr string) error {
	return Set(AccountDatabase, connStr)
}

// DeleteConnectionString removes the database connection string.
func DeleteConnectionString() error {
	return Delete(AccountDatabase)
}

// IsAvailable checks if the OS keyring is reachable. A missing probe entry
// still counts as available.
func IsAvailable() bool {
	_, err := gokeyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}
