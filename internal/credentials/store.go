// Package credentials keeps the reporter's email in the OS credential store.
package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// DefaultService is the keyring service the email is filed under.
	DefaultService = "pothole-report"
	// DefaultAccount is used when the config does not set keyring_account.
	DefaultAccount = "email"
)

// ErrNotStored is returned by Delete when there is nothing to remove.
var ErrNotStored = errors.New("no keyring entry")

// Identity addresses one secret in the credential store.
type Identity struct {
	Service string
	Account string
}

// DefaultIdentity returns the identity for account, falling back to the
// default account name when account is blank.
func DefaultIdentity(account string) Identity {
	account = strings.TrimSpace(account)
	if account == "" {
		account = DefaultAccount
	}
	return Identity{Service: DefaultService, Account: account}
}

func (id Identity) String() string {
	return fmt.Sprintf("service=%q account=%q", id.Service, id.Account)
}

// Store reads and writes the reporter email.
type Store interface {
	// Email returns the stored email. ok is false when nothing is stored.
	Email(id Identity) (email string, ok bool, err error)
	SetEmail(id Identity, email string) error
	DeleteEmail(id Identity) error
}

// Keyring is a Store backed by the system keyring (Keychain, Secret Service
// or Windows Credential Manager).
type Keyring struct{}

// Email returns the trimmed email stored for id.
func (Keyring) Email(id Identity) (string, bool, error) {
	value, err := keyring.Get(id.Service, id.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read keyring (%s): %w", id, err)
	}
	value = strings.TrimSpace(value)
	return value, value != "", nil
}

// SetEmail stores email for id, replacing any previous value.
func (Keyring) SetEmail(id Identity, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email cannot be empty")
	}
	if err := keyring.Set(id.Service, id.Account, email); err != nil {
		return fmt.Errorf("write keyring (%s): %w", id, err)
	}
	return nil
}

// DeleteEmail removes the email for id. It returns ErrNotStored when there
// was no entry.
func (Keyring) DeleteEmail(id Identity) error {
	err := keyring.Delete(id.Service, id.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotStored
	}
	if err != nil {
		return fmt.Errorf("delete keyring entry (%s): %w", id, err)
	}
	return nil
}
