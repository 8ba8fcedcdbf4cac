package identity

import (
	"context"
	"fmt"
	"strings"
)

// StaticDirectory is an in-memory directory for local development and tests
type StaticDirectory struct {
	accounts map[string]Account
}

// NewStaticDirectory builds a directory from the given accounts
func NewStaticDirectory(accounts ...Account) *StaticDirectory {
	d := &StaticDirectory{accounts: make(map[string]Account, len(accounts))}
	for _, a := range accounts {
		d.accounts[a.ID] = a
	}
	return d
}

// ParseStatic parses "alice,bob:disabled" into a directory.
// An entry may carry ":enabled" or ":disabled"; bare ids are enabled.
func ParseStatic(list string) (*StaticDirectory, error) {
	var accounts []Account
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, state, hasState := strings.Cut(entry, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("empty owner id in %q", entry)
		}
		acct := Account{ID: id}
		if hasState {
			switch strings.ToLower(strings.TrimSpace(state)) {
			case "disabled":
				acct.Disabled = true
			case "enabled", "":
			default:
				return nil, fmt.Errorf("unknown state %q for owner %s", state, id)
			}
		}
		accounts = append(accounts, acct)
	}
	return NewStaticDirectory(accounts...), nil
}

func (d *StaticDirectory) Lookup(ctx context.Context, ownerID string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	a, ok := d.accounts[ownerID]
	if !ok {
		return Account{}, fmt.Errorf("%s: %w", ownerID, ErrNotFound)
	}
	return a, nil
}
