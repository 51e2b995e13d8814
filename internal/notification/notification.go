// Package notification delivers messages to account holders over several channels.
package notification

import (
	"context"
	"errors"

	"github.com/nathanyu/account-ledger/internal/domain"
)

// Notifier delivers a message to the holder of an account.
type Notifier interface {
	Notify(ctx context.Context, account domain.Account, message string) error
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, account domain.Account, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, account, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
