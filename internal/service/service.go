// Package service implements account bookkeeping and money transfers on top of an
// account repository and a notification channel.
package service

import (
	"context"

	"github.com/nathanyu/account-ledger/internal/domain"
)

// AccountRepository is the storage the services read from and write back to.
// Get reports absence through its bool result, not through an error.
type AccountRepository interface {
	Get(ctx context.Context, id string) (domain.Account, bool, error)
	Create(ctx context.Context, account domain.Account) error
	Update(ctx context.Context, account domain.Account) error
}
