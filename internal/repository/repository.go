// Package repository holds the account storage backends. Every backend hands out value
// copies: mutating an Account returned by Get never changes stored state until Update.
package repository

import (
	"errors"
	"time"

	"github.com/nathanyu/account-ledger/internal/telemetry"
)

var (
	// ErrAccountExists is returned by Create when the id is already taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountMissing is returned by Update when the id is unknown.
	ErrAccountMissing = errors.New("account does not exist")
)

func observe(backend, operation string, start time.Time) {
	telemetry.RepositoryOperationDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}
