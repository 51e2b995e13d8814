package service

import (
	"context"
	"errors"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/nathanyu/account-ledger/internal/repository"
	"github.com/nathanyu/account-ledger/internal/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AccountService creates and looks up accounts.
//
// When built with a TransferService, lookups wait for any in-flight transfer to finish, so
// a caller never sees one side of a transfer written back without the other.
type AccountService struct {
	accounts  AccountRepository
	transfers *TransferService
}

func NewAccountService(accounts AccountRepository, transfers *TransferService) *AccountService {
	return &AccountService{accounts: accounts, transfers: transfers}
}

// Create opens a new account with the given initial balance.
func (s *AccountService) Create(ctx context.Context, id string, balance decimal.Decimal) (domain.Account, error) {
	ctx, span := telemetry.StartSpan(ctx, "account.Create",
		trace.WithAttributes(attribute.String("account_id", id)),
	)
	defer span.End()

	acc, err := domain.NewAccount(id, balance)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Account{}, err
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, repository.ErrAccountExists) {
			return domain.Account{}, &domain.Error{
				Kind:      domain.KindDuplicateAccount,
				AccountID: id,
				Message:   "account id " + id + " already exists",
			}
		}
		return domain.Account{}, domain.Unclassified("failed to create account", err)
	}

	telemetry.AccountsCreatedTotal.Inc()
	span.SetStatus(codes.Ok, "")
	return acc, nil
}

// Get returns the current state of an account.
func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	ctx, span := telemetry.StartSpan(ctx, "account.Get",
		trace.WithAttributes(attribute.String("account_id", id)),
	)
	defer span.End()

	if s.transfers != nil {
		s.transfers.mu.RLock()
		defer s.transfers.mu.RUnlock()
	}

	acc, ok, err := s.accounts.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Account{}, domain.Unclassified("failed to load account "+id, err)
	}
	if !ok {
		span.SetStatus(codes.Error, "account not found")
		return domain.Account{}, domain.NotFound(id, "account not found: "+id)
	}

	span.SetStatus(codes.Ok, "")
	return acc, nil
}
