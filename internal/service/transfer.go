package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/nathanyu/account-ledger/internal/notification"
	"github.com/nathanyu/account-ledger/internal/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TransferService moves money between accounts.
//
// Every transfer runs inside one service-wide critical section: validation, both reads,
// both write-backs and the notification calls. Two transfers never interleave, so a balance
// check can never race with a concurrent debit of the same account.
type TransferService struct {
	accounts AccountRepository
	notifier notification.Notifier
	logger   *slog.Logger

	mu sync.RWMutex
}

// NewTransferService creates a transfer service. A nil logger uses slog.Default.
func NewTransferService(accounts AccountRepository, notifier notification.Notifier, logger *slog.Logger) *TransferService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferService{
		accounts: accounts,
		notifier: notifier,
		logger:   logger,
	}
}

// Transfer debits amount from fromID and credits it to toID.
//
// Failures, in the order they are checked:
//   - DuplicateAccount when fromID == toID
//   - InvalidAmount when amount is not positive (no repository access happens)
//   - AccountNotFound for the sender, then for the beneficiary
//   - InsufficientFunds when the sender cannot cover amount
//   - Unclassified when the repository fails
//
// On any failure no balance is changed and no notification is sent. Notification failures
// after a successful write-back are logged, never returned. Once the critical section is
// entered, cancelling ctx does not abort the transfer.
func (s *TransferService) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (err error) {
	waitStart := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	telemetry.TransferLockWaitDuration.Observe(time.Since(waitStart).Seconds())

	ctx = context.WithoutCancel(ctx)
	ctx, span := telemetry.StartSpan(ctx, "transfer.Transfer",
		trace.WithAttributes(
			attribute.String("from_account", fromID),
			attribute.String("to_account", toID),
			attribute.String("amount", amount.String()),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.TransferProcessingDuration.Observe(time.Since(start).Seconds())
		s.recordOutcome(ctx, span, fromID, toID, amount, err)
	}()

	req := domain.TransferRequest{FromAccountID: fromID, ToAccountID: toID, Amount: amount}
	if err := req.Validate(); err != nil {
		return err
	}

	from, err := s.load(ctx, fromID, "sender account not found: ")
	if err != nil {
		return err
	}
	to, err := s.load(ctx, toID, "beneficiary account not found: ")
	if err != nil {
		return err
	}

	before := from
	if err := from.Debit(amount); err != nil {
		return err
	}
	if err := to.Credit(amount); err != nil {
		return err
	}

	if err := s.accounts.Update(ctx, from); err != nil {
		return domain.Unclassified("failed to persist sender account", err)
	}
	if err := s.accounts.Update(ctx, to); err != nil {
		// Put the sender back so the pair is left as it was found.
		if restoreErr := s.accounts.Update(ctx, before); restoreErr != nil {
			s.logger.ErrorContext(ctx, "failed to restore sender after partial write-back",
				"account_id", fromID,
				"error", restoreErr,
			)
			err = errors.Join(err, restoreErr)
		}
		return domain.Unclassified("failed to persist beneficiary account", err)
	}

	s.notify(ctx, from, fmt.Sprintf("Transferred %s to account %s", amount, toID))
	s.notify(ctx, to, fmt.Sprintf("Received %s from account %s", amount, fromID))

	return nil
}

// load fetches id, turning absence into AccountNotFound with the given message prefix.
func (s *TransferService) load(ctx context.Context, id, notFoundPrefix string) (domain.Account, error) {
	acc, ok, err := s.accounts.Get(ctx, id)
	if err != nil {
		return domain.Account{}, domain.Unclassified("failed to load account "+id, err)
	}
	if !ok {
		return domain.Account{}, domain.NotFound(id, notFoundPrefix+id)
	}
	return acc, nil
}

func (s *TransferService) notify(ctx context.Context, account domain.Account, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, account, message); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			"account_id", account.ID,
			"error", err,
		)
	}
}

func (s *TransferService) recordOutcome(ctx context.Context, span trace.Span, fromID, toID string, amount decimal.Decimal, err error) {
	status := outcomeLabel(err)
	telemetry.TransfersTotal.WithLabelValues(status).Inc()
	telemetry.TransferAmount.WithLabelValues(status).Observe(amount.InexactFloat64())

	if err == nil {
		span.SetStatus(codes.Ok, "")
		s.logger.InfoContext(ctx, "transfer completed",
			"from_account", fromID,
			"to_account", toID,
			"amount", amount.String(),
		)
		return
	}

	span.SetAttributes(attribute.String("failure_reason", status))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	level := slog.LevelInfo
	if domain.KindOf(err) == domain.KindUnclassified {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "transfer rejected",
		"from_account", fromID,
		"to_account", toID,
		"amount", amount.String(),
		"reason", status,
		"error", err,
	)
}

func outcomeLabel(err error) string {
	switch domain.KindOf(err) {
	case "":
		return "success"
	case domain.KindAccountNotFound:
		return "account_not_found"
	case domain.KindInsufficientFunds:
		return "insufficient_funds"
	case domain.KindInvalidAmount:
		return "invalid_amount"
	case domain.KindDuplicateAccount:
		return "duplicate_account"
	default:
		return "failed"
	}
}
