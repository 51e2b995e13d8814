package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/nathanyu/account-ledger/internal/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const accountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	account_id TEXT PRIMARY KEY,
	balance    NUMERIC NOT NULL CHECK (balance >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRepository stores accounts in the accounts table. The balance column is an
// unconstrained NUMERIC, so balances are stored exactly and never rounded or capped.
// The *sql.DB is expected to be opened with the lib/pq driver.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func startPostgresSpan(ctx context.Context, name, operation string) (context.Context, trace.Span) {
	return telemetry.StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.table", "accounts"),
		),
	)
}

// EnsureSchema creates the accounts table if needed and widens a balance column created
// with a fixed precision by earlier versions.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, accountsSchema); err != nil {
		return fmt.Errorf("failed to create accounts table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `ALTER TABLE accounts ALTER COLUMN balance TYPE NUMERIC`); err != nil {
		return fmt.Errorf("failed to widen accounts.balance: %w", err)
	}
	return nil
}

// Get reads one account row.
func (r *PostgresRepository) Get(ctx context.Context, id string) (domain.Account, bool, error) {
	defer observe("postgres", "get", time.Now())
	ctx, span := startPostgresSpan(ctx, "postgres.GetAccount", "SELECT")
	defer span.End()

	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE account_id = $1`, id,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetAttributes(attribute.Bool("account.found", false))
		return domain.Account{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Account{}, false, fmt.Errorf("failed to get account: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return domain.Account{ID: id, Balance: balance}, true, nil
}

// Create inserts a new account row.
func (r *PostgresRepository) Create(ctx context.Context, account domain.Account) error {
	defer observe("postgres", "create", time.Now())
	ctx, span := startPostgresSpan(ctx, "postgres.CreateAccount", "INSERT")
	defer span.End()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (account_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (account_id) DO NOTHING
	`, account.ID, account.Balance)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		span.SetStatus(codes.Error, "account exists")
		return ErrAccountExists
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update writes the full balance back.
func (r *PostgresRepository) Update(ctx context.Context, account domain.Account) error {
	defer observe("postgres", "update", time.Now())
	ctx, span := startPostgresSpan(ctx, "postgres.UpdateAccount", "UPDATE")
	defer span.End()

	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $2, updated_at = now()
		WHERE account_id = $1
	`, account.ID, account.Balance)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		span.SetStatus(codes.Error, "account missing")
		return ErrAccountMissing
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
