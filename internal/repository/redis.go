package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/nathanyu/account-ledger/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	redisKeyPrefix    = "ledger:account:"
	redisBalanceField = "balance"
)

// RedisRepository stores each account as a hash holding its balance as a decimal string.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) accountKey(id string) string {
	return redisKeyPrefix + id
}

func startRedisSpan(ctx context.Context, name, operation string) (context.Context, trace.Span) {
	return telemetry.StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", operation),
		),
	)
}

// Get reads the account with HGET.
func (r *RedisRepository) Get(ctx context.Context, id string) (domain.Account, bool, error) {
	defer observe("redis", "get", time.Now())
	ctx, span := startRedisSpan(ctx, "redis.GetAccount", "HGET")
	defer span.End()

	raw, err := r.client.HGet(ctx, r.accountKey(id), redisBalanceField).Result()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("account.found", false))
		return domain.Account{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get account from redis")
		return domain.Account{}, false, fmt.Errorf("failed to get account from redis: %w", err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "corrupt balance")
		return domain.Account{}, false, fmt.Errorf("corrupt balance for account %q: %w", id, err)
	}

	span.SetStatus(codes.Ok, "")
	return domain.Account{ID: id, Balance: balance}, true, nil
}

// Create stores a new account with HSETNX, so two creators cannot both win.
func (r *RedisRepository) Create(ctx context.Context, account domain.Account) error {
	defer observe("redis", "create", time.Now())
	ctx, span := startRedisSpan(ctx, "redis.CreateAccount", "HSETNX")
	defer span.End()

	created, err := r.client.HSetNX(ctx, r.accountKey(account.ID), redisBalanceField, account.Balance.String()).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create account in redis")
		return fmt.Errorf("failed to create account in redis: %w", err)
	}
	if !created {
		span.SetStatus(codes.Error, "account exists")
		return ErrAccountExists
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update overwrites the balance of an existing account.
func (r *RedisRepository) Update(ctx context.Context, account domain.Account) error {
	defer observe("redis", "update", time.Now())
	ctx, span := startRedisSpan(ctx, "redis.UpdateAccount", "HSET")
	defer span.End()

	key := r.accountKey(account.ID)

	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check account in redis")
		return fmt.Errorf("failed to check account in redis: %w", err)
	}
	if n == 0 {
		span.SetStatus(codes.Error, "account missing")
		return ErrAccountMissing
	}

	if err := r.client.HSet(ctx, key, redisBalanceField, account.Balance.String()).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update account in redis")
		return fmt.Errorf("failed to update account in redis: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
