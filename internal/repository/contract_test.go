package repository

import (
	"context"
	"testing"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountStore interface {
	Get(ctx context.Context, id string) (domain.Account, bool, error)
	Create(ctx context.Context, account domain.Account) error
	Update(ctx context.Context, account domain.Account) error
}

// runContract checks the behaviour every backend must share.
func runContract(t *testing.T, repo accountStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, ok, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("create and get", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, domain.Account{ID: "alice", Balance: decimal.RequireFromString("23445.50")}))

		acc, ok, err := repo.Get(ctx, "alice")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "alice", acc.ID)
		assert.True(t, acc.Balance.Equal(decimal.RequireFromString("23445.5")), "got %s", acc.Balance)
	})

	t.Run("create duplicate", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, domain.Account{ID: "bob", Balance: decimal.Zero}))
		err := repo.Create(ctx, domain.Account{ID: "bob", Balance: decimal.NewFromInt(5)})
		assert.ErrorIs(t, err, ErrAccountExists)

		acc, _, err := repo.Get(ctx, "bob")
		require.NoError(t, err)
		assert.True(t, acc.Balance.IsZero(), "duplicate create must not overwrite")
	})

	t.Run("update", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, domain.Account{ID: "carol", Balance: decimal.NewFromInt(10)}))

		acc, _, err := repo.Get(ctx, "carol")
		require.NoError(t, err)
		require.NoError(t, acc.Debit(decimal.RequireFromString("2.25")))

		// Not visible until written back
		stored, _, err := repo.Get(ctx, "carol")
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(decimal.NewFromInt(10)))

		require.NoError(t, repo.Update(ctx, acc))
		stored, _, err = repo.Get(ctx, "carol")
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(decimal.RequireFromString("7.75")), "got %s", stored.Balance)
	})

	t.Run("large balance round trips exactly", func(t *testing.T) {
		big := decimal.RequireFromString("1000000000000000000000.07")
		require.NoError(t, repo.Create(ctx, domain.Account{ID: "whale", Balance: big}))

		acc, ok, err := repo.Get(ctx, "whale")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, acc.Balance.Equal(big), "got %s", acc.Balance)
	})

	t.Run("update missing", func(t *testing.T) {
		err := repo.Update(ctx, domain.Account{ID: "ghost", Balance: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, ErrAccountMissing)

		_, ok, err := repo.Get(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
