package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewAccount(t *testing.T) {
	acc, err := NewAccount("3455667", dec("23445"))
	require.NoError(t, err)
	assert.Equal(t, "3455667", acc.ID)
	assert.True(t, acc.Balance.Equal(dec("23445")))

	zero, err := NewAccount("993992", decimal.Zero)
	require.NoError(t, err)
	assert.True(t, zero.Balance.IsZero())
}

func TestNewAccount_Invalid(t *testing.T) {
	_, err := NewAccount("  ", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAccount)

	_, err = NewAccount("acc", dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// Sub-cent balances would be rounded by a fixed-scale store
	_, err = NewAccount("dust", dec("0.005"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, "initial balance must have at most 2 decimal places", err.Error())

	// Trailing zeros beyond the scale are still whole cents
	acc, err := NewAccount("cents", dec("12.3400"))
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(dec("12.34")))

	// Large balances are fine as long as they are whole cents
	_, err = NewAccount("huge", dec("1000000000000000000000"))
	assert.NoError(t, err)
}

func TestDebit(t *testing.T) {
	acc := Account{ID: "a", Balance: dec("100")}

	require.NoError(t, acc.Debit(dec("40")))
	assert.True(t, acc.Balance.Equal(dec("60")))

	// Draining to exactly zero is allowed
	require.NoError(t, acc.Debit(dec("60")))
	assert.True(t, acc.Balance.IsZero())
}

func TestDebit_InsufficientFunds(t *testing.T) {
	acc := Account{ID: "3455667", Balance: dec("10")}

	err := acc.Debit(dec("10.01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, "insufficient balance in sender account: 3455667", err.Error())

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "3455667", de.AccountID)

	// Balance untouched on failure
	assert.True(t, acc.Balance.Equal(dec("10")))
}

func TestDebit_NegativeAmount(t *testing.T) {
	acc := Account{ID: "a", Balance: dec("10")}
	assert.ErrorIs(t, acc.Debit(dec("-1")), ErrInvalidAmount)
	assert.True(t, acc.Balance.Equal(dec("10")))
}

func TestCredit(t *testing.T) {
	acc := Account{ID: "a", Balance: decimal.Zero}
	require.NoError(t, acc.Credit(dec("4445")))
	require.NoError(t, acc.Credit(decimal.Zero))
	assert.True(t, acc.Balance.Equal(dec("4445")))

	assert.ErrorIs(t, acc.Credit(dec("-0.01")), ErrInvalidAmount)
}

func TestArithmeticIsExact(t *testing.T) {
	acc := Account{ID: "a", Balance: decimal.Zero}
	for i := 0; i < 10; i++ {
		require.NoError(t, acc.Credit(dec("0.10")))
	}
	assert.Equal(t, "1", acc.Balance.String())

	require.NoError(t, acc.Debit(dec("0.30")))
	assert.True(t, acc.Balance.Equal(dec("0.7")))
}

func TestWithinScale(t *testing.T) {
	assert.True(t, WithinScale(dec("0")))
	assert.True(t, WithinScale(dec("-0.01")))
	assert.True(t, WithinScale(dec("5.10")))
	assert.False(t, WithinScale(dec("5.001")))
}
