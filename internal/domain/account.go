package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitScale is the number of fractional digits a money amount may carry (cents).
const MinorUnitScale = 2

// Account holds an account identifier and its balance.
// Balance is only changed through Debit and Credit, which keep it non-negative.
type Account struct {
	ID      string          `json:"account_id"`
	Balance decimal.Decimal `json:"balance"`
}

// NewAccount creates an account with the given initial balance.
func NewAccount(id string, balance decimal.Decimal) (Account, error) {
	if strings.TrimSpace(id) == "" {
		return Account{}, &Error{Kind: KindInvalidAccount, Message: "account id must not be empty"}
	}
	if balance.IsNegative() {
		return Account{}, &Error{Kind: KindInvalidAmount, AccountID: id, Message: "initial balance must not be negative"}
	}
	if !WithinScale(balance) {
		return Account{}, &Error{Kind: KindInvalidAmount, AccountID: id, Message: scaleMessage("initial balance")}
	}
	return Account{ID: id, Balance: balance}, nil
}

// Debit subtracts amount from the balance.
// It fails with KindInsufficientFunds when the balance cannot cover the amount.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &Error{Kind: KindInvalidAmount, AccountID: a.ID, Message: "debit amount must not be negative"}
	}
	if a.Balance.LessThan(amount) {
		return &Error{
			Kind:      KindInsufficientFunds,
			AccountID: a.ID,
			Message:   "insufficient balance in sender account: " + a.ID,
		}
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &Error{Kind: KindInvalidAmount, AccountID: a.ID, Message: "credit amount must not be negative"}
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// WithinScale reports whether amount has no more than MinorUnitScale fractional digits.
func WithinScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(MinorUnitScale))
}

func scaleMessage(what string) string {
	return fmt.Sprintf("%s must have at most %d decimal places", what, MinorUnitScale)
}
