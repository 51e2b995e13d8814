package domain

import "github.com/shopspring/decimal"

// TransferRequest represents a request to move money between two accounts.
// It is never persisted.
type TransferRequest struct {
	FromAccountID string          `json:"account_from_id"`
	ToAccountID   string          `json:"account_to_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// Validate runs the checks that do not need the repository, in order:
// same account first, then the amount sign, then its precision.
func (r TransferRequest) Validate() error {
	if r.FromAccountID == r.ToAccountID {
		return &Error{
			Kind:      KindDuplicateAccount,
			AccountID: r.FromAccountID,
			Message:   "sender and beneficiary account cannot be the same",
		}
	}
	if !r.Amount.IsPositive() {
		return &Error{Kind: KindInvalidAmount, Message: "transfer amount must be positive"}
	}
	if !WithinScale(r.Amount) {
		return &Error{Kind: KindInvalidAmount, Message: scaleMessage("transfer amount")}
	}
	return nil
}
