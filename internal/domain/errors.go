package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies ledger failures so the transport layer can map them.
type ErrorKind string

const (
	KindAccountNotFound   ErrorKind = "ACCOUNT_NOT_FOUND"
	KindInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
	KindInvalidAmount     ErrorKind = "INVALID_AMOUNT"
	KindDuplicateAccount  ErrorKind = "DUPLICATE_ACCOUNT"
	KindInvalidAccount    ErrorKind = "INVALID_ACCOUNT"
	KindUnclassified      ErrorKind = "UNCLASSIFIED"
)

// Error is the typed failure returned by the ledger services.
type Error struct {
	Kind      ErrorKind
	AccountID string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrInsufficientFunds) works
// regardless of account or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrAccountNotFound   = &Error{Kind: KindAccountNotFound}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds}
	ErrInvalidAmount     = &Error{Kind: KindInvalidAmount}
	ErrDuplicateAccount  = &Error{Kind: KindDuplicateAccount}
	ErrInvalidAccount    = &Error{Kind: KindInvalidAccount}
	ErrUnclassified      = &Error{Kind: KindUnclassified}
)

// NotFound builds an AccountNotFound error for id.
func NotFound(id, message string) *Error {
	return &Error{Kind: KindAccountNotFound, AccountID: id, Message: message}
}

// Unclassified wraps an unexpected collaborator failure.
func Unclassified(message string, err error) *Error {
	return &Error{Kind: KindUnclassified, Message: message, Err: err}
}

// KindOf returns the kind of err. Errors that are not *Error are unclassified.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnclassified
}
