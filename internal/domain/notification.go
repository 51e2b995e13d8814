package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a message delivered to an account holder.
type Notification struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification stamps a message for account with a fresh id and time.
func NewNotification(account Account, message string) Notification {
	return Notification{
		ID:        uuid.Must(uuid.NewV7()).String(),
		AccountID: account.ID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}
