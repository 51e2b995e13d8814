package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/nathanyu/account-ledger/internal/telemetry"
	"github.com/nats-io/nats.go"
)

// DefaultInboxSize is the number of notifications kept per account.
const DefaultInboxSize = 50

// Inbox keeps the most recent notifications of every account in memory.
// It can be fed directly as a Notifier or by subscribing to the NATS notification subject.
type Inbox struct {
	messages map[string][]domain.Notification
	size     int
	mu       sync.RWMutex

	subscription *nats.Subscription
	stopOnce     sync.Once
}

// NewInbox creates an inbox keeping up to size notifications per account.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{
		messages: make(map[string][]domain.Notification),
		size:     size,
	}
}

// Notify stores the notification directly.
func (i *Inbox) Notify(_ context.Context, account domain.Account, message string) error {
	i.add(domain.NewNotification(account, message))
	telemetry.NotificationsTotal.WithLabelValues("inbox", "sent").Inc()
	return nil
}

// Start subscribes to subject and stores every notification received.
func (i *Inbox) Start(conn *nats.Conn, subject string) error {
	sub, err := conn.Subscribe(subject, i.handleMessage)
	if err != nil {
		return err
	}

	i.subscription = sub
	slog.Info("notification inbox subscribed", "subject", subject)
	return nil
}

// Stop removes the NATS subscription, if any.
func (i *Inbox) Stop() error {
	var err error
	i.stopOnce.Do(func() {
		if i.subscription != nil {
			err = i.subscription.Unsubscribe()
		}
	})
	return err
}

func (i *Inbox) handleMessage(msg *nats.Msg) {
	telemetry.NATSMessagesReceived.WithLabelValues(msg.Subject).Inc()
	i.HandleData(msg.Data)
}

// HandleData decodes one published notification and stores it.
func (i *Inbox) HandleData(data []byte) {
	var n domain.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		slog.Warn("failed to decode notification", "error", err)
		return
	}
	if n.AccountID == "" {
		slog.Warn("dropping notification without account id", "id", n.ID)
		return
	}
	i.add(n)
}

func (i *Inbox) add(n domain.Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()

	list := append(i.messages[n.AccountID], n)
	if len(list) > i.size {
		list = list[len(list)-i.size:]
	}
	i.messages[n.AccountID] = list
}

// For returns a copy of the notifications of an account, oldest first.
func (i *Inbox) For(accountID string) []domain.Notification {
	i.mu.RLock()
	defer i.mu.RUnlock()

	list := i.messages[accountID]
	result := make([]domain.Notification, len(list))
	copy(result, list)
	return result
}
