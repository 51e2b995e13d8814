package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (p *fakePublisher) PublishJSON(subject string, v any) error {
	if p.err != nil {
		return p.err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(context.Context, domain.Account, string) error { return f.err }

var alice = domain.Account{ID: "alice", Balance: decimal.NewFromInt(10)}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.Notify(context.Background(), alice, "Received 100 from account bob"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "alice", entry["account_id"])
	assert.Equal(t, "Received 100 from account bob", entry["message"])
}

func TestNATSNotifier_Publishes(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATSNotifier(pub, "")

	require.NoError(t, n.Notify(context.Background(), alice, "hello"))

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, DefaultSubject, pub.subjects[0])

	var got domain.Notification
	require.NoError(t, json.Unmarshal(pub.payloads[0], &got))
	assert.Equal(t, "alice", got.AccountID)
	assert.Equal(t, "hello", got.Message)
	assert.NotEmpty(t, got.ID)
}

func TestNATSNotifier_PublishError(t *testing.T) {
	boom := errors.New("nats: connection closed")
	n := NewNATSNotifier(&fakePublisher{err: boom}, "custom.subject")

	err := n.Notify(context.Background(), alice, "hello")
	assert.ErrorIs(t, err, boom)
}

func TestMulti_JoinsErrors(t *testing.T) {
	inbox := NewInbox(5)
	boom := errors.New("boom")

	err := Multi{failingNotifier{boom}, inbox}.Notify(context.Background(), alice, "msg")
	assert.ErrorIs(t, err, boom)

	// Later notifiers still run after an earlier failure
	assert.Len(t, inbox.For("alice"), 1)

	assert.NoError(t, Multi{inbox}.Notify(context.Background(), alice, "msg"))
}

func TestInbox_BoundedPerAccount(t *testing.T) {
	inbox := NewInbox(2)
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, inbox.Notify(ctx, alice, msg))
	}

	got := inbox.For("alice")
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Message)
	assert.Equal(t, "three", got[1].Message)
	assert.Empty(t, inbox.For("bob"))
}

func TestInbox_HandleData(t *testing.T) {
	pub := &fakePublisher{}
	require.NoError(t, NewNATSNotifier(pub, "").Notify(context.Background(), alice, "via nats"))

	inbox := NewInbox(0)
	inbox.HandleData(pub.payloads[0])
	inbox.HandleData([]byte("garbage"))
	inbox.HandleData([]byte(`{"message":"no account"}`))

	got := inbox.For("alice")
	require.Len(t, got, 1)
	assert.Equal(t, "via nats", got[0].Message)
}
