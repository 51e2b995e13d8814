package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/nathanyu/account-ledger/internal/eventstore"
)

// JournalRepository serves reads from memory and appends every write to an event store,
// so state survives restarts by replaying the journal.
type JournalRepository struct {
	state *MemoryRepository
	store *eventstore.EventStore
	mu    sync.Mutex
}

// NewJournalRepository replays store into memory and returns the repository.
func NewJournalRepository(store *eventstore.EventStore) (*JournalRepository, error) {
	r := &JournalRepository{
		state: NewMemoryRepository(),
		store: store,
	}

	n, err := store.Replay(r.apply)
	if err != nil {
		return nil, fmt.Errorf("failed to replay journal: %w", err)
	}

	slog.Info("journal repository initialized",
		"path", store.Path(),
		"events", n,
		"accounts", len(r.state.accounts),
	)
	return r, nil
}

// apply rebuilds state from a single event. Not safe for concurrent use.
func (r *JournalRepository) apply(event domain.Event) error {
	switch ev := event.(type) {
	case domain.AccountOpened:
		r.state.put(domain.Account{ID: ev.AccountID, Balance: ev.Balance})
	case domain.BalanceUpdated:
		if _, ok := r.state.accounts[ev.AccountID]; !ok {
			return fmt.Errorf("balance update for unknown account %q", ev.AccountID)
		}
		r.state.put(domain.Account{ID: ev.AccountID, Balance: ev.Balance})
	}
	return nil
}

// Get returns a copy of the account and whether it exists.
func (r *JournalRepository) Get(ctx context.Context, id string) (domain.Account, bool, error) {
	defer observe("journal", "get", time.Now())
	return r.state.Get(ctx, id)
}

// Create journals and stores a new account.
func (r *JournalRepository) Create(ctx context.Context, account domain.Account) error {
	defer observe("journal", "create", time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists, _ := r.state.Get(ctx, account.ID); exists {
		return ErrAccountExists
	}
	if err := r.store.Append(domain.AccountOpened{AccountID: account.ID, Balance: account.Balance}); err != nil {
		return fmt.Errorf("failed to journal account creation: %w", err)
	}
	return r.state.Create(ctx, account)
}

// Update journals and stores the full state of an existing account.
func (r *JournalRepository) Update(ctx context.Context, account domain.Account) error {
	defer observe("journal", "update", time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists, _ := r.state.Get(ctx, account.ID); !exists {
		return ErrAccountMissing
	}
	if err := r.store.Append(domain.BalanceUpdated{AccountID: account.ID, Balance: account.Balance}); err != nil {
		return fmt.Errorf("failed to journal balance update: %w", err)
	}
	return r.state.Update(ctx, account)
}
