package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nathanyu/account-ledger/internal/domain"
)

// MemoryRepository keeps accounts in a map.
type MemoryRepository struct {
	accounts map[string]domain.Account
	mu       sync.RWMutex
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts: make(map[string]domain.Account),
	}
}

// Get returns a copy of the account and whether it exists.
func (r *MemoryRepository) Get(_ context.Context, id string) (domain.Account, bool, error) {
	defer observe("memory", "get", time.Now())

	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[id]
	return acc, ok, nil
}

// Create stores a new account.
func (r *MemoryRepository) Create(_ context.Context, account domain.Account) error {
	defer observe("memory", "create", time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		return ErrAccountExists
	}
	r.accounts[account.ID] = account
	return nil
}

// Update replaces the stored state of an existing account.
func (r *MemoryRepository) Update(_ context.Context, account domain.Account) error {
	defer observe("memory", "update", time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; !exists {
		return ErrAccountMissing
	}
	r.accounts[account.ID] = account
	return nil
}

// All returns every account ordered by id.
func (r *MemoryRepository) All() []domain.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		result = append(result, acc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// put stores account unconditionally; used when rebuilding state from a journal.
func (r *MemoryRepository) put(account domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = account
}
