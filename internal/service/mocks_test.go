package service

import (
	"context"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Get(ctx context.Context, id string) (domain.Account, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Account), args.Bool(1), args.Error(2)
}

func (m *mockRepository) Create(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockRepository) Update(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, account domain.Account, message string) error {
	return m.Called(ctx, account, message).Error(0)
}
