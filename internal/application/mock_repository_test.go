package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"network-registry/internal/domain/entity"
	domainRepo "network-registry/internal/domain/repository"
)

var _ domainRepo.NetworkRepository = (*mockRepository)(nil)

type mockRepository struct {
	mock.Mock
}

func networkResult(args mock.Arguments) (*entity.Network, error) {
	n, _ := args.Get(0).(*entity.Network)
	return n, args.Error(1)
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Network, error) {
	return networkResult(m.Called(ctx, id))
}

func (m *mockRepository) FindByChainID(ctx context.Context, chainID int64) (*entity.Network, error) {
	return networkResult(m.Called(ctx, chainID))
}

func (m *mockRepository) ListActive(ctx context.Context) ([]entity.Network, error) {
	args := m.Called(ctx)
	networks, _ := args.Get(0).([]entity.Network)
	return networks, args.Error(1)
}

func (m *mockRepository) Insert(ctx context.Context, network entity.Network) (*entity.Network, error) {
	return networkResult(m.Called(ctx, network))
}

func (m *mockRepository) Update(ctx context.Context, network entity.Network) (*entity.Network, error) {
	return networkResult(m.Called(ctx, network))
}

func (m *mockRepository) Replace(ctx context.Context, network entity.Network) (*entity.Network, error) {
	return networkResult(m.Called(ctx, network))
}

func (m *mockRepository) SoftDelete(ctx context.Context, id uuid.UUID) (*entity.Network, error) {
	return networkResult(m.Called(ctx, id))
}
