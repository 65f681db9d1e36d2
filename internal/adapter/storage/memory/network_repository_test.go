package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"network-registry/internal/domain"
	"network-registry/internal/domain/entity"
	"network-registry/internal/pkg/apperrors"
)

var baseTime = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func newNetwork(chainID int64, createdAt time.Time) entity.Network {
	return entity.Network{
		ID:                   uuid.New(),
		ChainID:              chainID,
		Name:                 "Network",
		RPCURL:               "https://rpc.example.com",
		OtherRPCURLs:         []string{"https://rpc2.example.com"},
		BlockExplorerURL:     "https://explorer.example.com",
		FeeMultiplier:        decimal.NewFromInt(1),
		GasLimitMultiplier:   decimal.NewFromInt(1),
		Active:               true,
		DefaultSignerAddress: "0x00000000000000000000000000000000000000aa",
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}
}

func TestNetworkRepository_InsertAndFind(t *testing.T) {
	repo := NewNetworkRepository(zap.NewNop())
	ctx := context.Background()
	n := newNetwork(1, baseTime)

	created, err := repo.Insert(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, n, *created)

	byID, err := repo.FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, *byID)

	byChain, err := repo.FindByChainID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, n.ID, byChain.ID)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.FindByChainID(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNetworkRepository_ReturnsCopies(t *testing.T) {
	repo := NewNetworkRepository(zap.NewNop())
	ctx := context.Background()
	n := newNetwork(1, baseTime)
	_, err := repo.Insert(ctx, n)
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, n.ID)
	require.NoError(t, err)
	got.OtherRPCURLs[0] = "https://mutated.example.com"
	got.Name = "mutated"

	again, err := repo.FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Network", again.Name)
	assert.Equal(t, "https://rpc2.example.com", again.OtherRPCURLs[0])
}

func TestNetworkRepository_InsertDuplicateChainID(t *testing.T) {
	repo := NewNetworkRepository(zap.NewNop())
	ctx := context.Background()

	_, err := repo.Insert(ctx, newNetwork(1, baseTime))
	require.NoError(t, err)

	_, err = repo.Insert(ctx, newNetwork(1, baseTime))
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "chain_id 1 already exists", conflict.Reason)
}

func TestNetworkRepository_ListActiveOrdered(t *testing.T) {
	repo := NewNetworkRepository(zap.NewNop())
	ctx := context.Background()

	late := newNetwork(1, baseTime.Add(2*time.Hour))
	early := newNetwork(2, baseTime)
	inactive := newNetwork(3, baseTime.Add(time.Hour))
	inactive.Active = false
	for _, n := range []entity.Network{late, early, inactive} {
		_, err := repo.Insert(ctx, n)
		require.NoError(t, err)
	}

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, early.ID, active[0].ID)
	assert.Equal(t, late.ID, active[1].ID)
}

func TestNetworkRepository_Update(t *testing.T) {
	repo := NewNetworkRepository(zap.NewNop())
	ctx := context.Background()

	a := newNetwork(1, baseTime)
	b := newNetwork(2, baseTime)
	_, err := repo.Insert(ctx, a)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, b)
	require.NoError(t, err)

	moved := a
	moved.ChainID = 10
	moved.UpdatedAt = baseTime.Add(time.Minute)
	updated, err := repo.Update(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.ChainID)

	old, err := repo.FindByChainID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, old, "old chain id must be released")

	reused := newNetwork(1, baseTime)
	_, err = repo.Insert(ctx, reused)
	require.NoError(t, err)

	clash := b
	clash.ChainID = 10
	_, err = repo.Update(ctx, clash)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = repo.Update(ctx, newNetwork(99, baseTime))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNetworkRepository_ReplaceKeepsStoredActive(t *testing.T) {
	repo := NewNetworkRepository(zap.NewNop())
	ctx := context.Background()

	n := newNetwork(1, baseTime)
	_, err := repo.Insert(ctx, n)
	require.NoError(t, err)
	_, err = repo.SoftDelete(ctx, n.ID)
	require.NoError(t, err)

	stale := n
	stale.Name = "Renamed"
	stale.ChainID = 5
	replaced, err := repo.Replace(ctx, stale)
	require.NoError(t, err)
	assert.False(t, replaced.Active)
	assert.Equal(t, "Renamed", replaced.Name)

	stored, err := repo.FindByChainID(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Active)

	_, err = repo.Replace(ctx, newNetwork(99, baseTime))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNetworkRepository_SoftDelete(t *testing.T) {
	deletedAt := baseTime.Add(time.Hour)
	repo := NewNetworkRepository(zap.NewNop(), WithClock(func() time.Time { return deletedAt }))
	ctx := context.Background()

	n := newNetwork(1, baseTime)
	_, err := repo.Insert(ctx, n)
	require.NoError(t, err)

	deleted, err := repo.SoftDelete(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, deleted.Active)
	assert.Equal(t, deletedAt, deleted.UpdatedAt)

	again, err := repo.SoftDelete(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, again.Active)

	byChain, err := repo.FindByChainID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, byChain)
	assert.False(t, byChain.Active)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = repo.SoftDelete(ctx, uuid.New())
	assert.True(t, domain.IsNotFound(err))
}
