package sqlstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"network-registry/internal/config"
	"network-registry/internal/domain"
	"network-registry/internal/domain/entity"
	"network-registry/internal/pkg/apperrors"
)

var baseTime = time.Date(2026, 5, 1, 8, 0, 0, 123456000, time.UTC)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver:         config.DriverSQLite,
		DSN:            "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		ConnectRetries: 1,
	}
	db, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, EnsureSchema(context.Background(), db, config.DriverSQLite))
	// a second run must be a no-op
	require.NoError(t, EnsureSchema(context.Background(), db, config.DriverSQLite))
	return db
}

func newRepo(t *testing.T, opts ...Option) *NetworkRepository {
	t.Helper()
	return NewNetworkRepository(openTestDB(t), config.DriverSQLite, zap.NewNop(), opts...)
}

func newNetwork(chainID int64, createdAt time.Time) entity.Network {
	return entity.Network{
		ID:                   uuid.New(),
		ChainID:              chainID,
		Name:                 "Polygon",
		RPCURL:               "https://polygon-rpc.com",
		OtherRPCURLs:         []string{"https://rpc-a.example.com", "https://rpc-b.example.com"},
		TestNet:              true,
		BlockExplorerURL:     "https://polygonscan.com",
		FeeMultiplier:        decimal.RequireFromString("1.15"),
		GasLimitMultiplier:   decimal.RequireFromString("2"),
		Active:               true,
		DefaultSignerAddress: "0xAbCdEf0123456789abcdef0123456789ABCDEF01",
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}
}

func assertSameNetwork(t *testing.T, want, got entity.Network) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.ChainID, got.ChainID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.RPCURL, got.RPCURL)
	assert.Equal(t, want.OtherRPCURLs, got.OtherRPCURLs)
	assert.Equal(t, want.TestNet, got.TestNet)
	assert.Equal(t, want.BlockExplorerURL, got.BlockExplorerURL)
	assert.True(t, want.FeeMultiplier.Equal(got.FeeMultiplier), "fee multiplier %s != %s", want.FeeMultiplier, got.FeeMultiplier)
	assert.True(t, want.GasLimitMultiplier.Equal(got.GasLimitMultiplier))
	assert.Equal(t, want.Active, got.Active)
	assert.Equal(t, want.DefaultSignerAddress, got.DefaultSignerAddress)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %s != %s", want.UpdatedAt, got.UpdatedAt)
}

func TestNetworkRepository_InsertAndFind(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	n := newNetwork(137, baseTime)

	created, err := repo.Insert(ctx, n)
	require.NoError(t, err)
	assertSameNetwork(t, n, *created)

	byID, err := repo.FindByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assertSameNetwork(t, n, *byID)

	byChain, err := repo.FindByChainID(ctx, 137)
	require.NoError(t, err)
	require.NotNil(t, byChain)
	assert.Equal(t, n.ID, byChain.ID)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.FindByChainID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNetworkRepository_EmptyOtherURLs(t *testing.T) {
	repo := newRepo(t)
	n := newNetwork(1, baseTime)
	n.OtherRPCURLs = nil

	created, err := repo.Insert(context.Background(), n)
	require.NoError(t, err)
	assert.NotNil(t, created.OtherRPCURLs)
	assert.Empty(t, created.OtherRPCURLs)
}

func TestNetworkRepository_InsertDuplicateChainID(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, newNetwork(1, baseTime))
	require.NoError(t, err)

	_, err = repo.Insert(ctx, newNetwork(1, baseTime))
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "chain_id 1 already exists", conflict.Reason)
}

func TestNetworkRepository_ListActiveOrdered(t *testing.T) {
	repo := newRepo(t)
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

func TestNetworkRepository_ListActiveEmpty(t *testing.T) {
	repo := newRepo(t)

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, active)
	assert.Empty(t, active)
}

func TestNetworkRepository_Update(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a := newNetwork(1, baseTime)
	b := newNetwork(2, baseTime)
	_, err := repo.Insert(ctx, a)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, b)
	require.NoError(t, err)

	changed := a
	changed.ChainID = 10
	changed.Name = "Renamed"
	changed.OtherRPCURLs = []string{}
	changed.FeeMultiplier = decimal.RequireFromString("0.5")
	changed.Active = false
	changed.UpdatedAt = baseTime.Add(time.Minute)
	updated, err := repo.Update(ctx, changed)
	require.NoError(t, err)
	assertSameNetwork(t, changed, *updated)

	clash := b
	clash.ChainID = 10
	_, err = repo.Update(ctx, clash)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = repo.Update(ctx, newNetwork(99, baseTime))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNetworkRepository_ReplaceKeepsStoredActive(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a := newNetwork(1, baseTime)
	b := newNetwork(2, baseTime)
	_, err := repo.Insert(ctx, a)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, b)
	require.NoError(t, err)
	_, err = repo.SoftDelete(ctx, a.ID)
	require.NoError(t, err)

	stale := a
	stale.Name = "Renamed"
	stale.UpdatedAt = baseTime.Add(time.Minute)
	replaced, err := repo.Replace(ctx, stale)
	require.NoError(t, err)
	assert.False(t, replaced.Active)
	assert.Equal(t, "Renamed", replaced.Name)

	stored, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	clash := b
	clash.ChainID = 1
	_, err = repo.Replace(ctx, clash)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = repo.Replace(ctx, newNetwork(99, baseTime))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNetworkRepository_SoftDelete(t *testing.T) {
	deletedAt := baseTime.Add(time.Hour)
	repo := newRepo(t, WithClock(func() time.Time { return deletedAt }))
	ctx := context.Background()

	n := newNetwork(1, baseTime)
	_, err := repo.Insert(ctx, n)
	require.NoError(t, err)

	deleted, err := repo.SoftDelete(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, deleted.Active)
	assert.True(t, deletedAt.Equal(deleted.UpdatedAt))
	assert.True(t, n.CreatedAt.Equal(deleted.CreatedAt))

	again, err := repo.SoftDelete(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, again.Active)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = repo.SoftDelete(ctx, uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestNetworkRepository_StorageFailure(t *testing.T) {
	db := openTestDB(t)
	repo := NewNetworkRepository(db, config.DriverSQLite, zap.NewNop())
	require.NoError(t, db.Close())

	_, err := repo.FindByID(context.Background(), uuid.New())
	var storageErr *domain.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "find network by id", storageErr.Op)
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}

func TestOpen_InMemorySQLiteOutlivesConnMaxLifetime(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		DSN:             ":memory:",
		ConnectRetries:  1,
		ConnMaxLifetime: 50 * time.Millisecond,
	}
	ctx := context.Background()
	db, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureSchema(ctx, db, config.DriverSQLite))

	repo := NewNetworkRepository(db, config.DriverSQLite, zap.NewNop())
	_, err = repo.Insert(ctx, newNetwork(1, baseTime))
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
