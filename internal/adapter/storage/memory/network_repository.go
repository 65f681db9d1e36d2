package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"network-registry/internal/domain"
	"network-registry/internal/domain/entity"
	domainRepo "network-registry/internal/domain/repository"
)

// Compile-time check
var _ domainRepo.NetworkRepository = (*NetworkRepository)(nil)

// NetworkRepository keeps networks in process memory.
// Entries never expire; the chain index cache enforces chain id uniqueness through Add.
type NetworkRepository struct {
	mu         sync.Mutex
	networks   *cache.Cache
	chainIndex *cache.Cache
	logger     *zap.Logger
	now        func() time.Time
}

// Option customizes a NetworkRepository.
type Option func(*NetworkRepository)

// WithClock sets the time source used by SoftDelete.
func WithClock(now func() time.Time) Option {
	return func(r *NetworkRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewNetworkRepository creates an empty in-memory network store.
func NewNetworkRepository(logger *zap.Logger, opts ...Option) *NetworkRepository {
	r := &NetworkRepository{
		networks:   cache.New(cache.NoExpiration, 0),
		chainIndex: cache.New(cache.NoExpiration, 0),
		logger:     logger.Named("MemoryNetworkStorage"),
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByID returns a copy of the stored network or nil.
func (r *NetworkRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Network, error) {
	network, ok := r.get(id.String())
	if !ok {
		return nil, nil
	}
	return &network, nil
}

// FindByChainID resolves the chain index and returns a copy of the owner or nil.
func (r *NetworkRepository) FindByChainID(_ context.Context, chainID int64) (*entity.Network, error) {
	x, found := r.chainIndex.Get(chainKey(chainID))
	if !found {
		return nil, nil
	}
	id, ok := x.(uuid.UUID)
	if !ok {
		return nil, domain.NewStorageError("find by chain id", fmt.Errorf("unexpected index type %T", x))
	}
	network, ok := r.get(id.String())
	if !ok {
		return nil, nil
	}
	return &network, nil
}

// ListActive returns active networks sorted by CreatedAt, ties broken by id.
func (r *NetworkRepository) ListActive(_ context.Context) ([]entity.Network, error) {
	items := r.networks.Items()
	active := make([]entity.Network, 0, len(items))
	for _, item := range items {
		network, ok := item.Object.(entity.Network)
		if !ok || !network.Active {
			continue
		}
		active = append(active, network.Clone())
	}
	sort.Slice(active, func(i, j int) bool {
		if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].CreatedAt.Before(active[j].CreatedAt)
		}
		return active[i].ID.String() < active[j].ID.String()
	})
	return active, nil
}

// Insert stores a new network unless its chain id is already indexed.
func (r *NetworkRepository) Insert(_ context.Context, network entity.Network) (*entity.Network, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.chainIndex.Add(chainKey(network.ChainID), network.ID, cache.NoExpiration); err != nil {
		return nil, domain.NewChainIDConflictError(network.ChainID)
	}
	if err := r.networks.Add(network.ID.String(), network.Clone(), cache.NoExpiration); err != nil {
		r.chainIndex.Delete(chainKey(network.ChainID))
		return nil, domain.NewConflictError(fmt.Sprintf("network %s already exists", network.ID))
	}

	r.logger.Debug("Network stored", zap.Stringer("id", network.ID), zap.Int64("chainId", network.ChainID))
	stored := network.Clone()
	return &stored, nil
}

// Update replaces the stored network, moving its chain index entry when the chain id changed.
func (r *NetworkRepository) Update(_ context.Context, network entity.Network) (*entity.Network, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store(network, false)
}

// Replace is Update with the stored Active flag kept.
func (r *NetworkRepository) Replace(_ context.Context, network entity.Network) (*entity.Network, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store(network, true)
}

// store must be called with mu held.
func (r *NetworkRepository) store(network entity.Network, keepActive bool) (*entity.Network, error) {
	current, ok := r.get(network.ID.String())
	if !ok {
		return nil, domain.NewNotFoundError(network.ID.String())
	}
	if keepActive {
		network.Active = current.Active
	}

	if current.ChainID != network.ChainID {
		if err := r.chainIndex.Add(chainKey(network.ChainID), network.ID, cache.NoExpiration); err != nil {
			return nil, domain.NewChainIDConflictError(network.ChainID)
		}
		r.chainIndex.Delete(chainKey(current.ChainID))
	}

	network.CreatedAt = current.CreatedAt
	r.networks.Set(network.ID.String(), network.Clone(), cache.NoExpiration)

	r.logger.Debug("Network replaced", zap.Stringer("id", network.ID))
	stored := network.Clone()
	return &stored, nil
}

// SoftDelete deactivates the network. Repeating it on an inactive network succeeds.
func (r *NetworkRepository) SoftDelete(_ context.Context, id uuid.UUID) (*entity.Network, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.get(id.String())
	if !ok {
		return nil, domain.NewNotFoundError(id.String())
	}

	deleted := current.Deactivate(r.now())
	r.networks.Set(id.String(), deleted.Clone(), cache.NoExpiration)

	r.logger.Debug("Network deactivated", zap.Stringer("id", id))
	return &deleted, nil
}

func (r *NetworkRepository) get(key string) (entity.Network, bool) {
	x, found := r.networks.Get(key)
	if !found {
		return entity.Network{}, false
	}
	network, ok := x.(entity.Network)
	if !ok {
		r.logger.Warn("Memory storage data type mismatch for key",
			zap.String("key", key), zap.String("type", fmt.Sprintf("%T", x)),
		)
		return entity.Network{}, false
	}
	return network.Clone(), true
}

func chainKey(chainID int64) string {
	return strconv.FormatInt(chainID, 10)
}
