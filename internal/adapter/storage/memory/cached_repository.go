package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"network-registry/internal/config"
	"network-registry/internal/domain/entity"
	domainRepo "network-registry/internal/domain/repository"
)

// Compile-time check
var _ domainRepo.NetworkRepository = (*CachedNetworkRepository)(nil)

// Cache keys
const activeNetworksKey = "active_networks_v1"

// CachedNetworkRepository is a read-through go-cache decorator over another NetworkRepository.
// Only ListActive is served from cache. Point lookups always reach the inner store because
// the mutating use cases read-modify-write through them.
//
// Every invalidation bumps a generation counter. A fill computed under an older generation
// is dropped, so a list read before a write can never be cached after it.
type CachedNetworkRepository struct {
	inner  domainRepo.NetworkRepository
	cache  *cache.Cache
	logger *zap.Logger

	mu         sync.Mutex
	generation uint64
}

// NewCachedNetworkRepository wraps inner with an in-memory read cache.
func NewCachedNetworkRepository(
	inner domainRepo.NetworkRepository,
	cfg config.CacheConfig,
	logger *zap.Logger,
) *CachedNetworkRepository {
	defaultExpiration := cfg.GetDefaultExpiration()
	cleanupInterval := cfg.GetCleanupInterval()

	c := cache.New(defaultExpiration, cleanupInterval)
	logger.Info(
		"Initialized go-cache for network reads",
		zap.Duration("defaultExpiration", defaultExpiration),
		zap.Duration("cleanupInterval", cleanupInterval),
	)

	return &CachedNetworkRepository{
		inner:  inner,
		cache:  c,
		logger: logger.Named("CachedNetworkStorage"),
	}
}

// FindByID is never cached.
func (r *CachedNetworkRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Network, error) {
	return r.inner.FindByID(ctx, id)
}

// FindByChainID is never cached.
func (r *CachedNetworkRepository) FindByChainID(ctx context.Context, chainID int64) (*entity.Network, error) {
	return r.inner.FindByChainID(ctx, chainID)
}

// ListActive serves the active list from cache, falling back to the inner store on a miss.
func (r *CachedNetworkRepository) ListActive(ctx context.Context) ([]entity.Network, error) {
	if x, found := r.cache.Get(activeNetworksKey); found {
		if networks, ok := x.([]entity.Network); ok {
			r.logger.Debug("Memory cache hit", zap.String("key", activeNetworksKey))
			return cloneAll(networks), nil
		}
		r.logger.Warn(
			"Memory cache data type mismatch for key",
			zap.String("key", activeNetworksKey), zap.String("type", fmt.Sprintf("%T", x)),
		)
	}
	r.logger.Debug("Memory cache miss", zap.String("key", activeNetworksKey))

	gen := r.currentGeneration()
	networks, err := r.inner.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	r.fill(gen, activeNetworksKey, cloneAll(networks))
	return networks, nil
}

// Insert delegates and drops the cached active list.
func (r *CachedNetworkRepository) Insert(ctx context.Context, network entity.Network) (*entity.Network, error) {
	r.invalidate(network.ID)
	created, err := r.inner.Insert(ctx, network)
	r.invalidate(network.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update delegates and drops the cached active list.
func (r *CachedNetworkRepository) Update(ctx context.Context, network entity.Network) (*entity.Network, error) {
	r.invalidate(network.ID)
	updated, err := r.inner.Update(ctx, network)
	r.invalidate(network.ID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Replace delegates and drops the cached active list.
func (r *CachedNetworkRepository) Replace(ctx context.Context, network entity.Network) (*entity.Network, error) {
	r.invalidate(network.ID)
	replaced, err := r.inner.Replace(ctx, network)
	r.invalidate(network.ID)
	if err != nil {
		return nil, err
	}
	return replaced, nil
}

// SoftDelete delegates and drops the cached active list.
func (r *CachedNetworkRepository) SoftDelete(ctx context.Context, id uuid.UUID) (*entity.Network, error) {
	r.invalidate(id)
	deleted, err := r.inner.SoftDelete(ctx, id)
	r.invalidate(id)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *CachedNetworkRepository) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// fill stores value only if no invalidation happened since gen was read.
func (r *CachedNetworkRepository) fill(gen uint64, key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		r.logger.Debug("Discarded stale cache fill", zap.String("key", key))
		return
	}
	r.cache.SetDefault(key, value)
}

func (r *CachedNetworkRepository) invalidate(id uuid.UUID) {
	r.mu.Lock()
	r.generation++
	r.cache.Delete(activeNetworksKey)
	r.mu.Unlock()
	r.logger.Debug("Memory cache invalidated", zap.Stringer("id", id))
}

func cloneAll(networks []entity.Network) []entity.Network {
	out := make([]entity.Network, len(networks))
	for i := range networks {
		out[i] = networks[i].Clone()
	}
	return out
}
