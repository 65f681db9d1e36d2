package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"network-registry/internal/application/port"
	"network-registry/internal/domain"
	"network-registry/internal/domain/entity"
	domainRepo "network-registry/internal/domain/repository"
)

// Compile-time check to ensure networkService implements NetworkService
var _ port.NetworkService = (*networkService)(nil)

// Clock returns the current time used for entity timestamps.
type Clock func() time.Time

// Option customizes a networkService.
type Option func(*networkService)

// WithClock overrides the time source, mostly for tests.
func WithClock(clock Clock) Option {
	return func(s *networkService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// DefaultClock is UTC wall time truncated to what every storage backend can round-trip.
func DefaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// networkService implements port.NetworkService on top of a NetworkRepository.
type networkService struct {
	repo   domainRepo.NetworkRepository
	logger *zap.Logger
	now    Clock
}

// NewNetworkService creates a new instance of the network service.
func NewNetworkService(repo domainRepo.NetworkRepository, logger *zap.Logger, opts ...Option) port.NetworkService {
	s := &networkService{
		repo:   repo,
		logger: logger.Named("NetworkService"),
		now:    DefaultClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNetwork validates the candidate, rejects taken chain ids and inserts the new network.
func (s *networkService) CreateNetwork(ctx context.Context, params entity.NetworkParams) (*entity.Network, error) {
	if err := params.Validate(); err != nil {
		s.logger.Debug("Rejected invalid network", zap.Error(err))
		return nil, err
	}

	if err := s.ensureChainIDFree(ctx, params.ChainID, uuid.Nil); err != nil {
		return nil, err
	}

	network, err := entity.NewNetwork(params, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, *network)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Network created",
		zap.Stringer("id", created.ID), zap.Int64("chainId", created.ChainID),
	)
	return created, nil
}

// GetNetworkByID returns the network or a NotFoundError.
func (s *networkService) GetNetworkByID(ctx context.Context, id uuid.UUID) (*entity.Network, error) {
	return s.load(ctx, id)
}

// GetActiveNetworks returns the active networks; an empty result is not an error.
func (s *networkService) GetActiveNetworks(ctx context.Context) ([]entity.Network, error) {
	networks, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if networks == nil {
		networks = []entity.Network{}
	}
	s.logger.Debug("Listed active networks", zap.Int("count", len(networks)))
	return networks, nil
}

// UpdateNetwork performs a full replacement. ID and CreatedAt are preserved and
// Active is left to the store, so a stale read can never flip it.
func (s *networkService) UpdateNetwork(
	ctx context.Context,
	id uuid.UUID,
	params entity.NetworkParams,
) (*entity.Network, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.ChainID != current.ChainID {
		if err := s.ensureChainIDFree(ctx, params.ChainID, id); err != nil {
			return nil, err
		}
	}

	if err := params.Validate(); err != nil {
		s.logger.Debug("Rejected invalid update", zap.Stringer("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Replace(ctx, current.WithParams(params, s.now()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Network updated", zap.Stringer("id", id), zap.Int64("chainId", updated.ChainID))
	return updated, nil
}

// PartialUpdateNetwork overwrites only the present fields. It is the only way to flip Active directly.
func (s *networkService) PartialUpdateNetwork(
	ctx context.Context,
	id uuid.UUID,
	patch entity.NetworkPatch,
) (*entity.Network, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		s.logger.Debug("Rejected invalid patch", zap.Stringer("id", id), zap.Error(err))
		return nil, err
	}

	if patch.ChainID != nil && *patch.ChainID != current.ChainID {
		if err := s.ensureChainIDFree(ctx, *patch.ChainID, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, current.WithPatch(patch, s.now()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Network patched", zap.Stringer("id", id), zap.Bool("active", updated.Active))
	return updated, nil
}

// DeleteNetwork soft-deletes the network. Deleting an inactive network succeeds again.
func (s *networkService) DeleteNetwork(ctx context.Context, id uuid.UUID) (*entity.Network, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Network deactivated", zap.Stringer("id", id))
	return deleted, nil
}

func (s *networkService) load(ctx context.Context, id uuid.UUID) (*entity.Network, error) {
	network, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if network == nil {
		return nil, domain.NewNotFoundError(id.String())
	}
	return network, nil
}

// ensureChainIDFree fails with a ConflictError when chainID belongs to a network other than self.
// The check is advisory; the repository remains the final authority on uniqueness.
func (s *networkService) ensureChainIDFree(ctx context.Context, chainID int64, self uuid.UUID) error {
	existing, err := s.repo.FindByChainID(ctx, chainID)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		s.logger.Debug("Chain id already taken",
			zap.Int64("chainId", chainID), zap.Stringer("ownerId", existing.ID),
		)
		return domain.NewChainIDConflictError(chainID)
	}
	return nil
}
