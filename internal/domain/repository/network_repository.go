package repository

import (
	"context"

	"github.com/google/uuid"

	"network-registry/internal/domain/entity"
)

// NetworkRepository defines the persistence contract for networks.
// Implementations report failures as domain.NotFoundError, domain.ConflictError or domain.StorageError.
type NetworkRepository interface {
	// FindByID returns the network with the given id, or nil when it does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Network, error)

	// FindByChainID returns the network holding chainID, active or not, or nil when none does.
	FindByChainID(ctx context.Context, chainID int64) (*entity.Network, error)

	// ListActive returns active networks ordered by creation time, oldest first.
	ListActive(ctx context.Context) ([]entity.Network, error)

	// Insert persists a new network. A duplicate chain id yields a ConflictError.
	Insert(ctx context.Context, network entity.Network) (*entity.Network, error)

	// Update replaces every mutable field of an existing network, Active included.
	Update(ctx context.Context, network entity.Network) (*entity.Network, error)

	// Replace overwrites every mutable field except Active, which keeps its stored value.
	Replace(ctx context.Context, network entity.Network) (*entity.Network, error)

	// SoftDelete marks the network inactive and refreshes UpdatedAt.
	SoftDelete(ctx context.Context, id uuid.UUID) (*entity.Network, error)
}
