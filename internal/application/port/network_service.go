package port

import (
	"context"

	"github.com/google/uuid"

	"network-registry/internal/domain/entity"
)

// NetworkService defines the use cases of the network registry.
type NetworkService interface {
	// CreateNetwork validates params and persists a new active network.
	CreateNetwork(ctx context.Context, params entity.NetworkParams) (*entity.Network, error)

	// GetNetworkByID returns a network regardless of its activation state.
	GetNetworkByID(ctx context.Context, id uuid.UUID) (*entity.Network, error)

	// GetActiveNetworks lists active networks, oldest first.
	GetActiveNetworks(ctx context.Context) ([]entity.Network, error)

	// UpdateNetwork replaces every field except id, creation time and activation state.
	UpdateNetwork(ctx context.Context, id uuid.UUID, params entity.NetworkParams) (*entity.Network, error)

	// PartialUpdateNetwork overwrites only the fields present in patch.
	PartialUpdateNetwork(ctx context.Context, id uuid.UUID, patch entity.NetworkPatch) (*entity.Network, error)

	// DeleteNetwork soft-deletes a network and returns its inactive state.
	DeleteNetwork(ctx context.Context, id uuid.UUID) (*entity.Network, error)
}
