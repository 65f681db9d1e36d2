package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"network-registry/internal/domain"
	"network-registry/internal/domain/entity"
	domainRepo "network-registry/internal/domain/repository"
)

// Compile-time check
var _ domainRepo.NetworkRepository = (*NetworkRepository)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const networkColumns = `id, chain_id, name, rpc_url, other_rpc_urls, test_net, block_explorer_url,
	fee_multiplier, gas_limit_multiplier, active, default_signer_address, created_at, updated_at`

// NetworkRepository stores networks in a SQL database through database/sql.
type NetworkRepository struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
	now    func() time.Time
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

// NewNetworkRepository creates a repository over db. driver selects the placeholder dialect.
func NewNetworkRepository(db *sql.DB, driver string, logger *zap.Logger, opts ...Option) *NetworkRepository {
	r := &NetworkRepository{
		db:     db,
		driver: driver,
		logger: logger.Named("SQLNetworkStorage"),
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *NetworkRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Network, error) {
	query := `SELECT ` + networkColumns + ` FROM networks WHERE id = ?`
	network, err := r.queryOne(ctx, query, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("find network by id", err)
	}
	return network, nil
}

func (r *NetworkRepository) FindByChainID(ctx context.Context, chainID int64) (*entity.Network, error) {
	query := `SELECT ` + networkColumns + ` FROM networks WHERE chain_id = ?`
	network, err := r.queryOne(ctx, query, chainID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("find network by chain id", err)
	}
	return network, nil
}

func (r *NetworkRepository) ListActive(ctx context.Context) ([]entity.Network, error) {
	query := `SELECT ` + networkColumns + ` FROM networks WHERE active = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, rebind(r.driver, query), true)
	if err != nil {
		return nil, domain.NewStorageError("list active networks", err)
	}
	defer rows.Close()

	networks := []entity.Network{}
	for rows.Next() {
		network, err := scanNetwork(rows)
		if err != nil {
			return nil, domain.NewStorageError("list active networks", err)
		}
		networks = append(networks, *network)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list active networks", err)
	}
	return networks, nil
}

func (r *NetworkRepository) Insert(ctx context.Context, network entity.Network) (*entity.Network, error) {
	otherURLs, err := encodeURLs(network.OtherRPCURLs)
	if err != nil {
		return nil, domain.NewStorageError("insert network", err)
	}

	query := `INSERT INTO networks (` + networkColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + networkColumns
	created, err := r.queryOne(ctx, query,
		network.ID.String(), network.ChainID, network.Name, network.RPCURL, otherURLs,
		network.TestNet, network.BlockExplorerURL, network.FeeMultiplier, network.GasLimitMultiplier,
		network.Active, network.DefaultSignerAddress, network.CreatedAt, network.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewChainIDConflictError(network.ChainID)
		}
		return nil, domain.NewStorageError("insert network", err)
	}

	r.logger.Debug("Network inserted", zap.Stringer("id", created.ID), zap.Int64("chainId", created.ChainID))
	return created, nil
}

func (r *NetworkRepository) Update(ctx context.Context, network entity.Network) (*entity.Network, error) {
	otherURLs, err := encodeURLs(network.OtherRPCURLs)
	if err != nil {
		return nil, domain.NewStorageError("update network", err)
	}

	query := `UPDATE networks SET
			chain_id = ?, name = ?, rpc_url = ?, other_rpc_urls = ?, test_net = ?,
			block_explorer_url = ?, fee_multiplier = ?, gas_limit_multiplier = ?,
			active = ?, default_signer_address = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + networkColumns
	updated, err := r.queryOne(ctx, query,
		network.ChainID, network.Name, network.RPCURL, otherURLs, network.TestNet,
		network.BlockExplorerURL, network.FeeMultiplier, network.GasLimitMultiplier,
		network.Active, network.DefaultSignerAddress, network.UpdatedAt,
		network.ID.String(),
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.NewNotFoundError(network.ID.String())
	case err != nil && isUniqueViolation(err):
		return nil, domain.NewChainIDConflictError(network.ChainID)
	case err != nil:
		return nil, domain.NewStorageError("update network", err)
	}

	r.logger.Debug("Network updated", zap.Stringer("id", updated.ID))
	return updated, nil
}

// Replace writes every column but active, so a full update never flips activation.
func (r *NetworkRepository) Replace(ctx context.Context, network entity.Network) (*entity.Network, error) {
	otherURLs, err := encodeURLs(network.OtherRPCURLs)
	if err != nil {
		return nil, domain.NewStorageError("replace network", err)
	}

	query := `UPDATE networks SET
			chain_id = ?, name = ?, rpc_url = ?, other_rpc_urls = ?, test_net = ?,
			block_explorer_url = ?, fee_multiplier = ?, gas_limit_multiplier = ?,
			default_signer_address = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + networkColumns
	replaced, err := r.queryOne(ctx, query,
		network.ChainID, network.Name, network.RPCURL, otherURLs, network.TestNet,
		network.BlockExplorerURL, network.FeeMultiplier, network.GasLimitMultiplier,
		network.DefaultSignerAddress, network.UpdatedAt,
		network.ID.String(),
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.NewNotFoundError(network.ID.String())
	case err != nil && isUniqueViolation(err):
		return nil, domain.NewChainIDConflictError(network.ChainID)
	case err != nil:
		return nil, domain.NewStorageError("replace network", err)
	}

	r.logger.Debug("Network replaced", zap.Stringer("id", replaced.ID))
	return replaced, nil
}

func (r *NetworkRepository) SoftDelete(ctx context.Context, id uuid.UUID) (*entity.Network, error) {
	query := `UPDATE networks SET active = ?, updated_at = ? WHERE id = ? RETURNING ` + networkColumns
	deleted, err := r.queryOne(ctx, query, false, r.now(), id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(id.String())
	}
	if err != nil {
		return nil, domain.NewStorageError("soft delete network", err)
	}

	r.logger.Debug("Network deactivated", zap.Stringer("id", id))
	return deleted, nil
}

func (r *NetworkRepository) queryOne(ctx context.Context, query string, args ...any) (*entity.Network, error) {
	return scanNetwork(r.db.QueryRowContext(ctx, rebind(r.driver, query), args...))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNetwork(row rowScanner) (*entity.Network, error) {
	var (
		n         entity.Network
		otherURLs string
	)
	err := row.Scan(
		&n.ID, &n.ChainID, &n.Name, &n.RPCURL, &otherURLs, &n.TestNet, &n.BlockExplorerURL,
		&n.FeeMultiplier, &n.GasLimitMultiplier, &n.Active, &n.DefaultSignerAddress,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.OtherRPCURLs = []string{}
	if otherURLs != "" {
		if err := json.UnmarshalFromString(otherURLs, &n.OtherRPCURLs); err != nil {
			return nil, err
		}
	}
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	return &n, nil
}

func encodeURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	return json.MarshalToString(urls)
}
