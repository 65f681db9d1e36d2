package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"network-registry/internal/config"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS networks (
		id                     UUID PRIMARY KEY,
		chain_id               BIGINT NOT NULL,
		name                   VARCHAR(100) NOT NULL,
		rpc_url                VARCHAR(500) NOT NULL,
		other_rpc_urls         TEXT NOT NULL DEFAULT '[]',
		test_net               BOOLEAN NOT NULL DEFAULT FALSE,
		block_explorer_url     VARCHAR(500) NOT NULL,
		fee_multiplier         NUMERIC NOT NULL,
		gas_limit_multiplier   NUMERIC NOT NULL,
		active                 BOOLEAN NOT NULL DEFAULT TRUE,
		default_signer_address CHAR(42) NOT NULL,
		created_at             TIMESTAMPTZ NOT NULL,
		updated_at             TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS networks_chain_id_key ON networks (chain_id)`,
	`CREATE INDEX IF NOT EXISTS networks_active_idx ON networks (active)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS networks (
		id                     TEXT PRIMARY KEY,
		chain_id               INTEGER NOT NULL,
		name                   TEXT NOT NULL,
		rpc_url                TEXT NOT NULL,
		other_rpc_urls         TEXT NOT NULL DEFAULT '[]',
		test_net               BOOLEAN NOT NULL DEFAULT 0,
		block_explorer_url     TEXT NOT NULL,
		fee_multiplier         TEXT NOT NULL,
		gas_limit_multiplier   TEXT NOT NULL,
		active                 BOOLEAN NOT NULL DEFAULT 1,
		default_signer_address TEXT NOT NULL,
		created_at             TIMESTAMP NOT NULL,
		updated_at             TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS networks_chain_id_key ON networks (chain_id)`,
	`CREATE INDEX IF NOT EXISTS networks_active_idx ON networks (active)`,
}

// EnsureSchema creates the networks table and its indexes when missing.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	var statements []string
	switch driver {
	case config.DriverPostgres:
		statements = postgresSchema
	case config.DriverSQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", driver)
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
