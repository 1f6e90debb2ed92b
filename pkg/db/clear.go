package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const clearLogPrefix = "db:clear"

// ClearRegistry truncates all registry tables (interface_functions,
// interface_versions, interface_defaults, contracts) in dependency order.
// Schema is preserved; only data is removed.
func ClearRegistry(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info(fmt.Sprintf("%s - Clearing registry tables", clearLogPrefix))

	_, err := pool.Exec(ctx, `TRUNCATE TABLE
		interface_functions,
		interface_versions,
		interface_defaults,
		contracts
		RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("%s - truncate failed: %w", clearLogPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Registry cleared", clearLogPrefix))
	return nil
}
