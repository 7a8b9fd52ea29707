package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Alijeyrad/mindbook_backend/config"
)

// Targets lists the databases `system init` creates: server.databases when
// set, otherwise the application and casbin databases from their sections.
func Targets(cfg *config.Config) []string {
	if len(cfg.Server.Databases) > 0 {
		return cfg.Server.Databases
	}
	names := []string{cfg.Database.DBName}
	if n := cfg.CasbinDatabase.DBName; n != "" && n != cfg.Database.DBName {
		names = append(names, n)
	}
	return names
}

// InitializeDatabases connects to the maintenance database with the
// application credentials and creates each missing target.
func InitializeDatabases(ctx context.Context, cfg *config.Config) error {
	targets := Targets(cfg)
	if len(targets) == 0 || targets[0] == "" {
		return fmt.Errorf("no database names configured")
	}

	maint := FromCentralConfig(cfg.Database)
	maint.DBName = "postgres"
	conn, err := Open(maint)
	if err != nil {
		return fmt.Errorf("connect to maintenance database: %w", err)
	}
	defer conn.Close()

	for _, name := range targets {
		created, err := ensureDatabase(ctx, conn, name)
		if err != nil {
			return fmt.Errorf("database %q: %w", name, err)
		}
		slog.Info("database ready", "name", name, "created", created)
	}
	return nil
}

func ensureDatabase(ctx context.Context, conn *sqlx.DB, name string) (bool, error) {
	var exists bool
	if err := conn.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, name); err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	// CREATE DATABASE takes no bind parameters
	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return false, err
	}
	return true, nil
}
