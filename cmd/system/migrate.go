package system

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/mindbook_backend/internal/schema"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and seed the default RBAC policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			fmt.Println("Running migrations for the application DB.")
			db, err := database.NewFromCentral(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db, schema.TableDefinitions); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			// the ent adapter creates casbin_rule on first use
			fmt.Println("Running migrations for the policy DB.")
			enforcer, cleanup, err := authorize.NewEnforcer(
				authorize.FromCentralConfig(cfg.Authorization),
				database.NewDSN(cfg.CasbinDatabase),
			)
			if err != nil {
				return fmt.Errorf("failed to create enforcer: %w", err)
			}
			defer cleanup(context.Background())

			auth, err := authorize.NewAuthorization(enforcer)
			if err != nil {
				return fmt.Errorf("failed to create authorization: %w", err)
			}

			slog.Info("seeding casbin policies")
			if err := authorize.SeedDefaultPolicies(ctx, auth); err != nil {
				return fmt.Errorf("failed to seed policies: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
