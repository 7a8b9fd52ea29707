package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/mindbook_backend/internal/app"
	"github.com/Alijeyrad/mindbook_backend/internal/repo"
	"github.com/Alijeyrad/mindbook_backend/internal/service/auth"
	"github.com/Alijeyrad/mindbook_backend/pkg/authorize"
	"github.com/Alijeyrad/mindbook_backend/pkg/util/password"
)

// NewCreateAdminCommand bootstraps the first admin account. Later admins are
// granted through POST /api/admin/roles.
func NewCreateAdminCommand() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an account holding role:admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			addr, err := auth.NormalizeEmail(email)
			if err != nil {
				return err
			}

			var (
				db     *repo.Client
				hasher *password.Hasher
				authz  authorize.IAuthorization
			)
			fxApp := fx.New(
				fx.Supply(cfg),
				app.InfraModule,
				fx.Populate(&db, &hasher, &authz),
				fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
			)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := fxApp.Start(ctx); err != nil {
				return err
			}
			defer fxApp.Stop(context.Background())

			generated := pass == ""
			if generated {
				if pass, err = hasher.Temporary(); err != nil {
					return err
				}
			} else if err := hasher.Check(pass); err != nil {
				return err
			}
			hash, err := hasher.Hash(pass)
			if err != nil {
				return err
			}

			acc := &repo.Account{Email: addr, PasswordHash: hash, IsActive: true}
			if err := db.Accounts.Create(ctx, acc); err != nil {
				if repo.IsUniqueViolation(err) {
					return fmt.Errorf("account %s already exists", addr)
				}
				return err
			}
			if _, err := authz.AddRole(ctx, authorize.GroupSubject(acc.ID.String()), authorize.RoleAdmin); err != nil {
				return fmt.Errorf("grant admin role: %w", err)
			}

			fmt.Printf("Admin %s created (id %s).\n", addr, acc.ID)
			if generated {
				fmt.Printf("Temporary password: %s\n", pass)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&pass, "password", "", "password; generated when empty")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
