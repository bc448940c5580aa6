package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"hirematrix-backend/config"
	"hirematrix-backend/internal/domain"
	"hirematrix-backend/internal/repository/postgres"
	"hirematrix-backend/migrations"
	"hirematrix-backend/pkg/credentials"
	"hirematrix-backend/pkg/database"
	"hirematrix-backend/pkg/validation"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

const app = "hirematrix-admin"

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "Operator tasks for the hirematrix backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newSeedAdminCmd(), newHashPasswordCmd(), newMigrateCmd())
}

func newSeedAdminCmd() *cobra.Command {
	var tenantName, email, password, name string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create a tenant and its first admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if _, _, err := database.Migrate(pool, migrations.FS); err != nil {
				return err
			}

			tenant, created, err := ensureTenant(ctx, postgres.NewTenantRepository(pool), tenantName)
			if err != nil {
				return err
			}

			req := domain.CreateUserRequest{
				Email:    strings.ToLower(strings.TrimSpace(email)),
				Password: password,
				Name:     strings.TrimSpace(name),
				Role:     string(domain.RoleAdmin),
				TenantID: tenant.ID,
			}
			if err := validation.New().Struct(req); err != nil {
				return fmt.Errorf("invalid admin: %s", strings.Join(validation.FormatValidationErrors(err), "; "))
			}

			hash, err := credentials.HashPassword(req.Password)
			if err != nil {
				return err
			}
			user := &domain.User{
				Email:        req.Email,
				Name:         req.Name,
				PasswordHash: hash,
				Role:         domain.RoleAdmin,
				TenantID:     tenant.ID,
			}
			if err := postgres.NewUserRepository(pool).Create(ctx, user); err != nil {
				if errors.Is(err, domain.ErrDuplicateEmail) {
					return fmt.Errorf("an account with email %s already exists", req.Email)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if created {
				fmt.Fprintf(out, "created tenant %q (%s)\n", tenant.Name, tenant.ID)
			} else {
				fmt.Fprintf(out, "using tenant %q (%s)\n", tenant.Name, tenant.ID)
			}
			fmt.Fprintf(out, "created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantName, "tenant", "", "tenant name (created when missing)")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (min 6 characters)")
	cmd.Flags().StringVar(&name, "name", "", "admin display name")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := credentials.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *database.Migrator) error {
				version, changed, err := m.Up()
				if err != nil {
					return err
				}
				if !changed {
					fmt.Fprintf(cmd.OutOrStdout(), "database is up to date (version %d)\n", version)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrated to version %d\n", version)
				return nil
			})
		},
	}
	cmd.AddCommand(newMigrateDownCmd())
	return cmd
}

func newMigrateDownCmd() *cobra.Command {
	var steps int
	var all bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := downSteps(steps, all)
			if err != nil {
				return err
			}
			return withMigrator(cmd, func(m *database.Migrator) error {
				version, err := m.Down(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back to version %d\n", version)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.Flags().BoolVar(&all, "all", false, "roll back every migration")
	return cmd
}

// downSteps returns 0 for "all" as expected by Migrator.Down.
func downSteps(steps int, all bool) (int, error) {
	if all {
		return 0, nil
	}
	if steps < 1 {
		return 0, errors.New("--steps must be at least 1 (use --all to roll back everything)")
	}
	return steps, nil
}

func withMigrator(cmd *cobra.Command, run func(m *database.Migrator) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	m, err := database.NewMigrator(pool, migrations.FS)
	if err != nil {
		return err
	}
	defer m.Close()
	return run(m)
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return database.NewPostgresConnection(ctx, cfg.DBUrl)
}

func ensureTenant(ctx context.Context, repo domain.TenantRepository, name string) (*domain.Tenant, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, errors.New("tenant name is required")
	}

	tenant, err := repo.GetByName(ctx, name)
	if err == nil {
		return tenant, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	tenant = &domain.Tenant{Name: name}
	if err := repo.Create(ctx, tenant); err != nil {
		return nil, false, err
	}
	return tenant, true, nil
}
