package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/wasteless-api/internal/auth"
	"github.com/redmonkez12/wasteless-api/internal/config"
	"github.com/redmonkez12/wasteless-api/internal/database"
	"github.com/redmonkez12/wasteless-api/internal/food"
	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/internal/storage"
	"github.com/redmonkez12/wasteless-api/internal/user"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "wastelessctl",
		Short:        "Operator tooling for the Wasteless API",
		SilenceUsage: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE:  runMigrateUp,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			RunE:  runMigrateStatus,
		},
	)

	reapCmd := &cobra.Command{
		Use:   "reap",
		Short: "Delete expired listings once and exit",
		RunE:  runReap,
	}

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an existing user",
		RunE:  runToken,
	}
	tokenCmd.Flags().String("email", "", "Email of the user")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to ACCESS_TOKEN_DURATION)")
	_ = tokenCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(migrateCmd, reapCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withDB loads the configuration and opens the database for one command
func withDB(ctx context.Context, fn func(cfg *config.Config, db *bun.DB, logger *logging.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.NewLogger(cfg.Server.IsDevelopment())

	db, err := database.Open(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(cfg, db, logger)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	return withDB(cmd.Context(), func(_ *config.Config, db *bun.DB, logger *logging.Logger) error {
		if err := database.Migrate(cmd.Context(), db.DB); err != nil {
			return err
		}
		logger.Info("database migrations applied")
		return nil
	})
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	return withDB(cmd.Context(), func(_ *config.Config, db *bun.DB, _ *logging.Logger) error {
		return database.MigrationStatus(cmd.Context(), db.DB)
	})
}

func runReap(cmd *cobra.Command, args []string) error {
	return withDB(cmd.Context(), func(cfg *config.Config, db *bun.DB, logger *logging.Logger) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		var blobs food.BlobDeleter
		if uploader, err := storage.NewS3Uploader(ctx, cfg.Storage); err != nil {
			logger.Warn("object storage unavailable, photos of reaped listings are kept", "error", err.Error())
		} else {
			blobs = uploader
		}

		deleted, err := food.NewReaper(food.NewRepository(db), blobs, logger).Sweep(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired listings\n", deleted)
		return nil
	})
}

func runToken(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	return withDB(cmd.Context(), func(cfg *config.Config, db *bun.DB, logger *logging.Logger) error {
		if cfg.Auth.Mode != config.AuthModeBearer {
			return fmt.Errorf("tokens are only issued in %q auth mode", config.AuthModeBearer)
		}

		tokens, err := auth.NewTokenService(cfg.Auth)
		if err != nil {
			return err
		}

		users := user.NewRepository(db)
		u, err := users.GetByEmail(cmd.Context(), email)
		if err != nil {
			return fmt.Errorf("failed to find %s: %w", email, err)
		}

		svc := auth.NewService(users, tokens, nil, nil, logger, auth.Options{
			Mode:                cfg.Auth.Mode,
			AccessTokenDuration: cfg.Auth.AccessTokenDuration,
		})
		token, err := svc.IssueToken(u, ttl)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	})
}
