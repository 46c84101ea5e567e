// Command hourbook-admin is the operations CLI: it bootstraps the first
// admin account and runs database migrations outside the server process.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/auth"
	"github.com/hourbook/hourbook/pkg/config"
	"github.com/hourbook/hourbook/pkg/database"
	"github.com/hourbook/hourbook/pkg/logging"
	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/repositories"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

func main() {
	root := &cobra.Command{
		Use:           "hourbook-admin",
		Short:         "Operations CLI for hourbook",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE:  runCreateAdmin,
	}
	createAdmin.Flags().StringVar(&adminEmail, "email", "", "admin email address")
	createAdmin.Flags().StringVar(&adminPassword, "password", "", "admin password")
	createAdmin.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	_ = createAdmin.MarkFlagRequired("email")
	_ = createAdmin.MarkFlagRequired("password")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate,
	}

	root.AddCommand(createAdmin, migrateCmd)

	if err := root.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load("cli")
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{
		URL: cfg.Database.ConnectionString(),
	})
	if err != nil {
		return err
	}
	defer db.Close()

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("password rejected: %w", err)
	}

	profile := &models.UserProfile{
		ID:       uuid.NewString(),
		Email:    adminEmail,
		Name:     adminName,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	userRepo := repositories.NewUserRepository(db)
	if err := userRepo.Create(ctx, profile, hash); err != nil {
		return err
	}

	color.Green("Admin account created")
	fmt.Printf("  id:    %s\n", profile.ID)
	fmt.Printf("  email: %s\n", profile.Email)
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load("cli")
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := database.RunMigrations(db, cfg.MigrationsPath, logger); err != nil {
		logger.Error("Migration failed", zap.Error(err))
		return err
	}

	color.Green("Migrations applied")
	return nil
}
