package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/db"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repository.New(cfg)
		if err != nil {
			return err
		}
		defer repos.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		if _, err := repos.DB.ExecContext(ctx, db.Schema); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}

		slog.Info("Schema applied", slog.String("database", cfg.Database.Name))

		return nil
	},
}
