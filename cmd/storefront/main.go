package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	verbose    bool

	cfg *config.Config
)

// @title						Storefront API
// @version					1.0
// @description				Cart, checkout, payments and reviews for a single storefront.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront API server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if configPath == "" {
			configPath = config.ResolvePath()
		}

		loaded, err := config.LoadConfigFromPath(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		cfg = loaded

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config (defaults to CONFIG_PATH or config/local.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
