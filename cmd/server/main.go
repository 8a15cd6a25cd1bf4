package main

import (
	"alcyxob/fitness-programs/internal/config"
	"alcyxob/fitness-programs/internal/logging"
	"alcyxob/fitness-programs/internal/repository/mongo"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// @title Fitness Programs API
// @version 1.0
// @description Trainers build Program -> TrainingDay -> Exercise -> Set trees and assign them to trainees.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "fitness-server",
		Short:        "Fitness programs API server",
		SilenceUsage: true,
		// Running without a subcommand serves
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding config.yaml and .env")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnsureIndexes(cmd.Context(), configPath)
		},
	})

	return root
}

func runEnsureIndexes(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log)

	client, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		if err := mongo.DisconnectDB(client); err != nil {
			logger.Error("failed to disconnect MongoDB", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := mongo.EnsureIndexes(ctx, client.Database(cfg.Database.Name)); err != nil {
		return err
	}
	logger.Info("indexes ensured", "database", cfg.Database.Name)
	return nil
}
