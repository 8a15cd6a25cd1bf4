package main

import (
	"alcyxob/fitness-programs/internal/api"
	"alcyxob/fitness-programs/internal/config"
	"alcyxob/fitness-programs/internal/logging"
	"alcyxob/fitness-programs/internal/repository"
	"alcyxob/fitness-programs/internal/repository/memory"
	"alcyxob/fitness-programs/internal/repository/mongo"
	"alcyxob/fitness-programs/internal/repository/redis"
	"alcyxob/fitness-programs/internal/service"
	"alcyxob/fitness-programs/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// backends are the stores chosen by configuration, plus their cleanup.
type backends struct {
	users       repository.UserRepository
	programs    repository.ProgramRepository
	revocations repository.TokenRevocationRepository
	files       storage.FileStorage // nil when s3.bucket_name is empty
	closers     []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func runServe(ctx context.Context, configPath string) error {
	// --- Configuration ---
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "driver", cfg.Storage.Driver, "address", cfg.Server.Address)

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	// --- Initialize Services ---
	svc := api.Services{
		Auth:         service.NewAuthService(b.users, b.revocations, cfg.JWT),
		Programs:     service.NewProgramService(b.programs, b.files, logger),
		TrainingDays: service.NewTrainingDayService(b.programs, b.files, logger),
		Exercises:    service.NewExerciseService(b.programs, b.files, logger),
		Sets:         service.NewSetService(b.programs, logger),
		Assignments:  service.NewAssignmentService(b.programs, b.users, logger),
	}
	if b.files != nil {
		svc.Media = service.NewMediaService(b.programs, b.files, logger)
	}

	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(svc, logger)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

func openBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		b.users = memory.NewUserRepository()
		b.programs = memory.NewProgramRepository()

	default:
		client, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		b.closers = append(b.closers, func() {
			logger.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(client); err != nil {
				logger.Error("failed to disconnect MongoDB", "error", err)
			}
		})
		appDB := client.Database(cfg.Database.Name)

		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		err = mongo.EnsureIndexes(indexCtx, appDB)
		cancel()
		if err != nil {
			b.close()
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}

		b.users = mongo.NewMongoUserRepository(appDB)
		b.programs = mongo.NewMongoProgramRepository(appDB)
		logger.Info("database connection established", "database", cfg.Database.Name)
	}

	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.revocations = redis.NewRevocationRepository(client)
	} else {
		b.revocations = memory.NewTokenRevocationRepository()
	}

	if cfg.S3.BucketName != "" {
		files, err := storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("initialize S3 storage: %w", err)
		}
		b.files = files
	} else {
		logger.Info("s3.bucket_name not set; exercise video routes disabled")
	}

	return b, nil
}
