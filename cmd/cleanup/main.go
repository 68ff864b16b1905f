package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mediavault/internal/config"
	"mediavault/internal/repository/postgres"
	postgresMedia "mediavault/internal/repository/postgres/media"
	serviceMedia "mediavault/internal/service/media"
	"mediavault/internal/storage"
)

// Sweeps expired permission grants and time-expired shares on a fixed
// interval until interrupted; --once runs a single sweep and exits.
// --purge-folder deletes a folder subtree including its stored objects
// instead of sweeping.
func main() {
	once := flag.Bool("once", false, "Run a single sweep and exit")
	logDir := flag.String("log-dir", "logs", "Directory for sweep log files")
	purgeFolder := flag.String("purge-folder", "", "Delete the folder subtree with this id, including stored objects, then exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	logFile, err := config.SetupLogFile(*logDir, "cleanup", 10)
	if err != nil {
		log.Fatalf("Failed to set up log file: %v", err)
	}
	defer logFile.Close()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stdout, logFile), &slog.HandlerOptions{
		Level: level,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	folderRepo := postgresMedia.NewFolderRepository(repoConfig)
	fileRepo := postgresMedia.NewFileRepository(repoConfig)
	permRepo := postgresMedia.NewPermissionRepository(repoConfig)
	shareRepo := postgresMedia.NewShareRepository(repoConfig)
	userDir := postgresMedia.NewUserDirectory(repoConfig)

	permService := serviceMedia.NewPermissionService(permRepo, folderRepo, userDir, logger)
	shareService := serviceMedia.NewShareService(shareRepo, fileRepo, folderRepo, logger)

	if *purgeFolder != "" {
		objects, err := storage.NewMinioStore(ctx, &cfg.Storage, logger)
		if err != nil {
			log.Fatalf("Failed to connect to object store: %v", err)
		}

		txManager := postgres.NewTransactionManager(pool)
		folderService := serviceMedia.NewFolderService(
			folderRepo, fileRepo, userDir, objects, txManager, serviceMedia.NewTreeCache(), logger)

		if err := folderService.Delete(ctx, *purgeFolder); err != nil {
			log.Fatalf("Failed to purge folder %s: %v", *purgeFolder, err)
		}
		logger.Info("folder purged", "id", *purgeFolder)
		return
	}

	sweep := func(ctx context.Context) {
		permRemoved, err := permService.CleanupExpiredPermissions(ctx)
		if err != nil {
			logger.Error("permission sweep failed", "error", err)
		}

		shareRemoved, err := shareService.CleanupExpiredShares(ctx)
		if err != nil {
			logger.Error("share sweep failed", "error", err)
		}

		logger.Info("sweep complete",
			"permissions_removed", permRemoved,
			"shares_removed", shareRemoved,
		)
	}

	sweep(ctx)
	if *once {
		return
	}

	logger.Info("cleanup loop started", "interval", cfg.Cleanup.Interval.String())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Cleanup.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweep(ctx)
		case sig := <-stop:
			logger.Info("cleanup loop stopping", "signal", sig.String())
			return
		}
	}
}
