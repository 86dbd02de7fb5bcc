package app

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/semmidev/exbackup/internal/adapter/archiver"
	"github.com/semmidev/exbackup/internal/adapter/database"
	"github.com/semmidev/exbackup/internal/adapter/storage"
	"github.com/semmidev/exbackup/internal/config"
	"github.com/semmidev/exbackup/internal/domain"
	"github.com/semmidev/exbackup/internal/infrastructure/logger"
	"github.com/semmidev/exbackup/internal/usecase"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	backupUC   domain.BackupExecutor
	relocateUC *usecase.Relocate
}

// New wires the requested operations. The logger is owned by the caller.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{
		config: cfg,
		logger: log,
	}

	if cfg.HasBackup() {
		db, err := newDatabase(&cfg.Dump)
		if err != nil {
			return nil, err
		}

		uploadTargets := initializeUploadTargets(ctx, cfg, log)

		a.backupUC = usecase.NewBackup(
			db,
			archiver.NewTarBzip2(),
			log,
			usecase.WithUploadTargets(uploadTargets),
		)
	}

	if cfg.Backup.Move {
		a.relocateUC = usecase.NewRelocate(log)
	}

	return a, nil
}

func newDatabase(cfg *config.DumpConfig) (domain.Database, error) {
	switch cfg.Type {
	case "postgresql":
		return database.NewPostgreSQL(cfg), nil
	case "mysql":
		return database.NewMySQL(cfg), nil
	default:
		return nil, domain.ConfigurationError("unsupported database type: %s", cfg.Type)
	}
}

func initializeUploadTargets(ctx context.Context, cfg *config.Config, log *logger.Logger) []usecase.UploadTarget {
	var targets []usecase.UploadTarget

	for _, targetCfg := range cfg.GetEnabledUploadTargets() {
		var stor domain.Storage
		var err error

		switch targetCfg.Type {
		case "gdrive":
			stor, err = storage.NewGDrive(ctx, &targetCfg)
		case "s3":
			stor, err = storage.NewS3(ctx, &targetCfg)
		case "telegram":
			stor, err = storage.NewTelegram(&targetCfg)
		default:
			log.Warnf("Unknown upload target type: %s", targetCfg.Type)
			continue
		}

		// a broken remote target must not block an emergency backup
		if err != nil {
			log.Errorf("Failed to initialize %s upload target: %v", targetCfg.Type, err)
			continue
		}
		log.Infof("Upload to %s enabled", targetCfg.Type)

		targets = append(targets, usecase.UploadTarget{
			Name:    targetCfg.Type,
			Storage: stor,
		})
	}

	return targets
}

// Run performs the backup and then the move, whichever were requested. A failed backup
// is logged and does not prevent the move. The returned error combines both failures.
func (a *App) Run(ctx context.Context) error {
	var errs error

	if a.backupUC != nil {
		dbName := a.config.Dump.Database
		a.logger.Infof("Starting backup for %s", dbName)

		backup, err := a.backupUC.Execute(ctx, domain.BackupRequest{
			DestDir: a.config.Backup.Dir,
			Reason:  a.config.Backup.Reason,
			WorkDir: a.config.Backup.WorkDir,
		})
		if err != nil {
			a.logger.Errorf("Backup failed (%s): %v", domain.KindOf(err), err)
			errs = multierr.Append(errs, fmt.Errorf("backup %s: %w", dbName, err))
		} else {
			a.logger.Infof("Backup complete. Available in: %s", backup.FilePath)
		}
	}

	if a.relocateUC != nil {
		a.logger.Infof("Starting files' move")
		if err := a.move(ctx); err != nil {
			a.logger.Errorf("Move failed (%s): %v", domain.KindOf(err), err)
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

func (a *App) move(ctx context.Context) error {
	origin, err := storage.NewLocal(a.config.Backup.OriginDir)
	if err != nil {
		return fmt.Errorf("move: %w", err)
	}
	dest, err := storage.NewLocal(a.config.Backup.Dir)
	if err != nil {
		return fmt.Errorf("move: %w", err)
	}

	moved, err := a.relocateUC.Execute(ctx, origin, dest)
	if err != nil {
		return fmt.Errorf("move after %d file(s): %w", moved, err)
	}
	return nil
}
