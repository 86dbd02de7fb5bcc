package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/semmidev/exbackup/internal/domain"
)

type Backup struct {
	db            domain.Database
	archiver      domain.Archiver
	cleaner       *Cleaner
	uploadTargets []UploadTarget
	logger        Logger
	now           func() time.Time
}

type UploadTarget struct {
	Name    string
	Storage domain.Storage
}

// Notifier is implemented by targets that can also report failures.
type Notifier interface {
	SendNotification(message string) error
}

type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

type BackupOption func(*Backup)

// WithClock replaces time.Now when naming archives.
func WithClock(now func() time.Time) BackupOption {
	return func(b *Backup) {
		b.now = now
	}
}

func WithUploadTargets(targets []UploadTarget) BackupOption {
	return func(b *Backup) {
		b.uploadTargets = targets
	}
}

func NewBackup(
	db domain.Database,
	archiver domain.Archiver,
	logger Logger,
	opts ...BackupOption,
) *Backup {
	uc := &Backup{
		db:       db,
		archiver: archiver,
		cleaner:  NewCleaner(logger),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute dumps the database into req.WorkDir, archives the dump into req.DestDir and
// removes the dump again. The dump file is removed on every exit path once the dump
// has been attempted. The returned backup carries the archive's absolute path.
func (uc *Backup) Execute(ctx context.Context, req domain.BackupRequest) (backup *domain.Backup, err error) {
	start := uc.now()
	dbName := uc.db.GetName()
	name := ArchiveName(dbName, req.Reason, start)

	workDir := req.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}

	defer func() {
		if err != nil {
			uc.notifyFailure(dbName, err)
		}
	}()

	dumpPath := filepath.Join(workDir, domain.DumpFileName)
	defer func() {
		cerr := uc.cleaner.Clean(dumpPath)
		if cerr == nil {
			return
		}
		if err == nil {
			backup, err = nil, fmt.Errorf("cleanup: %w", cerr)
			return
		}
		uc.logger.Warnf("[%s] Could not remove dump %s: %v", dbName, dumpPath, cerr)
	}()

	uc.logger.Infof("[%s] Dumping database into %s", dbName, workDir)
	path, err := uc.db.Dump(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", dbName, err)
	}
	dumpPath = path

	dumpInfo, err := os.Stat(dumpPath)
	if err != nil {
		return nil, domain.IOFault("stat dump", dumpPath, err)
	}
	uc.logger.Infof("[%s] Dump created, size: %.2f MB", dbName, float64(dumpInfo.Size())/(1024*1024))

	uc.logger.Infof("[%s] Compressing dump %s", dbName, dumpPath)
	archivePath, err := uc.archiver.Archive(name, []string{dumpPath}, req.DestDir)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", name, err)
	}

	absPath, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, domain.IOFault("resolve archive path", archivePath, err)
	}

	archiveInfo, err := os.Stat(absPath)
	if err != nil {
		return nil, domain.IOFault("stat archive", absPath, err)
	}

	backup = &domain.Backup{
		ID:           uuid.NewString(),
		Filename:     filepath.Base(absPath),
		FilePath:     absPath,
		Size:         archiveInfo.Size(),
		CreatedAt:    start,
		DatabaseName: dbName,
		Reason:       req.Reason,
	}

	uc.logger.Infof("[%s] Archive written in %s: %s (%.2f MB)",
		dbName, uc.now().Sub(start).Round(time.Second), absPath, float64(backup.Size)/(1024*1024))

	if len(uc.uploadTargets) > 0 {
		uc.uploadToTargets(ctx, backup)
	}

	return backup, nil
}

// uploadToTargets copies the archive to every remote target. Failures are logged only.
func (uc *Backup) uploadToTargets(ctx context.Context, backup *domain.Backup) {
	var wg sync.WaitGroup
	dbName := backup.DatabaseName

	for _, target := range uc.uploadTargets {
		wg.Add(1)
		go func(t UploadTarget) {
			defer wg.Done()

			uc.logger.Infof("[%s] Uploading %s to %s...", dbName, backup.ID, t.Name)
			if err := t.Storage.Upload(ctx, backup.FilePath, backup.Filename); err != nil {
				uc.logger.Errorf("[%s] Failed to upload to %s: %v", dbName, t.Name, err)
			} else {
				uc.logger.Infof("[%s] Successfully uploaded to %s", dbName, t.Name)
			}
		}(target)
	}

	wg.Wait()
}

func (uc *Backup) notifyFailure(dbName string, cause error) {
	for _, target := range uc.uploadTargets {
		notifier, ok := target.Storage.(Notifier)
		if !ok {
			continue
		}
		msg := fmt.Sprintf("❌ Emergency backup of %s failed: %v", dbName, cause)
		if err := notifier.SendNotification(msg); err != nil {
			uc.logger.Warnf("[%s] Failed to notify %s: %v", dbName, target.Name, err)
		}
	}
}
