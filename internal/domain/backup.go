package domain

import (
	"context"
	"time"
)

// DumpFileName is the name of the plaintext dump written into the working directory.
const DumpFileName = "database_dump.sql"

type Backup struct {
	ID           string
	Filename     string
	FilePath     string
	Size         int64
	CreatedAt    time.Time
	DatabaseName string
	Reason       string
}

type BackupRequest struct {
	DestDir string
	Reason  string
	WorkDir string
}

type BackupExecutor interface {
	Execute(ctx context.Context, req BackupRequest) (*Backup, error)
}
