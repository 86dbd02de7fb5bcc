package database

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/semmidev/exbackup/internal/config"
	"github.com/semmidev/exbackup/internal/domain"
)

const defaultPgDump = "pg_dump"

type PostgreSQLDatabase struct {
	config *config.DumpConfig
}

func NewPostgreSQL(cfg *config.DumpConfig) *PostgreSQLDatabase {
	return &PostgreSQLDatabase{config: cfg}
}

// Dump runs pg_dump without ownership statements into dir/database_dump.sql.
func (p *PostgreSQLDatabase) Dump(ctx context.Context, dir string) (string, error) {
	outputPath := filepath.Join(dir, domain.DumpFileName)

	var args []string
	if p.config.Host != "" {
		args = append(args, fmt.Sprintf("--host=%s", p.config.Host))
	}
	if p.config.Port != 0 {
		args = append(args, fmt.Sprintf("--port=%d", p.config.Port))
	}
	if p.config.Username != "" {
		args = append(args, fmt.Sprintf("--username=%s", p.config.Username))
	}
	args = append(args,
		"--no-owner",
		fmt.Sprintf("--file=%s", outputPath),
		p.config.Database,
	)

	var env []string
	if p.config.Password != "" {
		env = append(env, fmt.Sprintf("PGPASSWORD=%s", p.config.Password))
	}

	if err := runTool(ctx, p.config.Timeout, p.binary(), env, args...); err != nil {
		return "", err
	}

	return outputPath, nil
}

func (p *PostgreSQLDatabase) GetName() string {
	return p.config.Database
}

func (p *PostgreSQLDatabase) GetType() string {
	return "postgresql"
}

func (p *PostgreSQLDatabase) binary() string {
	if p.config.Binary != "" {
		return p.config.Binary
	}
	return defaultPgDump
}
