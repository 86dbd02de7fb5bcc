package database

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/semmidev/exbackup/internal/config"
	"github.com/semmidev/exbackup/internal/domain"
)

const defaultMySQLDump = "mysqldump"

type MySQLDatabase struct {
	config *config.DumpConfig
}

func NewMySQL(cfg *config.DumpConfig) *MySQLDatabase {
	return &MySQLDatabase{config: cfg}
}

func (m *MySQLDatabase) Dump(ctx context.Context, dir string) (string, error) {
	outputPath := filepath.Join(dir, domain.DumpFileName)

	var args []string
	if m.config.Host != "" {
		args = append(args, fmt.Sprintf("--host=%s", m.config.Host))
	}
	if m.config.Port != 0 {
		args = append(args, fmt.Sprintf("--port=%d", m.config.Port))
	}
	if m.config.Username != "" {
		args = append(args, fmt.Sprintf("--user=%s", m.config.Username))
	}
	args = append(args,
		"--single-transaction",
		"--quick",
		"--routines",
		"--triggers",
		fmt.Sprintf("--result-file=%s", outputPath),
		m.config.Database,
	)

	// MYSQL_PWD keeps the password off the process list.
	var env []string
	if m.config.Password != "" {
		env = append(env, fmt.Sprintf("MYSQL_PWD=%s", m.config.Password))
	}

	if err := runTool(ctx, m.config.Timeout, m.binary(), env, args...); err != nil {
		return "", err
	}

	return outputPath, nil
}

func (m *MySQLDatabase) GetName() string {
	return m.config.Database
}

func (m *MySQLDatabase) GetType() string {
	return "mysql"
}

func (m *MySQLDatabase) binary() string {
	if m.config.Binary != "" {
		return m.config.Binary
	}
	return defaultMySQLDump
}
