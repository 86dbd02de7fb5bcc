package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/semmidev/exbackup/internal/domain"
)

const EnvPrefix = "EXBACKUP"

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Dump   DumpConfig   `mapstructure:"dump"`
	Backup BackupConfig `mapstructure:"backup"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type DumpConfig struct {
	Type     string        `mapstructure:"type"`
	Binary   string        `mapstructure:"binary"`
	Database string        `mapstructure:"database"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type BackupConfig struct {
	Dir           string         `mapstructure:"dir"`
	WorkDir       string         `mapstructure:"work_dir"`
	Reason        string         `mapstructure:"reason"`
	Move          bool           `mapstructure:"move"`
	OriginDir     string         `mapstructure:"origin_dir"`
	UploadTargets []UploadTarget `mapstructure:"upload_targets"`
}

type UploadTarget struct {
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`

	// Google Drive
	CredentialsFile  string `mapstructure:"credentials_file"`
	ClientSecretFile string `mapstructure:"client_secret_file"`
	RefreshToken     string `mapstructure:"refresh_token"`
	FolderID         string `mapstructure:"folder_id"`

	// AWS S3
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`

	// Telegram
	BotToken   string `mapstructure:"bot_token"`
	ChatID     string `mapstructure:"chat_id"`
	SendFile   bool   `mapstructure:"send_file"`
	NotifyOnly bool   `mapstructure:"notify_only"`
}

// New returns a viper instance carrying the defaults and the EXBACKUP_ environment binding.
// Command-line flags are bound onto it by the caller before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("config", "")
	v.SetDefault("app.name", "exbackup")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")
	v.SetDefault("dump.type", "postgresql")
	v.SetDefault("dump.binary", "")
	v.SetDefault("dump.database", "")
	v.SetDefault("dump.host", "")
	v.SetDefault("dump.port", 0)
	v.SetDefault("dump.username", "")
	v.SetDefault("dump.password", "")
	v.SetDefault("dump.timeout", time.Hour)
	v.SetDefault("backup.dir", ".")
	v.SetDefault("backup.work_dir", "")
	v.SetDefault("backup.reason", "")
	v.SetDefault("backup.move", false)
	v.SetDefault("backup.origin_dir", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func Load(v *viper.Viper) (*Config, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, domain.ConfigurationError("failed to read config: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, domain.ConfigurationError("failed to unmarshal config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Dump.Database == "" && !c.Backup.Move {
		return domain.ConfigurationError("either a database name or move mode is required")
	}

	switch c.Dump.Type {
	case "postgresql", "mysql":
	default:
		return domain.ConfigurationError("dump.type %q is not supported", c.Dump.Type)
	}

	if c.Dump.Timeout < 0 {
		return domain.ConfigurationError("dump.timeout must not be negative")
	}

	if strings.ContainsAny(c.Dump.Database, `/\`) {
		return domain.ConfigurationError("database name %q must not contain path separators", c.Dump.Database)
	}

	if strings.ContainsAny(c.Backup.Reason, `/\`) {
		return domain.ConfigurationError("reason %q must not contain path separators", c.Backup.Reason)
	}

	if c.Backup.Dir == "" {
		return domain.ConfigurationError("backup.dir is required")
	}

	if c.Backup.Move {
		if c.Backup.OriginDir == "" {
			return domain.ConfigurationError("origin dir is required in move mode")
		}
		same, err := samePath(c.Backup.OriginDir, c.Backup.Dir)
		if err != nil {
			return domain.ConfigurationError("resolve directories: %v", err)
		}
		if same {
			return domain.ConfigurationError("origin dir and backup dir are the same: %s", c.Backup.Dir)
		}
	}

	for i, target := range c.GetEnabledUploadTargets() {
		switch target.Type {
		case "s3":
			if target.Bucket == "" {
				return domain.ConfigurationError("upload_targets[%d]: bucket is required", i)
			}
		case "gdrive":
			if target.CredentialsFile == "" && (target.ClientSecretFile == "" || target.RefreshToken == "") {
				return domain.ConfigurationError("upload_targets[%d]: credentials_file or client_secret_file with refresh_token is required", i)
			}
		case "telegram":
			if target.BotToken == "" || target.ChatID == "" {
				return domain.ConfigurationError("upload_targets[%d]: bot_token and chat_id are required", i)
			}
		default:
			return domain.ConfigurationError("upload_targets[%d]: unknown type %q", i, target.Type)
		}
	}

	return nil
}

// HasBackup reports whether a database backup was requested.
func (c *Config) HasBackup() bool {
	return c.Dump.Database != ""
}

func (c *Config) GetEnabledUploadTargets() []UploadTarget {
	var enabled []UploadTarget
	for _, target := range c.Backup.UploadTargets {
		if target.Enabled {
			enabled = append(enabled, target)
		}
	}
	return enabled
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("%s: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("%s: %w", b, err)
	}
	return absA == absB, nil
}
