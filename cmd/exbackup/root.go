package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/semmidev/exbackup/internal/app"
	"github.com/semmidev/exbackup/internal/config"
	"github.com/semmidev/exbackup/internal/domain"
	"github.com/semmidev/exbackup/internal/infrastructure/logger"
)

// Process exit codes, one per failure kind.
const (
	exitOK            = 0
	exitFailure       = 1
	exitConfiguration = 2
	exitExternalTool  = 3
	exitIO            = 4
)

// flagKeys binds command-line flags onto config keys.
var flagKeys = map[string]string{
	"config":       "config",
	"dbs":          "dump.database",
	"db-type":      "dump.type",
	"dump-binary":  "dump.binary",
	"dump-timeout": "dump.timeout",
	"host":         "dump.host",
	"port":         "dump.port",
	"username":     "dump.username",
	"move":         "backup.move",
	"backup-dir":   "backup.dir",
	"origin-dir":   "backup.origin_dir",
	"workdir":      "backup.work_dir",
	"reason":       "backup.reason",
	"logfile":      "app.log_file",
	"log-level":    "app.log_level",
}

func newRootCmd() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "exbackup [database]",
		Short: "Emergency database backup",
		Long: `exbackup dumps a database with pg_dump (or mysqldump) and stores the dump as a
<database>_sql[_<reason>]_<YYYYMMDD_HHMMSS>.tar.bz2 archive in the backup directory.
It is meant for servers where the regular backup tooling fails.

With --move it also moves every file from a staging directory into the backup directory.

Examples:
  exbackup --dbs orders -d /backups --reason prerelease
  exbackup --move --origin-dir /var/backups/stage -d /backups
  EXBACKUP_DUMP_PASSWORD=secret exbackup orders --host db.internal --username backup`,
		Args:          positionalDatabase(v),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "YAML config file")
	flags.String("dbs", "", "database name")
	flags.Bool("move", false, "move backups from the origin dir to the backup dir")
	flags.StringP("backup-dir", "d", ".", "directory where archives are stored")
	flags.String("origin-dir", "", "staging directory to move backups from")
	flags.String("reason", "", "reason for this backup, embedded in the archive name")
	flags.String("workdir", "", "directory for the temporary dump (default: system temp dir)")
	flags.String("logfile", "", "file where the log is written (default: stderr)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("db-type", "postgresql", "database type: postgresql or mysql")
	flags.String("dump-binary", "", "path of the dump program (default: pg_dump or mysqldump)")
	flags.Duration("dump-timeout", 0, "abort the dump after this long, 0 for no limit (default 1h)")
	flags.String("host", "", "database host")
	flags.Int("port", 0, "database port")
	flags.String("username", "", "database user")

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return domain.ConfigurationError("%v", err)
	})

	return cmd
}

// positionalDatabase accepts the database as an optional first argument.
func positionalDatabase(v *viper.Viper) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return domain.ConfigurationError("expected at most one database, got %d", len(args))
		}
		if len(args) == 1 {
			if cmd.Flags().Changed("dbs") {
				return domain.ConfigurationError("database given both as argument and --dbs")
			}
			v.Set("dump.database", args[0])
		}
		return nil
	}
}

func run(ctx context.Context, cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		err = domain.IOFault("open log", cfg.App.LogFile, err)
		// no logger to report through yet
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	defer log.Close()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Errorf("Initialization failed: %v", err)
		return err
	}

	return application.Run(ctx)
}

func execute(ctx context.Context, args []string, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil && domain.KindOf(err) != domain.KindExternalTool && domain.KindOf(err) != domain.KindIO {
		// runtime failures were already logged; configuration problems happen before a logger exists
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return exitCode(err)
}

// exitCode maps the first failure to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	switch domain.KindOf(multierr.Errors(err)[0]) {
	case domain.KindConfiguration:
		return exitConfiguration
	case domain.KindExternalTool:
		return exitExternalTool
	case domain.KindIO:
		return exitIO
	default:
		return exitFailure
	}
}
