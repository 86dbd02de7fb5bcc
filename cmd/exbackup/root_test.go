package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/multierr"

	"github.com/semmidev/exbackup/internal/domain"
)

func TestExitCode(t *testing.T) {
	Convey("Given exitCode", t, func() {
		So(exitCode(nil), ShouldEqual, exitOK)
		So(exitCode(errors.New("boom")), ShouldEqual, exitFailure)
		So(exitCode(domain.ConfigurationError("bad")), ShouldEqual, exitConfiguration)
		So(exitCode(domain.ExternalToolError("pg_dump", errors.New("exit status 1"))), ShouldEqual, exitExternalTool)
		So(exitCode(domain.IOFault("remove", "/tmp/x", os.ErrPermission)), ShouldEqual, exitIO)

		Convey("When several failures are combined it should use the first", func() {
			err := multierr.Combine(
				domain.ExternalToolError("pg_dump", errors.New("exit status 1")),
				domain.IOFault("open directory", "/stage", os.ErrNotExist),
			)
			So(exitCode(err), ShouldEqual, exitExternalTool)
		})
	})
}

func TestExecute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake dump binaries are shell scripts")
	}

	Convey("Given the exbackup command", t, func() {
		ctx := context.Background()
		tempDir := t.TempDir()
		backupDir := filepath.Join(tempDir, "backups")
		stageDir := filepath.Join(tempDir, "stage")
		So(os.Mkdir(backupDir, 0755), ShouldBeNil)
		So(os.Mkdir(stageDir, 0755), ShouldBeNil)
		logFile := filepath.Join(tempDir, "exbackup.log")

		Convey("When neither a database nor move mode is given", func() {
			So(execute(ctx, []string{"-d", backupDir}, io.Discard), ShouldEqual, exitConfiguration)
		})

		Convey("When an unknown flag is given", func() {
			So(execute(ctx, []string{"--frobnicate"}, io.Discard), ShouldEqual, exitConfiguration)
		})

		Convey("When move mode has no origin dir", func() {
			So(execute(ctx, []string{"--move", "-d", backupDir}, io.Discard), ShouldEqual, exitConfiguration)
		})

		Convey("When the database is given twice", func() {
			So(execute(ctx, []string{"orders", "--dbs", "orders"}, io.Discard), ShouldEqual, exitConfiguration)
		})

		Convey("When the dump program fails", func() {
			pgDump := filepath.Join(tempDir, "pg_dump")
			So(os.WriteFile(pgDump, []byte("#!/bin/sh\necho 'no such database' >&2\nexit 1\n"), 0755), ShouldBeNil)

			code := execute(ctx, []string{
				"orders",
				"-d", backupDir,
				"--workdir", tempDir,
				"--dump-binary", pgDump,
				"--logfile", logFile,
				"--log-level", "ERROR",
			}, io.Discard)

			Convey("It should exit with the external tool code and log the error", func() {
				So(code, ShouldEqual, exitExternalTool)

				entries, _ := os.ReadDir(backupDir)
				So(entries, ShouldBeEmpty)

				content, err := os.ReadFile(logFile)
				So(err, ShouldBeNil)
				So(string(content), ShouldContainSubstring, "Backup failed")
				So(string(content), ShouldContainSubstring, "no such database")
				So(string(content), ShouldNotContainSubstring, "Starting backup")
			})
		})

		Convey("When the dump succeeds", func() {
			pgDump := filepath.Join(tempDir, "pg_dump")
			So(os.WriteFile(pgDump, []byte("#!/bin/sh\nfor a in \"$@\"; do case \"$a\" in --file=*) out=\"${a#--file=}\";; esac; done\necho 'SELECT 1;' > \"$out\"\n"), 0755), ShouldBeNil)

			code := execute(ctx, []string{
				"--dbs", "orders",
				"--backup-dir", backupDir,
				"--workdir", tempDir,
				"--reason", "prerelease",
				"--dump-binary", pgDump,
				"--logfile", logFile,
			}, io.Discard)

			Convey("It should exit cleanly with an archive in place", func() {
				So(code, ShouldEqual, exitOK)

				matches, err := filepath.Glob(filepath.Join(backupDir, "orders_sql_prerelease_*.tar.bz2"))
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 1)

				_, err = os.Stat(filepath.Join(tempDir, "database_dump.sql"))
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("When the log file cannot be opened", func() {
			blocker := filepath.Join(tempDir, "not-a-dir")
			So(os.WriteFile(blocker, []byte("x"), 0644), ShouldBeNil)

			var stderr bytes.Buffer
			code := execute(ctx, []string{
				"--move",
				"--origin-dir", stageDir,
				"-d", backupDir,
				"--logfile", filepath.Join(blocker, "sub", "exbackup.log"),
			}, &stderr)

			Convey("It should exit with the IO code and say why on stderr", func() {
				So(code, ShouldEqual, exitIO)
				So(stderr.String(), ShouldStartWith, "Error: ")
				So(stderr.String(), ShouldContainSubstring, "open log")
			})
		})

		Convey("When a configuration error occurs", func() {
			var stderr bytes.Buffer
			code := execute(ctx, []string{"-d", backupDir}, &stderr)

			Convey("It should report it on stderr", func() {
				So(code, ShouldEqual, exitConfiguration)
				So(stderr.String(), ShouldStartWith, "Error: ")
			})
		})

		Convey("When moving staged backups", func() {
			So(os.WriteFile(filepath.Join(stageDir, "a.tar.bz2"), []byte("a"), 0644), ShouldBeNil)
			So(os.WriteFile(filepath.Join(stageDir, "b.tar.bz2"), []byte("b"), 0644), ShouldBeNil)

			code := execute(ctx, []string{"--move", "--origin-dir", stageDir, "-d", backupDir, "--logfile", logFile}, io.Discard)

			Convey("It should move everything and exit cleanly", func() {
				So(code, ShouldEqual, exitOK)

				moved, _ := os.ReadDir(backupDir)
				So(len(moved), ShouldEqual, 2)
				left, _ := os.ReadDir(stageDir)
				So(left, ShouldBeEmpty)
			})
		})
	})
}
