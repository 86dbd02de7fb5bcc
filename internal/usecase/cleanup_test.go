package usecase

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/semmidev/exbackup/internal/infrastructure/logger"
)

func TestCleaner(t *testing.T) {
	Convey("Given a Cleaner", t, func() {
		cleaner := NewCleaner(logger.NewNop())
		tempDir := t.TempDir()

		file := filepath.Join(tempDir, "database_dump.sql")
		So(os.WriteFile(file, []byte("dump"), 0644), ShouldBeNil)

		tree := filepath.Join(tempDir, "scratch")
		So(os.MkdirAll(filepath.Join(tree, "a", "b"), 0755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(tree, "a", "b", "c.txt"), []byte("c"), 0644), ShouldBeNil)

		keep := filepath.Join(tempDir, "keep.txt")
		So(os.WriteFile(keep, []byte("keep"), 0644), ShouldBeNil)

		Convey("When cleaning files, directories and missing paths", func() {
			err := cleaner.Clean(file, tree, filepath.Join(tempDir, "never-existed"), filepath.Join(tempDir, "nope", "deeper"))

			Convey("It should remove exactly the existing ones", func() {
				So(err, ShouldBeNil)

				_, err := os.Stat(file)
				So(os.IsNotExist(err), ShouldBeTrue)
				_, err = os.Stat(tree)
				So(os.IsNotExist(err), ShouldBeTrue)
				_, err = os.Stat(keep)
				So(err, ShouldBeNil)
			})
		})

		Convey("When cleaning a symlink to a directory", func() {
			link := filepath.Join(tempDir, "link")
			if err := os.Symlink(tree, link); err != nil {
				SkipSo(err, ShouldBeNil)
				return
			}

			err := cleaner.Clean(link)

			Convey("It should remove the link but not its target", func() {
				So(err, ShouldBeNil)
				_, err := os.Lstat(link)
				So(os.IsNotExist(err), ShouldBeTrue)
				_, err = os.Stat(filepath.Join(tree, "a", "b", "c.txt"))
				So(err, ShouldBeNil)
			})
		})

		Convey("When cleaning nothing", func() {
			So(cleaner.Clean(), ShouldBeNil)
		})
	})
}
