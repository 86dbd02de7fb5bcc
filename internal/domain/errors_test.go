package domain

import (
	"errors"
	"fmt"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrors(t *testing.T) {
	Convey("Given the domain error helpers", t, func() {
		Convey("When an external tool fails", func() {
			err := ExternalToolError("pg_dump", errors.New("exit status 1"))

			Convey("It should report the tool and the cause", func() {
				So(err.Error(), ShouldEqual, "pg_dump: exit status 1")
				So(KindOf(err), ShouldEqual, KindExternalTool)
			})
		})

		Convey("When a filesystem operation fails", func() {
			err := IOFault("create archive", "/backups/a.tar.bz2", os.ErrPermission)

			Convey("It should keep the cause reachable", func() {
				So(err.Error(), ShouldEqual, "create archive /backups/a.tar.bz2: permission denied")
				So(errors.Is(err, os.ErrPermission), ShouldBeTrue)
				So(KindOf(err), ShouldEqual, KindIO)
			})
		})

		Convey("When the error is wrapped further", func() {
			err := fmt.Errorf("backup orders: %w", ConfigurationError("origin dir %q missing", "/stage"))

			Convey("It should still be classified", func() {
				So(KindOf(err), ShouldEqual, KindConfiguration)
				So(err.Error(), ShouldContainSubstring, `origin dir "/stage" missing`)
			})
		})

		Convey("When the error is foreign", func() {
			So(KindOf(errors.New("boom")), ShouldEqual, KindUnknown)
			So(KindOf(nil), ShouldEqual, KindUnknown)
		})

		Convey("Kinds should have readable names", func() {
			So(KindExternalTool.String(), ShouldEqual, "external tool")
			So(KindIO.String(), ShouldEqual, "io")
			So(KindConfiguration.String(), ShouldEqual, "configuration")
			So(KindUnknown.String(), ShouldEqual, "unknown")
		})
	})
}
