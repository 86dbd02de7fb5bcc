package usecase

import (
	"regexp"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestArchiveName(t *testing.T) {
	Convey("Given ArchiveName", t, func() {
		at := time.Date(2024, 3, 1, 10, 15, 30, 0, time.Local)

		Convey("When a reason is given", func() {
			So(ArchiveName("orders", "prerelease", at), ShouldEqual, "orders_sql_prerelease_20240301_101530")
		})

		Convey("When no reason is given", func() {
			So(ArchiveName("orders", "", at), ShouldEqual, "orders_sql_20240301_101530")
		})

		Convey("It should always end with a second-resolution timestamp", func() {
			pattern := regexp.MustCompile(`_\d{8}_\d{6}$`)
			for _, db := range []string{"a", "orders", "my-db_2"} {
				for _, reason := range []string{"", "hotfix", "pre_release"} {
					name := ArchiveName(db, reason, time.Now())
					So(name, ShouldStartWith, db+"_sql_")
					So(pattern.MatchString(name), ShouldBeTrue)
					if reason != "" {
						So(name, ShouldContainSubstring, "_sql_"+reason+"_")
					}
				}
			}
		})
	})
}
