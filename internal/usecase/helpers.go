package usecase

import (
	"fmt"
	"time"
)

const timestampLayout = "20060102_150405"

// ArchiveName builds <database>_sql[_<reason>]_<YYYYMMDD_HHMMSS> from the local time t.
func ArchiveName(database, reason string, t time.Time) string {
	timestamp := t.Format(timestampLayout)
	if reason != "" {
		return fmt.Sprintf("%s_%s_%s_%s", database, "sql", reason, timestamp)
	}
	return fmt.Sprintf("%s_%s_%s", database, "sql", timestamp)
}
