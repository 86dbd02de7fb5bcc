package usecase

import (
	"errors"
	"io/fs"
	"os"

	"github.com/semmidev/exbackup/internal/domain"
)

// Cleaner removes temporary files and directory trees. Paths that do not exist are skipped.
type Cleaner struct {
	logger Logger
}

func NewCleaner(logger Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

func (c *Cleaner) Clean(paths ...string) error {
	for _, p := range paths {
		info, err := os.Lstat(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.IOFault("stat", p, err)
		}

		if info.IsDir() {
			err = os.RemoveAll(p)
		} else {
			err = os.Remove(p)
		}
		if err != nil {
			return domain.IOFault("remove", p, err)
		}

		c.logger.Debugf("Removed %s", p)
	}

	return nil
}
