package usecase

import (
	"context"
	"fmt"

	"github.com/semmidev/exbackup/internal/domain"
)

// Directory is a flat set of files that can be copied into and removed from.
type Directory interface {
	domain.Storage
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
	GetPath(name string) string
}

// Relocate moves staged backup files from one directory into another.
type Relocate struct {
	logger Logger
}

func NewRelocate(logger Logger) *Relocate {
	return &Relocate{logger: logger}
}

// Execute moves every file in origin into dest one at a time: copy, then delete, then
// advance. When it fails on a file, all earlier files are fully moved and that file
// and all later ones are still only in origin. It returns how many files were moved.
func (uc *Relocate) Execute(ctx context.Context, origin, dest Directory) (int, error) {
	names, err := origin.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list staging directory: %w", err)
	}

	uc.logger.Infof("Moving %d file(s) from %s", len(names), origin.GetPath(""))

	moved := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return moved, fmt.Errorf("move interrupted before %s: %w", name, err)
		}

		if err := uc.move(ctx, origin, dest, name); err != nil {
			return moved, err
		}

		moved++
		uc.logger.Debugf("Moved %s to %s", name, dest.GetPath(name))
	}

	uc.logger.Infof("Moved %d file(s) to %s", moved, dest.GetPath(""))
	return moved, nil
}

func (uc *Relocate) move(ctx context.Context, origin, dest Directory, name string) error {
	if err := dest.Upload(ctx, origin.GetPath(name), name); err != nil {
		return fmt.Errorf("move %s: %w", name, err)
	}

	if err := origin.Delete(ctx, name); err != nil {
		// roll the copy back so the file exists only in origin
		if rerr := dest.Delete(ctx, name); rerr != nil {
			uc.logger.Warnf("Could not roll back copy of %s: %v", name, rerr)
		}
		return fmt.Errorf("move %s: %w", name, err)
	}

	return nil
}
