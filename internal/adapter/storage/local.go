package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/semmidev/exbackup/internal/domain"
)

// LocalStorage is a directory on the local filesystem. The directory must already exist.
type LocalStorage struct {
	basePath string
}

func NewLocal(basePath string) (*LocalStorage, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, domain.IOFault("open directory", basePath, err)
	}
	if !info.IsDir() {
		return nil, domain.IOFault("open directory", basePath, fmt.Errorf("not a directory"))
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Upload copies localPath into the directory as remoteName, replacing any file of that name.
// The copy is written to a temporary file and renamed into place, so a failed upload
// leaves neither a partial file nor a damaged previous version behind.
func (l *LocalStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	destPath := filepath.Join(l.basePath, remoteName)

	source, err := os.Open(localPath)
	if err != nil {
		return domain.IOFault("failed to open source", localPath, err)
	}
	defer source.Close()

	tmp, err := os.CreateTemp(l.basePath, "."+remoteName+".*.part")
	if err != nil {
		return domain.IOFault("failed to create dest", destPath, err)
	}
	tmpPath := tmp.Name()

	if err := copyAndSync(tmp, source); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return domain.IOFault("failed to copy", localPath, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return domain.IOFault("failed to copy", localPath, err)
	}

	if info, err := source.Stat(); err == nil {
		_ = os.Chmod(tmpPath, info.Mode().Perm())
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return domain.IOFault("failed to rename into place", destPath, err)
	}

	return nil
}

func copyAndSync(dst *os.File, src io.Reader) error {
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Sync()
}

// List returns the names of the regular files directly inside the directory, sorted by name.
func (l *LocalStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, domain.IOFault("failed to read directory", l.basePath, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}

func (l *LocalStorage) Delete(ctx context.Context, remoteName string) error {
	filePath := filepath.Join(l.basePath, remoteName)
	if err := os.Remove(filePath); err != nil {
		return domain.IOFault("failed to delete file", filePath, err)
	}
	return nil
}

func (l *LocalStorage) GetPath(filename string) string {
	return filepath.Join(l.basePath, filename)
}
