package archiver

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/dsnet/compress/bzip2"

	"github.com/semmidev/exbackup/internal/domain"
)

const Extension = ".tar.bz2"

// TarBzip2 writes tar streams compressed with bzip2.
type TarBzip2 struct {
	level int
}

func NewTarBzip2() *TarBzip2 {
	return &TarBzip2{level: bzip2.BestCompression}
}

// Archive creates destDir/name.tar.bz2 holding every input under name/<base of input>.
// destDir must already exist; an empty destDir means the current directory.
// Inputs are left in place. On failure no partial archive is kept.
func (a *TarBzip2) Archive(name string, inputs []string, destDir string) (string, error) {
	if destDir == "" {
		destDir = "."
	}

	info, err := os.Stat(destDir)
	if err != nil {
		return "", domain.IOFault("stat destination", destDir, err)
	}
	if !info.IsDir() {
		return "", domain.IOFault("stat destination", destDir, fmt.Errorf("not a directory"))
	}

	fullName := filepath.Join(destDir, name+Extension)

	file, err := os.Create(fullName)
	if err != nil {
		return "", domain.IOFault("create archive", fullName, err)
	}

	if err := a.write(file, name, inputs); err != nil {
		file.Close()
		os.Remove(fullName)
		return "", err
	}

	if err := file.Close(); err != nil {
		os.Remove(fullName)
		return "", domain.IOFault("close archive", fullName, err)
	}

	return fullName, nil
}

func (a *TarBzip2) write(w io.Writer, name string, inputs []string) error {
	bzWriter, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: a.level})
	if err != nil {
		return domain.IOFault("create bzip2 writer", name, err)
	}

	tarWriter := tar.NewWriter(bzWriter)

	for _, input := range inputs {
		if err := addPath(tarWriter, input, path.Join(name, filepath.Base(input))); err != nil {
			return err
		}
	}

	if err := tarWriter.Close(); err != nil {
		return domain.IOFault("finish tar stream", name, err)
	}
	if err := bzWriter.Close(); err != nil {
		return domain.IOFault("finish bzip2 stream", name, err)
	}

	return nil
}

// addPath stores root as entryName, walking into it when it is a directory.
func addPath(tw *tar.Writer, root, entryName string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return domain.IOFault("read input", p, err)
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return domain.IOFault("read input", p, err)
		}
		name := path.Join(entryName, filepath.ToSlash(rel))

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(p); err != nil {
				return domain.IOFault("read symlink", p, err)
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			// sockets and devices have no tar representation
			return nil
		}
		header.Name = name
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return domain.IOFault("write header", p, err)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		return copyFile(tw, p)
	})
}

func copyFile(w io.Writer, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return domain.IOFault("read input", p, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return domain.IOFault("copy input", p, err)
	}
	return nil
}
