package domain

// Archiver bundles inputs into a single compressed file named after name inside destDir.
type Archiver interface {
	Archive(name string, inputs []string, destDir string) (string, error)
}
