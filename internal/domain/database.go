package domain

import "context"

// Database produces a plaintext dump of one database by running an external tool.
// Dump writes DumpFileName inside dir, overwriting any previous file, and returns its path.
type Database interface {
	Dump(ctx context.Context, dir string) (string, error)
	GetName() string
	GetType() string
}
