// Package fs is the file-store capability the vault engine reads and writes
// through.
//
// The main types are:
//   - [FS]: the byte-oriented operations the engine and index need
//   - [Real]: the operating system's filesystem, with atomic writes
//   - [Mem]: an in-memory store for tests and embedding
//   - [Chaos]: a fault-injecting wrapper for testing error paths
//
// Paths use OS semantics (like the os package and path/filepath), not the
// slash-separated paths of the standard library io/fs package.
package fs

import (
	"os"
)

// FS defines the filesystem operations of a vault.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic replaces path with data so that readers see either the
	// old or the new content, never a partial write. The parent directory
	// must exist.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries sorted by name.
	// See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	// No error if the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if the file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)
}
