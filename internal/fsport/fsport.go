// Package fsport defines the narrow filesystem-access contract the
// comparator consumes. Any backing store that can list a directory,
// describe a path and hash a file's content satisfies it, which keeps
// the comparator itself free of I/O and testable against in-memory
// doubles.
package fsport

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies a directory entry.
type Kind string

const (
	KindFile    Kind = "file"
	KindDir     Kind = "dir"
	KindSymlink Kind = "symlink"
	KindOther   Kind = "other"
)

// Child is one entry of a directory listing.
type Child struct {
	Name string
	Kind Kind
}

// Port is the filesystem-access contract. Implementations never mutate
// the tree; every method wraps read calls only.
type Port interface {
	// ListChildren returns the entries of the directory at path.
	// Fails with ErrNotFound if the path does not exist and with
	// ErrPermissionDenied if it cannot be read.
	ListChildren(path string) ([]Child, error)

	// Describe returns a descriptor for the entry at path without
	// following symlinks. Fails with ErrNotFound if the path vanished
	// between listing and describing.
	Describe(path string) (*Descriptor, error)

	// Hash returns the content digest of the file at path. Fails with
	// ErrRead on I/O failure mid-read.
	Hash(path string) ([]byte, error)
}

// Failure classes. Ports wrap underlying errors with one of these so
// callers can branch with errors.Is without knowing the backing store.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrRead             = errors.New("read error")
)

// classify maps an underlying filesystem error onto the port's failure
// classes. Errors that fit no class are wrapped with fallback when one
// is given.
func classify(err, fallback error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case fallback != nil:
		return fmt.Errorf("%w: %w", fallback, err)
	default:
		return err
	}
}
