package compare

import (
	"fmt"

	"github.com/mnott/dircomp/internal/criterion"
	"github.com/mnott/dircomp/internal/fsport"
)

// Status classifies one relative path of the diff.
type Status string

const (
	OnlyInLeft   Status = "only-in-left"
	OnlyInRight  Status = "only-in-right"
	TypeMismatch Status = "type-mismatch"
	Changed      Status = "changed"
	Unchanged    Status = "unchanged"
	Cycle        Status = "cycle"
	Unreadable   Status = "unreadable"
)

// Entry is one classified result for a single relative path. Exactly
// one Entry is produced per distinct path that exists in either tree;
// paired directories are structural and produce none themselves.
type Entry struct {
	// Path is slash-separated, relative to both roots.
	Path   string
	Status Status

	// Left and Right are the descriptors of each side, nil for the
	// side the path does not exist on.
	Left  *fsport.Descriptor
	Right *fsport.Descriptor

	// Err is set for Unreadable entries and wraps the underlying
	// listing or read failure.
	Err error
}

// Sink consumes the diff stream. Entries arrive in deterministic
// sorted order; a sink error aborts the whole run.
type Sink func(Entry) error

// TraversalError reports that one subtree could not be walked. It is
// surfaced through an Unreadable entry rather than aborting the run.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("traverse %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// Options configure one comparison run.
type Options struct {
	// Criterion decides changed vs unchanged for paired entries.
	// Required, and must not change mid-walk.
	Criterion criterion.Criterion

	// Exclude holds glob patterns for names to skip entirely.
	// Patterns ending in "/" match any path segment; others match the
	// base name, or the whole relative path when they contain "/".
	Exclude []string

	// FollowSymlinks makes a symlink present as whatever it resolves
	// to, so a link to a directory is descended into. The cycle guard
	// stops re-entry into ancestors.
	FollowSymlinks bool

	// Workers > 1 walks the root-level sibling subtrees concurrently,
	// buffering each subtree and merging the output back into sorted
	// order. Values <= 1 stream with no buffering.
	Workers int
}
