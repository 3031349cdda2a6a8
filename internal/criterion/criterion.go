// Package criterion holds the pluggable equality predicates the
// comparator applies to same-location entry pairs. Exactly one
// criterion is active per comparison run.
package criterion

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mnott/dircomp/internal/fsport"
)

// Criterion decides whether two same-location entries count as equal.
// Implementations are stateless and safe for concurrent use.
type Criterion interface {
	Name() string
	Equal(left, right *fsport.Descriptor) (bool, error)
}

// Size compares file sizes only. Cheap, but files of equal size with
// different content pass as equal.
type Size struct{}

func (Size) Name() string { return "size" }

func (Size) Equal(left, right *fsport.Descriptor) (bool, error) {
	return left.Size == right.Size, nil
}

// Mtime compares modification timestamps. Fast, but unreliable across
// filesystems with different clock resolution or after copies that do
// not preserve mtime.
type Mtime struct{}

func (Mtime) Name() string { return "mtime" }

func (Mtime) Equal(left, right *fsport.Descriptor) (bool, error) {
	return left.ModTime.Equal(right.ModTime), nil
}

// Ctime compares inode change timestamps. Zero on platforms whose stat
// results do not carry them, in which case everything compares equal.
type Ctime struct{}

func (Ctime) Name() string { return "ctime" }

func (Ctime) Equal(left, right *fsport.Descriptor) (bool, error) {
	return left.ChangeTime.Equal(right.ChangeTime), nil
}

// Atime compares last-access timestamps.
type Atime struct{}

func (Atime) Name() string { return "atime" }

func (Atime) Equal(left, right *fsport.Descriptor) (bool, error) {
	return left.AccessTime.Equal(right.AccessTime), nil
}

// Hash compares content digests, byte-exact. Both sides are hashed
// concurrently since hashing dominates wall-clock time on large trees.
// Symlink pairs compare by link target; entries with no readable
// content fall back to size.
type Hash struct{}

func (Hash) Name() string { return "hash" }

func (Hash) Equal(left, right *fsport.Descriptor) (bool, error) {
	switch {
	case left.Kind == fsport.KindSymlink && right.Kind == fsport.KindSymlink:
		return left.LinkTarget == right.LinkTarget, nil
	case left.HashFunc != nil && right.HashFunc != nil:
		if left.Kind == fsport.KindFile && right.Kind == fsport.KindFile && left.Size != right.Size {
			// Differing sizes cannot hash equal.
			return false, nil
		}
		var leftSum, rightSum []byte
		g := new(errgroup.Group)
		g.Go(func() error {
			var err error
			leftSum, err = left.ContentHash()
			return err
		})
		g.Go(func() error {
			var err error
			rightSum, err = right.ContentHash()
			return err
		})
		if err := g.Wait(); err != nil {
			return false, err
		}
		return bytes.Equal(leftSum, rightSum), nil
	default:
		return left.Size == right.Size, nil
	}
}

// Composite is a conjunction of criteria, short-circuiting on the
// first inequality so expensive delegates only run when the cheap ones
// agree.
type Composite []Criterion

func (c Composite) Name() string {
	names := make([]string, 0, len(c))
	for _, crit := range c {
		names = append(names, crit.Name())
	}
	return strings.Join(names, "+")
}

func (c Composite) Equal(left, right *fsport.Descriptor) (bool, error) {
	for _, crit := range c {
		equal, err := crit.Equal(left, right)
		if err != nil {
			return false, err
		}
		if !equal {
			return false, nil
		}
	}
	return true, nil
}

// ByName returns the criterion for a mode name.
func ByName(name string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "size":
		return Size{}, nil
	case "hash", "content":
		return Hash{}, nil
	case "mtime":
		return Mtime{}, nil
	case "ctime":
		return Ctime{}, nil
	case "atime":
		return Atime{}, nil
	case "exact":
		return Composite{Size{}, Hash{}}, nil
	default:
		return nil, fmt.Errorf("unknown criterion %q", name)
	}
}

// Parse builds one criterion from a comma-separated list of mode
// names, combining multiple names into a conjunction.
func Parse(spec string) (Criterion, error) {
	var crits Composite
	for _, name := range strings.Split(spec, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		crit, err := ByName(name)
		if err != nil {
			return nil, err
		}
		crits = append(crits, crit)
	}
	switch len(crits) {
	case 0:
		return nil, fmt.Errorf("no criterion in %q", spec)
	case 1:
		return crits[0], nil
	default:
		return crits, nil
	}
}
