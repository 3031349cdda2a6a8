package fsport

import (
	"fmt"
	"sync"
	"time"
)

// Descriptor holds everything a criterion may look at for a single
// entry. It lives only for the comparison of one path pair; content
// hashes are computed lazily through HashFunc and memoized, so no file
// is read unless the active criterion asks for it.
type Descriptor struct {
	// RelPath is the slash-separated path relative to the tree root.
	// Filled in by the comparator, not the port.
	RelPath string

	Kind    Kind
	Size    int64
	ModTime time.Time

	// ChangeTime and AccessTime are zero on platforms where the stat
	// result does not carry them.
	ChangeTime time.Time
	AccessTime time.Time

	// LinkTarget is the symlink target, set only for KindSymlink.
	LinkTarget string

	// Identity is a canonical identity for the entry itself (dev:ino
	// where available, cleaned path otherwise). The comparator's cycle
	// guard keys on directory identities.
	Identity string

	// TargetKind and TargetIdentity describe what a symlink resolves
	// to, TargetSize and the target times carry the resolved stat
	// fields. Zero values for anything that is not a symlink, and for
	// dangling links.
	TargetKind       Kind
	TargetIdentity   string
	TargetSize       int64
	TargetModTime    time.Time
	TargetChangeTime time.Time
	TargetAccessTime time.Time

	// HashFunc produces the content digest on demand. Ports set it for
	// entries whose content can be read.
	HashFunc func() ([]byte, error)

	hashOnce sync.Once
	hashSum  []byte
	hashErr  error
}

// ContentHash returns the memoized content digest, computing it on
// first use.
func (d *Descriptor) ContentHash() ([]byte, error) {
	if d.HashFunc == nil {
		return nil, fmt.Errorf("%w: no readable content for %s", ErrRead, d.RelPath)
	}
	d.hashOnce.Do(func() {
		d.hashSum, d.hashErr = d.HashFunc()
	})
	return d.hashSum, d.hashErr
}

// EffectiveKind is the kind the comparator classifies by. With follow
// set, a symlink presents as whatever it resolves to; dangling links
// stay symlinks.
func (d *Descriptor) EffectiveKind(follow bool) Kind {
	if follow && d.Kind == KindSymlink && d.TargetKind != "" {
		return d.TargetKind
	}
	return d.Kind
}

// Resolved returns the view of the entry a criterion should compare.
// With follow set, a symlink yields a descriptor carrying the target's
// kind, size, times and identity, so metadata criteria see the same
// entry the classification saw. Content hashing reads through the link
// either way, so HashFunc is shared. Dangling links resolve to
// themselves.
func (d *Descriptor) Resolved(follow bool) *Descriptor {
	if !follow || d.Kind != KindSymlink || d.TargetKind == "" {
		return d
	}
	return &Descriptor{
		RelPath:    d.RelPath,
		Kind:       d.TargetKind,
		Size:       d.TargetSize,
		ModTime:    d.TargetModTime,
		ChangeTime: d.TargetChangeTime,
		AccessTime: d.TargetAccessTime,
		Identity:   d.TargetIdentity,
		HashFunc:   d.HashFunc,
	}
}

// DirIdentity returns the identity relevant for cycle detection when
// the entry is entered as a directory.
func (d *Descriptor) DirIdentity(follow bool) string {
	if follow && d.Kind == KindSymlink {
		return d.TargetIdentity
	}
	return d.Identity
}
