// Package report renders the diff stream. The comparator exposes no
// formatting; everything user-visible lives here.
package report

import (
	"time"

	"github.com/mnott/dircomp/internal/compare"
	"github.com/mnott/dircomp/internal/fsport"
)

// Reporter consumes classified diff entries and renders them.
type Reporter interface {
	Report(e compare.Entry) error
	Summary(elapsed time.Duration) error
	HasChanges() bool
	HadErrors() bool
}

// Tally accumulates per-status counts across one run.
type Tally struct {
	OnlyLeft   int
	OnlyRight  int
	Changed    int
	Unchanged  int
	Mismatched int
	Cycles     int
	Unreadable int

	FilesLeft  int
	FilesRight int
}

func (t *Tally) count(e compare.Entry) {
	switch e.Status {
	case compare.OnlyInLeft:
		t.OnlyLeft++
	case compare.OnlyInRight:
		t.OnlyRight++
	case compare.Changed:
		t.Changed++
	case compare.Unchanged:
		t.Unchanged++
	case compare.TypeMismatch:
		t.Mismatched++
	case compare.Cycle:
		t.Cycles++
	case compare.Unreadable:
		t.Unreadable++
	}
	if e.Left != nil && e.Left.Kind == fsport.KindFile {
		t.FilesLeft++
	}
	if e.Right != nil && e.Right.Kind == fsport.KindFile {
		t.FilesRight++
	}
}

// HasChanges reports whether any difference between the trees was
// found.
func (t *Tally) HasChanges() bool {
	return t.OnlyLeft > 0 || t.OnlyRight > 0 || t.Changed > 0 || t.Mismatched > 0 || t.Cycles > 0
}

// HadErrors reports whether any subtree could not be read.
func (t *Tally) HadErrors() bool {
	return t.Unreadable > 0
}
