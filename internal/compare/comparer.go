// Package compare implements the merge-walk over two directory trees.
// It pairs entries by relative path, classifies every pairing and
// streams the classified diff to a sink in deterministic sorted order.
package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mnott/dircomp/internal/fsport"
	"github.com/mnott/dircomp/internal/logging"
)

// Compare walks both trees and emits one Entry per distinct relative
// path to sink. Only a failure on the two roots themselves is returned
// as an error; failures below the roots become Unreadable entries and
// never abort the run.
func Compare(ctx context.Context, port fsport.Port, leftRoot, rightRoot string, opts Options, sink Sink) error {
	if opts.Criterion == nil {
		return errors.New("no criterion configured")
	}
	if sink == nil {
		return errors.New("no sink configured")
	}

	w := &walker{
		port:      port,
		leftRoot:  leftRoot,
		rightRoot: rightRoot,
		opts:      opts,
		log:       logging.Sub("compare"),
		emit:      sink,
	}

	left, err := port.Describe(leftRoot)
	if err != nil {
		return fmt.Errorf("left root %s: %w", leftRoot, err)
	}
	right, err := port.Describe(rightRoot)
	if err != nil {
		return fmt.Errorf("right root %s: %w", rightRoot, err)
	}
	// Roots may be given as symlinks to directories; they are entered
	// regardless of the follow option.
	lid, err := rootDirIdentity(left, leftRoot)
	if err != nil {
		return err
	}
	rid, err := rootDirIdentity(right, rightRoot)
	if err != nil {
		return err
	}

	// The roots themselves are the first ancestors the cycle guard
	// knows about.
	lvis := visited{lid: true}
	rvis := visited{rid: true}

	if opts.Workers > 1 {
		return w.walkRootParallel(ctx, lvis, rvis)
	}
	return w.walkPair(ctx, "", lvis, rvis)
}

// walker carries the per-run parameters. All traversal state lives in
// recursion arguments, so each subtree walk is independent.
type walker struct {
	port      fsport.Port
	leftRoot  string
	rightRoot string
	opts      Options
	log       *slog.Logger
	emit      Sink
}

func rootDirIdentity(d *fsport.Descriptor, root string) (string, error) {
	switch {
	case d.Kind == fsport.KindDir:
		return d.Identity, nil
	case d.Kind == fsport.KindSymlink && d.TargetKind == fsport.KindDir:
		return d.TargetIdentity, nil
	default:
		return "", fmt.Errorf("root %s is not a directory", root)
	}
}

// visited is the set of directory identities on the current recursion
// path of one side.
type visited map[string]bool

func (v visited) clone() visited { return maps.Clone(v) }

// walkPair merges one directory level that exists on both sides.
func (w *walker) walkPair(ctx context.Context, rel string, lvis, rvis visited) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	left, lerr := w.port.ListChildren(w.abs(w.leftRoot, rel))
	right, rerr := w.port.ListChildren(w.abs(w.rightRoot, rel))
	if err := firstErr(lerr, rerr); err != nil {
		if rel == "" {
			return fmt.Errorf("failed to list root: %w", err)
		}
		return w.unreadable(rel, nil, nil, err)
	}

	w.log.Debug("walk", "path", rel)

	inLeft := childSet(left)
	inRight := childSet(right)
	for _, name := range sortedUnion(inLeft, inRight) {
		childRel := path.Join(rel, name)
		if excluded(childRel, w.opts.Exclude) {
			continue
		}
		if err := w.child(ctx, childRel, inLeft[name], inRight[name], lvis, rvis); err != nil {
			return err
		}
	}
	return nil
}

// child dispatches one merged child to the matching walk.
func (w *walker) child(ctx context.Context, rel string, inLeft, inRight bool, lvis, rvis visited) error {
	switch {
	case inLeft && !inRight:
		return w.walkOne(ctx, OnlyInLeft, rel, lvis)
	case !inLeft && inRight:
		return w.walkOne(ctx, OnlyInRight, rel, rvis)
	default:
		return w.walkBoth(ctx, rel, lvis, rvis)
	}
}

// walkBoth classifies a path that exists on both sides.
func (w *walker) walkBoth(ctx context.Context, rel string, lvis, rvis visited) error {
	left, lerr := w.describe(w.leftRoot, rel)
	right, rerr := w.describe(w.rightRoot, rel)
	if err := firstErr(lerr, rerr); err != nil {
		// Vanished or turned unreadable between listing and
		// describing.
		return w.unreadable(rel, left, right, err)
	}

	follow := w.opts.FollowSymlinks
	lkind := left.EffectiveKind(follow)
	rkind := right.EffectiveKind(follow)

	switch {
	case lkind != rkind:
		// No meaningful child comparison across a type mismatch.
		return w.emit(Entry{Path: rel, Status: TypeMismatch, Left: left, Right: right})

	case lkind == fsport.KindDir:
		lid := left.DirIdentity(follow)
		rid := right.DirIdentity(follow)
		if lvis[lid] || rvis[rid] {
			return w.emit(Entry{Path: rel, Status: Cycle, Left: left, Right: right})
		}
		lvis[lid], rvis[rid] = true, true
		defer func() {
			delete(lvis, lid)
			delete(rvis, rid)
		}()
		// Paired directories are structural: no entry of their own.
		return w.walkPair(ctx, rel, lvis, rvis)

	default:
		// Criteria see the resolved view, so a followed symlink is
		// compared by its target's metadata, not the link's own.
		equal, err := w.opts.Criterion.Equal(left.Resolved(follow), right.Resolved(follow))
		if err != nil {
			return w.unreadable(rel, left, right, err)
		}
		status := Changed
		if equal {
			status = Unchanged
		}
		return w.emit(Entry{Path: rel, Status: status, Left: left, Right: right})
	}
}

// walkOne enumerates a subtree that exists on one side only. Every
// descendant gets its own entry; auditors need per-file detail, not a
// collapsed subtree.
func (w *walker) walkOne(ctx context.Context, status Status, rel string, vis visited) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	root := w.leftRoot
	if status == OnlyInRight {
		root = w.rightRoot
	}
	d, err := w.describe(root, rel)
	if err != nil {
		return w.unreadable(rel, nil, nil, err)
	}

	entry := Entry{Path: rel, Status: status}
	if status == OnlyInLeft {
		entry.Left = d
	} else {
		entry.Right = d
	}

	follow := w.opts.FollowSymlinks
	if d.EffectiveKind(follow) != fsport.KindDir {
		return w.emit(entry)
	}

	id := d.DirIdentity(follow)
	if vis[id] {
		entry.Status = Cycle
		return w.emit(entry)
	}

	children, err := w.port.ListChildren(w.abs(root, rel))
	if err != nil {
		return w.unreadable(rel, entry.Left, entry.Right, err)
	}
	if err := w.emit(entry); err != nil {
		return err
	}

	names := make([]string, 0, len(children))
	for _, child := range children {
		names = append(names, child.Name)
	}
	sort.Strings(names)

	vis[id] = true
	defer delete(vis, id)
	for _, name := range names {
		childRel := path.Join(rel, name)
		if excluded(childRel, w.opts.Exclude) {
			continue
		}
		if err := w.walkOne(ctx, status, childRel, vis); err != nil {
			return err
		}
	}
	return nil
}

// walkRootParallel walks the root-level sibling subtrees concurrently.
// Each subtree buffers its entries; buffers are flushed in sorted
// order, so the output is identical to the serial walk.
func (w *walker) walkRootParallel(ctx context.Context, lvis, rvis visited) error {
	left, lerr := w.port.ListChildren(w.leftRoot)
	right, rerr := w.port.ListChildren(w.rightRoot)
	if err := firstErr(lerr, rerr); err != nil {
		return fmt.Errorf("failed to list root: %w", err)
	}

	inLeft := childSet(left)
	inRight := childSet(right)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type subtree struct {
		entries []Entry
		err     error
		done    chan struct{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Workers)

	var subs []*subtree
	for _, name := range sortedUnion(inLeft, inRight) {
		name := name
		if excluded(name, w.opts.Exclude) {
			continue
		}
		sub := &subtree{done: make(chan struct{})}
		subs = append(subs, sub)
		g.Go(func() error {
			defer close(sub.done)
			bw := *w
			bw.emit = func(e Entry) error {
				sub.entries = append(sub.entries, e)
				return nil
			}
			sub.err = bw.child(gctx, name, inLeft[name], inRight[name], lvis.clone(), rvis.clone())
			return sub.err
		})
	}

	var flushErr error
	for _, sub := range subs {
		<-sub.done
		if sub.err != nil || flushErr != nil {
			continue
		}
		for _, e := range sub.entries {
			if err := w.emit(e); err != nil {
				flushErr = err
				cancel()
				break
			}
		}
	}
	// A flush failure cancels the in-flight subtrees, so the group's
	// error is just the cancellation echo; the sink's error is the
	// cause and must stay visible to errors.Is.
	if err := g.Wait(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}

func (w *walker) describe(root, rel string) (*fsport.Descriptor, error) {
	d, err := w.port.Describe(w.abs(root, rel))
	if err != nil {
		return nil, err
	}
	d.RelPath = rel
	return d, nil
}

func (w *walker) abs(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// unreadable converts a subtree failure into a synthetic entry so the
// reporter can surface it. Never silently skips.
func (w *walker) unreadable(rel string, left, right *fsport.Descriptor, err error) error {
	terr := &TraversalError{Path: rel, Err: err}
	w.log.Warn("unreadable subtree", "path", rel, "err", err)
	return w.emit(Entry{Path: rel, Status: Unreadable, Left: left, Right: right, Err: terr})
}

func childSet(children []fsport.Child) map[string]bool {
	set := make(map[string]bool, len(children))
	for _, c := range children {
		set[c.Name] = true
	}
	return set
}

// sortedUnion returns the distinct names of both listings in
// code-point order, which fixes the output ordering independently of
// the underlying filesystem's listing order.
func sortedUnion(left, right map[string]bool) []string {
	names := make([]string, 0, len(left)+len(right))
	for name := range left {
		names = append(names, name)
	}
	for name := range right {
		if !left[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// excluded checks a relative path against the exclusion patterns.
// Patterns ending with "/" match any path segment; other patterns
// match the base name, or the whole relative path when they contain a
// separator.
func excluded(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	segments := strings.Split(rel, "/")
	base := segments[len(segments)-1]

	for _, pattern := range patterns {
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			for _, segment := range segments {
				if matched, _ := path.Match(dirPattern, segment); matched {
					return true
				}
			}
			continue
		}
		if matched, _ := path.Match(pattern, base); matched {
			return true
		}
		if strings.Contains(pattern, "/") {
			if matched, _ := path.Match(pattern, rel); matched {
				return true
			}
		}
	}
	return false
}
