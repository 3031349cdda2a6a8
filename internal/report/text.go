package report

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/mnott/dircomp/internal/compare"
	"github.com/mnott/dircomp/internal/fsport"
)

// TextOptions configure the text reporter.
type TextOptions struct {
	// ShowUnchanged also prints matching entries.
	ShowUnchanged bool

	// DiffHints prints a ready-to-paste diff command under each
	// changed file pair.
	DiffHints bool
}

// Text renders one line per diff entry, followed by a run summary.
type Text struct {
	w         io.Writer
	leftRoot  string
	rightRoot string
	opts      TextOptions
	tally     Tally

	red     func(a ...interface{}) string
	green   func(a ...interface{}) string
	yellow  func(a ...interface{}) string
	magenta func(a ...interface{}) string
	cyan    func(a ...interface{}) string
	faint   func(a ...interface{}) string
}

// NewText returns a text reporter writing to w. The roots are only
// used to render diff hints. Colors follow the fatih/color global
// switches, so they disable themselves on non-terminals.
func NewText(w io.Writer, leftRoot, rightRoot string, opts TextOptions) *Text {
	return &Text{
		w:         w,
		leftRoot:  leftRoot,
		rightRoot: rightRoot,
		opts:      opts,
		red:       color.New(color.FgRed).SprintFunc(),
		green:     color.New(color.FgGreen).SprintFunc(),
		yellow:    color.New(color.FgYellow).SprintFunc(),
		magenta:   color.New(color.FgMagenta).SprintFunc(),
		cyan:      color.New(color.FgCyan).SprintFunc(),
		faint:     color.New(color.Faint).SprintFunc(),
	}
}

func (t *Text) Report(e compare.Entry) error {
	t.tally.count(e)

	switch e.Status {
	case compare.OnlyInLeft:
		return t.line(t.red(fmt.Sprintf("- %s%s", e.Path, detail(e.Left))))

	case compare.OnlyInRight:
		return t.line(t.green(fmt.Sprintf("+ %s%s", e.Path, detail(e.Right))))

	case compare.Changed:
		if err := t.line(t.yellow(fmt.Sprintf("~ %s  left: %s | right: %s",
			e.Path, describe(e.Left), describe(e.Right)))); err != nil {
			return err
		}
		if t.opts.DiffHints && bothFiles(e) {
			return t.line(t.faint(fmt.Sprintf("    diff %q %q",
				filepath.Join(t.leftRoot, e.Path), filepath.Join(t.rightRoot, e.Path))))
		}
		return nil

	case compare.Unchanged:
		if !t.opts.ShowUnchanged {
			return nil
		}
		return t.line(t.faint(fmt.Sprintf("= %s", e.Path)))

	case compare.TypeMismatch:
		return t.line(t.magenta(fmt.Sprintf("! %s  left is %s, right is %s",
			e.Path, kind(e.Left), kind(e.Right))))

	case compare.Cycle:
		return t.line(t.cyan(fmt.Sprintf("@ %s  cycle detected, not descending", e.Path)))

	case compare.Unreadable:
		return t.line(t.red(fmt.Sprintf("? %s  %v", e.Path, e.Err)))

	default:
		return t.line(fmt.Sprintf("%s %s", e.Status, e.Path))
	}
}

// Summary prints per-status counts, how many files each side
// contributed and the elapsed time.
func (t *Text) Summary(elapsed time.Duration) error {
	if !t.tally.HasChanges() && !t.tally.HadErrors() {
		if err := t.line("No differences found."); err != nil {
			return err
		}
	}
	if err := t.line(fmt.Sprintf(
		"\nSummary: %d only left, %d only right, %d changed, %d type mismatches, %d cycles, %d unreadable, %d unchanged",
		t.tally.OnlyLeft, t.tally.OnlyRight, t.tally.Changed,
		t.tally.Mismatched, t.tally.Cycles, t.tally.Unreadable, t.tally.Unchanged)); err != nil {
		return err
	}
	return t.line(fmt.Sprintf("Compared %d left files against %d right files in %s",
		t.tally.FilesLeft, t.tally.FilesRight, elapsed.Round(time.Millisecond)))
}

func (t *Text) HasChanges() bool { return t.tally.HasChanges() }
func (t *Text) HadErrors() bool  { return t.tally.HadErrors() }

func (t *Text) line(s string) error {
	_, err := fmt.Fprintln(t.w, s)
	return err
}

func bothFiles(e compare.Entry) bool {
	return e.Left != nil && e.Left.Kind == fsport.KindFile &&
		e.Right != nil && e.Right.Kind == fsport.KindFile
}

func kind(d *fsport.Descriptor) string {
	if d == nil {
		return "missing"
	}
	return string(d.Kind)
}

// detail renders the size suffix for one-sided file entries.
func detail(d *fsport.Descriptor) string {
	if d == nil || d.Kind != fsport.KindFile {
		return ""
	}
	return fmt.Sprintf(" (%s)", humanize.Bytes(uint64(d.Size)))
}

// describe renders size and mtime for one side of a changed pair.
func describe(d *fsport.Descriptor) string {
	if d == nil {
		return "missing"
	}
	if d.Kind != fsport.KindFile {
		return string(d.Kind)
	}
	return fmt.Sprintf("%s, %s", humanize.Bytes(uint64(d.Size)), d.ModTime.Format("2006-01-02 15:04:05"))
}
