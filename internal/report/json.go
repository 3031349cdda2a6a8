package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/mnott/dircomp/internal/compare"
	"github.com/mnott/dircomp/internal/fsport"
)

// JSON renders one JSON object per diff entry on its own line,
// followed by a summary record.
type JSON struct {
	enc           *json.Encoder
	showUnchanged bool
	tally         Tally
}

func NewJSON(w io.Writer, showUnchanged bool) *JSON {
	return &JSON{enc: json.NewEncoder(w), showUnchanged: showUnchanged}
}

type jsonDescriptor struct {
	Kind       string    `json:"kind"`
	Size       int64     `json:"size"`
	Mtime      time.Time `json:"mtime"`
	LinkTarget string    `json:"linkTarget,omitempty"`
}

type jsonEntry struct {
	Path   string          `json:"path"`
	Status compare.Status  `json:"status"`
	Left   *jsonDescriptor `json:"left,omitempty"`
	Right  *jsonDescriptor `json:"right,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type jsonSummary struct {
	Summary    bool   `json:"summary"`
	OnlyLeft   int    `json:"onlyLeft"`
	OnlyRight  int    `json:"onlyRight"`
	Changed    int    `json:"changed"`
	Unchanged  int    `json:"unchanged"`
	Mismatched int    `json:"typeMismatches"`
	Cycles     int    `json:"cycles"`
	Unreadable int    `json:"unreadable"`
	Elapsed    string `json:"elapsed"`
}

func (j *JSON) Report(e compare.Entry) error {
	j.tally.count(e)
	if e.Status == compare.Unchanged && !j.showUnchanged {
		return nil
	}
	rec := jsonEntry{
		Path:   e.Path,
		Status: e.Status,
		Left:   toJSON(e.Left),
		Right:  toJSON(e.Right),
	}
	if e.Err != nil {
		rec.Error = e.Err.Error()
	}
	return j.enc.Encode(rec)
}

func (j *JSON) Summary(elapsed time.Duration) error {
	return j.enc.Encode(jsonSummary{
		Summary:    true,
		OnlyLeft:   j.tally.OnlyLeft,
		OnlyRight:  j.tally.OnlyRight,
		Changed:    j.tally.Changed,
		Unchanged:  j.tally.Unchanged,
		Mismatched: j.tally.Mismatched,
		Cycles:     j.tally.Cycles,
		Unreadable: j.tally.Unreadable,
		Elapsed:    elapsed.String(),
	})
}

func (j *JSON) HasChanges() bool { return j.tally.HasChanges() }
func (j *JSON) HadErrors() bool  { return j.tally.HadErrors() }

func toJSON(d *fsport.Descriptor) *jsonDescriptor {
	if d == nil {
		return nil
	}
	return &jsonDescriptor{
		Kind:       string(d.Kind),
		Size:       d.Size,
		Mtime:      d.ModTime,
		LinkTarget: d.LinkTarget,
	}
}
