package gpt

import (
	"fmt"
	"io"

	"github.com/ostafen/gptfmt/pkg/util/format"
)

// ReportOptions controls the partition report.
type ReportOptions struct {
	// GUIDs appends the type and unique GUID to every line.
	GUIDs bool
}

// FormatEntry renders one partition line: start LBA, size and name.
func FormatEntry(e *Entry) string {
	size, unit := format.ScaleBytes(e.Length())
	return fmt.Sprintf("%8d %7d%s %s", e.FirstLBA, size, unit, e.RawName())
}

// WriteReport writes one line per live slot of t. Empty slots produce no
// output.
func WriteReport(w io.Writer, t *Table, opts ReportOptions) error {
	if _, err := fmt.Fprintln(w, "EFI table is:"); err != nil {
		return err
	}

	for i := range t.Entries {
		e := &t.Entries[i]
		if !e.IsLive() {
			continue
		}

		line := FormatEntry(e)
		if opts.GUIDs {
			line += fmt.Sprintf(" type=%s uuid=%s", e.TypeGUID, e.UniqueGUID)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Report reads the table from r and writes its report to w. When no table
// is found, ErrTableNotFound is returned and nothing is written.
func Report(w io.Writer, r io.ReaderAt, opts ReportOptions) (*Table, error) {
	t, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	return t, WriteReport(w, t, opts)
}
