package gpt

import (
	"errors"
	"fmt"
	"io"
)

// WriteTable writes the serialized table at offset 0 in a single write.
// A failure leaves the device in whatever state the failed write produced.
func WriteTable(w io.WriterAt, t *Table) error {
	b := t.Bytes()

	n, err := w.WriteAt(b, 0)
	if err != nil {
		return fmt.Errorf("%w: ptable write failure: %w", ErrIO, err)
	}
	if n != len(b) {
		return fmt.Errorf("%w: short ptable write: %d of %d bytes", ErrIO, n, len(b))
	}
	return nil
}

// Format builds the table for plan and writes it to w. Nothing is written
// unless the whole plan fits on the device.
func Format(w io.WriterAt, totalSectors uint64, plan Plan) (*Table, error) {
	t, err := Build(totalSectors, plan)
	if err != nil {
		return nil, err
	}
	if err := WriteTable(w, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadTable reads the first TableSectors sectors of r and parses them.
// Devices shorter than the table read as zero past their end.
func ReadTable(r io.ReaderAt) (*Table, error) {
	buf := make([]byte, TableBytes)

	_, err := r.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: ptable read failure: %w", ErrIO, err)
	}
	return Parse(buf)
}
