// Package gpt builds, writes and reads GUID partition tables.
package gpt

import (
	"fmt"
	"hash/crc32"

	"github.com/ostafen/gptfmt/internal/disk"
)

// TableBytes is the size of the serialized table: MBR, header sector and
// the full entry array.
const TableBytes = TableSectors * SectorSize

const (
	headerOffset  = SectorSize
	entriesOffset = 2 * SectorSize
	entriesBytes  = EntryCount * EntrySize
)

// Table is the in-memory partition table. It is always built from scratch
// and written as a whole.
type Table struct {
	MBR    *disk.MBR
	Header Header
	// Entries holds the slots in table order. Tables built by this package
	// only hold the used slots; parsed tables hold every slot.
	Entries []Entry
}

// NewTable returns an empty table for a device of totalSectors sectors.
func NewTable(totalSectors uint64) *Table {
	return &Table{
		MBR:     disk.NewProtectiveMBR(totalSectors),
		Header:  NewHeader(totalSectors),
		Entries: make([]Entry, 0, EntryCount),
	}
}

// AddPartition stores r in the next free slot.
func (t *Table) AddPartition(r Range) error {
	if r.FirstLBA < FirstUsableLBA {
		return &PlacementError{Name: r.Name, Err: ErrPartitionOverlap}
	}
	if r.LastLBA > t.Header.LastUsableLBA || r.LastLBA < r.FirstLBA {
		return &PlacementError{Name: r.Name, Err: ErrPartitionTooLarge}
	}
	if len(t.Entries) >= EntryCount {
		return &PlacementError{Name: r.Name, Err: ErrTableFull}
	}

	slot := len(t.Entries)
	e := Entry{
		TypeGUID:   TypeGUIDFor(r.Name),
		UniqueGUID: UniqueGUID(t.Header.DiskGUID, slot),
		FirstLBA:   r.FirstLBA,
		LastLBA:    r.LastLBA,
	}
	e.SetName(r.Name)

	t.Entries = append(t.Entries, e)
	return nil
}

// Partitions returns the live entries in slot order.
func (t *Table) Partitions() []Entry {
	live := make([]Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.IsLive() {
			live = append(live, e)
		}
	}
	return live
}

// EntriesBytes encodes the full entry array. Unused slots are zero.
func (t *Table) EntriesBytes() []byte {
	b := make([]byte, entriesBytes)
	for i := 0; i < len(t.Entries) && i < EntryCount; i++ {
		t.Entries[i].put(b[i*EntrySize:])
	}
	return b
}

// Finalize computes both checksums. The entries checksum is stored first
// because the header checksum covers it.
func (t *Table) Finalize() {
	t.Header.EntriesCRC32 = crc32.ChecksumIEEE(t.EntriesBytes())
	t.Header.CRC32 = t.Header.Checksum()
}

// Verify checks both stored checksums against the table contents.
func (t *Table) Verify() error {
	if got := t.Header.Checksum(); got != t.Header.CRC32 {
		return fmt.Errorf("%w: calculated 0x%08X, expected 0x%08X", ErrHeaderChecksum, got, t.Header.CRC32)
	}
	if got := crc32.ChecksumIEEE(t.EntriesBytes()); got != t.Header.EntriesCRC32 {
		return fmt.Errorf("%w: calculated 0x%08X, expected 0x%08X", ErrEntriesChecksum, got, t.Header.EntriesCRC32)
	}
	return nil
}

// Bytes serializes the table into the TableBytes bytes that go at offset 0.
func (t *Table) Bytes() []byte {
	b := make([]byte, TableBytes)
	if t.MBR != nil {
		copy(b[:headerOffset], t.MBR.Bytes())
	}
	copy(b[headerOffset:], t.Header.Bytes())
	copy(b[entriesOffset:], t.EntriesBytes())
	return b
}

// Build resolves plan against a device of totalSectors sectors and returns
// the finalized table. Any placement failure aborts the build.
func Build(totalSectors uint64, plan Plan) (*Table, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if totalSectors < TableSectors {
		return nil, fmt.Errorf("%w: %d sectors, need at least %d", ErrDeviceTooSmall, totalSectors, TableSectors)
	}

	t := NewTable(totalSectors)
	a := NewAllocator(totalSectors)
	for _, s := range plan {
		r, placed, err := a.Place(s)
		if err != nil {
			return nil, err
		}
		if !placed {
			continue
		}
		if err := t.AddPartition(r); err != nil {
			return nil, err
		}
	}
	t.Finalize()
	return t, nil
}

// Parse decodes a table from the first TableBytes bytes of a device.
// Only the header signature is checked; use Verify for the checksums.
func Parse(data []byte) (*Table, error) {
	if len(data) < TableBytes {
		return nil, fmt.Errorf("input data slice too short: expected %d bytes, got %d bytes", TableBytes, len(data))
	}

	h, err := ParseHeader(data[headerOffset:entriesOffset])
	if err != nil {
		return nil, err
	}

	t := &Table{
		Header:  *h,
		Entries: make([]Entry, EntryCount),
	}

	// A non-protective or damaged MBR does not prevent reading the GPT.
	if mbr, err := disk.ParseMBR(data[:headerOffset]); err == nil {
		t.MBR = mbr
	}

	for i := range t.Entries {
		off := entriesOffset + i*EntrySize
		e, err := ParseEntry(data[off : off+EntrySize])
		if err != nil {
			return nil, err
		}
		t.Entries[i] = e
	}
	return t, nil
}
