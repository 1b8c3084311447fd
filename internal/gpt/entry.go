package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// NameLen is the number of UTF-16 code units in an entry name.
const NameLen = 36

// Entry is a single slot of the partition entry array.
type Entry struct {
	TypeGUID   GUID            // 0x00
	UniqueGUID GUID            // 0x10
	FirstLBA   uint64          // 0x20
	LastLBA    uint64          // 0x28 inclusive
	Attributes uint64          // 0x30 always zero
	Name       [NameLen]uint16 // 0x38
}

// SetName widens name byte by byte into UTF-16 code units. Names longer
// than NameLen are truncated and no terminator is added.
func (e *Entry) SetName(name string) {
	e.Name = [NameLen]uint16{}
	for i := 0; i < NameLen && i < len(name); i++ {
		e.Name[i] = uint16(name[i])
	}
}

// RawName narrows the stored code units back to bytes, stopping at the
// first zero unit. Units above 0xFF are truncated, not decoded.
func (e *Entry) RawName() string {
	b := make([]byte, 0, NameLen)
	for _, u := range e.Name {
		if u == 0 {
			break
		}
		b = append(b, byte(u))
	}
	return string(b)
}

// DecodedName decodes the name as UTF-16LE.
func (e *Entry) DecodedName() (string, error) {
	n := 0
	for n < NameLen && e.Name[n] != 0 {
		n++
	}

	raw := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(raw[2*i:], e.Name[i])
	}

	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("unable to decode partition name: %w", err)
	}
	return string(out), nil
}

// Length returns the size of the partition in bytes.
func (e *Entry) Length() uint64 {
	return (e.LastLBA - e.FirstLBA + 1) * SectorSize
}

// IsLive reports whether the slot describes a partition.
func (e *Entry) IsLive() bool {
	return e.FirstLBA != 0 && e.Length() != 0
}

// Range returns the slot as a placed range.
func (e *Entry) Range() Range {
	return Range{
		Name:     e.RawName(),
		FirstLBA: e.FirstLBA,
		LastLBA:  e.LastLBA,
	}
}

// put encodes the entry into the first EntrySize bytes of b.
func (e *Entry) put(b []byte) {
	copy(b[0x00:0x10], e.TypeGUID[:])
	copy(b[0x10:0x20], e.UniqueGUID[:])
	binary.LittleEndian.PutUint64(b[0x20:], e.FirstLBA)
	binary.LittleEndian.PutUint64(b[0x28:], e.LastLBA)
	binary.LittleEndian.PutUint64(b[0x30:], e.Attributes)
	for i, u := range e.Name {
		binary.LittleEndian.PutUint16(b[0x38+2*i:], u)
	}
}

// Bytes encodes the entry into its packed little-endian form.
func (e *Entry) Bytes() []byte {
	b := make([]byte, EntrySize)
	e.put(b)
	return b
}

// ParseEntry decodes an entry from the start of data.
func ParseEntry(data []byte) (Entry, error) {
	var e Entry
	if len(data) < EntrySize {
		return e, fmt.Errorf("input data slice too short: expected at least %d bytes, got %d bytes",
			EntrySize, len(data))
	}
	if err := binary.Read(bytes.NewReader(data[:EntrySize]), binary.LittleEndian, &e); err != nil {
		return e, fmt.Errorf("error reading gpt entry: %w", err)
	}
	return e, nil
}
