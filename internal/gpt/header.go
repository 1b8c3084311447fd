package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Signature is the magic value at the start of every GPT header.
var Signature = [8]byte{'E', 'F', 'I', ' ', 'P', 'A', 'R', 'T'}

const (
	Revision   = 0x00010000
	HeaderSize = 92
	EntryCount = 128
	EntrySize  = 128
	HeaderLBA  = 1
	EntriesLBA = 2
)

// Header is the GPT header stored at LBA 1.
type Header struct {
	Signature      [8]byte // 0x00
	Revision       uint32  // 0x08
	HeaderSize     uint32  // 0x0C
	CRC32          uint32  // 0x10 computed with this field set to zero
	Reserved       uint32  // 0x14
	CurrentLBA     uint64  // 0x18
	BackupLBA      uint64  // 0x20 recorded only, no backup header is written there
	FirstUsableLBA uint64  // 0x28
	LastUsableLBA  uint64  // 0x30
	DiskGUID       GUID    // 0x38
	EntriesLBA     uint64  // 0x48
	NumEntries     uint32  // 0x50
	EntrySize      uint32  // 0x54
	EntriesCRC32   uint32  // 0x58
}

// NewHeader returns the header for a device of totalSectors sectors.
// Both checksums are left at zero.
func NewHeader(totalSectors uint64) Header {
	return Header{
		Signature:      Signature,
		Revision:       Revision,
		HeaderSize:     HeaderSize,
		CurrentLBA:     HeaderLBA,
		BackupLBA:      totalSectors - 1,
		FirstUsableLBA: FirstUsableLBA,
		LastUsableLBA:  totalSectors - 1,
		DiskGUID:       DiskGUIDSeed,
		EntriesLBA:     EntriesLBA,
		NumEntries:     EntryCount,
		EntrySize:      EntrySize,
	}
}

// Bytes encodes the header into its packed little-endian form.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0x00:0x08], h.Signature[:])
	binary.LittleEndian.PutUint32(b[0x08:], h.Revision)
	binary.LittleEndian.PutUint32(b[0x0C:], h.HeaderSize)
	binary.LittleEndian.PutUint32(b[0x10:], h.CRC32)
	binary.LittleEndian.PutUint32(b[0x14:], h.Reserved)
	binary.LittleEndian.PutUint64(b[0x18:], h.CurrentLBA)
	binary.LittleEndian.PutUint64(b[0x20:], h.BackupLBA)
	binary.LittleEndian.PutUint64(b[0x28:], h.FirstUsableLBA)
	binary.LittleEndian.PutUint64(b[0x30:], h.LastUsableLBA)
	copy(b[0x38:0x48], h.DiskGUID[:])
	binary.LittleEndian.PutUint64(b[0x48:], h.EntriesLBA)
	binary.LittleEndian.PutUint32(b[0x50:], h.NumEntries)
	binary.LittleEndian.PutUint32(b[0x54:], h.EntrySize)
	binary.LittleEndian.PutUint32(b[0x58:], h.EntriesCRC32)
	return b
}

// Checksum computes the header CRC32 as if the CRC32 field were zero.
func (h *Header) Checksum() uint32 {
	tmp := *h
	tmp.CRC32 = 0
	return crc32.ChecksumIEEE(tmp.Bytes())
}

// ParseHeader decodes a header from the start of data.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("input data slice too short: expected at least %d bytes, got %d bytes",
			HeaderSize, len(data))
	}

	var h Header
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("error reading gpt header: %w", err)
	}

	if h.Signature != Signature {
		return nil, ErrTableNotFound
	}
	return &h, nil
}
