package disk

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ostafen/gptfmt/pkg/util/format"
)

const (
	MBRSize            = 512
	mbrEntriesOffset   = 0x1BE
	mbrSignatureOffset = 0x1FE
	mbrEntrySize       = 16
)

// MBRSignature is the boot signature stored in the last two bytes of the MBR.
var MBRSignature = [2]byte{0x55, 0xAA}

// bogusCHS marks a CHS address as unusable, so tools fall back to LBA.
var bogusCHS = [3]byte{0xFF, 0xFF, 0xFF}

// MBRPartitionEntry represents a single 16-byte entry in the MBR's partition table.
// All multi-byte fields are stored as byte arrays to explicitly handle little-endian
// conversion when reading from the raw MBR byte slice.
type MBRPartitionEntry struct {
	BootIndicator uint8        // 0x00: 0x80 for bootable, 0x00 for inactive
	StartCHS      [3]byte      // 0x01: Starting Cylinder-Head-Sector address
	PartitionType MBRPartition // 0x04: Partition type ID
	EndCHS        [3]byte      // 0x05: Ending Cylinder-Head-Sector address
	StartLBA      [4]byte      // 0x08: Starting Logical Block Address (LBA) - uint32, Little-Endian
	TotalSectors  [4]byte      // 0x0C: Total sectors in partition - uint32, Little-Endian
}

// ReadStartLBA returns the starting LBA of the partition.
func (p *MBRPartitionEntry) ReadStartLBA() uint32 {
	return binary.LittleEndian.Uint32(p.StartLBA[:])
}

// ReadTotalSectors returns the total number of sectors in the partition.
func (p *MBRPartitionEntry) ReadTotalSectors() uint32 {
	return binary.LittleEndian.Uint32(p.TotalSectors[:])
}

func (p *MBRPartitionEntry) put(b []byte) {
	b[0x00] = p.BootIndicator
	copy(b[0x01:0x04], p.StartCHS[:])
	b[0x04] = byte(p.PartitionType)
	copy(b[0x05:0x08], p.EndCHS[:])
	copy(b[0x08:0x0C], p.StartLBA[:])
	copy(b[0x0C:0x10], p.TotalSectors[:])
}

// String provides a human-readable representation of an MBRPartitionEntry.
func (p *MBRPartitionEntry) String() string {
	bootable := "No"
	if p.BootIndicator == 0x80 {
		bootable = "Yes"
	}
	return fmt.Sprintf("  Bootable: %s (0x%02X)\n"+
		"  Partition Type: 0x%02X (%s)\n"+
		"  Start LBA: %d\n"+
		"  Total Sectors: %d\n"+
		"  Size: %s",
		bootable, p.BootIndicator,
		uint8(p.PartitionType), p.PartitionType,
		p.ReadStartLBA(),
		p.ReadTotalSectors(),
		format.FormatBytes(int64(p.ReadTotalSectors())*DefaultSectorSize))
}

// MBR represents the Master Boot Record structure.
type MBR struct {
	BootCode         [440]byte            // 0x000-0x1B7: Bootstrap code
	DiskSignature    [4]byte              // 0x1B8-0x1BB: Optional 32-bit disk signature
	Reserved         [2]byte              // 0x1BC-0x1BD: Usually 0x0000
	PartitionEntries [4]MBRPartitionEntry // 0x1BE-0x1FD: Four 16-byte partition entries
	Signature        [2]byte              // 0x1FE-0x1FF: MBR signature (0x55AA)
}

// NewProtectiveMBR returns an MBR whose single entry marks the whole device
// past sector 0 as GPT. Devices larger than the 32-bit sector count of an
// MBR entry are covered up to 0xFFFFFFFF sectors.
func NewProtectiveMBR(totalSectors uint64) *MBR {
	size := uint64(0)
	if totalSectors > 0 {
		size = min(totalSectors-1, math.MaxUint32)
	}

	var mbr MBR
	p := &mbr.PartitionEntries[0]
	p.BootIndicator = 0x00
	p.StartCHS = bogusCHS
	p.PartitionType = PartitionTypeGPT
	p.EndCHS = bogusCHS
	binary.LittleEndian.PutUint32(p.StartLBA[:], 1)
	binary.LittleEndian.PutUint32(p.TotalSectors[:], uint32(size))

	mbr.Signature = MBRSignature
	return &mbr
}

// IsProtective reports whether the first entry is a GPT protective entry.
func (m *MBR) IsProtective() bool {
	return m.PartitionEntries[0].PartitionType == PartitionTypeGPT
}

// ReadDiskSignature returns the disk signature as a uint32.
func (m *MBR) ReadDiskSignature() uint32 {
	return binary.LittleEndian.Uint32(m.DiskSignature[:])
}

// ReadSignature returns the MBR signature (should be 0xAA55).
func (m *MBR) ReadSignature() uint16 {
	return binary.LittleEndian.Uint16(m.Signature[:])
}

// Bytes encodes the MBR into its 512-byte on-disk form.
func (m *MBR) Bytes() []byte {
	b := make([]byte, MBRSize)
	copy(b[0x000:0x1B8], m.BootCode[:])
	copy(b[0x1B8:0x1BC], m.DiskSignature[:])
	copy(b[0x1BC:0x1BE], m.Reserved[:])
	for i := range m.PartitionEntries {
		off := mbrEntriesOffset + i*mbrEntrySize
		m.PartitionEntries[i].put(b[off : off+mbrEntrySize])
	}
	copy(b[mbrSignatureOffset:], m.Signature[:])
	return b
}

// String provides a human-readable representation of the MBR.
func (m *MBR) String() string {
	s := fmt.Sprintf("--- Master Boot Record (MBR) ---\n"+
		"Disk Signature: 0x%08X\n"+
		"MBR Signature: 0x%04X (Expected: 0xAA55)\n\n"+
		"--- Partition Table Entries ---",
		m.ReadDiskSignature(), m.ReadSignature())

	for i, entry := range m.PartitionEntries {
		s += fmt.Sprintf("\nPartition %d:\n%s", i+1, entry.String())
	}
	return s
}

// ParseMBR parses a 512-byte slice into an MBR struct.
// It assumes the input slice is exactly 512 bytes long and contains
// the raw binary data of an MBR in little-endian format.
func ParseMBR(data []byte) (*MBR, error) {
	if len(data) != MBRSize {
		return nil, fmt.Errorf("input data slice size mismatch: expected %d bytes, got %d bytes", MBRSize, len(data))
	}

	var mbr MBR

	copy(mbr.BootCode[:], data[0x000:0x1B8])
	copy(mbr.DiskSignature[:], data[0x1B8:0x1BC])
	copy(mbr.Reserved[:], data[0x1BC:0x1BE])

	for i := 0; i < 4; i++ {
		entryOffset := mbrEntriesOffset + (i * mbrEntrySize)
		entryBytes := data[entryOffset : entryOffset+mbrEntrySize]

		mbr.PartitionEntries[i].BootIndicator = entryBytes[0x00]
		copy(mbr.PartitionEntries[i].StartCHS[:], entryBytes[0x01:0x04])
		mbr.PartitionEntries[i].PartitionType = MBRPartition(entryBytes[0x04])
		copy(mbr.PartitionEntries[i].EndCHS[:], entryBytes[0x05:0x08])
		copy(mbr.PartitionEntries[i].StartLBA[:], entryBytes[0x08:0x0C])
		copy(mbr.PartitionEntries[i].TotalSectors[:], entryBytes[0x0C:0x10])
	}

	copy(mbr.Signature[:], data[mbrSignatureOffset:mbrSignatureOffset+2])

	if mbr.ReadSignature() != 0xAA55 {
		return nil, fmt.Errorf("invalid MBR signature: expected 0xAA55, got 0x%04X", mbr.ReadSignature())
	}
	return &mbr, nil
}

type MBRPartition uint8

const (
	PartitionTypeEmpty              MBRPartition = 0x00
	PartitionTypeLinuxFilesystem    MBRPartition = 0x83
	PartitionTypeGPT                MBRPartition = 0xEE
	PartitionTypeEFISystemPartition MBRPartition = 0xEF
)

func (id MBRPartition) String() string {
	switch id {
	case PartitionTypeEmpty:
		return "Empty"
	case PartitionTypeLinuxFilesystem:
		return "Linux filesystem"
	case PartitionTypeGPT:
		return "GPT Protective MBR"
	case PartitionTypeEFISystemPartition:
		return "EFI System Partition"
	default:
		return "Unknown"
	}
}
