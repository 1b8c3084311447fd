package gpt

import (
	"github.com/google/uuid"
)

// GUID is a GUID in its on-disk form: the first three fields are stored
// little-endian, the last eight bytes as is.
type GUID [16]byte

var (
	// BasicDataType is the type GUID used for every partition without a
	// dedicated role.
	BasicDataType = MustParseGUID("EBD0A0A2-B9E5-4433-87C0-68B6B72699C7")
	// ChromeOSKernelType marks the partition named "kernel".
	ChromeOSKernelType = MustParseGUID("FE3A2A5D-4F32-41A7-B725-ACCC3285A309")
	// ChromeOSRootfsType marks the partition named "rootfs".
	ChromeOSRootfsType = MustParseGUID("3CB8E202-3B7E-47DD-8A3C-7FF2A13CFCEC")
)

// DiskGUIDSeed is the fixed value used as disk GUID and as the base of
// every unique partition GUID.
var DiskGUIDSeed = GUID{
	0xff, 0x1f, 0xf2, 0xf9, 0xd4, 0xa8, 0x0e, 0x5f,
	0x97, 0x46, 0x59, 0x48, 0x69, 0xae, 0xc3, 0x4e,
}

// FromUUID converts a canonical UUID into its on-disk form.
func FromUUID(u uuid.UUID) GUID {
	var g GUID
	g[0], g[1], g[2], g[3] = u[3], u[2], u[1], u[0]
	g[4], g[5] = u[5], u[4]
	g[6], g[7] = u[7], u[6]
	copy(g[8:], u[8:])
	return g
}

// ParseGUID parses the canonical textual form of a GUID.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, err
	}
	return FromUUID(u), nil
}

func MustParseGUID(s string) GUID {
	return FromUUID(uuid.MustParse(s))
}

// UUID converts the on-disk form back into a canonical UUID.
func (g GUID) UUID() uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = g[3], g[2], g[1], g[0]
	u[4], u[5] = g[5], g[4]
	u[6], u[7] = g[7], g[6]
	copy(u[8:], g[8:])
	return u
}

func (g GUID) String() string {
	return g.UUID().String()
}

func (g GUID) IsZero() bool {
	return g == GUID{}
}

// TypeGUIDFor returns the partition type GUID for a partition name.
// Only the exact names "kernel" and "rootfs" get a dedicated type.
func TypeGUIDFor(name string) GUID {
	switch name {
	case "kernel":
		return ChromeOSKernelType
	case "rootfs":
		return ChromeOSRootfsType
	default:
		return BasicDataType
	}
}

// UniqueGUID derives the unique GUID of the partition stored in slot by
// replacing the first byte of seed with the slot index. The result is
// unique within one table only; it is not a random identifier.
func UniqueGUID(seed GUID, slot int) GUID {
	g := seed
	g[0] = byte(slot)
	return g
}
