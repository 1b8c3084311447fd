package gpt_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ostafen/gptfmt/internal/gpt"
	"github.com/stretchr/testify/require"
)

func TestTypeGUIDBytes(t *testing.T) {
	require.Equal(t, gpt.GUID{
		0xa2, 0xa0, 0xd0, 0xeb, 0xe5, 0xb9, 0x33, 0x44,
		0x87, 0xc0, 0x68, 0xb6, 0xb7, 0x26, 0x99, 0xc7,
	}, gpt.BasicDataType)

	require.Equal(t, gpt.GUID{
		0x5d, 0x2a, 0x3a, 0xfe, 0x32, 0x4f, 0xa7, 0x41,
		0xb7, 0x25, 0xac, 0xcc, 0x32, 0x85, 0xa3, 0x09,
	}, gpt.ChromeOSKernelType)

	require.Equal(t, gpt.GUID{
		0x02, 0xe2, 0xb8, 0x3c, 0x7e, 0x3b, 0xdd, 0x47,
		0x8a, 0x3c, 0x7f, 0xf2, 0xa1, 0x3c, 0xfc, 0xec,
	}, gpt.ChromeOSRootfsType)
}

func TestGUIDString(t *testing.T) {
	require.Equal(t, "ebd0a0a2-b9e5-4433-87c0-68b6b72699c7", gpt.BasicDataType.String())

	g, err := gpt.ParseGUID("FE3A2A5D-4F32-41A7-B725-ACCC3285A309")
	require.NoError(t, err)
	require.Equal(t, gpt.ChromeOSKernelType, g)
	require.Equal(t, uuid.MustParse("fe3a2a5d-4f32-41a7-b725-accc3285a309"), g.UUID())

	_, err = gpt.ParseGUID("not-a-guid")
	require.Error(t, err)
}

func TestTypeGUIDFor(t *testing.T) {
	require.Equal(t, gpt.ChromeOSKernelType, gpt.TypeGUIDFor("kernel"))
	require.Equal(t, gpt.ChromeOSRootfsType, gpt.TypeGUIDFor("rootfs"))
	require.Equal(t, gpt.BasicDataType, gpt.TypeGUIDFor("kernelb"))
	require.Equal(t, gpt.BasicDataType, gpt.TypeGUIDFor("rootfsb"))
	require.Equal(t, gpt.BasicDataType, gpt.TypeGUIDFor("STATE"))
}

func TestUniqueGUID(t *testing.T) {
	seen := make(map[gpt.GUID]bool)
	for slot := 0; slot < gpt.EntryCount; slot++ {
		g := gpt.UniqueGUID(gpt.DiskGUIDSeed, slot)
		require.Equal(t, byte(slot), g[0])
		require.Equal(t, gpt.DiskGUIDSeed[1:], g[1:])
		require.False(t, seen[g])
		seen[g] = true
	}
	require.False(t, gpt.DiskGUIDSeed.IsZero())
	require.True(t, gpt.GUID{}.IsZero())
}
