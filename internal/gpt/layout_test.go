package gpt_test

import (
	"errors"
	"testing"

	"github.com/ostafen/gptfmt/internal/gpt"
	"github.com/stretchr/testify/require"
)

func requirePlacementError(t *testing.T, err error, name string, target error) {
	t.Helper()

	require.ErrorIs(t, err, target)

	var perr *gpt.PlacementError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, name, perr.Name)
	require.Contains(t, err.Error(), "partition '"+name+"'")
}

func TestAllocateDefaultPlan(t *testing.T) {
	ranges, err := gpt.Allocate(8_000_000, gpt.DefaultPlan())
	require.NoError(t, err)
	require.Len(t, ranges, 12)

	require.Equal(t, gpt.Range{Name: "STATE", FirstLBA: 1024, LastLBA: 2098175}, ranges[0])
	require.Equal(t, gpt.Range{Name: "kernel", FirstLBA: 2098176, LastLBA: 2130943}, ranges[1])
	require.Equal(t, gpt.Range{Name: "rootfs", FirstLBA: 2130944, LastLBA: 3974143}, ranges[2])
	require.Equal(t, gpt.Range{Name: "reserve1", FirstLBA: 6120448, LastLBA: 6120448}, ranges[8])
	require.Equal(t, gpt.Range{Name: "EFI-SYSTEM", FirstLBA: 6120451, LastLBA: 6153218}, ranges[11])

	for i, r := range ranges {
		require.GreaterOrEqual(t, r.FirstLBA, uint64(gpt.FirstUsableLBA))
		require.LessOrEqual(t, r.LastLBA, uint64(8_000_000-1))
		if i > 0 {
			require.Equal(t, ranges[i-1].LastLBA+1, r.FirstLBA, "partitions must be contiguous")
		}
	}
}

func TestAllocateDefaultPlanSmallDevice(t *testing.T) {
	_, err := gpt.Allocate(2_000_000, gpt.DefaultPlan())
	requirePlacementError(t, err, "STATE", gpt.ErrPartitionTooLarge)
}

func TestAllocateSpacerOnly(t *testing.T) {
	a := gpt.NewAllocator(10000)

	r, placed, err := a.Place(gpt.Spec("-", 512))
	require.NoError(t, err)
	require.False(t, placed)
	require.Equal(t, gpt.Range{}, r)
	require.Equal(t, uint64(1024), a.Cursor())
}

func TestAllocateOverlap(t *testing.T) {
	_, err := gpt.Allocate(10000, gpt.Plan{gpt.Spec("first", 16)})
	requirePlacementError(t, err, "first", gpt.ErrPartitionOverlap)
	require.Contains(t, err.Error(), "overlaps partition table")

	// 16 KiB is 32 sectors, two short of the table.
	_, err = gpt.Allocate(10000, gpt.Plan{gpt.Spec("-", 16), gpt.Spec("first", 16)})
	requirePlacementError(t, err, "first", gpt.ErrPartitionOverlap)

	ranges, err := gpt.Allocate(10000, gpt.Plan{gpt.Spec("-", 17), gpt.Spec("first", 16)})
	require.NoError(t, err)
	require.Equal(t, []gpt.Range{{Name: "first", FirstLBA: 34, LastLBA: 65}}, ranges)
}

func TestAllocateTooLarge(t *testing.T) {
	_, err := gpt.Allocate(10000, gpt.Plan{gpt.Spec("-", 512), gpt.Spec("big", 5000)})
	requirePlacementError(t, err, "big", gpt.ErrPartitionTooLarge)
	require.Contains(t, err.Error(), "does not fit")

	// Ending exactly on the last sector fits.
	ranges, err := gpt.Allocate(10000, gpt.Plan{gpt.Spec("-", 512), gpt.Spec("big", 4488)})
	require.NoError(t, err)
	require.Equal(t, uint64(9999), ranges[0].LastLBA)
}

func TestAllocateReserve(t *testing.T) {
	ranges, err := gpt.Allocate(10000, gpt.Plan{
		gpt.Spec("-", 512),
		gpt.Spec("reserve1", 512),
		gpt.Spec("reserve2", 2048),
	})
	require.NoError(t, err)
	require.Equal(t, []gpt.Range{
		{Name: "reserve1", FirstLBA: 1024, LastLBA: 1024},
		{Name: "reserve2", FirstLBA: 1025, LastLBA: 1028},
	}, ranges)

}

func TestAllocateSubSectorReserveFills(t *testing.T) {
	for _, s := range []gpt.PartitionSpec{gpt.Spec("reserve9", 256), gpt.Spec("reserve0", 0)} {
		ranges, err := gpt.Allocate(10000, gpt.Plan{gpt.Spec("-", 512), s})
		require.NoError(t, err, s.Name)
		require.Equal(t, []gpt.Range{{Name: s.Name, FirstLBA: 1024, LastLBA: 9999}}, ranges)
	}

	_, err := gpt.Allocate(10000, gpt.Plan{gpt.Spec("-", 5000), gpt.Spec("reserve9", 256)})
	requirePlacementError(t, err, "reserve9", gpt.ErrPartitionTooLarge)
}

func TestAllocateEmptyFixed(t *testing.T) {
	_, err := gpt.Allocate(10000, gpt.Plan{gpt.Spec("-", 512), {Name: "zero", Policy: gpt.PolicyFixed}})
	requirePlacementError(t, err, "zero", gpt.ErrEmptyPartition)
}

func TestAllocateFill(t *testing.T) {
	ranges, err := gpt.Allocate(10000, gpt.Plan{gpt.Spec("-", 512), gpt.Spec("data", 0)})
	require.NoError(t, err)
	require.Equal(t, []gpt.Range{{Name: "data", FirstLBA: 1024, LastLBA: 9999}}, ranges)

	_, err = gpt.Allocate(10000, gpt.Plan{gpt.Spec("-", 5000), gpt.Spec("data", 0)})
	requirePlacementError(t, err, "data", gpt.ErrPartitionTooLarge)
}

func TestRange(t *testing.T) {
	r := gpt.Range{Name: "x", FirstLBA: 34, LastLBA: 2081}
	require.Equal(t, uint64(2048), r.Sectors())
	require.Equal(t, uint64(1<<20), r.Size())
}
