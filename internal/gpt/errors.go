package gpt

import (
	"errors"
	"fmt"
)

var (
	ErrPartitionOverlap  = errors.New("overlaps partition table")
	ErrPartitionTooLarge = errors.New("does not fit")
	ErrEmptyPartition    = errors.New("resolves to zero sectors")
	ErrDeviceTooSmall    = errors.New("device too small for partition table")
	ErrTableFull         = errors.New("out of partition table entries")
	ErrTableNotFound     = errors.New("efi partition table not found")
	ErrIO                = errors.New("partition table i/o failure")
	ErrHeaderChecksum    = errors.New("gpt header crc mismatch")
	ErrEntriesChecksum   = errors.New("gpt entries crc mismatch")
	ErrInvalidSpec       = errors.New("invalid partition spec")
)

// PlacementError reports a partition that could not be placed on the device.
type PlacementError struct {
	Name string
	Err  error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("partition '%s' %s", e.Name, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}
