//go:build linux
// +build linux

package disk

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// deviceSize retrieves the total size in bytes of a Linux block device
// using the BLKGETSIZE64 ioctl.
func deviceSize(f *os.File) (int64, error) {
	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, fmt.Errorf("ioctl BLKGETSIZE64 failed: %w", errno)
	}
	return int64(size), nil
}

// deviceSectorSize retrieves the logical sector size using BLKSSZGET.
func deviceSectorSize(f *os.File) (int64, error) {
	ssz, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKSSZGET)
	if err != nil {
		return 0, fmt.Errorf("ioctl BLKSSZGET failed: %w", err)
	}
	return int64(ssz), nil
}
