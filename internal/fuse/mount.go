//go:build !linux
// +build !linux

package fuse

import (
	"fmt"
	"io"

	"github.com/ostafen/gptfmt/internal/logger"
)

func Mount(mountpoint string, r io.ReaderAt, entries []FileEntry, log *logger.Logger) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
