package disk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

// DefaultSectorSize is the sector size partition tables are laid out for.
const DefaultSectorSize = 512

var (
	ErrDeviceQuery = errors.New("cannot read device size")
	ErrRiskyDevice = errors.New("refusing to write to guarded device")
)

// Device is an opened block device or disk image.
type Device struct {
	Path       string // The path to the device or file (e.g., "/dev/sdb", "disk.img")
	IsDevice   bool   // True if the path refers to a block device, false if a regular file
	Size       int64  // The total size of the device in bytes
	SectorSize int64  // The logical sector size reported by the device
	writable   bool
	file       *os.File
}

// Open opens path for reading, or for reading and writing when writable is
// set, and determines its size.
func Open(path string, writable bool) (*Device, error) {
	flags := os.O_RDONLY
	if writable {
		flags = os.O_RDWR
	}

	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("bad file [%s]: %w", path, err)
	}

	d := &Device{
		Path:       path,
		SectorSize: DefaultSectorSize,
		writable:   writable,
		file:       f,
	}

	if err := d.stat(); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) stat() error {
	d.IsDevice = isRawVolume(d.Path)
	if !d.IsDevice {
		finfo, err := d.file.Stat()
		if err != nil {
			return fmt.Errorf("bad file [%s]: %w", d.Path, err)
		}

		d.IsDevice = finfo.Mode()&os.ModeDevice != 0
		if !d.IsDevice {
			d.Size = finfo.Size()
			return nil
		}
	}

	size, err := deviceSize(d.file)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", ErrDeviceQuery, d.Path, err)
	}
	d.Size = size

	if ssz, err := deviceSectorSize(d.file); err == nil && ssz > 0 {
		d.SectorSize = ssz
	}
	return nil
}

// Sectors returns the number of 512-byte sectors on the device.
func (d *Device) Sectors() uint64 {
	return uint64(d.Size) / DefaultSectorSize
}

// Close closes the underlying file handle.
func (d *Device) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// ReadAt reads data from the device at a specific offset.
func (d *Device) ReadAt(p []byte, off int64) (n int, err error) {
	if d.file == nil {
		return 0, fmt.Errorf("device: file handle is nil")
	}
	return d.file.ReadAt(p, off)
}

// WriteAt writes data to the device at a specific offset.
func (d *Device) WriteAt(p []byte, off int64) (n int, err error) {
	if d.file == nil {
		return 0, fmt.Errorf("device: file handle is nil")
	}
	if !d.writable {
		return 0, fmt.Errorf("device: %s not opened in read-write mode", d.Path)
	}
	return d.file.WriteAt(p, off)
}

// Sync flushes written data to the device.
func (d *Device) Sync() error {
	return d.file.Sync()
}

// CheckPath rejects paths that name one of the guarded devices. Symlinks
// are resolved when possible, so /dev/disk/by-id links are caught too.
func CheckPath(path string, guarded []string) error {
	target := resolvePath(path)
	for _, g := range guarded {
		if g == "" {
			continue
		}
		if target == resolvePath(g) {
			return fmt.Errorf("%w: is this your hard-disk %s?", ErrRiskyDevice, path)
		}
	}
	return nil
}

func resolvePath(path string) string {
	p := filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return p
}

func isRawVolume(path string) bool {
	return strings.HasPrefix(path, `\\.\`)
}

// NormalizeVolumePath converts Windows drive paths like "D:" to the raw
// form \\.\D:. Paths are returned unchanged on other systems.
func NormalizeVolumePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}

	path = strings.ReplaceAll(strings.TrimSpace(path), "/", `\`)
	upper := strings.ToUpper(path)

	if strings.HasPrefix(upper, `\\.\`) {
		return upper
	}

	if len(upper) >= 2 && upper[1] == ':' && unicode.IsLetter(rune(upper[0])) {
		return `\\.\` + upper[:1] + `:`
	}
	return path
}
