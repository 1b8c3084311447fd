//go:build linux
// +build linux

package fuse

import (
	"context"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
)

// PartitionFS is a read-only file system with one file per partition.
type PartitionFS struct {
	r io.ReaderAt

	mtx     sync.RWMutex
	entries map[string]FileEntry
	mtime   time.Time
}

func NewPartitionFS(r io.ReaderAt, entries []FileEntry) *PartitionFS {
	m := make(map[string]FileEntry, len(entries))
	for _, e := range entries {
		m[e.Name] = e
	}
	return &PartitionFS{
		r:       r,
		entries: m,
		mtime:   time.Now(),
	}
}

func (pfs *PartitionFS) Root() (fs.Node, error) {
	return &Dir{fs: pfs}, nil
}

// sortedNames returns the file names in a stable order, used for inode numbers.
func (pfs *PartitionFS) sortedNames() []string {
	names := make([]string, 0, len(pfs.entries))
	for name := range pfs.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dir implements both fs.Node and fs.HandleReadDirAller
type Dir struct {
	fs *PartitionFS
}

func (*Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = 1
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	d.fs.mtx.RLock()
	defer d.fs.mtx.RUnlock()

	e, ok := d.fs.entries[name]
	if !ok {
		return nil, fuse.ENOENT
	}
	return &File{
		r:     io.NewSectionReader(d.fs.r, int64(e.Offset), int64(e.Size)),
		size:  e.Size,
		mtime: d.fs.mtime,
	}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	d.fs.mtx.RLock()
	defer d.fs.mtx.RUnlock()

	names := d.fs.sortedNames()
	dirEntries := make([]fuse.Dirent, len(names))
	for i, name := range names {
		dirEntries[i] = fuse.Dirent{
			Inode: uint64(i + 2),
			Name:  name,
			Type:  fuse.DT_File,
		}
	}
	return dirEntries, nil
}

// File implements both fs.Node and fs.HandleReader
type File struct {
	r     io.ReaderAt
	size  uint64
	mtime time.Time
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = f.size
	a.Mtime = f.mtime
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	if req.Offset >= int64(f.size) {
		resp.Data = []byte{}
		return nil
	}

	size := min(int64(req.Size), int64(f.size)-req.Offset)
	buf := make([]byte, size)

	n, err := f.r.ReadAt(buf, req.Offset)
	if err != nil && err != io.EOF {
		return err
	}
	resp.Data = buf[:n]
	return nil
}
