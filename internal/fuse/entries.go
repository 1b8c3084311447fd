package fuse

import (
	"fmt"
	"strings"

	"github.com/ostafen/gptfmt/internal/gpt"
)

// FileEntry is a file exposed by the mount: a byte range of the device.
type FileEntry struct {
	Name   string
	Offset uint64
	Size   uint64
}

// EntriesFromTable returns one file per live partition of t. Names come
// from the decoded partition name; slashes are replaced, empty or
// undecodable names fall back to "partN" and duplicates get the slot
// number appended, counting up until the name is free.
func EntriesFromTable(t *gpt.Table) []FileEntry {
	seen := make(map[string]bool)

	var entries []FileEntry
	for i := range t.Entries {
		e := &t.Entries[i]
		if !e.IsLive() {
			continue
		}

		name, err := e.DecodedName()
		if err != nil || strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("part%d", i)
		}
		name = strings.ReplaceAll(name, "/", "_")
		for base, n := name, i; seen[name]; n++ {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		seen[name] = true

		entries = append(entries, FileEntry{
			Name:   name,
			Offset: e.FirstLBA * gpt.SectorSize,
			Size:   e.Length(),
		})
	}
	return entries
}
