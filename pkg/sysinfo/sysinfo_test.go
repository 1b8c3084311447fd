package sysinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOSReleaseName(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "os-release")
	require.NoError(t, os.WriteFile(path, []byte("NAME=\"Fedora Linux\"\nPRETTY_NAME=\"Fedora Linux 40\"\n"), 0644))
	require.Equal(t, "Fedora Linux 40", osReleaseName(path))

	require.NoError(t, os.WriteFile(path, []byte("NAME=Alpine\n"), 0644))
	require.Equal(t, "Alpine", osReleaseName(path))

	require.Equal(t, "", osReleaseName(filepath.Join(dir, "missing")))
}

func TestStat(t *testing.T) {
	info, err := Stat()
	if err != nil {
		t.Skipf("uname unavailable: %v", err)
	}
	require.NotEmpty(t, info.Name)
}
