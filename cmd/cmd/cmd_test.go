package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/gptfmt/cmd/cmd"
	"github.com/ostafen/gptfmt/internal/gpt"
	"github.com/ostafen/gptfmt/pkg/dfxml"
	"github.com/stretchr/testify/require"
)

const smallPlan = `
plan:
  - name: "-"
    size: 17K
  - name: boot
    size: 256K
  - name: data
    size: "0"
`

type testEnv struct {
	dir    string
	config string
	image  string
}

func newTestEnv(t *testing.T, config string, imageSize int64) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		config: filepath.Join(dir, "gptfmt.yaml"),
		image:  filepath.Join(dir, "disk.img"),
	}
	require.NoError(t, os.WriteFile(env.config, []byte(config), 0644))

	f, err := os.Create(env.image)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(imageSize))
	require.NoError(t, f.Close())
	return env
}

func (e *testEnv) run(args ...string) (string, string, error) {
	root := cmd.NewRootCommand()

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--config", e.config))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) imageBytes(t *testing.T) []byte {
	t.Helper()

	data, err := os.ReadFile(e.image)
	require.NoError(t, err)
	return data
}

func TestFormatAndReport(t *testing.T) {
	env := newTestEnv(t, smallPlan, 1<<20)

	stdout, stderr, err := env.run("format", env.image)
	require.NoError(t, err)
	require.Equal(t, "EFI table is:\n      34     256K boot\n     546     751K data\n", stdout)
	require.Contains(t, stderr, "[INFO] blocks 2048")

	table, err := gpt.Parse(env.imageBytes(t)[:gpt.TableBytes])
	require.NoError(t, err)
	require.NoError(t, table.Verify())
	require.Len(t, table.Partitions(), 2)

	stdout, _, err = env.run("report", "--verify", env.image)
	require.NoError(t, err)
	require.Equal(t, "EFI table is:\n      34     256K boot\n     546     751K data\n", stdout)
}

func TestFormatTooSmall(t *testing.T) {
	env := newTestEnv(t, "log_level: ERROR\n", 1<<20)

	_, _, err := env.run("format", env.image)
	require.ErrorIs(t, err, gpt.ErrPartitionTooLarge)
	require.Contains(t, err.Error(), "partition 'STATE' does not fit")
	require.Equal(t, make([]byte, 1<<20), env.imageBytes(t))
}

func TestFormatDryRun(t *testing.T) {
	env := newTestEnv(t, smallPlan, 1<<20)

	stdout, _, err := env.run("format", "--dry-run", env.image)
	require.NoError(t, err)
	require.Contains(t, stdout, "     546     751K data")
	require.Equal(t, make([]byte, 1<<20), env.imageBytes(t))
}

func TestFormatGuardedDevice(t *testing.T) {
	env := newTestEnv(t, smallPlan, 1<<20)
	require.NoError(t, os.WriteFile(env.config, []byte(smallPlan+"guarded_devices:\n  - "+env.image+"\n"), 0644))

	_, _, err := env.run("format", env.image)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is this your hard-disk")
	require.Equal(t, make([]byte, 1<<20), env.imageBytes(t))
}

func TestReportNoTable(t *testing.T) {
	env := newTestEnv(t, smallPlan, 1<<20)

	stdout, stderr, err := env.run("report", env.image)
	require.NoError(t, err)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "efi partition table not found")
}

func TestReportXML(t *testing.T) {
	env := newTestEnv(t, smallPlan, 1<<20)

	_, _, err := env.run("format", "--no-report", env.image)
	require.NoError(t, err)

	xmlPath := filepath.Join(env.dir, "out", "table.xml")
	stdout, _, err := env.run("report", "--guids", "--xml", xmlPath, env.image)
	require.NoError(t, err)
	require.Contains(t, stdout, "      34     256K boot type=ebd0a0a2-b9e5-4433-87c0-68b6b72699c7")

	f, err := os.Open(xmlPath)
	require.NoError(t, err)
	defer f.Close()

	objs, err := dfxml.ReadPartitions(f)
	require.NoError(t, err)
	require.Len(t, objs, 2)
	require.Equal(t, "boot", objs[0].Label)
	require.Equal(t, uint64(34*512), objs[0].Offset)
	require.Equal(t, uint64(256*1024), objs[0].ByteRuns.Length())
	require.Equal(t, "data", objs[1].Label)
	require.Equal(t, uint64(2047), objs[1].LastBlock)
}

func TestPlan(t *testing.T) {
	env := newTestEnv(t, "log_level: ERROR\n", 0)

	stdout, _, err := env.run("plan", "--sectors", "8000000")
	require.NoError(t, err)
	require.Contains(t, stdout, "8000000 sectors")
	require.Contains(t, stdout, "  0       1024    2098175        1GB  STATE\n")
	require.Contains(t, stdout, " 11    6120451    6153218       16MB  EFI-SYSTEM\n")
	require.Contains(t, stdout, "1846781 sectors free")

	_, _, err = env.run("plan", "--size", "1GiB")
	require.ErrorIs(t, err, gpt.ErrPartitionTooLarge)

	_, _, err = env.run("plan")
	require.Error(t, err)
}

func TestPlanFromImage(t *testing.T) {
	env := newTestEnv(t, smallPlan, 1<<20)

	stdout, _, err := env.run("plan", env.image)
	require.NoError(t, err)
	require.Contains(t, stdout, "  1        546       2047      751KB  data\n")
	require.NotContains(t, stdout, "free")
}
