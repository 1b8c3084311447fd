package gpt_test

import (
	"errors"
	"io"
	"testing"

	"github.com/ostafen/gptfmt/internal/gpt"
	"github.com/stretchr/testify/require"
)

// memDevice is an in-memory device that records every write.
type memDevice struct {
	data   []byte
	writes int
}

func (m *memDevice) WriteAt(p []byte, off int64) (int, error) {
	m.writes++
	end := int(off) + len(p)
	if end > len(m.data) {
		m.data = append(m.data, make([]byte, end-len(m.data))...)
	}
	return copy(m.data[off:], p), nil
}

func (m *memDevice) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

type failingWriter struct{}

func (failingWriter) WriteAt(p []byte, off int64) (int, error) {
	return 0, errors.New("device gone")
}

type shortWriter struct{}

func (shortWriter) WriteAt(p []byte, off int64) (int, error) {
	return len(p) / 2, nil
}

func TestFormatWritesOnce(t *testing.T) {
	dev := &memDevice{}

	table, err := gpt.Format(dev, testSectors, gpt.DefaultPlan())
	require.NoError(t, err)
	require.Equal(t, 1, dev.writes)
	require.Equal(t, table.Bytes(), dev.data)

	read, err := gpt.ReadTable(dev)
	require.NoError(t, err)
	require.NoError(t, read.Verify())
	require.Equal(t, table.Entries, read.Partitions())
}

func TestFormatNothingWrittenOnFailure(t *testing.T) {
	dev := &memDevice{}

	_, err := gpt.Format(dev, 2_000_000, gpt.DefaultPlan())
	require.ErrorIs(t, err, gpt.ErrPartitionTooLarge)
	require.Equal(t, 0, dev.writes)

	_, err = gpt.Format(dev, testSectors, gpt.Plan{gpt.Spec("first", 16)})
	require.ErrorIs(t, err, gpt.ErrPartitionOverlap)
	require.Equal(t, 0, dev.writes)

	_, err = gpt.Format(dev, 0, gpt.Plan{})
	require.ErrorIs(t, err, gpt.ErrDeviceTooSmall)
	require.Equal(t, 0, dev.writes)
}

func TestFormatWriteFailure(t *testing.T) {
	_, err := gpt.Format(failingWriter{}, testSectors, gpt.DefaultPlan())
	require.ErrorIs(t, err, gpt.ErrIO)

	_, err = gpt.Format(shortWriter{}, testSectors, gpt.DefaultPlan())
	require.ErrorIs(t, err, gpt.ErrIO)
}

func TestReadTableShortDevice(t *testing.T) {
	_, err := gpt.ReadTable(&memDevice{})
	require.ErrorIs(t, err, gpt.ErrTableNotFound)

	_, err = gpt.ReadTable(&memDevice{data: make([]byte, 4096)})
	require.ErrorIs(t, err, gpt.ErrTableNotFound)
}
