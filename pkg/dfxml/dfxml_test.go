package dfxml_test

import (
	"bytes"
	"testing"

	"github.com/ostafen/gptfmt/pkg/dfxml"
	"github.com/stretchr/testify/require"
)

func TestWriteReadPartitions(t *testing.T) {
	objs := []dfxml.PartitionObject{
		{
			Offset:     1024 * 512,
			Index:      0,
			Label:      "STATE",
			TypeGUID:   "ebd0a0a2-b9e5-4433-87c0-68b6b72699c7",
			UniqueGUID: "f9f21f00-a8d4-5f0e-9746-594869aec34e",
			BlockSize:  512,
			FirstBlock: 1024,
			LastBlock:  2047,
			ByteRuns: dfxml.ByteRuns{
				Runs: []dfxml.ByteRun{{ImgOffset: 1024 * 512, Length: 1024 * 512}},
			},
		},
		{
			Offset:     2048 * 512,
			Index:      1,
			Label:      "kernel",
			TypeGUID:   "fe3a2a5d-4f32-41a7-b725-accc3285a309",
			UniqueGUID: "f9f21f01-a8d4-5f0e-9746-594869aec34e",
			BlockSize:  512,
			FirstBlock: 2048,
			LastBlock:  4095,
			ByteRuns: dfxml.ByteRuns{
				Runs: []dfxml.ByteRun{{ImgOffset: 2048 * 512, Length: 2048 * 512}},
			},
		},
	}

	var buf bytes.Buffer
	w := dfxml.NewDFXMLWriter(&buf)
	require.NoError(t, w.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator:   dfxml.Creator{Package: "gptfmt", Version: "dev"},
		Source:    dfxml.Source{ImageFilename: "disk.img", SectorSize: 512, ImageSize: 1 << 30},
	}))
	for _, obj := range objs {
		require.NoError(t, w.WritePartition(obj))
	}
	require.NoError(t, w.Close())

	out := buf.String()
	require.Contains(t, out, `<dfxml xmloutputversion="1.0">`)
	require.Contains(t, out, "<image_filename>disk.img</image_filename>")
	require.Contains(t, out, "<partition_label>kernel</partition_label>")

	read, err := dfxml.ReadPartitions(&buf)
	require.NoError(t, err)
	require.Len(t, read, 2)

	for i := range objs {
		require.Equal(t, objs[i].Label, read[i].Label)
		require.Equal(t, objs[i].Offset, read[i].Offset)
		require.Equal(t, objs[i].UniqueGUID, read[i].UniqueGUID)
		require.Equal(t, objs[i].LastBlock, read[i].LastBlock)
		require.Equal(t, objs[i].ByteRuns.Length(), read[i].ByteRuns.Length())
	}
}

func TestReadPartitionsInvalid(t *testing.T) {
	_, err := dfxml.ReadPartitions(bytes.NewBufferString("<dfxml><volume><first_block>x</first_block></volume>"))
	require.Error(t, err)
}

func TestGetExecEnv(t *testing.T) {
	env := dfxml.GetExecEnv()
	require.NotEmpty(t, env.OS)
	require.NotEmpty(t, env.Arch)
	require.NotEmpty(t, env.Start)
}
