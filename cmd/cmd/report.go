// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/ostafen/gptfmt/internal/disk"
	"github.com/ostafen/gptfmt/internal/env"
	"github.com/ostafen/gptfmt/internal/gpt"
	"github.com/ostafen/gptfmt/internal/logger"
	"github.com/ostafen/gptfmt/pkg/dfxml"
	osutils "github.com/ostafen/gptfmt/pkg/util/os"
	"github.com/spf13/cobra"
)

func DefineReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <device>",
		Short: "Print the GPT partition table of a device or image",
		Long: `The 'report' command reads the GPT header and partition entries of a device
or disk image and prints one line per partition: start sector, size and name.

A device without a GPT header is reported as such and is not an error.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunReport,
	}

	cmd.Flags().Bool("verify", false, "check the header and entries checksums")
	cmd.Flags().Bool("guids", false, "print the type and unique GUID of every partition")
	cmd.Flags().String("xml", "", "also write the table as a DFXML report to this file")
	return cmd
}

type reportOptions struct {
	gpt.ReportOptions

	Verify  bool
	XMLPath string
}

func RunReport(cmd *cobra.Command, args []string) error {
	_, log, err := setup(cmd)
	if err != nil {
		return err
	}

	var opts reportOptions
	opts.GUIDs, _ = cmd.Flags().GetBool("guids")
	opts.Verify, _ = cmd.Flags().GetBool("verify")
	opts.XMLPath, _ = cmd.Flags().GetString("xml")

	path := disk.NormalizeVolumePath(args[0])

	dev, err := disk.Open(path, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	return runReport(cmd.OutOrStdout(), dev, sourceOf(dev), opts, log)
}

// runReport prints the table found on r. A missing or unreadable table is
// logged and is not an error.
func runReport(w io.Writer, r io.ReaderAt, src dfxml.Source, opts reportOptions, log *logger.Logger) error {
	t, err := gpt.ReadTable(r)
	if errors.Is(err, gpt.ErrTableNotFound) {
		log.Warnf("%s: efi partition table not found", src.ImageFilename)
		return nil
	}
	if err != nil {
		log.Errorf("%s: %s", src.ImageFilename, err)
		return nil
	}

	if opts.Verify {
		if err := t.Verify(); err != nil {
			return err
		}
		log.Info("header and entries checksums are valid")
	}

	if err := gpt.WriteReport(w, t, opts.ReportOptions); err != nil {
		return err
	}

	if opts.XMLPath == "" {
		return nil
	}

	src.DiskGUID = t.Header.DiskGUID.String()
	if err := writeXMLReport(opts.XMLPath, src, t); err != nil {
		return err
	}
	log.Infof("report written to %s", opts.XMLPath)
	return nil
}

func sourceOf(dev *disk.Device) dfxml.Source {
	return dfxml.Source{
		ImageFilename: dev.Path,
		SectorSize:    int(dev.SectorSize),
		ImageSize:     uint64(dev.Size),
	}
}

func writeXMLReport(path string, src dfxml.Source, t *gpt.Table) error {
	f, err := osutils.CreateFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	xw := dfxml.NewDFXMLWriter(f)

	err = xw.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("unable to write report header: %w", err)
	}

	for _, obj := range partitionObjects(t) {
		if err := xw.WritePartition(obj); err != nil {
			return fmt.Errorf("unable to write report entry: %w", err)
		}
	}

	if err := xw.Close(); err != nil {
		return err
	}
	return f.Sync()
}

func partitionObjects(t *gpt.Table) []dfxml.PartitionObject {
	var objs []dfxml.PartitionObject
	for i := range t.Entries {
		e := &t.Entries[i]
		if !e.IsLive() {
			continue
		}

		name, err := e.DecodedName()
		if err != nil {
			name = e.RawName()
		}

		offset := e.FirstLBA * gpt.SectorSize
		objs = append(objs, dfxml.PartitionObject{
			Offset:     offset,
			Index:      i,
			Label:      name,
			TypeGUID:   e.TypeGUID.String(),
			UniqueGUID: e.UniqueGUID.String(),
			BlockSize:  gpt.SectorSize,
			FirstBlock: e.FirstLBA,
			LastBlock:  e.LastLBA,
			ByteRuns: dfxml.ByteRuns{
				Runs: []dfxml.ByteRun{{Offset: 0, ImgOffset: offset, Length: e.Length()}},
			},
		})
	}
	return objs
}
