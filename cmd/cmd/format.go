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
	"fmt"
	"io"

	"github.com/ostafen/gptfmt/internal/disk"
	"github.com/ostafen/gptfmt/internal/gpt"
	"github.com/ostafen/gptfmt/internal/logger"
	"github.com/spf13/cobra"
)

func DefineFormatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format <device>",
		Short: "Write a new GPT partition table to a device or image",
		Long: `The 'format' command builds a protective MBR, a GPT header and a 128-entry
partition array from the configured partition plan and writes them over the
first 34 sectors of the device. Existing partition data is not touched, but
the previous partition table is lost.

The table is read back and printed once written.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunFormat,
	}

	cmd.Flags().Bool("dry-run", false, "build the table and print it without writing")
	cmd.Flags().Bool("no-report", false, "do not print the table after writing it")
	return cmd
}

func RunFormat(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	plan, err := cfg.PartitionPlan()
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noReport, _ := cmd.Flags().GetBool("no-report")

	path := disk.NormalizeVolumePath(args[0])
	log.Infof("open file: %s", path)

	if !dryRun {
		if err := disk.CheckPath(path, cfg.GuardedDevices); err != nil {
			return err
		}
	}

	dev, err := disk.Open(path, !dryRun)
	if err != nil {
		return err
	}
	defer dev.Close()

	out := cmd.OutOrStdout()
	if dryRun {
		t, err := gpt.Build(dev.Sectors(), plan)
		if err != nil {
			return err
		}
		return gpt.WriteReport(out, t, gpt.ReportOptions{})
	}

	if _, err := formatDevice(dev, plan, log); err != nil {
		return err
	}

	if noReport {
		return nil
	}
	return runReport(out, dev, sourceOf(dev), reportOptions{}, log)
}

type device interface {
	io.ReaderAt
	io.WriterAt
	Sectors() uint64
}

// formatDevice writes a fresh table for plan. Placement errors abort before
// anything reaches the device.
func formatDevice(dev device, plan gpt.Plan, log *logger.Logger) (*gpt.Table, error) {
	blocks := dev.Sectors()
	log.Infof("blocks %d", blocks)

	if d, ok := dev.(*disk.Device); ok && d.SectorSize != disk.DefaultSectorSize {
		log.Warnf("device reports %d-byte sectors, the table is laid out for %d-byte sectors",
			d.SectorSize, disk.DefaultSectorSize)
	}

	t, err := gpt.Format(dev, blocks, plan)
	if err != nil {
		return nil, fmt.Errorf("format failed: %w", err)
	}

	if d, ok := dev.(*disk.Device); ok {
		if err := d.Sync(); err != nil {
			return nil, fmt.Errorf("%w: sync failed: %w", gpt.ErrIO, err)
		}
	}

	log.Infof("written new partition table with %d partitions", len(t.Partitions()))
	return t, nil
}
