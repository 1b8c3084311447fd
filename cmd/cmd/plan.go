package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ostafen/gptfmt/internal/disk"
	"github.com/ostafen/gptfmt/internal/gpt"
	"github.com/ostafen/gptfmt/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefinePlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [device]",
		Short: "Show where the configured partitions would be placed",
		Long: `The 'plan' command resolves the configured partition plan against a device
size and prints the sector range of every partition without writing anything.

The size is taken from the device when one is given, otherwise from --sectors
or --size.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         RunPlan,
	}

	cmd.Flags().Uint64("sectors", 0, "device size in 512-byte sectors")
	cmd.Flags().String("size", "", "device size in bytes, units like 4GB are accepted")
	return cmd
}

func RunPlan(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	plan, err := cfg.PartitionPlan()
	if err != nil {
		return err
	}

	total, err := planSectors(cmd, args)
	if err != nil {
		return err
	}
	log.Debugf("resolving %d partitions over %d sectors", plan.Partitions(), total)

	ranges, err := gpt.Allocate(total, plan)
	if err != nil {
		return err
	}
	return writePlan(cmd.OutOrStdout(), total, ranges)
}

func planSectors(cmd *cobra.Command, args []string) (uint64, error) {
	if len(args) == 1 {
		dev, err := disk.Open(disk.NormalizeVolumePath(args[0]), false)
		if err != nil {
			return 0, err
		}
		defer dev.Close()
		return dev.Sectors(), nil
	}

	if sectors, _ := cmd.Flags().GetUint64("sectors"); sectors > 0 {
		return sectors, nil
	}

	if size, _ := cmd.Flags().GetString("size"); size != "" {
		n, err := format.ParseBytes(size)
		if err != nil {
			return 0, err
		}
		return n / gpt.SectorSize, nil
	}
	return 0, fmt.Errorf("a device, --sectors or --size is required")
}

func writePlan(w io.Writer, total uint64, ranges []gpt.Range) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d sectors (%s)\n", total, format.FormatBytes(int64(total*gpt.SectorSize)))
	fmt.Fprintf(&buf, "%3s %10s %10s %10s  %s\n", "#", "first", "last", "size", "name")

	var used uint64
	for i, r := range ranges {
		used = r.LastLBA + 1
		fmt.Fprintf(&buf, "%3d %10d %10d %10s  %s\n", i, r.FirstLBA, r.LastLBA, format.FormatBytes(int64(r.Size())), r.Name)
	}

	if used < total {
		fmt.Fprintf(&buf, "%d sectors free (%s)\n", total-used, format.FormatBytes(int64((total-used)*gpt.SectorSize)))
	}

	_, err := w.Write(buf.Bytes())
	return err
}
